package plate

const (
	// SuccessThreshold is the confidence a result must exceed to be reported
	// as detected rather than low confidence.
	SuccessThreshold = 0.10

	// CombinedConfidence is assigned to a plate assembled from several lines.
	CombinedConfidence = 0.90
)

// Result is the best plate reading found so far.
//
// Results are values: strategies receive the current best and return a new one.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Found reports whether any text was read.
func (r Result) Found() bool { return r.Text != "" }

// IsConfident reports whether the result clears SuccessThreshold.
func (r Result) IsConfident() bool { return r.Confidence > SuccessThreshold }

// improve returns the reading (text, confidence) if it beats r, otherwise r.
func (r Result) improve(text string, confidence float64) Result {
	if confidence > r.Confidence {
		return Result{Text: text, Confidence: confidence}
	}
	return r
}
