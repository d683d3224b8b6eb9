package detection

import (
	"context"
	"image"
	"sort"
)

// Candidate is a region that probably holds a plate.
type Candidate struct {
	Box        image.Rectangle `json:"box"`
	Confidence float64         `json:"confidence"`
	Label      string          `json:"label"`
}

// Localizer finds plate candidates in an image.
type Localizer interface {
	// Detect returns candidates with confidence >= minConfidence, best first.
	Detect(ctx context.Context, img image.Image, minConfidence float64) ([]Candidate, error)

	// Name identifies the backend ("edge", "remote", "rekognition").
	Name() string
}

// sortByConfidence orders candidates best first, keeping detection order on ties.
func sortByConfidence(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Confidence > c[j].Confidence
	})
}
