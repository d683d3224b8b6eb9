package detection

import (
	"context"
	"image"
	"math"

	"github.com/ironsheep/plate-service/internal/imaging"
)

// EdgeLocalizer finds plate-like regions with an edge-density heuristic.
//
// Plate-shaped windows (wide and short) slide over an edge map of the image. A
// window scores well when its edge density is moderate, as printed characters
// are, and when the edges form strokes crossed along rows. Overlapping hits are
// merged into one candidate.
type EdgeLocalizer struct {
	// MaxScanDim bounds the longer image side during the scan; larger images are
	// downscaled first and boxes mapped back.
	MaxScanDim int

	// WindowFractions are window widths as fractions of the scanned image width.
	WindowFractions []float64

	// Aspect is the width/height ratio of every window.
	Aspect float64
}

// NewEdgeLocalizer returns an EdgeLocalizer with defaults suited to vehicle photos.
func NewEdgeLocalizer() *EdgeLocalizer {
	return &EdgeLocalizer{
		MaxScanDim:      640,
		WindowFractions: []float64{0.2, 0.3, 0.4, 0.5},
		Aspect:          3.5,
	}
}

// Name implements Localizer.
func (l *EdgeLocalizer) Name() string { return "edge" }

// Detect implements Localizer.
func (l *EdgeLocalizer) Detect(ctx context.Context, img image.Image, minConfidence float64) ([]Candidate, error) {
	bounds := img.Bounds()
	scan := img
	scale := 1.0
	if longest := maxInt(bounds.Dx(), bounds.Dy()); l.MaxScanDim > 0 && longest > l.MaxScanDim {
		scale = float64(l.MaxScanDim) / float64(longest)
		scan = imaging.Scale(img, scale)
	}

	edges := detectEdges(scan)
	width, height := edges.width, edges.height

	candidates := make([]Candidate, 0)

	for _, fraction := range l.WindowFractions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ww := int(float64(width) * fraction)
		wh := int(float64(ww) / l.Aspect)
		if ww < 40 || wh < 12 || ww > width || wh > height {
			continue
		}
		stepX, stepY := ww/2, wh/2

		for y := 0; y <= height-wh; y += stepY {
			for x := 0; x <= width-ww; x += stepX {
				area := ww * wh
				density := float64(edges.count(x, y, ww, wh)) / float64(area)

				// Characters give a moderate density; flat paint and foliage do not.
				if density < 0.05 || density > 0.4 {
					continue
				}

				confidence := edges.strokeScore(x, y, ww, wh) * (1.0 - math.Abs(density-0.2)/0.2)
				if confidence < minConfidence {
					continue
				}

				box := image.Rect(
					int(float64(x)/scale),
					int(float64(y)/scale),
					int(float64(x+ww)/scale),
					int(float64(y+wh)/scale),
				).Add(bounds.Min).Intersect(bounds)

				candidates = append(candidates, Candidate{
					Box:        box,
					Confidence: math.Round(confidence*1000) / 1000,
					Label:      "plate",
				})
			}
		}
	}

	merged := mergeOverlapping(candidates)
	sortByConfidence(merged)
	return merged, nil
}

// mergeOverlapping combines overlapping candidates into their union, keeping the
// best confidence.
func mergeOverlapping(candidates []Candidate) []Candidate {
	merged := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		foundMerge := false
		for i := range merged {
			if c.Box.Overlaps(merged[i].Box) {
				merged[i].Box = merged[i].Box.Union(c.Box)
				merged[i].Confidence = math.Max(merged[i].Confidence, c.Confidence)
				foundMerge = true
				break
			}
		}
		if !foundMerge {
			merged = append(merged, c)
		}
	}

	return merged
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
