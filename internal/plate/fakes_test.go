package plate

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/plate-service/internal/detection"
	"github.com/ironsheep/plate-service/internal/ocr"
)

// fakeReader returns canned spans per parameter set name.
type fakeReader struct {
	spans map[string][]ocr.Span
	errs  map[string]error
	calls []readCall
}

type readCall struct {
	params string
	bounds image.Rectangle
}

func (f *fakeReader) Name() string { return "fake" }

func (f *fakeReader) Read(_ context.Context, img image.Image, p ocr.Params) ([]ocr.Span, error) {
	f.calls = append(f.calls, readCall{params: p.Name, bounds: img.Bounds()})
	if err := f.errs[p.Name]; err != nil {
		return nil, err
	}
	return f.spans[p.Name], nil
}

func (f *fakeReader) called(name string) int {
	n := 0
	for _, c := range f.calls {
		if c.params == name {
			n++
		}
	}
	return n
}

// fakeLocalizer returns canned candidates per threshold.
type fakeLocalizer struct {
	byThreshold map[float64][]detection.Candidate
	err         error
	thresholds  []float64
	images      []image.Image
}

func (f *fakeLocalizer) Name() string { return "fake" }

func (f *fakeLocalizer) Detect(_ context.Context, img image.Image, minConfidence float64) ([]detection.Candidate, error) {
	f.thresholds = append(f.thresholds, minConfidence)
	f.images = append(f.images, img)
	if f.err != nil {
		return nil, f.err
	}
	return f.byThreshold[minConfidence], nil
}

func span(text string, confidence float64) ocr.Span {
	return ocr.Span{Text: text, Confidence: confidence}
}

func testImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
