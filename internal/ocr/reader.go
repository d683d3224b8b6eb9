package ocr

import (
	"context"
	"image"

	"github.com/ironsheep/plate-service/internal/imaging"
)

// Span is one piece of recognized text.
type Span struct {
	// Box is the bounding box in the coordinates of the image passed to Read.
	Box image.Rectangle `json:"box"`

	// Text is the raw recognized text.
	Text string `json:"text"`

	// Confidence is the recognition confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// Reader extracts text spans from an image.
type Reader interface {
	// Read recognizes text in img using the given parameter set. Spans are
	// returned in detection order.
	Read(ctx context.Context, img image.Image, p Params) ([]Span, error)

	// Name identifies the backend ("tesseract", "rekognition").
	Name() string
}

// Level selects the granularity of returned spans.
type Level int

const (
	// LevelLine returns one span per text line. The cascade works on lines.
	LevelLine Level = iota

	// LevelWord returns one span per word.
	LevelWord
)

// String returns "line" or "word".
func (l Level) String() string {
	if l == LevelWord {
		return "word"
	}
	return "line"
}

// Mode is a Tesseract page segmentation mode.
type Mode int

const (
	ModeAuto   Mode = 3  // fully automatic page segmentation
	ModeBlock  Mode = 6  // a single uniform block of text, used for plate crops
	ModeLine   Mode = 7  // a single text line
	ModeSparse Mode = 11 // as much text as possible in no particular order
)

// PlateCharset is the whitelist handed to engines that support one.
const PlateCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 -."

// Params tunes a single read.
type Params struct {
	// Name identifies the preset in logs and in test fakes.
	Name string

	// Level selects line or word spans.
	Level Level

	// Mode is the Tesseract page segmentation mode; other engines ignore it.
	Mode Mode

	// MinConfidence drops spans scoring below it. Zero keeps everything.
	MinConfidence float64

	// Magnify upscales the image before recognition. Returned boxes are in the
	// coordinates of the image passed to Read.
	Magnify float64

	// Contrast is a percentage (-100..100) applied before recognition.
	Contrast float64

	// Grayscale reads a grayscale conversion.
	Grayscale bool

	// Whitelist restricts the characters the engine may emit.
	Whitelist string
}

// Presets used by the detection strategies.
var (
	// FullImageParams is tuned for permissive detection on the whole photograph.
	// Every recognized line is returned whatever its score: low-confidence lines
	// still feed the multi-line join and may be adopted as a low-confidence plate.
	FullImageParams = Params{
		Name:      "full-image",
		Level:     LevelLine,
		Mode:      ModeSparse,
		Magnify:   2.0,
		Whitelist: PlateCharset,
	}

	// EnhancedParams runs on the contrast-enhanced image and, like
	// FullImageParams, keeps every line.
	EnhancedParams = Params{
		Name:      "enhanced",
		Level:     LevelLine,
		Mode:      ModeSparse,
		Magnify:   1.0,
		Whitelist: PlateCharset,
	}

	// RegionParams reads a localized crop.
	RegionParams = Params{
		Name:      "region",
		Level:     LevelLine,
		Mode:      ModeBlock,
		Magnify:   2.0,
		Whitelist: PlateCharset,
	}

	// AccurateColorParams reads an expanded colour crop in the high-accuracy detector.
	AccurateColorParams = Params{
		Name:      "accurate-color",
		Level:     LevelLine,
		Mode:      ModeBlock,
		Magnify:   1.5,
		Contrast:  30,
		Whitelist: PlateCharset,
	}

	// AccurateGrayParams reads the grayscale conversion of the same crop.
	AccurateGrayParams = Params{
		Name:      "accurate-gray",
		Level:     LevelLine,
		Mode:      ModeLine,
		Magnify:   1.5,
		Contrast:  10,
		Grayscale: true,
		Whitelist: PlateCharset,
	}
)

// prepare applies the preprocessing part of p and returns the image to recognize
// together with the magnification that was applied.
func prepare(img image.Image, p Params) (image.Image, float64) {
	out := img
	if p.Grayscale {
		out = imaging.Grayscale(out)
	}
	out = imaging.AdjustContrast(out, p.Contrast)

	factor := p.Magnify
	if factor <= 0 {
		factor = 1.0
	}
	out = imaging.Scale(out, factor)
	return out, factor
}

// unscale maps a box found on a prepared image back onto the source image.
func unscale(box image.Rectangle, factor float64, origin image.Point) image.Rectangle {
	if factor != 1.0 {
		box = image.Rect(
			int(float64(box.Min.X)/factor),
			int(float64(box.Min.Y)/factor),
			int(float64(box.Max.X)/factor+0.5),
			int(float64(box.Max.Y)/factor+0.5),
		)
	}
	return box.Add(origin)
}
