package plate

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/plate-service/internal/detection"
	"github.com/ironsheep/plate-service/internal/imaging"
	"github.com/ironsheep/plate-service/internal/logging"
	"github.com/ironsheep/plate-service/internal/ocr"
)

// RegionLocalizerConfidence is the localizer threshold of the localize-then-read
// strategy.
const RegionLocalizerConfidence = 0.3

// Options tunes an Evaluator.
type Options struct {
	// TrimBorders removes the plate-frame margins from the image before any
	// strategy runs.
	TrimBorders bool

	// Trim is the margin removed from the whole image (when TrimBorders is set)
	// and from every localized crop.
	Trim imaging.BorderTrim
}

// DefaultOptions enables border trimming with imaging.DefaultBorderTrim.
func DefaultOptions() Options {
	return Options{TrimBorders: true, Trim: imaging.DefaultBorderTrim}
}

// Evaluator runs the plate detection cascade.
//
// The cascade tries, in order and only while nothing has been found:
//
//  1. a direct read of the whole image
//  2. a read of a luminance-equalized copy
//  3. a read of every localized region
//
// and finally joins the short lines seen by the direct read into one plate when
// there are at least two of them. The join replaces whatever the strategies
// found.
//
// An Evaluator holds no per-call state and is safe for concurrent use as long as
// its reader and localizer are.
type Evaluator struct {
	reader    ocr.Reader
	localizer detection.Localizer
	opts      Options
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(reader ocr.Reader, localizer detection.Localizer, opts Options) *Evaluator {
	return &Evaluator{reader: reader, localizer: localizer, opts: opts}
}

// Evaluate returns the best plate reading for img. A zero Result means no plate
// was found. Any reader or localizer error aborts the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, img image.Image) (Result, error) {
	if e.opts.TrimBorders {
		img = imaging.TrimBorder(img, e.opts.Trim)
	}
	b := img.Bounds()
	logging.Debugf(ctx, "evaluating %dx%d image", b.Dx(), b.Dy())

	best, lines, err := e.readDirect(ctx, img, Result{})
	if err != nil {
		return Result{}, fmt.Errorf("direct read: %w", err)
	}

	if !best.Found() {
		best, err = e.readEnhanced(ctx, img, best)
		if err != nil {
			return Result{}, fmt.Errorf("enhanced read: %w", err)
		}
	}

	if !best.Found() {
		best, err = e.readRegions(ctx, img, best)
		if err != nil {
			return Result{}, fmt.Errorf("region read: %w", err)
		}
	}

	if combined, ok := combineLines(lines); ok {
		logging.Debugf(ctx, "combined %d lines into %q (was %q %.3f)", len(lines), combined.Text, best.Text, best.Confidence)
		best = combined
	}

	return best, nil
}

// readDirect reads the whole image. A span is adopted when it looks like a
// complete plate: 6 to 12 characters with both letters and digits. Every cleaned
// span of 3 to 10 characters is also returned as a line for combineLines.
func (e *Evaluator) readDirect(ctx context.Context, img image.Image, best Result) (Result, []string, error) {
	spans, err := e.reader.Read(ctx, img, ocr.FullImageParams)
	if err != nil {
		return best, nil, err
	}

	var lines []string
	for _, s := range spans {
		cleaned := Clean(s.Text)
		logging.Debugf(ctx, "direct: %q -> %q (%.3f)", s.Text, cleaned, s.Confidence)

		if len(cleaned) >= 6 && len(cleaned) <= 12 && hasLetterAndDigit(cleaned) {
			best = best.improve(cleaned, s.Confidence)
		}
		if len(cleaned) >= 3 && len(cleaned) <= 10 {
			lines = append(lines, cleaned)
		}
	}
	return best, lines, nil
}

// readEnhanced reads a CLAHE-equalized copy and adopts any token of at least 4
// characters.
func (e *Evaluator) readEnhanced(ctx context.Context, img image.Image, best Result) (Result, error) {
	enhanced, err := imaging.EqualizeLuminance(img, imaging.DefaultClipLimit, imaging.DefaultTileGrid)
	if err != nil {
		return best, err
	}

	spans, err := e.reader.Read(ctx, enhanced, ocr.EnhancedParams)
	if err != nil {
		return best, err
	}
	for _, s := range spans {
		cleaned := Clean(s.Text)
		logging.Debugf(ctx, "enhanced: %q -> %q (%.3f)", s.Text, cleaned, s.Confidence)
		if len(cleaned) >= 4 {
			best = best.improve(cleaned, s.Confidence)
		}
	}
	return best, nil
}

// readRegions localizes plate candidates and reads each trimmed crop, adopting
// any token of at least 4 characters.
func (e *Evaluator) readRegions(ctx context.Context, img image.Image, best Result) (Result, error) {
	candidates, err := e.localizer.Detect(ctx, img, RegionLocalizerConfidence)
	if err != nil {
		return best, err
	}

	for _, c := range candidates {
		crop, ok := imaging.CropBox(img, c.Box)
		if !ok {
			continue
		}
		crop = imaging.TrimBorder(crop, e.opts.Trim)
		logging.Debugf(ctx, "region %v (%.3f)", c.Box, c.Confidence)

		spans, err := e.reader.Read(ctx, crop, ocr.RegionParams)
		if err != nil {
			return best, err
		}
		for _, s := range spans {
			cleaned := Clean(s.Text)
			if len(cleaned) >= 4 {
				best = best.improve(cleaned, s.Confidence)
			}
		}
	}
	return best, nil
}

// combineLines joins two or more lines, in reading order, into a single plate.
func combineLines(lines []string) (Result, bool) {
	if len(lines) < 2 {
		return Result{}, false
	}
	return Result{Text: strings.Join(lines, ""), Confidence: CombinedConfidence}, true
}
