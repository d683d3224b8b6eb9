package plate

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/plate-service/internal/detection"
	"github.com/ironsheep/plate-service/internal/imaging"
	"github.com/ironsheep/plate-service/internal/logging"
	"github.com/ironsheep/plate-service/internal/ocr"
)

// Thresholds of the high-accuracy detector.
const (
	RawPassConfidence      = 0.7
	EnhancedPassConfidence = 0.6
	ReaderFloor            = 0.4
	BoxMargin              = 5
)

// Detection is a plate found by the AccurateDetector.
type Detection struct {
	// Text is the registration number as returned by CleanPlate.
	Text string `json:"text"`

	// Confidence is the mean of DetectionConfidence and OCRConfidence.
	Confidence float64 `json:"confidence"`

	RawText             string          `json:"raw_text"`
	DetectionConfidence float64         `json:"detection_confidence"`
	OCRConfidence       float64         `json:"ocr_confidence"`
	Box                 image.Rectangle `json:"box"`
}

// AccurateDetector reads only localized plates and scores every reading by both
// the localizer and the reader.
//
// The localizer runs on the raw image and on a preprocessed copy, or on the raw
// image again when preprocessing fails. Each box, grown
// by BoxMargin, is read twice from the raw image: once in colour and once in
// grayscale. Readings above ReaderFloor that clean to a plate are kept; the best
// one wins.
type AccurateDetector struct {
	reader     ocr.Reader
	localizer  detection.Localizer
	preprocess func(image.Image) (image.Image, error)
}

// NewAccurateDetector creates an AccurateDetector.
func NewAccurateDetector(reader ocr.Reader, localizer detection.Localizer) *AccurateDetector {
	return &AccurateDetector{reader: reader, localizer: localizer, preprocess: imaging.Preprocess}
}

// Detect returns the best plate in img, or nil when no reading qualifies.
func (d *AccurateDetector) Detect(ctx context.Context, img image.Image) (*Detection, error) {
	raw, err := d.localizer.Detect(ctx, img, RawPassConfidence)
	if err != nil {
		return nil, fmt.Errorf("localize raw image: %w", err)
	}
	prepared, err := d.preprocess(img)
	if err != nil {
		logging.Printf(ctx, "Preprocessing failed, localizing on the raw image: %v", err)
		prepared = img
	}
	enhanced, err := d.localizer.Detect(ctx, prepared, EnhancedPassConfidence)
	if err != nil {
		return nil, fmt.Errorf("localize preprocessed image: %w", err)
	}
	logging.Debugf(ctx, "high-accuracy: %d raw and %d enhanced boxes", len(raw), len(enhanced))

	bounds := img.Bounds()
	var all []Detection
	for _, c := range append(raw, enhanced...) {
		box := imaging.ExpandBox(c.Box, BoxMargin, bounds)
		crop, ok := imaging.CropBox(img, box)
		if !ok {
			continue
		}

		for _, params := range []ocr.Params{ocr.AccurateColorParams, ocr.AccurateGrayParams} {
			spans, err := d.reader.Read(ctx, crop, params)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", params.Name, err)
			}
			for _, s := range spans {
				if s.Confidence <= ReaderFloor {
					continue
				}
				text := CleanPlate(s.Text)
				if text == "" {
					continue
				}
				all = append(all, Detection{
					Text:                text,
					Confidence:          (c.Confidence + s.Confidence) / 2,
					RawText:             s.Text,
					DetectionConfidence: c.Confidence,
					OCRConfidence:       s.Confidence,
					Box:                 box,
				})
			}
		}
	}

	return selectBest(all), nil
}

// selectBest returns the best reading, earliest first on ties. Keeping the best
// reading per distinct text and then the best text selects the same reading.
func selectBest(all []Detection) *Detection {
	if len(all) == 0 {
		return nil
	}
	best := all[0]
	for _, det := range all[1:] {
		if det.Confidence > best.Confidence {
			best = det
		}
	}
	return &best
}
