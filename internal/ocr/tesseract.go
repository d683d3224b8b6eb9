package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/plate-service/internal/imaging"
)

// Tesseract reads text with the local Tesseract engine through gosseract.
type Tesseract struct {
	languages      []string
	tessdataPrefix string
	clientFactory  func() *gosseract.Client
}

// NewTesseract creates a Tesseract reader. Languages default to "eng"; an empty
// tessdataPrefix keeps the engine's own lookup.
func NewTesseract(tessdataPrefix string, languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{
		languages:      languages,
		tessdataPrefix: tessdataPrefix,
		clientFactory:  gosseract.NewClient,
	}
}

// Name implements Reader.
func (t *Tesseract) Name() string { return "tesseract" }

// Read implements Reader.
//
// The image is preprocessed according to p, encoded as PNG and handed to a fresh
// client. Confidences reported by Tesseract (0-100) are scaled to 0-1 and boxes
// are mapped back to img's coordinates.
func (t *Tesseract) Read(ctx context.Context, img image.Image, p Params) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared, factor := prepare(img, p)
	data, err := imaging.EncodePNG(prepared)
	if err != nil {
		return nil, err
	}

	client := t.clientFactory()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(t.languages...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if p.Mode != 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(p.Mode)); err != nil {
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if p.Whitelist != "" {
		if err := client.SetWhitelist(p.Whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	level := gosseract.RIL_TEXTLINE
	if p.Level == LevelWord {
		level = gosseract.RIL_WORD
	}
	boxes, err := client.GetBoundingBoxes(level)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	origin := img.Bounds().Min
	spans := make([]Span, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		confidence := float64(box.Confidence) / 100.0
		if confidence < p.MinConfidence {
			continue
		}
		spans = append(spans, Span{
			Box:        unscale(box.Box, factor, origin),
			Text:       text,
			Confidence: confidence,
		})
	}
	return spans, nil
}

// Info contains information about the OCR backend.
//
// Version is empty for hosted backends.
type Info struct {
	Backend   string   `json:"backend"`
	Version   string   `json:"version,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

// Describer is implemented by readers that can report backend details.
type Describer interface {
	Info() Info
}

// Info reports the linked Tesseract version.
func (t *Tesseract) Info() Info {
	client := t.clientFactory()
	defer client.Close()
	return Info{
		Backend:   "gosseract",
		Version:   client.Version(),
		Languages: t.languages,
	}
}
