package plate

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/plate-service/internal/detection"
	"github.com/ironsheep/plate-service/internal/ocr"
)

func TestAccurateDetector_Detect(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.AccurateColorParams.Name: {span("KA 01 AB 1234", 0.9)},
		ocr.AccurateGrayParams.Name:  {span("KA01AB1234", 0.5), span("noise", 0.3)},
	}}
	localizer := &fakeLocalizer{byThreshold: map[float64][]detection.Candidate{
		RawPassConfidence:      {{Box: image.Rect(20, 20, 60, 40), Confidence: 0.8}},
		EnhancedPassConfidence: {{Box: image.Rect(30, 50, 70, 70), Confidence: 0.65}},
	}}

	det, err := NewAccurateDetector(reader, localizer).Detect(context.Background(), testImage(100, 100))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if det == nil {
		t.Fatal("expected a detection")
	}

	if det.Text != "KA01AB1234" || det.RawText != "KA 01 AB 1234" {
		t.Errorf("text: got %q (raw %q)", det.Text, det.RawText)
	}
	if !approxEqual(det.Confidence, 0.85) {
		t.Errorf("confidence: got %f, want 0.85", det.Confidence)
	}
	if det.DetectionConfidence != 0.8 || det.OCRConfidence != 0.9 {
		t.Errorf("component confidences: got %f / %f", det.DetectionConfidence, det.OCRConfidence)
	}
	if want := image.Rect(15, 15, 65, 45); det.Box != want {
		t.Errorf("box: got %v, want %v", det.Box, want)
	}

	if len(localizer.thresholds) != 2 || localizer.thresholds[0] != 0.7 || localizer.thresholds[1] != 0.6 {
		t.Errorf("localizer thresholds: got %v, want [0.7 0.6]", localizer.thresholds)
	}
	// Two boxes, two reads each.
	if len(reader.calls) != 4 {
		t.Errorf("reader calls: got %d, want 4", len(reader.calls))
	}
	if reader.calls[0].bounds.Dx() != 50 || reader.calls[0].bounds.Dy() != 30 {
		t.Errorf("first crop: got %v, want 50x30", reader.calls[0].bounds)
	}
}

func TestAccurateDetector_BoxClampedToImage(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.AccurateColorParams.Name: {span("TS09AB1234", 0.7)},
	}}
	localizer := &fakeLocalizer{byThreshold: map[float64][]detection.Candidate{
		RawPassConfidence: {{Box: image.Rect(0, 0, 10, 10), Confidence: 0.9}},
	}}

	det, err := NewAccurateDetector(reader, localizer).Detect(context.Background(), testImage(12, 12))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if det == nil || det.Box != image.Rect(0, 0, 12, 12) {
		t.Errorf("expected clamped box, got %+v", det)
	}
}

func TestAccurateDetector_ReaderFloor(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.AccurateColorParams.Name: {span("KA01AB1234", 0.4)},
		ocr.AccurateGrayParams.Name:  {span("KA01AB1234", 0.2)},
	}}
	localizer := &fakeLocalizer{byThreshold: map[float64][]detection.Candidate{
		RawPassConfidence: {{Box: image.Rect(10, 10, 50, 30), Confidence: 0.99}},
	}}

	det, err := NewAccurateDetector(reader, localizer).Detect(context.Background(), testImage(100, 100))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if det != nil {
		t.Errorf("readings at or below the floor must not qualify, got %+v", det)
	}
}

func TestAccurateDetector_UncleanableTextSkipped(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.AccurateColorParams.Name: {span("AB1", 0.95), span("GJ 05 CD 7788", 0.6)},
	}}
	localizer := &fakeLocalizer{byThreshold: map[float64][]detection.Candidate{
		RawPassConfidence: {{Box: image.Rect(10, 10, 50, 30), Confidence: 0.8}},
	}}

	det, err := NewAccurateDetector(reader, localizer).Detect(context.Background(), testImage(100, 100))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if det == nil || det.Text != "GJ05CD7788" {
		t.Errorf("got %+v, want GJ05CD7788", det)
	}
}

func TestAccurateDetector_NoBoxes(t *testing.T) {
	reader := &fakeReader{}
	det, err := NewAccurateDetector(reader, &fakeLocalizer{}).Detect(context.Background(), testImage(100, 100))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if det != nil {
		t.Errorf("expected nil, got %+v", det)
	}
	if len(reader.calls) != 0 {
		t.Error("reader should not run without boxes")
	}
}

func TestAccurateDetector_PreprocessFallback(t *testing.T) {
	reader := &fakeReader{}
	localizer := &fakeLocalizer{}
	img := testImage(40, 30)

	d := NewAccurateDetector(reader, localizer)
	d.preprocess = func(image.Image) (image.Image, error) { return nil, errors.New("no opencv") }

	if _, err := d.Detect(context.Background(), img); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(localizer.images) != 2 || localizer.images[1] != image.Image(img) {
		t.Errorf("second pass should localize on the raw image, got %d passes", len(localizer.images))
	}
}

func TestAccurateDetector_PreprocessedPass(t *testing.T) {
	localizer := &fakeLocalizer{}
	img := testImage(40, 30)

	if _, err := NewAccurateDetector(&fakeReader{}, localizer).Detect(context.Background(), img); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(localizer.images) != 2 || localizer.images[1] == image.Image(img) {
		t.Error("second pass should localize on a preprocessed copy")
	}
}

func TestAccurateDetector_Errors(t *testing.T) {
	boom := errors.New("model unavailable")

	_, err := NewAccurateDetector(&fakeReader{}, &fakeLocalizer{err: boom}).Detect(context.Background(), testImage(50, 50))
	if !errors.Is(err, boom) {
		t.Errorf("localizer error not propagated: %v", err)
	}

	reader := &fakeReader{errs: map[string]error{ocr.AccurateGrayParams.Name: boom}}
	localizer := &fakeLocalizer{byThreshold: map[float64][]detection.Candidate{
		RawPassConfidence: {{Box: image.Rect(10, 10, 40, 30), Confidence: 0.9}},
	}}
	_, err = NewAccurateDetector(reader, localizer).Detect(context.Background(), testImage(50, 50))
	if !errors.Is(err, boom) {
		t.Errorf("reader error not propagated: %v", err)
	}
}

func TestSelectBest(t *testing.T) {
	all := []Detection{
		{Text: "AAA111", Confidence: 0.5},
		{Text: "BBB222", Confidence: 0.8},
		{Text: "AAA111", Confidence: 0.8},
		{Text: "CCC333", Confidence: 0.6},
	}

	best := selectBest(all)
	if best == nil || best.Text != "BBB222" {
		t.Errorf("tie should go to the earliest reading, got %+v", best)
	}
	if selectBest(nil) != nil {
		t.Error("no readings should select nothing")
	}
}
