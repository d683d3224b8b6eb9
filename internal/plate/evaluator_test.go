package plate

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/plate-service/internal/detection"
	"github.com/ironsheep/plate-service/internal/imaging"
	"github.com/ironsheep/plate-service/internal/ocr"
)

func newTestEvaluator(r ocr.Reader, l detection.Localizer) *Evaluator {
	return NewEvaluator(r, l, DefaultOptions())
}

func TestEvaluate_DirectReadAdoption(t *testing.T) {
	tests := []struct {
		name  string
		spans []ocr.Span
		want  Result
	}{
		{
			name:  "plate with letters and digits",
			spans: []ocr.Span{span("MH 12 AB 1234", 0.6)},
			want:  Result{Text: "MH12AB1234", Confidence: 0.6},
		},
		{
			name: "highest confidence wins",
			spans: []ocr.Span{
				span("KA01AB12345", 0.5),
				span("KA02CD56789", 0.7),
				span("KA03EF99999", 0.6),
			},
			want: Result{Text: "KA02CD56789", Confidence: 0.7},
		},
		{
			name:  "twelve characters accepted",
			spans: []ocr.Span{span("AB12CD34EF56", 0.4)},
			want:  Result{Text: "AB12CD34EF56", Confidence: 0.4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{spans: map[string][]ocr.Span{ocr.FullImageParams.Name: tt.spans}}
			localizer := &fakeLocalizer{}

			got, err := newTestEvaluator(reader, localizer).Evaluate(context.Background(), testImage(100, 60))
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if reader.called(ocr.EnhancedParams.Name) != 0 || len(localizer.thresholds) != 0 {
				t.Error("later strategies should not run after a direct hit")
			}
		})
	}
}

func TestEvaluate_DirectReadRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"letters only", "ABCDEFGH"},
		{"digits only", "12345678"},
		{"too short", "AB12"},
		{"too long", "AB12CD34EF567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{spans: map[string][]ocr.Span{
				ocr.FullImageParams.Name: {span(tt.text, 0.95)},
			}}

			got, err := newTestEvaluator(reader, &fakeLocalizer{}).Evaluate(context.Background(), testImage(100, 60))
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got.Found() {
				t.Errorf("%q should not be adopted, got %+v", tt.text, got)
			}
		})
	}
}

func TestEvaluate_CombineOverridesEverything(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.FullImageParams.Name: {
			span("KA01AB12345", 0.99), // adopted, too long for a line
			span("mh-12", 0.2),
			span("ab 1234", 0.3),
		},
	}}

	got, err := newTestEvaluator(reader, &fakeLocalizer{}).Evaluate(context.Background(), testImage(100, 60))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	want := Result{Text: "MH12AB1234", Confidence: CombinedConfidence}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Confidence != 0.90 {
		t.Errorf("combined confidence must be exactly 0.90, got %v", got.Confidence)
	}
}

func TestEvaluate_CombineAfterFallbackStrategies(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.FullImageParams.Name: {span("ABC", 0.1), span("DEF", 0.1), span("GHI", 0.1)},
		ocr.EnhancedParams.Name:  {span("WXYZ", 0.8)},
	}}

	got, err := newTestEvaluator(reader, &fakeLocalizer{}).Evaluate(context.Background(), testImage(100, 60))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got.Text != "ABCDEFGHI" || got.Confidence != CombinedConfidence {
		t.Errorf("got %+v, want ABCDEFGHI at 0.90", got)
	}
	if reader.called(ocr.EnhancedParams.Name) != 1 {
		t.Error("enhanced read should still run before the combine pass")
	}
}

func TestEvaluate_SingleLineDoesNotCombine(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.FullImageParams.Name: {span("ABC", 0.5)},
	}}

	got, err := newTestEvaluator(reader, &fakeLocalizer{}).Evaluate(context.Background(), testImage(100, 60))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got != (Result{}) {
		t.Errorf("got %+v, want empty result", got)
	}
}

func TestEvaluate_LineLengthBounds(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.FullImageParams.Name: {
			span("AB", 0.1),          // too short for a line
			span("ABCDEFGHIJK", 0.1), // too long for a line
			span("ABC", 0.1),
			span("ABCDEFGHIJ", 0.1),
		},
	}}

	got, err := newTestEvaluator(reader, &fakeLocalizer{}).Evaluate(context.Background(), testImage(100, 60))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got.Text != "ABCABCDEFGHIJ" {
		t.Errorf("got %q, want ABCABCDEFGHIJ", got.Text)
	}
}

func TestEvaluate_EnhancedRead(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.EnhancedParams.Name: {span("ab", 0.9), span("AB12", 0.3), span("WXYZ", 0.25)},
	}}
	localizer := &fakeLocalizer{}

	got, err := newTestEvaluator(reader, localizer).Evaluate(context.Background(), testImage(100, 60))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	want := Result{Text: "AB12", Confidence: 0.3}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(localizer.thresholds) != 0 {
		t.Error("localizer should not run after an enhanced hit")
	}
}

// The enhanced read drops the letter-and-digit requirement of the direct read.
func TestEvaluate_EnhancedReadAcceptsSingleClassTokens(t *testing.T) {
	tests := []struct {
		name  string
		spans []ocr.Span
		want  Result
	}{
		{"letters only", []ocr.Span{span("ABCD", 0.5)}, Result{Text: "ABCD", Confidence: 0.5}},
		{"digits only", []ocr.Span{span("12 34", 0.45)}, Result{Text: "1234", Confidence: 0.45}},
		{"letters beat mixed", []ocr.Span{span("KA12", 0.2), span("WXYZ", 0.6)}, Result{Text: "WXYZ", Confidence: 0.6}},
		{"three characters rejected", []ocr.Span{span("ABC", 0.9)}, Result{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{spans: map[string][]ocr.Span{ocr.EnhancedParams.Name: tt.spans}}

			got, err := newTestEvaluator(reader, &fakeLocalizer{}).Evaluate(context.Background(), testImage(100, 60))
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

type stubDetectText struct {
	out   *rekognition.DetectTextOutput
	input *rekognition.DetectTextInput
}

func (s *stubDetectText) DetectText(_ context.Context, in *rekognition.DetectTextInput, _ ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	s.input = in
	return s.out, nil
}

func textLine(text string, confidence float32) types.TextDetection {
	return types.TextDetection{
		Type:         types.TextTypesLine,
		DetectedText: aws.String(text),
		Confidence:   aws.Float32(confidence),
	}
}

// Lines read with low confidence by a real reader still reach the multi-line join.
func TestEvaluate_LowConfidenceLinesCombine(t *testing.T) {
	api := &stubDetectText{out: &rekognition.DetectTextOutput{
		TextDetections: []types.TextDetection{textLine("MH 12", 15), textLine("AB 1234", 15)},
	}}

	got, err := newTestEvaluator(ocr.NewRekognition(api), &fakeLocalizer{}).Evaluate(context.Background(), testImage(120, 60))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	want := Result{Text: "MH12AB1234", Confidence: CombinedConfidence}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if api.input.Filters != nil {
		t.Errorf("direct read should not filter by confidence: %+v", api.input.Filters)
	}
}

// A plate-shaped token below the success threshold is adopted, not discarded.
func TestEvaluate_LowConfidencePlateAdopted(t *testing.T) {
	api := &stubDetectText{out: &rekognition.DetectTextOutput{
		TextDetections: []types.TextDetection{textLine("KA01AB1234", 8)},
	}}

	got, err := newTestEvaluator(ocr.NewRekognition(api), &fakeLocalizer{}).Evaluate(context.Background(), testImage(120, 60))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got.Text != "KA01AB1234" || !approxEqual(got.Confidence, float64(float32(8))/100) {
		t.Errorf("got %+v", got)
	}
	if got.IsConfident() {
		t.Error("an 8% reading should be reported as low confidence")
	}
}

func TestEvaluate_RegionRead(t *testing.T) {
	box := image.Rect(20, 10, 70, 35)
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.RegionParams.Name: {span("xy-zw", 0.5), span("abc", 0.9)},
	}}
	localizer := &fakeLocalizer{byThreshold: map[float64][]detection.Candidate{
		RegionLocalizerConfidence: {{Box: box, Confidence: 0.8}},
	}}

	got, err := newTestEvaluator(reader, localizer).Evaluate(context.Background(), testImage(100, 100))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if want := (Result{Text: "XYZW", Confidence: 0.5}); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(localizer.thresholds) != 1 || localizer.thresholds[0] != 0.3 {
		t.Errorf("localizer thresholds: got %v, want [0.3]", localizer.thresholds)
	}

	// The crop is border-trimmed before reading: 50x25 -> 44x21.
	last := reader.calls[len(reader.calls)-1]
	if last.params != ocr.RegionParams.Name || last.bounds.Dx() != 44 || last.bounds.Dy() != 21 {
		t.Errorf("region read: got %+v, want 44x21 crop", last)
	}
}

func TestEvaluate_RegionOutsideImageSkipped(t *testing.T) {
	reader := &fakeReader{}
	localizer := &fakeLocalizer{byThreshold: map[float64][]detection.Candidate{
		RegionLocalizerConfidence: {{Box: image.Rect(500, 500, 600, 600), Confidence: 0.9}},
	}}

	got, err := newTestEvaluator(reader, localizer).Evaluate(context.Background(), testImage(100, 100))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got.Found() || reader.called(ocr.RegionParams.Name) != 0 {
		t.Errorf("out-of-image box should be skipped: %+v", got)
	}
}

func TestEvaluate_NothingFound(t *testing.T) {
	got, err := newTestEvaluator(&fakeReader{}, &fakeLocalizer{}).Evaluate(context.Background(), testImage(100, 60))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got != (Result{Text: "", Confidence: 0}) {
		t.Errorf("got %+v, want zero result", got)
	}
	if got.Found() || got.IsConfident() {
		t.Error("empty result must report not detected")
	}
}

func TestEvaluate_ErrorsAbort(t *testing.T) {
	boom := errors.New("engine crashed")

	tests := []struct {
		name      string
		reader    *fakeReader
		localizer *fakeLocalizer
	}{
		{"direct read", &fakeReader{errs: map[string]error{ocr.FullImageParams.Name: boom}}, &fakeLocalizer{}},
		{"enhanced read", &fakeReader{errs: map[string]error{ocr.EnhancedParams.Name: boom}}, &fakeLocalizer{}},
		{"localizer", &fakeReader{}, &fakeLocalizer{err: boom}},
		{
			"region read",
			&fakeReader{errs: map[string]error{ocr.RegionParams.Name: boom}},
			&fakeLocalizer{byThreshold: map[float64][]detection.Candidate{
				RegionLocalizerConfidence: {{Box: image.Rect(0, 0, 50, 30), Confidence: 0.5}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestEvaluator(tt.reader, tt.localizer).Evaluate(context.Background(), testImage(100, 60))
			if !errors.Is(err, boom) {
				t.Errorf("expected wrapped error, got %v", err)
			}
			if got != (Result{}) {
				t.Errorf("no partial result expected, got %+v", got)
			}
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.FullImageParams.Name: {span("GJ05", 0.4), span("CD 7788", 0.6)},
	}}
	e := newTestEvaluator(reader, &fakeLocalizer{})
	img := testImage(100, 60)

	first, err := e.Evaluate(context.Background(), img)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	second, err := e.Evaluate(context.Background(), img)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestEvaluate_BorderTrim(t *testing.T) {
	tests := []struct {
		name         string
		opts         Options
		wantW, wantH int
	}{
		{"trim on", DefaultOptions(), 88, 84},
		{"trim off", Options{Trim: imaging.DefaultBorderTrim}, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{}
			_, err := NewEvaluator(reader, &fakeLocalizer{}, tt.opts).Evaluate(context.Background(), testImage(100, 100))
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			b := reader.calls[0].bounds
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("direct read saw %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestEvaluate_TEST123(t *testing.T) {
	reader := &fakeReader{spans: map[string][]ocr.Span{
		ocr.FullImageParams.Name: {span("TEST123", 0.87)},
	}}

	got, err := newTestEvaluator(reader, &fakeLocalizer{}).Evaluate(context.Background(), renderText("TEST123", 4))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got.Text != "TEST123" || got.Confidence != 0.87 {
		t.Errorf("got %+v, want TEST123 at 0.87", got)
	}
	if !got.IsConfident() {
		t.Error("0.87 should clear the success threshold")
	}
}

// renderText draws text black on white with basicfont, magnified by scale.
func renderText(text string, scale int) *image.RGBA {
	w, h := len(text)*7+40, 40
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(20), Y: fixed.I(25)},
	}
	d.DrawString(text)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h*scale; y++ {
		for x := 0; x < w*scale; x++ {
			img.Set(x, y, small.At(x/scale, y/scale))
		}
	}
	return img
}

func TestEvaluate_TEST123_Tesseract(t *testing.T) {
	e := NewEvaluator(ocr.NewTesseract(""), detection.NewEdgeLocalizer(), Options{})

	got, err := e.Evaluate(context.Background(), renderText("TEST123", 4))
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	if got.Text != "TEST123" {
		// Bitmap fonts are not guaranteed to read perfectly.
		if !strings.Contains(got.Text, "TEST") {
			t.Logf("rendered TEST123 read as %q (%.3f)", got.Text, got.Confidence)
		}
		return
	}
	if got.Confidence <= 0 || got.Confidence > 1 {
		t.Errorf("confidence out of range: %f", got.Confidence)
	}
}
