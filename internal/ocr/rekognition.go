package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/ironsheep/plate-service/internal/imaging"
)

// DetectTextAPI is the part of the Rekognition client the reader needs.
type DetectTextAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// Rekognition reads text with AWS Rekognition DetectText.
//
// Mode and Whitelist have no Rekognition equivalent and are ignored; the other
// Params fields behave as for Tesseract.
type Rekognition struct {
	client DetectTextAPI
}

// NewRekognition wraps a Rekognition client.
func NewRekognition(client DetectTextAPI) *Rekognition {
	return &Rekognition{client: client}
}

// Name implements Reader.
func (r *Rekognition) Name() string { return "rekognition" }

// Info implements Describer.
func (r *Rekognition) Info() Info { return Info{Backend: "aws-rekognition"} }

// Read implements Reader.
func (r *Rekognition) Read(ctx context.Context, img image.Image, p Params) ([]Span, error) {
	prepared, _ := prepare(img, p)
	data, err := imaging.EncodePNG(prepared)
	if err != nil {
		return nil, err
	}

	input := &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: data},
	}
	if p.MinConfidence > 0 {
		input.Filters = &types.DetectTextFilters{
			WordFilter: &types.DetectionFilter{
				MinConfidence: aws.Float32(float32(p.MinConfidence * 100)),
			},
		}
	}

	out, err := r.client.DetectText(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectText: %w", err)
	}

	want := types.TextTypesLine
	if p.Level == LevelWord {
		want = types.TextTypesWord
	}

	b := img.Bounds()
	spans := make([]Span, 0, len(out.TextDetections))
	for _, d := range out.TextDetections {
		if d.Type != want || d.DetectedText == nil || d.Confidence == nil {
			continue
		}
		confidence := float64(*d.Confidence) / 100.0
		if confidence < p.MinConfidence {
			continue
		}
		spans = append(spans, Span{
			Box:        relativeBox(d.Geometry, b),
			Text:       *d.DetectedText,
			Confidence: confidence,
		})
	}
	return spans, nil
}

// relativeBox converts a Rekognition ratio box into pixel coordinates of bounds.
func relativeBox(g *types.Geometry, bounds image.Rectangle) image.Rectangle {
	if g == nil || g.BoundingBox == nil {
		return image.Rectangle{}
	}
	bb := g.BoundingBox
	return imaging.RatioBox(
		float64(aws.ToFloat32(bb.Left)),
		float64(aws.ToFloat32(bb.Top)),
		float64(aws.ToFloat32(bb.Width)),
		float64(aws.ToFloat32(bb.Height)),
		bounds,
	)
}
