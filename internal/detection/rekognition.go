package detection

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/ironsheep/plate-service/internal/imaging"
)

// DetectLabelsAPI is the part of the Rekognition client the localizer needs.
type DetectLabelsAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// DefaultPlateLabels are the Rekognition labels treated as plates.
var DefaultPlateLabels = []string{"License Plate"}

// RekognitionLocalizer finds plates with AWS Rekognition DetectLabels.
//
// Only labels whose name matches one of the configured plate labels
// (case-insensitive) contribute, and only their instances carry boxes.
type RekognitionLocalizer struct {
	client DetectLabelsAPI
	labels map[string]bool
}

// NewRekognitionLocalizer wraps a Rekognition client. With no labels,
// DefaultPlateLabels is used.
func NewRekognitionLocalizer(client DetectLabelsAPI, labels ...string) *RekognitionLocalizer {
	if len(labels) == 0 {
		labels = DefaultPlateLabels
	}
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[strings.ToLower(strings.TrimSpace(l))] = true
	}
	return &RekognitionLocalizer{client: client, labels: set}
}

// Name implements Localizer.
func (r *RekognitionLocalizer) Name() string { return "rekognition" }

// Detect implements Localizer.
func (r *RekognitionLocalizer) Detect(ctx context.Context, img image.Image, minConfidence float64) ([]Candidate, error) {
	data, err := imaging.EncodeJPEG(img, 95)
	if err != nil {
		return nil, err
	}

	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: data},
		MinConfidence: aws.Float32(float32(minConfidence * 100)),
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectLabels: %w", err)
	}

	bounds := img.Bounds()
	candidates := make([]Candidate, 0)
	for _, label := range out.Labels {
		name := aws.ToString(label.Name)
		if !r.labels[strings.ToLower(name)] {
			continue
		}
		for _, inst := range label.Instances {
			if inst.BoundingBox == nil || inst.Confidence == nil {
				continue
			}
			confidence := float64(*inst.Confidence) / 100.0
			if confidence < minConfidence {
				continue
			}
			bb := inst.BoundingBox
			box := imaging.RatioBox(
				float64(aws.ToFloat32(bb.Left)),
				float64(aws.ToFloat32(bb.Top)),
				float64(aws.ToFloat32(bb.Width)),
				float64(aws.ToFloat32(bb.Height)),
				bounds,
			)
			if box.Empty() {
				continue
			}
			candidates = append(candidates, Candidate{
				Box:        box,
				Confidence: confidence,
				Label:      name,
			})
		}
	}

	sortByConfidence(candidates)
	return candidates, nil
}
