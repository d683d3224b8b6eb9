// Package service wires the configured reader and localizer into the detection
// pipelines. A Service is built once at startup and shared by all requests.
package service

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"

	"github.com/ironsheep/plate-service/internal/config"
	"github.com/ironsheep/plate-service/internal/detection"
	"github.com/ironsheep/plate-service/internal/imaging"
	"github.com/ironsheep/plate-service/internal/ocr"
	"github.com/ironsheep/plate-service/internal/plate"
)

// Service is the application context: model handles and the pipelines built on
// them. Nothing in it is mutated after New returns.
type Service struct {
	Reader    ocr.Reader
	Localizer detection.Localizer

	evaluator *plate.Evaluator
	accurate  *plate.AccurateDetector
	cfg       *config.Config
}

// New builds the reader and localizer selected by cfg.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	var reader ocr.Reader
	switch cfg.Reader {
	case config.ReaderTesseract, "":
		reader = ocr.NewTesseract(cfg.TessdataPrefix, cfg.OCRLanguages...)
	case config.ReaderRekognition:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		reader = ocr.NewRekognition(rekognition.NewFromConfig(c))
	default:
		return nil, fmt.Errorf("unknown reader %q", cfg.Reader)
	}

	var localizer detection.Localizer
	switch cfg.Localizer {
	case config.LocalizerEdge, "":
		localizer = detection.NewEdgeLocalizer()
	case config.LocalizerRemote:
		remote := detection.NewRemoteLocalizer(cfg.InferenceURL, cfg.InferenceTimeout)
		if err := remote.CheckHealth(ctx); err != nil {
			log.Printf("Warning: inference service not healthy yet: %v", err)
		}
		localizer = remote
	case config.LocalizerRekognition:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		localizer = detection.NewRekognitionLocalizer(rekognition.NewFromConfig(c), cfg.RekognitionLabels...)
	default:
		return nil, fmt.Errorf("unknown localizer %q", cfg.Localizer)
	}

	return NewWithBackends(cfg, reader, localizer), nil
}

// NewWithBackends builds a Service around existing backends.
func NewWithBackends(cfg *config.Config, reader ocr.Reader, localizer detection.Localizer) *Service {
	opts := plate.DefaultOptions()
	opts.TrimBorders = cfg.TrimBorders

	return &Service{
		Reader:    reader,
		Localizer: localizer,
		evaluator: plate.NewEvaluator(reader, localizer, opts),
		accurate:  plate.NewAccurateDetector(reader, localizer),
		cfg:       cfg,
	}
}

// DetectBikeNumber runs the detection cascade.
func (s *Service) DetectBikeNumber(ctx context.Context, img image.Image) (plate.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.evaluator.Evaluate(ctx, img)
}

// DetectNumberPlate runs the high-accuracy detector. A nil Detection means no
// plate cleared the confidence floor.
func (s *Service) DetectNumberPlate(ctx context.Context, img image.Image) (*plate.Detection, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.accurate.Detect(ctx, img)
}

// ClassifyColor reports the background colour of the plate at box in img.
func (s *Service) ClassifyColor(img image.Image, box image.Rectangle) imaging.PlateColor {
	crop, ok := imaging.CropBox(img, box)
	if !ok {
		return imaging.PlateUnknown
	}
	return imaging.ClassifyPlateColor(crop)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.DetectTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.DetectTimeout)
	}
	return context.WithCancel(ctx)
}

// Backends names the reader and localizer in use.
func (s *Service) Backends() (reader, localizer string) {
	return s.Reader.Name(), s.Localizer.Name()
}

// ReaderInfo describes the text reader, including the engine version when the
// backend can report one.
func (s *Service) ReaderInfo() ocr.Info {
	if d, ok := s.Reader.(ocr.Describer); ok {
		return d.Info()
	}
	return ocr.Info{Backend: s.Reader.Name()}
}
