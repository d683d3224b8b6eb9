package api

import (
	"context"
	"errors"
	"image"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/plate-service/internal/imaging"
	"github.com/ironsheep/plate-service/internal/logging"
	"github.com/ironsheep/plate-service/internal/plate"
)

// Detector is what the handlers need from the service.
type Detector interface {
	DetectBikeNumber(ctx context.Context, img image.Image) (plate.Result, error)
	DetectNumberPlate(ctx context.Context, img image.Image) (*plate.Detection, error)
	Backends() (reader, localizer string)
}

// Handler serves the detection endpoints.
type Handler struct {
	detector Detector
}

// NewHandler creates a Handler. detector is shared by all requests and must be
// safe for concurrent use.
func NewHandler(detector Detector) *Handler {
	return &Handler{detector: detector}
}

// detectRequest is the body of both detection endpoints.
type detectRequest struct {
	Image string `json:"image"`
}

// placeholder is reported as the plate when none was read.
const placeholder = "-"

// readImage binds the request body and decodes its image. Errors are
// imaging.ErrNoImage, imaging.ErrInvalidImage or a *http.MaxBytesError.
func readImage(c *gin.Context) (image.Image, error) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, tooLarge
		}
		return nil, imaging.ErrNoImage
	}
	return imaging.DecodeBase64(req.Image)
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

// DetectBikeNumber handles POST /detect-bike-number.
func (h *Handler) DetectBikeNumber(c *gin.Context) {
	ctx := c.Request.Context()

	img, err := readImage(c)
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "Image too large", "bike_number": placeholder})
			return
		}
		logging.Printf(ctx, "No usable image: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"success":     false,
			"message":     "No image data provided",
			"bike_number": placeholder,
		})
		return
	}

	b := img.Bounds()
	logging.Printf(ctx, "Detecting bike number on %dx%d image", b.Dx(), b.Dy())

	result, err := h.detector.DetectBikeNumber(ctx, img)
	if err != nil {
		logging.Printf(ctx, "Detection error: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"success":     false,
			"error":       err.Error(),
			"bike_number": placeholder,
		})
		return
	}

	switch {
	case result.Found() && result.IsConfident():
		logging.Printf(ctx, "Detected %s (confidence %.3f)", result.Text, result.Confidence)
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"bike_number": result.Text,
			"confidence":  result.Confidence,
			"message":     "Detected: " + result.Text,
		})
	case result.Found():
		logging.Printf(ctx, "Low confidence detection %s (confidence %.3f)", result.Text, result.Confidence)
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"bike_number": result.Text,
			"confidence":  result.Confidence,
			"message":     "Low confidence: " + result.Text,
		})
	default:
		logging.Printf(ctx, "No number plate detected")
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"bike_number": placeholder,
			"message":     "No number plate detected",
		})
	}
}

// DetectNumberPlate handles POST /detect-number-plate.
func (h *Handler) DetectNumberPlate(c *gin.Context) {
	ctx := c.Request.Context()

	img, err := readImage(c)
	switch {
	case err == nil:
	case isTooLarge(err):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "Image too large"})
		return
	case errors.Is(err, imaging.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid image data"})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No image data provided"})
		return
	}

	logging.Printf(ctx, "Running high-accuracy detection")

	det, err := h.detector.DetectNumberPlate(ctx, img)
	if err != nil {
		logging.Printf(ctx, "Error in number plate detection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Detection failed: " + err.Error(),
		})
		return
	}

	if det == nil || det.Text == "" {
		c.JSON(http.StatusOK, gin.H{
			"success":         false,
			"detected_number": "",
			"confidence":      0,
			"message":         "No number plate detected with high confidence",
		})
		return
	}

	logging.Printf(ctx, "Detected %s (confidence %.2f)", det.Text, det.Confidence)
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"detected_number":      det.Text,
		"confidence":           det.Confidence,
		"raw_text":             det.RawText,
		"detection_confidence": det.DetectionConfidence,
		"ocr_confidence":       det.OCRConfidence,
		"message":              "High-confidence number plate detected",
	})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	reader, localizer := h.detector.Backends()
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"message":       "Plate detection service running",
		"models_loaded": true,
		"reader":        reader,
		"localizer":     localizer,
	})
}
