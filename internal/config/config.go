// Package config loads service settings from the environment and an optional
// .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPort is the HTTP port used when PORT is unset.
const DefaultPort = "5001"

// Reader and localizer backends.
const (
	ReaderTesseract   = "tesseract"
	ReaderRekognition = "rekognition"

	LocalizerEdge        = "edge"
	LocalizerRemote      = "remote"
	LocalizerRekognition = "rekognition"
)

// Config holds the service settings. Load and FromEnv fill every field, with
// defaults for unset variables.
type Config struct {
	// Port is the HTTP listen port (PORT).
	Port string

	// GinMode is passed to gin.SetMode (GIN_MODE).
	GinMode string

	// LogLevel is "info" or "debug" (PLATE_LOG_LEVEL).
	LogLevel string

	// Reader and Localizer select the backends (PLATE_READER, PLATE_LOCALIZER).
	Reader    string
	Localizer string

	// OCRLanguages are the Tesseract languages, "+" separated in OCR_LANGUAGE.
	OCRLanguages   []string
	TessdataPrefix string

	// InferenceURL is the predict endpoint of the remote localizer.
	InferenceURL     string
	InferenceTimeout time.Duration

	AWSRegion string

	// RekognitionLabels are the DetectLabels names accepted as plates.
	RekognitionLabels []string

	// TrimBorders enables the plate-frame trim before the cascade.
	TrimBorders bool

	// MaxImageBytes limits request bodies (MAX_IMAGE_MB).
	MaxImageBytes int64

	// DetectTimeout bounds one detection; zero means no limit.
	DetectTimeout time.Duration
}

// Debug reports whether verbose strategy tracing is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	maxMB := getInt("MAX_IMAGE_MB", 20)

	return &Config{
		Port:     getEnv("PORT", DefaultPort),
		GinMode:  getEnv("GIN_MODE", "release"),
		LogLevel: getEnv("PLATE_LOG_LEVEL", "info"),

		Reader:    strings.ToLower(getEnv("PLATE_READER", ReaderTesseract)),
		Localizer: strings.ToLower(getEnv("PLATE_LOCALIZER", LocalizerEdge)),

		OCRLanguages:   splitList(getEnv("OCR_LANGUAGE", "eng"), "+"),
		TessdataPrefix: getEnv("TESSDATA_PREFIX", ""),

		InferenceURL:     getEnv("INFERENCE_URL", "http://localhost:5000/predict"),
		InferenceTimeout: getDuration("INFERENCE_TIMEOUT", 30*time.Second),

		AWSRegion:         getEnv("AWS_REGION", "ap-south-1"),
		RekognitionLabels: splitList(getEnv("REKOGNITION_LABELS", "License Plate"), ","),

		TrimBorders:   getBool("PLATE_TRIM_BORDERS", true),
		MaxImageBytes: int64(maxMB) << 20,
		DetectTimeout: getDuration("DETECT_TIMEOUT", 0),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("30s") and plain seconds ("30").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

func splitList(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
