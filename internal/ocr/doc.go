// Package ocr provides the Text Reader used by the plate detection pipeline.
//
// A Reader turns an image into text spans: a piece of recognized text, its bounding
// box in the coordinates of the image that was passed in, and a confidence score in
// [0, 1]. Two backends are available:
//
//   - Tesseract: local OCR via gosseract/v2 (default)
//   - Rekognition: AWS Rekognition DetectText
//
// # Parameter Sets
//
// Every read takes a Params value. The detection cascade uses a fixed preset per
// strategy (FullImageParams, EnhancedParams, RegionParams) and the high-accuracy
// detector two more (AccurateColorParams, AccurateGrayParams). A preset controls:
//   - Level: line-level or word-level spans
//   - Mode: Tesseract page segmentation mode
//   - MinConfidence: spans below this score are dropped (the cascade presets keep all)
//   - Magnify: upscale factor applied before recognition (boxes are scaled back)
//   - Contrast and Grayscale: light preprocessing applied before recognition
//   - Whitelist: characters the engine may emit
//
// # Prerequisites
//
// The Tesseract backend links against libtesseract through cgo:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// TESSDATA_PREFIX may point at a directory holding the traineddata files.
//
// # Thread Safety
//
// Readers are safe for concurrent use. The Tesseract backend creates a fresh
// gosseract client per call because a client is not safe to share.
package ocr
