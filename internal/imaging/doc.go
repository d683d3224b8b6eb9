// Package imaging provides the image plumbing used by the plate detection pipeline.
//
// This package decodes request payloads into image.Image values, caches images
// loaded from disk, and derives the variants the detection strategies consume:
// border-trimmed copies, box crops, grayscale conversions and contrast-enhanced
// images. All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases rightward,
// and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// Derived images are always rebased so their bounds start at (0,0).
//
// # Immutability
//
// Source images are never modified. Every function that transforms an image returns
// an independent copy, so a decoded request image can be shared by all strategies
// of one evaluation without copying up front.
//
// # Decoding
//
// Decode accepts raw PNG, JPEG or GIF bytes. DecodeBase64 additionally accepts a
// data URI prefix ("data:image/png;base64,...") as sent by browser clients.
// Failures are reported as ErrNoImage (empty payload) or ErrInvalidImage (bytes that
// do not decode), both checkable with errors.Is.
//
// # Contrast Enhancement
//
// EqualizeLuminance runs OpenCV's CLAHE (through gocv) on the L channel of the Lab
// representation of an image, leaving chroma intact. gocv needs OpenCV 4 installed
// at build time. Preprocess chains grayscale conversion, median denoising, CLAHE and a 3x3
// sharpening kernel for the localizer pass of the high-accuracy detector.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are stateless
// and can be called concurrently.
package imaging
