package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// BorderTrim describes how much of each edge to discard, as a fraction of the
// image dimension. Vertical applies to the top and bottom edges (fraction of the
// height), Horizontal to the left and right edges (fraction of the width).
type BorderTrim struct {
	Vertical   float64 `json:"vertical"`
	Horizontal float64 `json:"horizontal"`
}

// DefaultBorderTrim removes the physical plate frame: 8% of the height from the
// top and bottom, 6% of the width from the left and right.
var DefaultBorderTrim = BorderTrim{Vertical: 0.08, Horizontal: 0.06}

// TrimBorder returns a copy of img with the configured margins removed.
//
// If the trim would leave no pixels (tiny crops), the image is returned unchanged.
func TrimBorder(img image.Image, trim BorderTrim) image.Image {
	b := img.Bounds()
	dy := int(float64(b.Dy()) * trim.Vertical)
	dx := int(float64(b.Dx()) * trim.Horizontal)

	r := image.Rect(b.Min.X+dx, b.Min.Y+dy, b.Max.X-dx, b.Max.Y-dy)
	if r.Empty() {
		return img
	}
	return imaging.Crop(img, r)
}

// CropBox extracts box from img as an independent image rebased to (0,0).
//
// The box is clamped to the image bounds. The second return value is false when
// nothing of the box lies inside the image.
func CropBox(img image.Image, box image.Rectangle) (image.Image, bool) {
	r := box.Canon().Intersect(img.Bounds())
	if r.Empty() {
		return nil, false
	}
	return imaging.Crop(img, r), true
}

// ExpandBox grows box by margin pixels on every side, clamped to bounds.
func ExpandBox(box image.Rectangle, margin int, bounds image.Rectangle) image.Rectangle {
	return image.Rect(
		box.Min.X-margin,
		box.Min.Y-margin,
		box.Max.X+margin,
		box.Max.Y+margin,
	).Intersect(bounds)
}

// Scale resizes img by factor using Lanczos resampling. A factor of 1 (or a
// non-positive factor) returns img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1.0 {
		return img
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 || h < 1 {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// RatioBox converts a box given as fractions of the image size (left, top,
// width, height in 0..1) into pixel coordinates within bounds.
func RatioBox(left, top, width, height float64, bounds image.Rectangle) image.Rectangle {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	return image.Rect(
		int(left*w),
		int(top*h),
		int((left+width)*w+0.5),
		int((top+height)*h+0.5),
	).Add(bounds.Min).Intersect(bounds)
}
