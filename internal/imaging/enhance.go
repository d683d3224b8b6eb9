package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// CLAHE parameters used by the cascade and the high-accuracy preprocessor.
const (
	DefaultClipLimit = 3.0
	DefaultTileGrid  = 8
)

// Grayscale returns a grayscale copy of img, still in an RGB-compatible layout so
// it can be fed to anything that expects a colour image.
func Grayscale(img image.Image) image.Image {
	return imaging.Grayscale(img)
}

// AdjustContrast changes contrast by percentage (-100..100). Zero returns img as is.
func AdjustContrast(img image.Image, percentage float64) image.Image {
	if percentage == 0 {
		return img
	}
	return imaging.AdjustContrast(img, percentage)
}

// Denoise applies a 3x3 median filter, which removes salt-and-pepper noise while
// keeping character strokes sharp.
func Denoise(img image.Image) image.Image {
	return effect.Median(img, 1)
}

// Sharpen3x3 convolves img with the kernel
//
//	-1 -1 -1
//	-1  9 -1
//	-1 -1 -1
func Sharpen3x3(img image.Image) image.Image {
	k := convolution.NewKernel(3, 3)
	k.Matrix = []float64{
		-1, -1, -1,
		-1, 9, -1,
		-1, -1, -1,
	}
	return convolution.Convolve(img, k, &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: true})
}

// Preprocess builds the enhanced variant the high-accuracy detector localizes on:
// grayscale, median denoise, CLAHE and sharpening.
func Preprocess(img image.Image) (image.Image, error) {
	gray := Grayscale(img)
	denoised := Denoise(gray)
	enhanced, err := EqualizeLuminance(denoised, DefaultClipLimit, DefaultTileGrid)
	if err != nil {
		return nil, err
	}
	return Sharpen3x3(enhanced), nil
}

// EqualizeLuminance applies contrast limited adaptive histogram equalization
// (OpenCV CLAHE) to the L channel of img in Lab space. Chroma is left alone, so
// colours keep their hue. The grid is reduced for images smaller than grid pixels
// on a side.
func EqualizeLuminance(img image.Image, clipLimit float64, grid int) (image.Image, error) {
	b := img.Bounds()
	if b.Empty() {
		return image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy())), nil
	}
	grid = min(max(grid, 1), b.Dx(), b.Dy())

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("image to mat: %w", err)
	}
	defer src.Close()

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Point{X: grid, Y: grid})
	defer clahe.Close()

	lum := gocv.NewMat()
	defer lum.Close()
	clahe.Apply(channels[0], &lum)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{lum, channels[1], channels[2]}, &merged)

	out := gocv.NewMat()
	defer out.Close()
	gocv.CvtColor(merged, &out, gocv.ColorLabToBGR)

	res, err := out.ToImage()
	if err != nil {
		return nil, fmt.Errorf("mat to image: %w", err)
	}
	return res, nil
}
