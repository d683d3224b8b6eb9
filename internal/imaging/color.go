package imaging

import (
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorFrequency is a quantized colour and the share of pixels it covers.
type ColorFrequency struct {
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// maxColorSamples bounds the pixels visited by DominantColors.
const maxColorSamples = 40000

// DominantColors returns up to count of the most frequent colours in img.
//
// Colours are quantized to 16 levels per channel, so #F0F0F0 and #FAFAFA count
// as the same colour. Large images are sampled on a regular grid.
func DominantColors(img image.Image, count int) []ColorFrequency {
	bounds := img.Bounds()
	step := 1
	for (bounds.Dx()/step)*(bounds.Dy()/step) > maxColorSamples {
		step++
	}

	counts := make(map[[3]uint8]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			key := [3]uint8{uint8((r >> 8) / 16 * 16), uint8((g >> 8) / 16 * 16), uint8((b >> 8) / 16 * 16)}
			counts[key]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for key, n := range counts {
		c := colorful.Color{R: float64(key[0]) / 255, G: float64(key[1]) / 255, B: float64(key[2]) / 255}
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(n) / float64(total) * 100,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}
	return colors
}

// PlateColor is the background colour class of an Indian registration plate.
type PlateColor string

const (
	PlateWhite   PlateColor = "white"
	PlateYellow  PlateColor = "yellow"
	PlateGreen   PlateColor = "green"
	PlateBlack   PlateColor = "black"
	PlateRed     PlateColor = "red"
	PlateUnknown PlateColor = "unknown"
)

// Category names the vehicle class the plate colour denotes.
func (c PlateColor) Category() string {
	switch c {
	case PlateWhite:
		return "private"
	case PlateYellow:
		return "commercial"
	case PlateGreen:
		return "electric"
	case PlateBlack:
		return "self-drive rental"
	case PlateRed:
		return "temporary"
	}
	return ""
}

// ClassifyPlateColor classifies the background of a plate crop by its most
// frequent colour.
func ClassifyPlateColor(img image.Image) PlateColor {
	dominant := DominantColors(img, 1)
	if len(dominant) == 0 {
		return PlateUnknown
	}
	c, err := colorful.Hex(dominant[0].Hex)
	if err != nil {
		return PlateUnknown
	}
	return classifyHSL(c.Hsl())
}

func classifyHSL(h, s, l float64) PlateColor {
	switch {
	case l < 0.2:
		return PlateBlack
	case s < 0.25:
		if l > 0.6 {
			return PlateWhite
		}
		return PlateUnknown
	case h >= 40 && h <= 70:
		return PlateYellow
	case h >= 80 && h <= 170:
		return PlateGreen
	case h < 15 || h > 340:
		return PlateRed
	}
	return PlateUnknown
}
