package detection

import (
	"image"
	"math"
)

// edgeThreshold is the grayscale step between neighbours that counts as an edge.
const edgeThreshold = 30.0

// edgeMap is a binary edge image plus a summed-area table for fast window counts.
type edgeMap struct {
	width, height int
	edges         [][]bool
	sums          [][]int // sums[y][x] = edge pixels in [0,x) x [0,y)
}

// detectEdges performs simple gradient-based edge detection.
//
// Pixels where |current - neighbor| > edgeThreshold (in grayscale) against the
// right or lower neighbour are marked as edges. Border pixels are never edges.
func detectEdges(img image.Image) *edgeMap {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	gray := make([][]uint8, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]uint8, width)
		for x := 0; x < width; x++ {
			gray[y][x] = grayValue(img, x+bounds.Min.X, y+bounds.Min.Y)
		}
	}

	m := &edgeMap{
		width:  width,
		height: height,
		edges:  make([][]bool, height),
		sums:   make([][]int, height+1),
	}
	m.sums[0] = make([]int, width+1)

	for y := 0; y < height; y++ {
		m.edges[y] = make([]bool, width)
		m.sums[y+1] = make([]int, width+1)
		rowCount := 0
		for x := 0; x < width; x++ {
			if x > 0 && y > 0 && x < width-1 && y < height-1 {
				c := float64(gray[y][x])
				dx := math.Abs(c - float64(gray[y][x+1]))
				dy := math.Abs(c - float64(gray[y+1][x]))
				if dx > edgeThreshold || dy > edgeThreshold {
					m.edges[y][x] = true
					rowCount++
				}
			}
			m.sums[y+1][x+1] = m.sums[y][x+1] + rowCount
		}
	}

	return m
}

// count returns the number of edge pixels in the w x h window at (x, y).
func (m *edgeMap) count(x, y, w, h int) int {
	return m.sums[y+h][x+w] - m.sums[y][x+w] - m.sums[y+h][x] + m.sums[y][x]
}

// strokeScore measures how much of the edge structure in a window comes from
// strokes crossed along rows, which is typical of a line of characters.
//
// Returns the share of horizontal runs among all edge runs, 0 when the window
// has no edges.
func (m *edgeMap) strokeScore(x, y, w, h int) float64 {
	horizontalRuns := 0
	verticalRuns := 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if m.edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if m.edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// grayValue converts a pixel to grayscale using ITU-R BT.601 luminance weights.
func grayValue(img image.Image, x, y int) uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114)
}
