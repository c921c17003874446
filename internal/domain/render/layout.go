package render

import (
	"fmt"
	"math"

	"github.com/forPelevin/hlshorts/internal/types"
)

// Canvas is the fixed output frame of a short.
var Canvas = types.Size{W: 1080, H: 1920}

// ForegroundLayout scales a srcW x srcH frame to two thirds of the canvas
// height, keeping its aspect ratio, and centers it. The width is rounded to
// an even number for the encoder. Nothing is cropped, so a wide source can
// overflow the canvas and get a negative X.
func ForegroundLayout(srcW, srcH int, canvas types.Size) (types.Placement, error) {
	if srcW <= 0 || srcH <= 0 {
		return types.Placement{}, fmt.Errorf("invalid source size %dx%d", srcW, srcH)
	}
	if canvas.W <= 0 || canvas.H <= 0 {
		return types.Placement{}, fmt.Errorf("invalid canvas size %dx%d", canvas.W, canvas.H)
	}
	h := canvas.H * 2 / 3
	w := int(math.Round(float64(srcW)*float64(h)/float64(srcH)/2)) * 2
	if w < 2 {
		w = 2
	}
	return types.Placement{
		W: w,
		H: h,
		X: floorDiv(canvas.W-w, 2),
		Y: floorDiv(canvas.H-h, 2),
	}, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
