// Package geometry resolves declarative crop specs into axis-aligned
// pixel rectangles.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// FocalOffset biases a crop window toward an edge. Both components lie in
// [-1, 1]: -1 is flush against the start edge, +1 flush against the end,
// 0 centered.
type FocalOffset struct {
	X float64
	Y float64
}

// GeometryError reports crop geometry that cannot produce a usable
// rectangle (degenerate source or ratio).
type GeometryError struct {
	SrcW, SrcH int
	Ratio      float64
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("degenerate crop geometry: source %dx%d, ratio %.4f",
		e.SrcW, e.SrcH, e.Ratio)
}

// ResolveCrop computes the largest rectangle of the given ratio that fits
// inside a srcW x srcH frame, slid along the free axis by the focal offset.
// The binding axis has zero slack and its offset component is ignored.
func ResolveCrop(srcW, srcH int, ratio float64, off FocalOffset) (image.Rectangle, error) {
	if srcW < 1 || srcH < 1 || ratio <= 0 {
		return image.Rectangle{}, &GeometryError{SrcW: srcW, SrcH: srcH, Ratio: ratio}
	}

	srcRatio := float64(srcW) / float64(srcH)

	cropW, cropH := srcW, srcH
	var left, top int

	switch {
	case math.Abs(srcRatio-ratio) < 1e-9:
		// Ratios match: full frame, offset has no slack to consume.
	case srcRatio > ratio:
		// Source too wide: height binds, slide horizontally.
		cropH = srcH
		cropW = int(math.Round(float64(srcH) * ratio))
		left = slide(srcW-cropW, off.X)
	default:
		// Source too tall: width binds, slide vertically.
		cropW = srcW
		cropH = int(math.Round(float64(srcW) / ratio))
		top = slide(srcH-cropH, off.Y)
	}

	if cropW < 1 || cropH < 1 {
		return image.Rectangle{}, &GeometryError{SrcW: srcW, SrcH: srcH, Ratio: ratio}
	}
	return image.Rect(left, top, left+cropW, top+cropH), nil
}

// slide maps an offset in [-1, 1] onto [0, slack].
func slide(slack int, off float64) int {
	if slack <= 0 {
		return 0
	}
	pos := int(math.Round(float64(slack) * (off + 1.0) / 2.0))
	if pos < 0 {
		pos = 0
	}
	if pos > slack {
		pos = slack
	}
	return pos
}
