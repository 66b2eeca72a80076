// Package raster implements the pixel-level engines of the pipeline:
// color grading, mask-driven inpainting and material enhancement.
//
// Every engine consumes one buffer and returns a new one; input buffers
// are never mutated, so sibling variants can share a decoded source.
package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// Local-contrast radii. Micro-contrast works at a fine grain, clarity at a
// mid-frequency radius.
const (
	microContrastSigma = 1.0
	claritySigma       = 8.0
)

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// luma returns the Rec. 601 luminance of an RGB triple in [0, 255].
func luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// applyLocalContrast sharpens img in place against a blurred copy of
// itself: out = v + (factor-1)*(v - blurred). Factor 1 is the identity.
func applyLocalContrast(img *image.NRGBA, factor, sigma float64) {
	if factor == 1 {
		return
	}
	blurred := imaging.Blur(img, sigma)
	amount := factor - 1
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(img.Pix[i+c])
			b := float64(blurred.Pix[i+c])
			img.Pix[i+c] = clamp8(v + amount*(v-b))
		}
	}
}
