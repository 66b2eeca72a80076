package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// MaskShapeError reports an inpaint mask whose dimensions do not match
// the buffer being repaired.
type MaskShapeError struct {
	ImgW, ImgH   int
	MaskW, MaskH int
}

func (e *MaskShapeError) Error() string {
	return fmt.Sprintf("mask size %dx%d does not match image %dx%d",
		e.MaskW, e.MaskH, e.ImgW, e.ImgH)
}

// Inpaint removes the pixels selected by mask (non-zero = remove) and
// fills them from the surrounding unmasked region. blurRadius controls
// how far surrounding color is averaged into the fill; 0 uses exact
// nearest-neighbor values. featherRadius softens the composite boundary;
// 0 produces a hard seam.
func Inpaint(src *image.NRGBA, mask *image.Gray, blurRadius, featherRadius int) (*image.NRGBA, error) {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	mw := mask.Rect.Dx()
	mh := mask.Rect.Dy()
	if w != mw || h != mh {
		return nil, &MaskShapeError{ImgW: w, ImgH: h, MaskW: mw, MaskH: mh}
	}
	if blurRadius < 0 || featherRadius < 0 {
		return nil, fmt.Errorf("inpaint radii must be non-negative (blur=%d, feather=%d)",
			blurRadius, featherRadius)
	}

	hole := make([]bool, w*h)
	holes := 0
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x, v := range row {
			if v != 0 {
				hole[y*w+x] = true
				holes++
			}
		}
	}
	if holes == 0 {
		return imaging.Clone(src), nil
	}

	fill := nearestFill(src, hole, w, h)
	if blurRadius > 0 {
		fill = imaging.Blur(fill, float64(blurRadius))
	}

	out := imaging.Clone(src)

	if featherRadius == 0 {
		for i, isHole := range hole {
			if isHole {
				copy(out.Pix[i*4:i*4+4], fill.Pix[i*4:i*4+4])
			}
		}
		return out, nil
	}

	// Feathered composite: full fill inside the hole, a blurred falloff
	// outside it, so the seam dissolves without leaking removed content.
	weights := featherWeights(hole, w, h, featherRadius)
	for i := 0; i < w*h; i++ {
		fw := weights[i]
		if hole[i] {
			fw = 1
		}
		if fw <= 0 {
			continue
		}
		for c := 0; c < 4; c++ {
			s := float64(out.Pix[i*4+c])
			f := float64(fill.Pix[i*4+c])
			out.Pix[i*4+c] = clamp8(s + fw*(f-s))
		}
	}
	return out, nil
}

// nearestFill grows known pixels into the hole one ring per pass, copying
// the first known 4-neighbor's exact color. Deterministic: neighbors are
// probed in left, right, up, down order and each pass commits as a unit.
func nearestFill(src *image.NRGBA, hole []bool, w, h int) *image.NRGBA {
	out := imaging.Clone(src)
	known := make([]bool, w*h)
	unknown := make([]int, 0, w*h)
	for i, isHole := range hole {
		known[i] = !isHole
		if isHole {
			unknown = append(unknown, i)
		}
	}

	for len(unknown) > 0 {
		var next []int
		var filled []int
		for _, i := range unknown {
			x, y := i%w, i/w
			from := -1
			switch {
			case x > 0 && known[i-1]:
				from = i - 1
			case x < w-1 && known[i+1]:
				from = i + 1
			case y > 0 && known[i-w]:
				from = i - w
			case y < h-1 && known[i+w]:
				from = i + w
			}
			if from < 0 {
				next = append(next, i)
				continue
			}
			copy(out.Pix[i*4:i*4+4], out.Pix[from*4:from*4+4])
			filled = append(filled, i)
		}
		if len(filled) == 0 {
			// Fully masked image: nothing to sample, fall back to neutral.
			for _, i := range next {
				out.SetNRGBA(i%w, i/w, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
			}
			break
		}
		for _, i := range filled {
			known[i] = true
		}
		unknown = next
	}
	return out
}

// featherWeights blurs the binary hole mask so the fill fades out over
// featherRadius pixels beyond the hole boundary.
func featherWeights(hole []bool, w, h, radius int) []float64 {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for i, isHole := range hole {
		if isHole {
			m.Pix[i] = 255
		}
	}
	blurred := imaging.Blur(m, float64(radius))

	weights := make([]float64, w*h)
	for i := range weights {
		weights[i] = float64(blurred.Pix[i*4]) / 255.0
	}
	return weights
}
