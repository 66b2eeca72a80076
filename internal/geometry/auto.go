package geometry

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
)

// resizer adapts imaging to the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

// AutoOffset derives a focal offset from a saliency analysis of the source,
// so that automatic crops flow through the same ResolveCrop path as
// manifest-declared ones. The returned offset centers the crop window on
// the most interesting region the analyzer finds.
func AutoOffset(img image.Image, ratio float64) (FocalOffset, error) {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	// The crop window the offset will position.
	win, err := ResolveCrop(srcW, srcH, ratio, FocalOffset{})
	if err != nil {
		return FocalOffset{}, err
	}

	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: imaging.Lanczos})
	best, err := analyzer.FindBestCrop(img, win.Dx(), win.Dy())
	if err != nil {
		return FocalOffset{}, fmt.Errorf("finding best crop: %w", err)
	}

	cx := float64(best.Min.X+best.Max.X) / 2.0
	cy := float64(best.Min.Y+best.Max.Y) / 2.0

	return FocalOffset{
		X: centerToOffset(cx, win.Dx(), srcW),
		Y: centerToOffset(cy, win.Dy(), srcH),
	}, nil
}

// centerToOffset converts a desired window center on one axis into the
// [-1, 1] offset that positions the window there, clamped to the slack.
func centerToOffset(center float64, winDim, srcDim int) float64 {
	slack := srcDim - winDim
	if slack <= 0 {
		return 0
	}
	pos := center - float64(winDim)/2.0
	off := 2.0*pos/float64(slack) - 1.0
	if off < -1 {
		off = -1
	}
	if off > 1 {
		off = 1
	}
	return off
}
