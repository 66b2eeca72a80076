package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInpaintMaskShapeMismatch(t *testing.T) {
	src := uniformNRGBA(10, 10, color.NRGBA{A: 255})
	mask := image.NewGray(image.Rect(0, 0, 8, 10))

	_, err := Inpaint(src, mask, 0, 0)
	var mse *MaskShapeError
	require.True(t, errors.As(err, &mse))
	assert.Equal(t, 8, mse.MaskW)
	assert.Equal(t, 10, mse.ImgW)
}

func TestInpaintEmptyMaskReturnsCopy(t *testing.T) {
	src := uniformNRGBA(6, 6, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 6, 6))

	out, err := Inpaint(src, mask, 2, 2)
	require.NoError(t, err)
	assert.NotSame(t, src, out)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestInpaintNearestNeighborHardFill(t *testing.T) {
	// Uniform red frame with a blue 3x3 blob in the middle; masking the
	// blob with blur=0, feather=0 must yield exact neighbor red everywhere
	// and a hard seam.
	red := color.NRGBA{R: 200, G: 30, B: 30, A: 255}
	blue := color.NRGBA{R: 20, G: 20, B: 220, A: 255}
	src := uniformNRGBA(9, 9, red)
	mask := image.NewGray(image.Rect(0, 0, 9, 9))
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			src.SetNRGBA(x, y, blue)
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	out, err := Inpaint(src, mask, 0, 0)
	require.NoError(t, err)

	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			assert.Equal(t, red, out.NRGBAAt(x, y), "pixel (%d,%d)", x, y)
		}
	}

	// Source untouched.
	assert.Equal(t, blue, src.NRGBAAt(4, 4))
}

func TestInpaintRemovesMaskedContentWithFeather(t *testing.T) {
	red := color.NRGBA{R: 200, G: 30, B: 30, A: 255}
	blue := color.NRGBA{R: 20, G: 20, B: 220, A: 255}
	src := uniformNRGBA(15, 15, red)
	mask := image.NewGray(image.Rect(0, 0, 15, 15))
	for y := 6; y <= 8; y++ {
		for x := 6; x <= 8; x++ {
			src.SetNRGBA(x, y, blue)
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	out, err := Inpaint(src, mask, 2, 3)
	require.NoError(t, err)

	// Masked pixels must not retain the removed blue.
	for y := 6; y <= 8; y++ {
		for x := 6; x <= 8; x++ {
			px := out.NRGBAAt(x, y)
			assert.Greater(t, px.R, px.B, "fill at (%d,%d) must come from the red surround", x, y)
		}
	}
	// Far corners untouched.
	assert.Equal(t, red, out.NRGBAAt(0, 0))
	assert.Equal(t, red, out.NRGBAAt(14, 14))
}

func TestInpaintNegativeRadiusRejected(t *testing.T) {
	src := uniformNRGBA(4, 4, color.NRGBA{A: 255})
	mask := image.NewGray(image.Rect(0, 0, 4, 4))
	_, err := Inpaint(src, mask, -1, 0)
	assert.Error(t, err)
}

func TestInpaintFullyMaskedFallsBackToNeutral(t *testing.T) {
	src := uniformNRGBA(3, 3, color.NRGBA{R: 9, G: 9, B: 9, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 3, 3))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}

	out, err := Inpaint(src, mask, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, out.NRGBAAt(1, 1))
}
