package compose

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picacho/renderpipe/internal/manifest"
	"github.com/picacho/renderpipe/internal/preset"
	"github.com/picacho/renderpipe/internal/raster"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestComposeCropThenResizeExactSize(t *testing.T) {
	src := solid(4000, 2000, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	v := manifest.Variant{
		Filename: "hero.jpg",
		Operations: []manifest.Operation{
			{Type: manifest.OpCrop, Crop: &manifest.CropSpec{Preset: "hero_21x9"}},
			{Type: manifest.OpResize, Resize: &manifest.ResizeSpec{Width: 1600, Height: 900}},
		},
	}

	c := &Composer{}
	out, err := c.Compose(src, v)
	require.NoError(t, err)
	assert.Equal(t, 1600, out.Rect.Dx())
	assert.Equal(t, 900, out.Rect.Dy())
}

func TestComposeLetterboxPadsWithNeutralBorder(t *testing.T) {
	red := color.NRGBA{R: 220, G: 40, B: 40, A: 255}
	src := solid(100, 100, red)
	v := manifest.Variant{Filename: "wide.png", Size: &[2]int{200, 100}}

	c := &Composer{}
	out, err := c.Compose(src, v)
	require.NoError(t, err)
	require.Equal(t, 200, out.Rect.Dx())
	require.Equal(t, 100, out.Rect.Dy())

	assert.Equal(t, letterboxBorder, out.NRGBAAt(0, 50), "left pad")
	assert.Equal(t, letterboxBorder, out.NRGBAAt(199, 50), "right pad")
	assert.Equal(t, red, out.NRGBAAt(100, 50), "image center")
}

func TestComposeDirectResizeWhenAspectMatches(t *testing.T) {
	red := color.NRGBA{R: 220, G: 40, B: 40, A: 255}
	src := solid(100, 50, red)
	v := manifest.Variant{Filename: "big.png", Size: &[2]int{200, 100}}

	c := &Composer{}
	out, err := c.Compose(src, v)
	require.NoError(t, err)
	require.Equal(t, 200, out.Rect.Dx())

	// No padding anywhere: every pixel comes from the source.
	for _, pt := range []image.Point{{0, 0}, {199, 0}, {0, 99}, {199, 99}, {100, 50}} {
		assert.Equal(t, red, out.NRGBAAt(pt.X, pt.Y), "pixel %v", pt)
	}
}

func TestComposeWrapsStageErrors(t *testing.T) {
	src := solid(10, 10, color.NRGBA{A: 255})
	v := manifest.Variant{
		Filename: "bad.jpg",
		Operations: []manifest.Operation{
			{Type: manifest.OpCrop, Crop: &manifest.CropSpec{Preset: "cinema_2x1"}},
		},
	}

	c := &Composer{}
	_, err := c.Compose(src, v)

	var ve *VariantError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "bad.jpg", ve.Filename)
	assert.Equal(t, "crop", ve.Stage)

	var upe *preset.UnknownPresetError
	assert.True(t, errors.As(err, &upe), "cause must unwrap")
}

func TestComposeInpaintLoadsMaskFromDisk(t *testing.T) {
	red := color.NRGBA{R: 200, G: 30, B: 30, A: 255}
	blue := color.NRGBA{R: 20, G: 20, B: 220, A: 255}
	src := solid(12, 12, red)
	mask := image.NewGray(image.Rect(0, 0, 12, 12))
	for y := 5; y <= 7; y++ {
		for x := 5; x <= 7; x++ {
			src.SetNRGBA(x, y, blue)
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	dir := t.TempDir()
	maskPath := filepath.Join(dir, "crane.png")
	f, err := os.Create(maskPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, mask))
	require.NoError(t, f.Close())

	v := manifest.Variant{
		Filename: "clean.jpg",
		Operations: []manifest.Operation{
			{Type: manifest.OpInpaint, Inpaint: &manifest.InpaintSpec{Mask: "crane.png"}},
		},
	}

	c := &Composer{MaskDir: dir}
	out, err := c.Compose(src, v)
	require.NoError(t, err)
	assert.Equal(t, red, out.NRGBAAt(6, 6), "masked content replaced by surround")
}

func TestComposeMissingMaskFails(t *testing.T) {
	src := solid(8, 8, color.NRGBA{A: 255})
	v := manifest.Variant{
		Filename: "clean.jpg",
		Operations: []manifest.Operation{
			{Type: manifest.OpInpaint, Inpaint: &manifest.InpaintSpec{Mask: "nope.png"}},
		},
	}

	c := &Composer{MaskDir: t.TempDir()}
	_, err := c.Compose(src, v)
	var ve *VariantError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "inpaint", ve.Stage)
}

func TestComposeDoesNotMutateSource(t *testing.T) {
	src := solid(16, 16, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	before := make([]uint8, len(src.Pix))
	copy(before, src.Pix)

	grade := raster.NeutralGrade()
	grade.Exposure = 1.5
	v := manifest.Variant{
		Filename: "bright.jpg",
		Operations: []manifest.Operation{
			{Type: manifest.OpGrade, Grade: &grade},
		},
	}

	c := &Composer{}
	out, err := c.Compose(src, v)
	require.NoError(t, err)
	assert.Equal(t, before, src.Pix, "source buffer must stay read-only")
	assert.NotEqual(t, before, out.Pix)
}
