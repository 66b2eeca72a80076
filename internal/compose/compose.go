// Package compose executes one variant's ordered operation list against a
// source buffer and applies the final letterbox/resize.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/picacho/renderpipe/internal/geometry"
	"github.com/picacho/renderpipe/internal/manifest"
	"github.com/picacho/renderpipe/internal/preset"
	"github.com/picacho/renderpipe/internal/raster"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// letterboxBorder is the neutral pad color used when an explicit final
// size requires letterboxing.
var letterboxBorder = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// VariantError wraps the first failing stage of a variant. Sibling
// variants of the same render job continue independently.
type VariantError struct {
	Filename string
	Stage    string
	Err      error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("variant %q: %s: %v", e.Filename, e.Stage, e.Err)
}

func (e *VariantError) Unwrap() error { return e.Err }

// Composer executes variants. MaskDir anchors relative inpaint mask paths.
type Composer struct {
	MaskDir string
}

// Compose runs the variant's operations in declared order against src and
// returns the finished buffer. src is never mutated.
func (c *Composer) Compose(src *image.NRGBA, v manifest.Variant) (*image.NRGBA, error) {
	cur := src
	for _, op := range v.Operations {
		next, err := c.applyOperation(cur, op)
		if err != nil {
			return nil, &VariantError{Filename: v.Filename, Stage: string(op.Type), Err: err}
		}
		cur = next
	}

	if v.Size != nil {
		out, err := finalize(cur, v.Size[0], v.Size[1])
		if err != nil {
			return nil, &VariantError{Filename: v.Filename, Stage: "finalize", Err: err}
		}
		cur = out
	}
	return cur, nil
}

func (c *Composer) applyOperation(cur *image.NRGBA, op manifest.Operation) (*image.NRGBA, error) {
	switch op.Type {
	case manifest.OpCrop:
		return c.applyCrop(cur, op.Crop)
	case manifest.OpResize:
		w, h := op.Resize.Width, op.Resize.Height
		if op.Resize.Preset != "" {
			var err error
			w, h, err = preset.Resolution(op.Resize.Preset)
			if err != nil {
				return nil, err
			}
		}
		return imaging.Resize(cur, w, h, imaging.Lanczos), nil
	case manifest.OpGrade:
		return raster.ApplyGrade(cur, *op.Grade)
	case manifest.OpInpaint:
		mask, err := c.loadMask(op.Inpaint.Mask)
		if err != nil {
			return nil, err
		}
		return raster.Inpaint(cur, mask, op.Inpaint.BlurRadius, op.Inpaint.FeatherRadius)
	case manifest.OpEnhance:
		return raster.Enhance(cur, *op.Enhance)
	default:
		return nil, fmt.Errorf("unknown operation type %q", op.Type)
	}
}

func (c *Composer) applyCrop(cur *image.NRGBA, spec *manifest.CropSpec) (*image.NRGBA, error) {
	ratio, err := preset.Aspect(spec.Preset)
	if err != nil {
		return nil, err
	}

	off := spec.Offset
	if spec.Auto && !spec.HasOffset {
		off, err = geometry.AutoOffset(cur, ratio)
		if err != nil {
			return nil, err
		}
	}

	rect, err := geometry.ResolveCrop(cur.Rect.Dx(), cur.Rect.Dy(), ratio, off)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(cur, rect), nil
}

// finalize brings the buffer to the variant's declared size: a direct
// resize when the aspect already matches exactly, otherwise a letterbox
// (fit, then pad with a neutral border).
func finalize(cur *image.NRGBA, w, h int) (*image.NRGBA, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("final size %dx%d must be positive", w, h)
	}
	cw, ch := cur.Rect.Dx(), cur.Rect.Dy()
	if cw == w && ch == h {
		return cur, nil
	}
	if cw*h == w*ch {
		return imaging.Resize(cur, w, h, imaging.Lanczos), nil
	}
	fitted := imaging.Fit(cur, w, h, imaging.Lanczos)
	canvas := imaging.New(w, h, letterboxBorder)
	return imaging.PasteCenter(canvas, fitted), nil
}

// loadMask decodes a grayscale mask image, anchored at MaskDir when the
// path is relative.
func (c *Composer) loadMask(path string) (*image.Gray, error) {
	if !filepath.IsAbs(path) && c.MaskDir != "" {
		path = filepath.Join(c.MaskDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mask: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode mask %s: %w", path, err)
	}

	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray, nil
}
