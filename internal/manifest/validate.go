package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/picacho/renderpipe/internal/preset"
	"github.com/picacho/renderpipe/internal/raster"
)

// supportedOutputExtensions lists the extensions variants may declare.
var supportedOutputExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// Validate checks the whole manifest before any image is decoded.
// Duplicate output filenames are fatal here because a silent overwrite
// would destroy prior output non-recoverably.
func Validate(m *Manifest) error {
	if len(m.Renders) == 0 {
		return invalidSpec("manifest must contain a non-empty 'renders' list")
	}

	for _, job := range m.Renders {
		if job.Source == "" {
			return invalidSpec("render with no source")
		}
		if len(job.Variants) == 0 {
			return invalidSpec("render %q declares no variants", job.Source)
		}

		seen := map[string]bool{}
		for _, v := range job.Variants {
			if v.Filename == "" {
				return invalidSpec("render %q: variant with no filename", job.Source)
			}
			if seen[v.Filename] {
				return &DuplicateFilenameError{Source: job.Source, Filename: v.Filename}
			}
			seen[v.Filename] = true

			ext := strings.ToLower(filepath.Ext(v.Filename))
			if !supportedOutputExtensions[ext] {
				return invalidSpec("render %q variant %q: unsupported extension %q",
					job.Source, v.Filename, ext)
			}
			if v.Size != nil && (v.Size[0] < 1 || v.Size[1] < 1) {
				return invalidSpec("render %q variant %q: size must be positive",
					job.Source, v.Filename)
			}

			for _, op := range v.Operations {
				if err := validateOperation(op); err != nil {
					return fmt.Errorf("render %q variant %q: %w", job.Source, v.Filename, err)
				}
			}
		}
	}
	return nil
}

func validateOperation(op Operation) error {
	switch op.Type {
	case OpCrop:
		if _, err := preset.Aspect(op.Crop.Preset); err != nil {
			return err
		}
		off := op.Crop.Offset
		if off.X < -1 || off.X > 1 || off.Y < -1 || off.Y > 1 {
			return invalidSpec("crop offset (%v, %v) outside [-1, 1]", off.X, off.Y)
		}
	case OpResize:
		if op.Resize.Preset != "" {
			if _, _, err := preset.Resolution(op.Resize.Preset); err != nil {
				return err
			}
		} else if op.Resize.Width < 1 || op.Resize.Height < 1 {
			return invalidSpec("resize dimensions %dx%d must be positive",
				op.Resize.Width, op.Resize.Height)
		}
	case OpGrade:
		g := op.Grade
		for name, f := range map[string]float64{
			"exposure":       g.Exposure,
			"contrast":       raster.NormalizeFactor(g.Contrast),
			"saturation":     raster.NormalizeFactor(g.Saturation),
			"micro_contrast": g.MicroContrast,
		} {
			if f < 0 {
				return invalidSpec("grade %s: negative multiplier %v", name, f)
			}
		}
	case OpInpaint:
		in := op.Inpaint
		if in.Mask == "" {
			return invalidSpec("inpaint without a mask path")
		}
		if in.BlurRadius < 0 || in.FeatherRadius < 0 {
			return invalidSpec("inpaint radii must be non-negative")
		}
	case OpEnhance:
		e := op.Enhance
		for name, f := range map[string]float64{
			"clarity":        e.Clarity,
			"micro_contrast": e.MicroContrast,
			"depth":          e.Depth,
			"sheen":          e.Sheen,
		} {
			if f < 0 {
				return invalidSpec("material_enhance %s: negative multiplier %v", name, f)
			}
		}
	default:
		return invalidSpec("unknown operation type %q", op.Type)
	}
	return nil
}
