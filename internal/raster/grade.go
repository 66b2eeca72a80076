package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// GradeSpec holds the color-grading adjustments for one grade operation.
// Exposure, Contrast, Saturation and MicroContrast are multipliers with
// identity 1.0; TemperatureShift, ShadowLift and HighlightLift are signed
// shifts with identity 0.
type GradeSpec struct {
	Exposure         float64
	Contrast         float64
	Saturation       float64
	TemperatureShift float64
	ShadowLift       float64
	HighlightLift    float64
	MicroContrast    float64
}

// NeutralGrade returns the identity grade.
func NeutralGrade() GradeSpec {
	return GradeSpec{Exposure: 1, Contrast: 1, Saturation: 1, MicroContrast: 1}
}

// IsNeutral reports whether applying the spec would change nothing.
func (s GradeSpec) IsNeutral() bool {
	return s == NeutralGrade()
}

// NormalizeFactor converts a legacy additive contrast/saturation delta
// into a multiplier. Values in [-1, 1] are deltas (0.2 means 1.2, -0.3
// means 0.7) with one carve-out: exactly 1.0 is already the identity
// multiplier. Values outside [-1, 1] are direct multipliers.
func NormalizeFactor(v float64) float64 {
	if v == 1.0 {
		return 1.0
	}
	if v >= -1.0 && v <= 1.0 {
		return 1.0 + v
	}
	return v
}

// ApplyGrade applies the grade to src and returns a new buffer. The
// adjustments run in a fixed order regardless of how the manifest spelled
// them: exposure, temperature, shadow/highlight lifts, contrast,
// saturation, micro-contrast. Each step clips to [0, 255].
func ApplyGrade(src *image.NRGBA, spec GradeSpec) (*image.NRGBA, error) {
	contrast := NormalizeFactor(spec.Contrast)
	saturation := NormalizeFactor(spec.Saturation)

	for name, f := range map[string]float64{
		"exposure":       spec.Exposure,
		"contrast":       contrast,
		"saturation":     saturation,
		"micro_contrast": spec.MicroContrast,
	} {
		if f < 0 {
			return nil, fmt.Errorf("grade %s: negative multiplier %v", name, f)
		}
	}

	out := imaging.Clone(src)
	if spec.IsNeutral() {
		return out, nil
	}

	if spec.Exposure != 1 {
		applyExposure(out, spec.Exposure)
	}
	if spec.TemperatureShift != 0 {
		applyTemperature(out, spec.TemperatureShift)
	}
	if spec.ShadowLift != 0 {
		applyToneLift(out, spec.ShadowLift, false)
	}
	if spec.HighlightLift != 0 {
		applyToneLift(out, spec.HighlightLift, true)
	}
	if contrast != 1 {
		applyContrast(out, contrast)
	}
	if saturation != 1 {
		applySaturation(out, saturation)
	}
	if spec.MicroContrast != 1 {
		applyLocalContrast(out, spec.MicroContrast, microContrastSigma)
	}
	return out, nil
}

func applyExposure(img *image.NRGBA, mult float64) {
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = clamp8(float64(img.Pix[i+c]) * mult)
		}
	}
}

// applyTemperature shifts the red/blue balance. Positive values warm the
// image (more red, less blue); one unit of shift moves each channel by 1%.
func applyTemperature(img *image.NRGBA, shift float64) {
	scale := shift * 0.01
	if scale > 1 {
		scale = 1
	}
	if scale < -1 {
		scale = -1
	}
	rMult := 1 + scale
	bMult := 1 - scale
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = clamp8(float64(img.Pix[i]) * rMult)
		img.Pix[i+2] = clamp8(float64(img.Pix[i+2]) * bMult)
	}
}

// applyToneLift brightens one tonal band. The lift is weighted by the
// squared distance into the band, so shadows move far more than midtones
// for a shadow lift and vice versa for highlights.
func applyToneLift(img *image.NRGBA, lift float64, highlights bool) {
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(img.Pix[i+c])
			n := v / 255.0
			w := (1 - n) * (1 - n)
			if highlights {
				w = n * n
			}
			img.Pix[i+c] = clamp8(v + lift*w*(255-v))
		}
	}
}

func applyContrast(img *image.NRGBA, mult float64) {
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(img.Pix[i+c])
			img.Pix[i+c] = clamp8((v-128)*mult + 128)
		}
	}
}

func applySaturation(img *image.NRGBA, mult float64) {
	for i := 0; i < len(img.Pix); i += 4 {
		r := float64(img.Pix[i])
		g := float64(img.Pix[i+1])
		b := float64(img.Pix[i+2])
		l := luma(r, g, b)
		img.Pix[i] = clamp8(l + (r-l)*mult)
		img.Pix[i+1] = clamp8(l + (g-l)*mult)
		img.Pix[i+2] = clamp8(l + (b-l)*mult)
	}
}
