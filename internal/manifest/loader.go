package manifest

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/picacho/renderpipe/internal/raster"
)

// raw shapes mirror the on-disk document. Operations are decoded as loose
// maps first because each type carries its own field set.
type rawManifest struct {
	Renders []rawRender `yaml:"renders"`
}

type rawRender struct {
	Source   string       `yaml:"source"`
	Variants []rawVariant `yaml:"variants"`
}

type rawVariant struct {
	Filename   string           `yaml:"filename"`
	Size       []int            `yaml:"size"`
	Width      int              `yaml:"width"`
	Height     int              `yaml:"height"`
	Operations []map[string]any `yaml:"operations"`
}

// Load reads and parses a manifest file. YAML and JSON documents are both
// accepted (JSON is a YAML subset).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a manifest document from bytes.
func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(raw.Renders) == 0 {
		return nil, invalidSpec("manifest must contain a non-empty 'renders' list")
	}

	m := &Manifest{Renders: make([]RenderJob, 0, len(raw.Renders))}
	for i, rr := range raw.Renders {
		job := RenderJob{Source: rr.Source}
		for j, rv := range rr.Variants {
			v := Variant{Filename: rv.Filename}
			switch {
			case len(rv.Size) == 2:
				v.Size = &[2]int{rv.Size[0], rv.Size[1]}
			case len(rv.Size) != 0:
				return nil, invalidSpec("render[%d] variant[%d]: size must be [width, height]", i, j)
			case rv.Width > 0 && rv.Height > 0:
				v.Size = &[2]int{rv.Width, rv.Height}
			}
			for k, ro := range rv.Operations {
				op, err := parseOperation(ro)
				if err != nil {
					return nil, fmt.Errorf("render[%d] variant[%d] operation[%d]: %w", i, j, k, err)
				}
				v.Operations = append(v.Operations, op)
			}
			job.Variants = append(job.Variants, v)
		}
		m.Renders = append(m.Renders, job)
	}
	return m, nil
}

func parseOperation(fields map[string]any) (Operation, error) {
	tag, _ := fields["type"].(string)
	switch OpType(tag) {
	case OpCrop:
		return parseCrop(fields)
	case OpResize:
		return parseResize(fields)
	case OpGrade:
		return parseGrade(fields)
	case OpInpaint:
		return parseInpaint(fields)
	case OpEnhance:
		return parseEnhance(fields)
	default:
		return Operation{}, invalidSpec("unknown operation type %q", tag)
	}
}

func parseCrop(fields map[string]any) (Operation, error) {
	spec := &CropSpec{}
	spec.Preset, _ = fields["preset"].(string)
	if spec.Preset == "" {
		return Operation{}, invalidSpec("crop requires a preset")
	}
	if auto, ok := fields["auto"].(bool); ok {
		spec.Auto = auto
	}
	if raw, ok := fields["offset"]; ok {
		x, y, err := asFloatPair(raw)
		if err != nil {
			return Operation{}, fmt.Errorf("crop offset: %w", err)
		}
		spec.Offset.X = x
		spec.Offset.Y = y
		spec.HasOffset = true
	}
	return Operation{Type: OpCrop, Crop: spec}, nil
}

func parseResize(fields map[string]any) (Operation, error) {
	spec := &ResizeSpec{}
	spec.Preset, _ = fields["preset"].(string)
	if raw, ok := fields["size"]; ok {
		w, h, err := asIntPair(raw)
		if err != nil {
			return Operation{}, fmt.Errorf("resize size: %w", err)
		}
		spec.Width, spec.Height = w, h
	}
	if w, ok := asInt(fields["width"]); ok {
		spec.Width = w
	}
	if h, ok := asInt(fields["height"]); ok {
		spec.Height = h
	}
	if spec.Preset == "" && (spec.Width <= 0 || spec.Height <= 0) {
		return Operation{}, invalidSpec("resize requires a preset or positive dimensions")
	}
	return Operation{Type: OpResize, Resize: spec}, nil
}

func parseGrade(fields map[string]any) (Operation, error) {
	spec := raster.NeutralGrade()
	for key, raw := range fields {
		if key == "type" {
			continue
		}
		if key == "temperature_shift" || key == "warm_shift" {
			shift, err := parseMired(raw)
			if err != nil {
				return Operation{}, err
			}
			spec.TemperatureShift = shift
			continue
		}
		v, ok := asFloat(raw)
		if !ok {
			return Operation{}, invalidSpec("grade %s: not a number (%v)", key, raw)
		}
		switch key {
		case "exposure":
			spec.Exposure = v
		case "contrast":
			spec.Contrast = v
		case "saturation":
			spec.Saturation = v
		case "shadow_lift":
			spec.ShadowLift = v
		case "highlight_lift":
			spec.HighlightLift = v
		case "micro_contrast", "local_contrast":
			spec.MicroContrast = v
		default:
			return Operation{}, invalidSpec("unknown grade key %q", key)
		}
	}
	return Operation{Type: OpGrade, Grade: &spec}, nil
}

func parseInpaint(fields map[string]any) (Operation, error) {
	spec := &InpaintSpec{}
	spec.Mask, _ = fields["mask"].(string)
	if spec.Mask == "" {
		return Operation{}, invalidSpec("inpaint requires a mask path")
	}
	if v, ok := asInt(fields["blur_radius"]); ok {
		spec.BlurRadius = v
	}
	if v, ok := asInt(fields["feather_radius"]); ok {
		spec.FeatherRadius = v
	}
	return Operation{Type: OpInpaint, Inpaint: spec}, nil
}

func parseEnhance(fields map[string]any) (Operation, error) {
	spec := raster.NeutralEnhance()
	for key, raw := range fields {
		if key == "type" {
			continue
		}
		v, ok := asFloat(raw)
		if !ok {
			return Operation{}, invalidSpec("material_enhance %s: not a number (%v)", key, raw)
		}
		switch key {
		case "clarity":
			spec.Clarity = v
		case "micro_contrast":
			spec.MicroContrast = v
		case "depth":
			spec.Depth = v
		case "sheen":
			spec.Sheen = v
		default:
			return Operation{}, invalidSpec("unknown material_enhance key %q", key)
		}
	}
	return Operation{Type: OpEnhance, Enhance: &spec}, nil
}

// parseMired accepts a bare number or the legacy "<n>_mireds" string form
// that older manifests used for temperature shifts.
func parseMired(raw any) (float64, error) {
	if v, ok := asFloat(raw); ok {
		return v, nil
	}
	if s, ok := raw.(string); ok {
		clean := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_mireds")
		v, err := strconv.ParseFloat(clean, 64)
		if err == nil {
			return v, nil
		}
	}
	return 0, invalidSpec("temperature_shift: not a number (%v)", raw)
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func asFloatPair(raw any) (float64, float64, error) {
	list, ok := raw.([]any)
	if !ok || len(list) != 2 {
		return 0, 0, invalidSpec("expected a [x, y] pair, got %v", raw)
	}
	x, okX := asFloat(list[0])
	y, okY := asFloat(list[1])
	if !okX || !okY {
		return 0, 0, invalidSpec("pair components must be numbers, got %v", raw)
	}
	return x, y, nil
}

func asIntPair(raw any) (int, int, error) {
	x, y, err := asFloatPair(raw)
	if err != nil {
		return 0, 0, err
	}
	return int(x), int(y), nil
}
