// Package preset defines the named aspect-ratio and output-resolution
// presets recognized by render manifests.
package preset

import (
	"fmt"
	"sort"
)

// UnknownPresetError reports a preset name that is not in the tables.
type UnknownPresetError struct {
	Kind string // "aspect" or "resolution"
	Name string
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("unknown %s preset: %q", e.Kind, e.Name)
}

// aspect presets map names to width:height ratio terms.
var aspects = map[string][2]int{
	"hero_21x9":  {21, 9},
	"web_16x9":   {16, 9},
	"card_4x3":   {4, 3},
	"square_1x1": {1, 1},
}

// resolution presets map names to exact output sizes.
var resolutions = map[string][2]int{
	"dci_4k":      {4096, 2160},
	"uhd_4k":      {3840, 2160},
	"web_1080p":   {1920, 1080},
	"square_1080": {1080, 1080},
}

// DefaultResolution is the fallback output size for legacy mode (4K DCI).
const DefaultResolution = "dci_4k"

// Aspect returns the target ratio (width / height) for a named aspect preset.
func Aspect(name string) (float64, error) {
	a, ok := aspects[name]
	if !ok {
		return 0, &UnknownPresetError{Kind: "aspect", Name: name}
	}
	return float64(a[0]) / float64(a[1]), nil
}

// Resolution returns the exact pixel size for a named resolution preset.
func Resolution(name string) (w, h int, err error) {
	r, ok := resolutions[name]
	if !ok {
		return 0, 0, &UnknownPresetError{Kind: "resolution", Name: name}
	}
	return r[0], r[1], nil
}

// AspectNames returns all aspect preset names, sorted.
func AspectNames() []string {
	names := make([]string, 0, len(aspects))
	for n := range aspects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolutionNames returns all resolution preset names, sorted.
func ResolutionNames() []string {
	names := make([]string, 0, len(resolutions))
	for n := range resolutions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AspectTerms returns the raw ratio terms for display (e.g. 21:9).
func AspectTerms(name string) (int, int, bool) {
	a, ok := aspects[name]
	return a[0], a[1], ok
}
