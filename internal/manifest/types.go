// Package manifest models the declarative render manifest: which source
// images to process and, per source, the ordered operations producing
// each output variant.
package manifest

import (
	"fmt"

	"github.com/picacho/renderpipe/internal/geometry"
	"github.com/picacho/renderpipe/internal/raster"
)

// OpType tags the closed set of pipeline operations.
type OpType string

const (
	OpCrop    OpType = "crop"
	OpResize  OpType = "resize"
	OpGrade   OpType = "grade"
	OpInpaint OpType = "inpaint"
	OpEnhance OpType = "material_enhance"
)

// CropSpec declares an aspect crop. When Auto is set and no offset was
// declared, the focal offset is derived from a saliency analysis; an
// explicit offset always wins over Auto.
type CropSpec struct {
	Preset    string
	Offset    geometry.FocalOffset
	HasOffset bool
	Auto      bool
}

// ResizeSpec declares an exact resize, by resolution preset or explicit
// dimensions.
type ResizeSpec struct {
	Preset string
	Width  int
	Height int
}

// InpaintSpec declares a mask-driven content removal.
type InpaintSpec struct {
	Mask          string // path relative to the input directory
	BlurRadius    int
	FeatherRadius int
}

// Operation is a tagged variant over the five operation kinds; exactly
// the field matching Type is set.
type Operation struct {
	Type    OpType
	Crop    *CropSpec
	Resize  *ResizeSpec
	Grade   *raster.GradeSpec
	Inpaint *InpaintSpec
	Enhance *raster.EnhanceSpec
}

// Variant is one declared output of a source image.
type Variant struct {
	Filename   string
	Size       *[2]int // optional explicit final size (letterboxed if needed)
	Operations []Operation
}

// RenderJob groups all variants derived from one source image.
type RenderJob struct {
	Source   string
	Variants []Variant
}

// Manifest is the full declarative document, immutable during a run.
type Manifest struct {
	Renders []RenderJob
}

// InvalidSpecError reports a malformed manifest entry: unknown operation
// type, out-of-range offset, negative multiplier and the like.
type InvalidSpecError struct {
	Detail string
}

func (e *InvalidSpecError) Error() string {
	return "invalid spec: " + e.Detail
}

func invalidSpec(format string, args ...any) error {
	return &InvalidSpecError{Detail: fmt.Sprintf(format, args...)}
}

// DuplicateFilenameError reports two variants of one render job declaring
// the same output filename, which would silently overwrite prior output.
type DuplicateFilenameError struct {
	Source   string
	Filename string
}

func (e *DuplicateFilenameError) Error() string {
	return fmt.Sprintf("render %q declares output filename %q more than once",
		e.Source, e.Filename)
}
