package encoder

import (
	"image"
)

// Encoder encodes an image to a specific output format.
type Encoder interface {
	// Format returns the output format name (e.g. "jpeg", "png").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100).
	// Formats without a quality knob ignore it.
	Encode(img image.Image, quality int) ([]byte, error)

	// Extensions returns the file extensions (without dot) this encoder
	// serves, primary first.
	Extensions() []string
}
