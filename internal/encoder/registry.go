package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps output file extensions to their encoders.
type Registry struct {
	byExt map[string]Encoder
}

// NewRegistry creates a registry with all supported encoders.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Encoder)}
	for _, enc := range []Encoder{
		&JPEGEncoder{},
		&PNGEncoder{},
		&BMPEncoder{},
		&TIFFEncoder{},
	} {
		for _, ext := range enc.Extensions() {
			r.byExt[ext] = enc
		}
	}
	return r
}

// ForFilename returns the encoder matching the filename's extension.
func (r *Registry) ForFilename(name string) (Encoder, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	enc, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported output extension %q for %s", ext, name)
	}
	return enc, nil
}

// SupportsExt reports whether the extension (with or without dot) has an
// encoder.
func (r *Registry) SupportsExt(ext string) bool {
	_, ok := r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// String returns a summary of supported formats.
func (r *Registry) String() string {
	seen := map[string]bool{}
	var formats []string
	for _, f := range []string{"jpeg", "png", "bmp", "tiff"} {
		for _, enc := range r.byExt {
			if enc.Format() == f && !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}
	return fmt.Sprintf("encoders: %s", strings.Join(formats, ", "))
}
