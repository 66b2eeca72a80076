package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/picacho/renderpipe/internal/manifest"
	"github.com/picacho/renderpipe/internal/preset"
	"github.com/picacho/renderpipe/internal/report"
)

// RunLegacy processes the input directory without a manifest: every image
// becomes one <stem>_processed.<ext> variant at the default resolution.
// Internally this is just a synthesized manifest fed to Run, so legacy
// outputs get the same letterboxing, reporting and parallelism.
func (p *Pipeline) RunLegacy(ctx context.Context) (*report.Report, error) {
	m, err := p.legacyManifest()
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, m)
}

func (p *Pipeline) legacyManifest() (*manifest.Manifest, error) {
	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}

	w, h, err := preset.Resolution(preset.DefaultResolution)
	if err != nil {
		return nil, err
	}

	m := &manifest.Manifest{}
	for _, src := range sources {
		dir := filepath.ToSlash(filepath.Dir(src.RelPath))
		name := src.Stem + "_processed" + src.Ext
		if dir != "." {
			name = dir + "/" + name
		}
		m.Renders = append(m.Renders, manifest.RenderJob{
			Source: src.RelPath,
			Variants: []manifest.Variant{{
				Filename: name,
				Size:     &[2]int{w, h},
			}},
		})
	}
	return m, nil
}
