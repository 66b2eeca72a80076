// Package pipeline drives a manifest run: sources times variants, with a
// bounded worker pool and a thread-safe report.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/picacho/renderpipe/internal/compose"
	"github.com/picacho/renderpipe/internal/encoder"
	"github.com/picacho/renderpipe/internal/hasher"
	"github.com/picacho/renderpipe/internal/manifest"
	"github.com/picacho/renderpipe/internal/report"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Config holds all parameters for a pipeline run. It is passed in at
// construction; the pipeline keeps no process-wide state.
type Config struct {
	InputDir  string
	OutputDir string
	Workers   int // 0 = NumCPU
	Quality   int // encoding quality 1-100, 0 = format default
	Logger    zerolog.Logger
}

// DecodeError reports a source image that could not be read or decoded.
// It fails every variant of that source's job, but not other jobs.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Pipeline orchestrates manifest processing.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
	composer *compose.Composer
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
		composer: &compose.Composer{MaskDir: cfg.InputDir},
	}
}

// Run validates the manifest, processes every render job and returns the
// report. Jobs run in parallel; a failed variant or job never halts the
// rest. The returned error covers run-level problems only (validation,
// output directory); per-variant failures live in the report.
func (p *Pipeline) Run(ctx context.Context, m *manifest.Manifest) (*report.Report, error) {
	if err := manifest.Validate(m); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	rep := report.New(p.cfg.Workers)

	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for _, job := range m.Renders {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				p.failJob(rep, job, err)
				return nil
			}
			p.runJob(job, rep)
			return nil
		})
	}
	g.Wait()

	rep.Finalize()
	return rep, nil
}

// runJob decodes the job's source once and composes every variant against
// the shared read-only buffer.
func (p *Pipeline) runJob(job manifest.RenderJob, rep *report.Report) {
	log := p.cfg.Logger.With().Str("source", job.Source).Logger()

	src, err := p.decodeSource(job.Source)
	if err != nil {
		derr := &DecodeError{Source: job.Source, Err: err}
		log.Error().Err(err).Msg("source decode failed")
		p.failJob(rep, job, derr)
		return
	}
	log.Debug().
		Int("width", src.Rect.Dx()).
		Int("height", src.Rect.Dy()).
		Int("variants", len(job.Variants)).
		Msg("source decoded")

	for _, v := range job.Variants {
		outcome := p.runVariant(src, job.Source, v)
		if outcome.OK() {
			log.Debug().Str("variant", v.Filename).
				Int("width", outcome.Width).Int("height", outcome.Height).
				Int64("bytes", outcome.Size).Msg("variant written")
		} else {
			log.Warn().Str("variant", v.Filename).Str("error", outcome.Error).
				Msg("variant failed")
		}
		rep.Add(outcome)
	}
}

func (p *Pipeline) runVariant(src *image.NRGBA, source string, v manifest.Variant) report.Outcome {
	outcome := report.Outcome{Source: source, Variant: v.Filename}

	out, err := p.composer.Compose(src, v)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	enc, err := p.registry.ForFilename(v.Filename)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	data, err := enc.Encode(out, p.cfg.Quality)
	if err != nil {
		outcome.Error = fmt.Sprintf("encode %s: %v", v.Filename, err)
		return outcome
	}

	outPath := filepath.Join(p.cfg.OutputDir, v.Filename)
	if dir := filepath.Dir(outPath); dir != p.cfg.OutputDir {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			outcome.Error = fmt.Sprintf("create dir for %s: %v", v.Filename, err)
			return outcome
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		outcome.Error = fmt.Sprintf("write %s: %v", v.Filename, err)
		return outcome
	}

	outcome.Path = v.Filename
	outcome.Width = out.Rect.Dx()
	outcome.Height = out.Rect.Dy()
	outcome.Size = int64(len(data))
	outcome.Hash = hasher.ContentHash(data)
	return outcome
}

// failJob records the same failure for every variant of a job.
func (p *Pipeline) failJob(rep *report.Report, job manifest.RenderJob, cause error) {
	for _, v := range job.Variants {
		rep.Add(report.Outcome{
			Source:  job.Source,
			Variant: v.Filename,
			Error:   cause.Error(),
		})
	}
}

// decodeSource reads a source image, anchored at InputDir when relative,
// into an NRGBA buffer shared read-only by the job's variants.
func (p *Pipeline) decodeSource(source string) (*image.NRGBA, error) {
	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.cfg.InputDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}
