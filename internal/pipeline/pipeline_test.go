package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picacho/renderpipe/internal/manifest"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func newTestPipeline(t *testing.T) (*Pipeline, string, string) {
	t.Helper()
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	p := New(Config{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Workers:   2,
		Logger:    zerolog.Nop(),
	})
	return p, inputDir, outputDir
}

func TestRunProducesDeclaredVariants(t *testing.T) {
	p, inputDir, outputDir := newTestPipeline(t)
	writePNG(t, filepath.Join(inputDir, "test_render.png"), 800, 600,
		color.NRGBA{R: 100, G: 100, B: 100, A: 255})

	doc := `
renders:
  - source: test_render.png
    variants:
      - filename: test_render_square.png
        operations:
          - type: grade
            exposure: 1.2
          - type: resize
            preset: square_1080
      - filename: test_render_custom.png
        operations:
          - type: resize
            size: [640, 360]
`
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)

	rep, err := p.Run(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, 2, rep.Stats.Succeeded, "failures: %v", rep.Failures())

	w, h := decodeSize(t, filepath.Join(outputDir, "test_render_square.png"))
	assert.Equal(t, [2]int{1080, 1080}, [2]int{w, h})

	w, h = decodeSize(t, filepath.Join(outputDir, "test_render_custom.png"))
	assert.Equal(t, [2]int{640, 360}, [2]int{w, h})

	// Exposure 1.2 brightens the square variant's center.
	f, err := os.Open(filepath.Join(outputDir, "test_render_square.png"))
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	r, _, _, _ := img.At(540, 540).RGBA()
	assert.GreaterOrEqual(t, int(r>>8), 118)

	for _, o := range rep.Outcomes {
		assert.NotEmpty(t, o.Hash)
	}
}

func TestRunDecodeFailureFailsOnlyThatJob(t *testing.T) {
	p, inputDir, outputDir := newTestPipeline(t)
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "broken.png"),
		[]byte("not an image"), 0o644))
	writePNG(t, filepath.Join(inputDir, "good.png"), 64, 64,
		color.NRGBA{R: 50, G: 50, B: 50, A: 255})

	m := &manifest.Manifest{Renders: []manifest.RenderJob{
		{Source: "broken.png", Variants: []manifest.Variant{
			{Filename: "broken_a.png"},
			{Filename: "broken_b.png"},
		}},
		{Source: "good.png", Variants: []manifest.Variant{
			{Filename: "good_out.png", Size: &[2]int{32, 32}},
		}},
	}}

	rep, err := p.Run(context.Background(), m)
	require.NoError(t, err, "decode failures must not abort the run")

	assert.Equal(t, 2, rep.Stats.Failed, "both variants of the broken source fail")
	assert.Equal(t, 1, rep.Stats.Succeeded)

	failures := rep.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, failures[0].Error, failures[1].Error, "same cause for all variants")

	_, err = os.Stat(filepath.Join(outputDir, "good_out.png"))
	assert.NoError(t, err, "healthy job still writes its output")
}

func TestRunDuplicateFilenameFailsBeforeDecoding(t *testing.T) {
	p, _, outputDir := newTestPipeline(t)

	// No source file exists: if validation did not run first, the job
	// would fail with a decode error instead of a validation error.
	m := &manifest.Manifest{Renders: []manifest.RenderJob{
		{Source: "missing.png", Variants: []manifest.Variant{
			{Filename: "same.png"},
			{Filename: "same.png"},
		}},
	}}

	_, err := p.Run(context.Background(), m)
	var dfe *manifest.DuplicateFilenameError
	require.True(t, errors.As(err, &dfe))

	entries, readErr := os.ReadDir(outputDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "nothing may be written")
}

func TestRunVariantFailureSparesSiblings(t *testing.T) {
	p, inputDir, outputDir := newTestPipeline(t)
	writePNG(t, filepath.Join(inputDir, "src.png"), 100, 100,
		color.NRGBA{R: 90, G: 90, B: 90, A: 255})

	m := &manifest.Manifest{Renders: []manifest.RenderJob{
		{Source: "src.png", Variants: []manifest.Variant{
			{Filename: "ok.png", Size: &[2]int{50, 50}},
			{Filename: "bad.png", Operations: []manifest.Operation{
				{Type: manifest.OpInpaint, Inpaint: &manifest.InpaintSpec{Mask: "missing_mask.png"}},
			}},
		}},
	}}

	rep, err := p.Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Stats.Succeeded)
	assert.Equal(t, 1, rep.Stats.Failed)

	_, err = os.Stat(filepath.Join(outputDir, "ok.png"))
	assert.NoError(t, err)
}

func TestRunLegacyProcessesDirectory(t *testing.T) {
	p, inputDir, outputDir := newTestPipeline(t)
	writePNG(t, filepath.Join(inputDir, "render.png"), 200, 100,
		color.NRGBA{R: 140, G: 120, B: 100, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "notes.txt"),
		[]byte("ignored"), 0o644))

	rep, err := p.RunLegacy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Stats.Succeeded, "failures: %v", rep.Failures())

	w, h := decodeSize(t, filepath.Join(outputDir, "render_processed.png"))
	assert.Equal(t, [2]int{4096, 2160}, [2]int{w, h}, "legacy mode targets 4K DCI")
}

func TestRunLegacyEmptyDirectory(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	_, err := p.RunLegacy(context.Background())
	assert.ErrorContains(t, err, "no images found")
}

func TestScanImagesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.png", "c.webp", "d.tif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".hidden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden", "e.png"), []byte("x"), 0o644))

	sources, err := ScanImages(dir)
	require.NoError(t, err)
	require.Len(t, sources, 3, "webp and hidden dirs are excluded")
	assert.Equal(t, "a.png", sources[0].RelPath)
	assert.Equal(t, "b.jpg", sources[1].RelPath)
	assert.Equal(t, "d.tif", sources[2].RelPath)
	assert.Equal(t, "d", sources[2].Stem)
	assert.Equal(t, ".tif", sources[2].Ext)
}
