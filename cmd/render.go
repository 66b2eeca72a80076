package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/picacho/renderpipe/internal/manifest"
	"github.com/picacho/renderpipe/internal/pipeline"
	"github.com/picacho/renderpipe/internal/report"
)

var (
	renderManifest  string
	renderInputDir  string
	renderOutputDir string
	renderLegacy    bool
	renderWorkers   int
	renderQuality   int
)

var renderCmd = &cobra.Command{
	Use:   "render [input_dir] [output_dir]",
	Short: "Process renderings into their declared output variants",
	Long: `Reads a render manifest (YAML or JSON) and produces every declared
variant: crops, resizes, grades, inpaints and material enhancements, in
manifest order, plus a final letterbox to any explicit output size.

With --legacy no manifest is read; every image in the input directory is
resized to 4K DCI and written as <stem>_processed.<ext>.

Positional arguments override --input-dir and --output-dir.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderManifest, "manifest", "m", "", "manifest path (default: <input_dir>/manifest.{yml,yaml,json})")
	renderCmd.Flags().StringVar(&renderInputDir, "input-dir", "", "input directory (default: $RENDERPIPE_INPUT_DIR or ./input)")
	renderCmd.Flags().StringVar(&renderOutputDir, "output-dir", "", "output directory (default: $RENDERPIPE_OUTPUT_DIR or ./output)")
	renderCmd.Flags().BoolVar(&renderLegacy, "legacy", false, "manifest-less mode: resize everything to 4K DCI")
	renderCmd.Flags().IntVarP(&renderWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	renderCmd.Flags().IntVarP(&renderQuality, "quality", "q", 0, "JPEG quality 1-100 (0 = default 95)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(_ *cobra.Command, args []string) error {
	start := time.Now()

	inputDir := envOr("RENDERPIPE_INPUT_DIR", "input")
	if renderInputDir != "" {
		inputDir = renderInputDir
	}
	if len(args) > 0 {
		inputDir = args[0]
	}
	outputDir := envOr("RENDERPIPE_OUTPUT_DIR", "output")
	if renderOutputDir != "" {
		outputDir = renderOutputDir
	}
	if len(args) > 1 {
		outputDir = args[1]
	}

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	logger.Debug().Str("input", absInput).Str("output", absOutput).Msg("starting run")

	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Workers:   renderWorkers,
		Quality:   renderQuality,
		Logger:    logger,
	})

	var rep *report.Report
	if renderLegacy {
		rep, err = p.RunLegacy(context.Background())
	} else {
		var manifestPath string
		manifestPath, err = resolveManifestPath(absInput)
		if err != nil {
			return err
		}
		var m *manifest.Manifest
		m, err = manifest.Load(manifestPath)
		if err != nil {
			return err
		}
		rep, err = p.Run(context.Background(), m)
	}
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	reportPath := filepath.Join(absOutput, "renderpipe.report.json")
	if err := report.WriteJSON(rep, reportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printRunReport(rep, time.Since(start))

	if rep.Stats.Failed > 0 {
		return fmt.Errorf("%d of %d variants failed", rep.Stats.Failed, rep.Stats.Variants)
	}
	return nil
}

// resolveManifestPath honors --manifest, then looks for conventional
// names inside the input directory.
func resolveManifestPath(inputDir string) (string, error) {
	if renderManifest != "" {
		return renderManifest, nil
	}
	for _, name := range []string{"manifest.yml", "manifest.yaml", "manifest.json"} {
		candidate := filepath.Join(inputDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no manifest found in %s (use --manifest, or --legacy for manifest-less mode)", inputDir)
}

func printRunReport(rep *report.Report, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║             renderpipe run complete              ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	s := rep.Stats
	fmt.Printf("  Sources:     %d\n", s.Sources)
	fmt.Printf("  Variants:    %d  (%d ok, %d failed)\n", s.Variants, s.Succeeded, s.Failed)
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Workers:     %d\n", rep.Workers)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	if failures := rep.Failures(); len(failures) > 0 {
		fmt.Printf("  Failures:\n")
		for _, f := range failures {
			fmt.Printf("    ✗ %s → %s: %s\n", f.Source, f.Variant, f.Error)
		}
		fmt.Println()
	}

	fmt.Printf("  Report:      renderpipe.report.json\n")
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
