package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picacho/renderpipe/internal/preset"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the aspect and resolution presets manifests may reference",
	Run:   runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(_ *cobra.Command, _ []string) {
	fmt.Println()
	fmt.Println("  Aspect presets (crop):")
	for _, name := range preset.AspectNames() {
		w, h, _ := preset.AspectTerms(name)
		ratio, _ := preset.Aspect(name)
		fmt.Printf("    %-14s %d:%-3d (%.4f)\n", name, w, h, ratio)
	}
	fmt.Println()
	fmt.Println("  Resolution presets (resize):")
	for _, name := range preset.ResolutionNames() {
		w, h, _ := preset.Resolution(name)
		fmt.Printf("    %-14s %d×%d\n", name, w, h)
	}
	fmt.Println()
}
