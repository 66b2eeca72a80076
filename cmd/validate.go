package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picacho/renderpipe/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a render manifest without processing anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	m, err := manifest.Load(args[0])
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		return fmt.Errorf("validation failed")
	}

	if err := manifest.Validate(m); err != nil {
		fmt.Printf("  ✗ %v\n", err)
		return fmt.Errorf("validation failed")
	}

	variants := 0
	for _, job := range m.Renders {
		variants += len(job.Variants)
	}
	fmt.Println("  ✓ Manifest is valid")
	fmt.Printf("  ✓ %d sources, %d variants\n", len(m.Renders), variants)
	return nil
}
