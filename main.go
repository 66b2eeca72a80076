package main

import (
	"os"

	"github.com/picacho/renderpipe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
