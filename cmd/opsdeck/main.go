// Package main is the entry point for the opsdeck CLI.
package main

import (
	"os"

	"github.com/OpsDeck/OpsDeck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
