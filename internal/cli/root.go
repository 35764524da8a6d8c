// Package cli implements the opsdeck command line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/OpsDeck/OpsDeck/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"   ___            ____            _\n" +
		"  / _ \\ _ __  ___|  _ \\  ___  ___| | __\n" +
		" | | | | '_ \\/ __| | | |/ _ \\/ __| |/ /\n" +
		" | |_| | |_) \\__ \\ |_| |  __/ (__|   <\n" +
		"  \\___/| .__/|___/____/ \\___|\\___|_|\\_\\\n" +
		"       |_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "opsdeck",
	Short: "OpsDeck - agent operations dashboard",
	Long:  color.CyanString(logo) + "\nA dashboard backend for orchestrating a crew of CLI agents.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}
