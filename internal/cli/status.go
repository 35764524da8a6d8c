package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/OpsDeck/OpsDeck/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ OpsDeck Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 OpsDeck Status")
		fmt.Printf("Version: %s\n", version)

		// Check config
		configPath, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Println("Config:   ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:   ✗ Not found (defaults will be used)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:   ✗ Unable to load: %v\n", err)
			return
		}

		// Agent CLI on PATH
		if _, err := exec.LookPath(cfg.Agents.Binary); err == nil {
			fmt.Println("Agents:   ✓ CLI found (" + cfg.Agents.Binary + ")")
		} else {
			fmt.Println("Agents:   ✗ CLI not found (built-in roster will be used)")
		}

		// State file
		if _, err := os.Stat(cfg.Paths.State); err == nil {
			fmt.Println("State:    ✓ Found (" + cfg.Paths.State + ")")
		} else {
			fmt.Println("State:    ✗ Not found (created on first write)")
		}

		check := func(label string, configured bool) {
			if configured {
				fmt.Println(label + " ✓ Configured")
			} else {
				fmt.Println(label + " ✗ Disabled")
			}
		}
		check("Sheets:  ", cfg.Sheets.URL != "")
		check("Mail:    ", cfg.Mail.BaseURL != "" && cfg.Mail.APIKey != "")
		check("Slack:   ", cfg.Slack.Token != "" && cfg.Slack.Channel != "")
		check("Events:  ", cfg.Events.Brokers != "")

		fmt.Println("Status:   Ready")
	},
}
