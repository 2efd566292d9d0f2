package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "lesson-bot",
	Short:        "Telegram bot with school lesson schedules",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); env only when empty")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
