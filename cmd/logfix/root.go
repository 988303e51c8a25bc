package main

import (
	"logfix/internal/version"

	"github.com/spf13/cobra"
)

var (
	// formatFlag is the CLI --format flag value
	formatFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "logfix",
	Short: "logfix - structured logging call migrator",
	Long: `logfix rewrites template-style diagnostic logging calls into compiler-checked
interpolated calls across a C# codebase. It discovers candidate calls, binds
template placeholders to their arguments, and rewrites each call in place with
a full backup of every modified file.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate("logfix version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "human",
		"Output format: json or human")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default from config)")
}
