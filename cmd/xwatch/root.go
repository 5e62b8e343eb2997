package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command; invoked without a subcommand it runs
// a watch cycle
var rootCmd = &cobra.Command{
	Use:   "xwatch [handle]",
	Short: "Watch an X account for new posts",
	Long: `xwatch polls the X API v2 for new posts from a configured handle.

Each run resolves the handle, fetches posts newer than the stored watermark,
prints a chronological summary with WIB timestamps, writes a per-run markdown
report, and advances the watermark so the next run only sees newer posts.

A bearer token is required. Provide it via the X_BEARER_TOKEN environment
variable or store one with 'xwatch auth login'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, args)
	},
}

// Execute runs the CLI. Failures terminate with a single diagnostic line
// and a non-zero status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .xwatch.yaml or ~/.config/xwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`xwatch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
