package main

import (
	"context"

	"github.com/spf13/cobra"

	"xwatch/pkg/auth"
	"xwatch/pkg/config"
	"xwatch/pkg/errors"
	"xwatch/pkg/logger"
	"xwatch/pkg/watcher"
	"xwatch/pkg/xapi"
)

var (
	// Watch command flags
	watchHandle string
	maxResults  int
	stateFile   string
	reportDir   string
)

// watchCmd is the explicit form of the default command
var watchCmd = &cobra.Command{
	Use:   "watch [handle]",
	Short: "Run one watch cycle for a handle",
	Long: `Run one complete watch cycle: resolve the handle to its account id, fetch
posts newer than the stored watermark (excluding reposts and replies), print
a chronological summary, write a timestamped report file, and advance the
watermark.

The run exits 0 when there is nothing new; only resolution and fetch
failures exit non-zero.`,
	Example: `  # Watch the configured default handle
  xwatch watch

  # Watch a specific handle with a custom state file
  xwatch watch alice --state-file /var/lib/xwatch/state.json

  # Write reports somewhere else
  xwatch watch alice --report-dir ./reports`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchHandle, "handle", "", "handle to watch (default from config)")
	watchCmd.Flags().IntVar(&maxResults, "max-results", 25, "page size requested per fetch (5-100)")
	watchCmd.Flags().StringVar(&stateFile, "state-file", "", "watermark state file path")
	watchCmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for report files")

	// Same flags on the root command so a bare invocation works
	rootCmd.Flags().StringVar(&watchHandle, "handle", "", "handle to watch (default from config)")
	rootCmd.Flags().IntVar(&maxResults, "max-results", 25, "page size requested per fetch (5-100)")
	rootCmd.Flags().StringVar(&stateFile, "state-file", "", "watermark state file path")
	rootCmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for report files")
}

// collectWatchFlags maps explicitly set command-line flags onto config
// override keys. Keying off Changed rather than the flag value keeps an
// explicit default (e.g. --max-results 25) overriding a config-file value.
func collectWatchFlags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("handle") {
		flags["handle"] = watchHandle
	}
	if len(args) == 1 {
		flags["handle"] = args[0]
	}
	if cmd.Flags().Changed("max-results") {
		flags["max-results"] = maxResults
	}
	if cmd.Flags().Changed("state-file") {
		flags["state-file"] = stateFile
	}
	if cmd.Flags().Changed("report-dir") {
		flags["report-dir"] = reportDir
	}
	if cmd.Flags().Changed("log-level") {
		flags["log-level"] = logLevel
	}
	return flags
}

func runWatch(cmd *cobra.Command, args []string) error {
	flags := collectWatchFlags(cmd, args)

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return errors.Newf(errors.ErrorTypeConfig, "failed to load configuration: %v", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return errors.Newf(errors.ErrorTypeConfig, "failed to initialize logging: %v", err)
	}
	log := logger.GetLogger()

	// Credential check happens before any network I/O
	if cfg.X.BearerToken == "" {
		if token, err := resolveStoredToken(); err == nil {
			cfg.X.BearerToken = token
		}
	}
	if cfg.X.BearerToken == "" {
		return errors.New(errors.ErrorTypeConfig,
			"missing "+auth.EnvTokenVar+" in environment (or store one with 'xwatch auth login')")
	}

	handle := xapi.SanitizeHandle(cfg.Watch.Handle)
	if !xapi.IsValidHandle(handle) {
		// Not rejected locally; the remote API is the authority on handles
		log.WarnWithFields("handle looks invalid, passing through to the API", map[string]interface{}{
			"handle": handle,
		})
	}

	log.WithField("version", version).Info("xwatch starting")

	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}

	result, err := w.Run(context.Background(), handle)
	if err != nil {
		log.WithError(err).WithField("handle", handle).Error("watch run failed")
		return err
	}

	log.InfoWithFields("watch run completed", map[string]interface{}{
		"handle":    result.Handle,
		"new_posts": result.NewPosts,
		"watermark": result.Watermark,
	})

	return nil
}

// resolveStoredToken falls back to the token store chain when the
// environment has no token
func resolveStoredToken() (string, error) {
	mgr, err := auth.NewManager()
	if err != nil {
		return "", err
	}
	return mgr.Retrieve()
}
