package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xwatch/pkg/config"
	"xwatch/pkg/logger"
	"xwatch/pkg/state"
)

var stateFilePath string

// stateCmd groups the watermark state commands
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the watermark state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted watermark mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStateStore()
		if err != nil {
			return err
		}

		marks, err := store.Load()
		if err != nil {
			return err
		}
		if len(marks) == 0 {
			fmt.Println("No watermarks stored.")
			return nil
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(marks)
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset [handle]",
	Short: "Drop the stored watermark for a handle",
	Long: `Drop the stored watermark for a handle (defaults to the configured one).
The next run reports the platform's default page of recent posts again;
resetting only causes redundant reporting, never data loss.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStateConfig()
		if err != nil {
			return err
		}

		handle := cfg.Watch.Handle
		if len(args) == 1 {
			handle = args[0]
		}

		store := state.NewStore(cfg.Watch.StateFile, logger.GetLogger())
		marks, err := store.Load()
		if err != nil {
			return err
		}

		if _, ok := marks.Get(handle); !ok {
			fmt.Printf("No watermark stored for @%s.\n", handle)
			return nil
		}

		marks.Remove(handle)
		if err := store.Save(marks); err != nil {
			return err
		}

		fmt.Printf("Watermark for @%s dropped.\n", handle)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)

	stateCmd.PersistentFlags().StringVar(&stateFilePath, "state-file", "", "watermark state file path")
}

func loadStateConfig() (*config.Config, error) {
	flags := make(map[string]interface{})
	if stateFilePath != "" {
		flags["state-file"] = stateFilePath
	}
	return config.Load(configFile, flags)
}

func openStateStore() (*state.Store, error) {
	cfg, err := loadStateConfig()
	if err != nil {
		return nil, err
	}
	return state.NewStore(cfg.Watch.StateFile, logger.GetLogger()), nil
}
