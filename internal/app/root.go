// Package app wires the stocktake commands. Each command assembles a
// configuration from flags and the config file, hands it to the pipeline
// or stores, and renders the result; nothing here parses external tool
// output or touches collector internals.
package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stocktake/internal/config"
	"github.com/blackwell-systems/stocktake/internal/logging"
	"github.com/blackwell-systems/stocktake/internal/output"
)

// Version is stamped by the build; "dev" for local builds.
var Version = "dev"

var (
	flagConfig  string
	flagDB      string
	flagVerbose bool
	flagColor   string

	// appConfig and appLogger are set by the root PersistentPreRunE
	// before any subcommand runs.
	appConfig *config.Config
	appLogger *slog.Logger

	// RootCmd is the root command for stocktake.
	RootCmd = &cobra.Command{
		Use:   "stocktake",
		Short: "Inventory the software installed on this machine",
		Long: `stocktake queries every package source it can find on the host -- distro
package managers, Flatpak, Snap, Docker, language package managers, local
LLM models, loose binaries -- and merges the results into one normalized
report that can be saved, exported, and compared over time.

A source that is missing or fails to answer never aborts a scan: it is
skipped with a warning and the report covers everything else.

Quick start:
  1. stocktake scan
  2. stocktake scan --save
  3. ...install or remove things...
  4. stocktake scan --save && stocktake diff --last

Examples:
  # Scan every available source
  stocktake scan

  # Only language package managers, orphans included
  stocktake scan --preset dev --all

  # Export as JSON
  stocktake scan --format json -o inventory.json

  # Compare two saved snapshots
  stocktake diff old.tsv new.tsv`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("stocktake: machine software inventory")
			fmt.Println()
			fmt.Println("Run 'stocktake scan' to inventory this machine.")
			fmt.Println("Run 'stocktake sources' to see what can be scanned.")
			fmt.Println("Run 'stocktake --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/stocktake/config.toml)")
	RootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "history database path (default: ~/.stocktake/history.db)")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging on stderr")
	RootCmd.PersistentFlags().StringVar(&flagColor, "color", "", "when to color output: auto, always, never")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(diffCmd)
	RootCmd.AddCommand(sourcesCmd)
	RootCmd.AddCommand(presetsCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(watchCmd)
}

// setup loads the config file and builds the process logger. Runs before
// every subcommand; configuration errors stop the command here, before
// any collector or store is touched.
func setup(cmd *cobra.Command) error {
	path := flagConfig
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return fmt.Errorf("failed to locate config file: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	appConfig = cfg

	color := flagColor
	if color == "" {
		color = cfg.Output.Color
	}
	if color == "" {
		color = "auto"
	}
	if err := output.SetColorMode(color); err != nil {
		return err
	}

	appLogger = logging.New(cmd.ErrOrStderr(), flagVerbose)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
