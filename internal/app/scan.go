package app

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stocktake/internal/collect"
	"github.com/blackwell-systems/stocktake/internal/config"
	"github.com/blackwell-systems/stocktake/internal/inventory"
	"github.com/blackwell-systems/stocktake/internal/output"
	"github.com/blackwell-systems/stocktake/internal/scanner"
	"github.com/blackwell-systems/stocktake/internal/snapshots"
)

var (
	scanSources []string
	scanExclude []string
	scanPreset  string
	scanAll     bool
	scanOrphans bool
	scanFilter  string
	scanFormat  string
	scanOutput  string
	scanTimeout time.Duration
	scanJobs    int
	scanUnsafe  bool
	scanSave    bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Inventory installed software across all available sources",
		Long: `Scan every enabled source in parallel and merge the results into one
sorted report.

By default every source available on this host is queried. Narrow the
set with --sources, --exclude, or --preset. Sources that are requested
but unavailable are skipped with a warning, never an error.

Each source runs under its own timeout; a slow or failing source costs
its own records only. Warnings go to stderr so the report on stdout
stays clean for piping and redirection.`,
		Example: `  # Scan everything
  stocktake scan

  # Distro packages only, including dependencies
  stocktake scan --preset system --all

  # Orphaned packages matching a name
  stocktake scan --orphans --filter lib

  # Canonical snapshot to a file, saved in history too
  stocktake scan -o today.tsv --save

  # JSON to stdout
  stocktake scan --format json`,
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().StringSliceVar(&scanSources, "sources", nil, "comma-separated source ids to scan (default: all available)")
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil, "comma-separated source ids to skip")
	scanCmd.Flags().StringVar(&scanPreset, "preset", "", "scan a named source preset")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "include dependencies and runtimes, not just applications")
	scanCmd.Flags().BoolVar(&scanOrphans, "orphans", false, "only report orphaned packages")
	scanCmd.Flags().StringVar(&scanFilter, "filter", "", "only report packages whose name contains this term")
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "output format: tsv, csv, json (default: table on a terminal)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write the report to a file instead of stdout")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", scanner.DefaultTimeout, "per-source timeout")
	scanCmd.Flags().IntVar(&scanJobs, "jobs", 0, "max sources scanned at once (0 = all)")
	scanCmd.Flags().BoolVar(&scanUnsafe, "unsafe-introspection", false, "allow executing discovered binaries to probe versions")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "record the run and its snapshot in history")

	scanCmd.MarkFlagsMutuallyExclusive("sources", "preset")
}

func runScan(cmd *cobra.Command, args []string) error {
	registry := collect.NewRegistry()
	if err := appConfig.CheckSources(registry.IDs()); err != nil {
		return err
	}

	sel, err := resolveSelection(registry, scanSources, scanExclude, scanPreset, appConfig)
	if err != nil {
		return err
	}
	for _, skip := range sel.Skipped {
		appLogger.Warn("source skipped", "source", skip.ID, "reason", skip.Reason)
	}

	runCfg := scanConfig(cmd, sel, appConfig)

	sc := scanner.New(registry, appLogger)

	// Progress goes to stderr, and only when someone is watching.
	var progress *output.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) && len(sel.Enabled) > 0 {
		progress = output.NewProgress(len(sel.Enabled), "Scanning sources")
		sc.OnCollectorDone = func(source string, done, total int) {
			progress.SetCurrent(done)
		}
	}

	report, err := sc.Run(cmd.Context(), runCfg)
	if err != nil {
		return err
	}
	if progress != nil {
		progress.Finish()
	}

	if err := renderReport(cmd, report); err != nil {
		return err
	}

	if scanSave {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		recorder, err := newRecorder(store)
		if err != nil {
			return err
		}
		run, err := recorder.Record(report.Records, report.Summary, len(report.Warnings), report.Duration)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s (%s)\n", run.ID[:8], run.SnapshotPath)
	}

	return nil
}

// resolveSelection turns the source flags and config file into the
// resolved source set for a run. A preset replaces the include list;
// exclusions and per-source config overrides apply on the default path.
func resolveSelection(registry *collect.Registry, include, exclude []string, preset string, cfg *config.Config) (collect.Selection, error) {
	if preset != "" {
		return registry.ResolvePreset(preset, cfg.Presets)
	}
	return registry.EnabledSources(include, exclude, cfg.Sources)
}

// scanConfig merges flags over config file values. A flag that was set
// on the command line always wins; otherwise the file value applies,
// then the built-in default.
func scanConfig(cmd *cobra.Command, sel collect.Selection, cfg *config.Config) scanner.Config {
	all := cfg.Scan.AllPackages
	if cmd.Flags().Changed("all") {
		all = scanAll
	}
	unsafe := cfg.Scan.UnsafeIntrospection
	if cmd.Flags().Changed("unsafe-introspection") {
		unsafe = scanUnsafe
	}
	timeout := scanTimeout
	if !cmd.Flags().Changed("timeout") && cfg.Scan.TimeoutValue > 0 {
		timeout = cfg.Scan.TimeoutValue
	}
	jobs := scanJobs
	if !cmd.Flags().Changed("jobs") && cfg.Scan.Jobs > 0 {
		jobs = cfg.Scan.Jobs
	}

	return scanner.Config{
		Selection: sel,
		Filter: inventory.Filter{
			OrphansOnly: scanOrphans,
			Term:        scanFilter,
		},
		Options: collect.Options{
			AllPackages:         all,
			UnsafeIntrospection: unsafe,
		},
		Timeout: timeout,
		Jobs:    jobs,
	}
}

// renderReport writes the report where the flags point it: a file, a
// serialized format on stdout, or the human table.
func renderReport(cmd *cobra.Command, report *scanner.Report) error {
	if scanOutput != "" {
		name := scanFormat
		if name == "" {
			name = string(snapshots.FormatTSV)
		}
		format, err := snapshots.ParseFormat(name)
		if err != nil {
			return err
		}
		path, err := writeReport(scanOutput, report.Records, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s (%d packages)\n", path, report.Summary.Total)
		return nil
	}

	if scanFormat != "" {
		format, err := snapshots.ParseFormat(scanFormat)
		if err != nil {
			return err
		}
		return snapshots.Write(cmd.OutOrStdout(), report.Records, format)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderRecordTable(report.Records))
	fmt.Fprint(out, output.RenderSummary(report.Summary))
	return nil
}
