package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stocktake/internal/collect"
	"github.com/blackwell-systems/stocktake/internal/history"
	"github.com/blackwell-systems/stocktake/internal/logging"
	"github.com/blackwell-systems/stocktake/internal/output"
	"github.com/blackwell-systems/stocktake/internal/scanner"
	"github.com/blackwell-systems/stocktake/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchStop        bool
	watchStatus      bool
	watchPIDFile     string
	watchLogFile     string
	watchDebounce    time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Rescan automatically when package databases change",
		Long: `Watch the native package databases of the available sources and run a
scan whenever they change. Every rescan is saved to history, so
'stocktake diff --last' always shows what the latest install or removal
changed.

Events are debounced: a package transaction that touches the database
many times triggers a single rescan once it settles.

Watch modes:
  • Foreground (default): run in this terminal, Ctrl+C to stop
  • --daemon: detach into the background with a PID file
  • --stop / --status: control a running daemon`,
		Example: `  # Watch in the foreground
  stocktake watch

  # Run in the background
  stocktake watch --daemon

  # Check on it, stop it
  stocktake watch --status
  stocktake watch --stop`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as a background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for the daemon child process")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop a running daemon")
	watchCmd.Flags().BoolVar(&watchStatus, "status", false, "report whether the daemon is running")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.stocktake/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "daemon log path (default: ~/.stocktake/watch.log)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a rescan fires")

	watchCmd.Flags().MarkHidden("daemon-child")
	watchCmd.MarkFlagsMutuallyExclusive("daemon", "stop", "status")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		pidFile, err := getDefaultPIDFile()
		if err != nil {
			return err
		}
		watchPIDFile = pidFile
	}
	if watchLogFile == "" {
		logFile, err := getDefaultLogFile()
		if err != nil {
			return err
		}
		watchLogFile = logFile
	}

	switch {
	case watchStop:
		return stopWatchDaemon(cmd)
	case watchStatus:
		return watchDaemonStatus(cmd)
	case watchDaemon:
		return startWatchDaemon(cmd)
	}

	// The daemon child's own PID is already in the file; only a fresh
	// foreground run needs to check for a competing daemon.
	if !watchDaemonChild {
		if err := ensureNoDaemon(watchPIDFile); err != nil {
			return err
		}
	}

	// Rescan activity logs at info level; lift the default warn-only
	// level so the foreground terminal and daemon log show it.
	if !flagVerbose {
		appLogger = logging.NewAt(os.Stderr, slog.LevelInfo)
	}

	w, cleanup, err := buildWatcher()
	if err != nil {
		return err
	}
	defer cleanup()

	if watchDaemonChild {
		return w.RunDaemon(watchPIDFile)
	}
	return runWatchForeground(cmd, w)
}

// buildWatcher assembles the watcher with a rescan callback that runs
// the full pipeline and records the result in history. The returned
// cleanup closes the history store once the watcher is done with it.
func buildWatcher() (*watcher.Watcher, func(), error) {
	registry := collect.NewRegistry()
	if err := appConfig.CheckSources(registry.IDs()); err != nil {
		return nil, nil, err
	}

	sel, err := registry.EnabledSources(nil, nil, appConfig.Sources)
	if err != nil {
		return nil, nil, err
	}

	runCfg := scanner.Config{
		Selection: sel,
		Options: collect.Options{
			AllPackages:         appConfig.Scan.AllPackages,
			UnsafeIntrospection: appConfig.Scan.UnsafeIntrospection,
		},
		Timeout: appConfig.Scan.TimeoutValue,
		Jobs:    appConfig.Scan.Jobs,
	}

	store, err := openHistory()
	if err != nil {
		return nil, nil, err
	}
	recorder, err := newRecorder(store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	sc := scanner.New(registry, appLogger)
	rescan := func(ctx context.Context, trigger string) error {
		return rescanAndRecord(ctx, sc, runCfg, recorder, trigger, os.Stderr)
	}

	w, err := watcher.New(watcher.DefaultSourcePaths(), watchDebounce, rescan, appLogger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return w, func() { store.Close() }, nil
}

// rescanAndRecord is the body of one watch-triggered rescan. status gets
// the spinner: an animation on a foreground terminal, one line per phase
// in a daemon log.
func rescanAndRecord(ctx context.Context, sc *scanner.Scanner, cfg scanner.Config, recorder *history.Recorder, trigger string, status io.Writer) error {
	spinner := output.NewSpinner(fmt.Sprintf("Rescanning after %s change", trigger))
	spinner.SetWriter(status)
	spinner.Start()

	report, err := sc.Run(ctx, cfg)
	if err != nil {
		spinner.Stop()
		return err
	}
	run, err := recorder.Record(report.Records, report.Summary, len(report.Warnings), report.Duration)
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to record rescan: %w", err)
	}
	spinner.StopWithMessage(fmt.Sprintf("✓ Rescan saved: %d packages (run %s)", report.Summary.Total, run.ID[:8]))

	logging.Default(appLogger).Info("rescan saved", "trigger", trigger, "run", run.ID[:8],
		"total", report.Summary.Total, "duration", report.Duration)
	return nil
}

// ensureNoDaemon refuses to start a foreground watcher while a daemon
// is already watching the same databases.
func ensureNoDaemon(pidFile string) error {
	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("watch daemon already running; stop it with 'stocktake watch --stop'")
	}
	return nil
}

func startWatchDaemon(cmd *cobra.Command) error {
	childArgs := []string{"watch", "--daemon-child", "--pid-file", watchPIDFile, "--log-file", watchLogFile}
	if watchDebounce != watcher.DefaultDebounce {
		childArgs = append(childArgs, "--debounce", watchDebounce.String())
	}
	if flagConfig != "" {
		childArgs = append(childArgs, "--config", flagConfig)
	}
	if flagDB != "" {
		childArgs = append(childArgs, "--db", flagDB)
	}
	if flagVerbose {
		childArgs = append(childArgs, "--verbose")
	}

	pid, err := watcher.StartDaemon(watchPIDFile, watchLogFile, childArgs...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watch daemon started (PID %d)\n", pid)
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: stocktake watch --stop\n")
	return nil
}

func stopWatchDaemon(cmd *cobra.Command) error {
	spinner := output.NewSpinner("Stopping daemon")
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithMessage("✓ Watch daemon stopped")
	return nil
}

func watchDaemonStatus(cmd *cobra.Command) error {
	pid, running, err := watcher.DaemonStatus(watchPIDFile)
	if err != nil {
		return err
	}
	if running {
		fmt.Fprintf(cmd.OutOrStdout(), "Watch daemon running (PID %d)\n", pid)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Watch daemon not running")
	}
	return nil
}

func runWatchForeground(cmd *cobra.Command, w *watcher.Watcher) error {
	if err := w.Start(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Watching package databases (Ctrl+C to stop):")
	for _, p := range w.Paths() {
		fmt.Fprintf(out, "  %-10s %s\n", p.Label, p.Path)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	fmt.Fprintf(out, "\nReceived %v, shutting down\n", sig)

	return w.Stop()
}
