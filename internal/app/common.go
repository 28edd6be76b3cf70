package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/stocktake/internal/history"
	"github.com/blackwell-systems/stocktake/internal/inventory"
	"github.com/blackwell-systems/stocktake/internal/logging"
	"github.com/blackwell-systems/stocktake/internal/snapshots"
)

// dataDir returns ~/.stocktake, creating it if needed. The history
// database, saved snapshots, and watch daemon files all live here.
func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, ".stocktake")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// getDBPath returns the history database path, honoring the --db flag.
func getDBPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// getSnapshotDir returns the directory saved snapshots are written to.
func getSnapshotDir() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshots"), nil
}

// getDefaultPIDFile returns the watch daemon PID file path.
func getDefaultPIDFile() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the watch daemon log file path.
func getDefaultLogFile() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}

// openHistory opens the history store at the configured path.
func openHistory() (*history.Store, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	store, err := history.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

// newRecorder builds a snapshot recorder over the given store.
func newRecorder(store *history.Store) (*history.Recorder, error) {
	snapshotDir, err := getSnapshotDir()
	if err != nil {
		return nil, err
	}
	return history.NewRecorder(store, snapshotDir), nil
}

// writeReport writes the serialized report to path. When the target is
// unwritable the report is retried under os.TempDir with a warning, so
// a bad -o argument never discards a completed scan. Returns the path
// actually written.
func writeReport(path string, records []inventory.Record, format snapshots.Format) (string, error) {
	err := snapshots.WriteFile(path, records, format)
	if err == nil {
		return path, nil
	}

	fallback := filepath.Join(os.TempDir(), filepath.Base(path))
	if fbErr := snapshots.WriteFile(fallback, records, format); fbErr != nil {
		return "", fmt.Errorf("failed to write report to %s (%v) or fallback: %w", path, err, fbErr)
	}
	logging.Default(appLogger).Warn("output path unwritable, wrote report to fallback",
		"path", path, "fallback", fallback, "error", err)
	return fallback, nil
}
