// Package watcher keeps the inventory current by watching native package
// database paths for changes.
//
// An fsnotify watcher covers the locations the package managers write to
// (pacman's local db, the dpkg state directory, flatpak installations,
// the snapd snap directory). Package transactions touch these paths many
// times in quick succession, so events are debounced: the rescan callback
// fires once per settled burst, labeled with the sources that changed.
//
// Key features:
//   - fsnotify watches over existing database paths only
//   - Debounced, coalesced rescans (one per package transaction)
//   - Busy-skip with retry when a rescan outlives the debounce window
//   - Daemon mode with PID file management
//   - Graceful shutdown on SIGTERM/SIGINT
//
// Example usage:
//
//	w, err := watcher.New(watcher.DefaultSourcePaths(), 0, rescan, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Watch in the foreground
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//
//	// Or detach as a daemon
//	pid, err := watcher.StartDaemon(pidFile, logFile, "watch", "--daemon-child")
package watcher
