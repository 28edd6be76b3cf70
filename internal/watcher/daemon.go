package watcher

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// StartDaemon re-executes the current binary detached from the terminal,
// writes its PID to pidFile and redirects output to logFile. childArgs
// are the arguments the child runs with, e.g. "watch --daemon-child".
func StartDaemon(pidFile, logFile string, childArgs ...string) (int, error) {
	if _, running, err := DaemonStatus(pidFile); err != nil {
		return 0, fmt.Errorf("failed to check daemon status: %w", err)
	} else if running {
		return 0, fmt.Errorf("daemon already running (PID file: %s)", pidFile)
	}

	logF, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, childArgs...)
	cmd.Stdout = logF
	cmd.Stderr = logF
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // new session, survives the parent's terminal
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon process: %w", err)
	}

	pid := cmd.Process.Pid
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		cmd.Process.Kill()
		return 0, fmt.Errorf("failed to write PID file: %w", err)
	}

	if err := cmd.Process.Release(); err != nil {
		return 0, fmt.Errorf("failed to release process: %w", err)
	}

	return pid, nil
}

// RunDaemon runs the watcher until SIGTERM or SIGINT, then cleans up the
// PID file. This is the body of the daemon child process.
func (w *Watcher) RunDaemon(pidFile string) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sig := <-sigCh
	w.logger.Info("shutting down", "signal", sig.String())

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}

	if err := os.Remove(pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// StopDaemon sends SIGTERM to the daemon named by pidFile and waits
// briefly for it to exit. The daemon removes its own PID file on clean
// shutdown; a leftover file after the wait is removed here.
func StopDaemon(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("daemon not running (no PID file at %s)", pidFile)
		}
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to process %d: %w", pid, err)
	}

	for i := 0; i < 20; i++ {
		if process.Signal(syscall.Signal(0)) != nil {
			os.Remove(pidFile)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	// Still running; shutdown continues in the background.
	return nil
}

// DaemonStatus reports the daemon PID and whether that process is alive.
// A stale PID file (dead process or unparseable content) is removed and
// reported as not running.
func DaemonStatus(pidFile string) (int, bool, error) {
	pid, err := readPID(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		// Unparseable PID file: treat as stale.
		os.Remove(pidFile)
		return 0, false, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false, nil
	}
	if process.Signal(syscall.Signal(0)) != nil {
		os.Remove(pidFile)
		return 0, false, nil
	}
	return pid, true, nil
}

// IsDaemonRunning reports whether the daemon named by pidFile is alive.
func IsDaemonRunning(pidFile string) (bool, error) {
	_, running, err := DaemonStatus(pidFile)
	return running, err
}

// readPID parses the process id stored at path. The os.IsNotExist check
// on the returned error distinguishes "no daemon" from real failures.
func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in %s: %w", path, err)
	}
	return pid, nil
}
