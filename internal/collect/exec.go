package collect

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// lookPath is swapped out by tests.
var lookPath = exec.LookPath

var commandCache = struct {
	mu    sync.Mutex
	known map[string]bool
}{known: make(map[string]bool)}

// CommandExists reports whether name resolves on PATH. Results are
// memoized for the life of the process: availability cannot change
// mid-run and repeated lookups would be wasted work, especially when
// presets and the registry both probe the same commands.
func CommandExists(name string) bool {
	commandCache.mu.Lock()
	defer commandCache.mu.Unlock()
	if ok, seen := commandCache.known[name]; seen {
		return ok
	}
	_, err := lookPath(name)
	commandCache.known[name] = err == nil
	return err == nil
}

// resetCommandCache clears the memoized lookups. Tests only.
func resetCommandCache() {
	commandCache.mu.Lock()
	defer commandCache.mu.Unlock()
	commandCache.known = make(map[string]bool)
}

// firstCommand returns the first name that resolves on PATH, or "".
func firstCommand(names ...string) string {
	for _, name := range names {
		if CommandExists(name) {
			return name
		}
	}
	return ""
}

// runCommand executes name with args under ctx and returns stdout. The
// child runs with a sanitized environment: PATH and HOME pass through,
// and the locale is pinned to C so parsed output is identical on every
// host.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = sanitizedEnv()
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s timed out: %w", name, ctx.Err())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%s failed: %w (stderr: %s)", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s failed: %w", name, err)
	}
	return string(output), nil
}

func sanitizedEnv() []string {
	env := []string{"LANG=C", "LC_ALL=C"}
	if path := os.Getenv("PATH"); path != "" {
		env = append(env, "PATH="+path)
	}
	if home := os.Getenv("HOME"); home != "" {
		env = append(env, "HOME="+home)
	}
	return env
}
