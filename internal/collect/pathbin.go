package collect

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// pathbinCollector inventories loose executables in local bin
// directories: tools installed by hand, curl-to-bash installers, AppImage
// launchers. These have no package manager to ask about versions, so the
// version column stays unknown unless unsafe introspection is enabled,
// in which case each binary is run with --version under a short timeout.
type pathbinCollector struct {
	dirs []string
}

func newPathbinCollector() *pathbinCollector {
	dirs := []string{"/usr/local/bin"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append([]string{filepath.Join(home, ".local", "bin")}, dirs...)
	}
	return &pathbinCollector{dirs: dirs}
}

func (c *pathbinCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	var records []inventory.Record
	for _, dir := range c.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			// A missing bin directory is normal.
			continue
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rec, ok := c.examine(ctx, dir, entry, opts)
			if ok {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

func (c *pathbinCollector) examine(ctx context.Context, dir string, entry os.DirEntry, opts Options) (inventory.Record, bool) {
	if entry.IsDir() {
		return inventory.Record{}, false
	}
	path := filepath.Join(dir, entry.Name())

	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
		return inventory.Record{}, false
	}

	details := inventory.Unknown
	if target, err := os.Readlink(path); err == nil {
		details = "symlink to " + target
	}

	version := inventory.Unknown
	if opts.UnsafeIntrospection {
		version = probeVersion(ctx, path, opts.ProbeTimeout)
	}

	return inventory.Record{
		Name:    entry.Name(),
		Type:    inventory.TypeBinary,
		Source:  dir,
		Details: details,
		Version: version,
		Size:    inventory.FormatSize(info.Size()),
	}.Sanitize(), true
}

// probeVersion runs an arbitrary discovered binary with --version. This
// executes untrusted code, which is why it hides behind the unsafe
// introspection flag, and each probe is time-boxed so a binary that
// blocks on stdin cannot stall the scan.
func probeVersion(ctx context.Context, path string, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Env = sanitizedEnv()
	cmd.Stdin = nil
	// A probed binary may fork children that keep stdout open after the
	// kill; WaitDelay stops Output from waiting on them forever.
	cmd.WaitDelay = 200 * time.Millisecond
	out, err := cmd.Output()
	if err != nil {
		return inventory.Unknown
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return inventory.Unknown
	}
	return line
}
