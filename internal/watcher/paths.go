package watcher

import (
	"os"
	"path/filepath"
	"strings"
)

// SourcePath is one filesystem location whose changes imply the installed
// set of a source changed. Label names the source in trigger messages.
type SourcePath struct {
	Label string
	Path  string
}

// DefaultSourcePaths returns the native package database locations that
// exist on this host. Sources whose databases are absent are simply not
// watched; package-manager state outside these paths (pip, npm, cargo)
// is too scattered to watch reliably and is covered by manual scans.
func DefaultSourcePaths() []SourcePath {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filterExisting(candidateSourcePaths(home))
}

// candidateSourcePaths lists every database location worth watching.
// Kept separate from the existence filter so the catalog is testable.
func candidateSourcePaths(home string) []SourcePath {
	paths := []SourcePath{
		{Label: "pacman", Path: "/var/lib/pacman/local"},
		{Label: "dpkg", Path: "/var/lib/dpkg"},
		{Label: "flatpak", Path: "/var/lib/flatpak/app"},
		{Label: "snap", Path: "/var/lib/snapd/snaps"},
	}
	if home != "" {
		paths = append(paths, SourcePath{Label: "flatpak", Path: filepath.Join(home, ".local", "share", "flatpak", "app")})
	}
	return paths
}

// filterExisting drops paths that are not directories on this host.
func filterExisting(candidates []SourcePath) []SourcePath {
	var out []SourcePath
	for _, p := range candidates {
		info, err := os.Stat(p.Path)
		if err != nil || !info.IsDir() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// matchSource maps an event path to the watched location containing it.
// fsnotify reports files inside watched directories, so a prefix match
// against the watch roots is enough.
func matchSource(paths []SourcePath, name string) (string, bool) {
	for _, p := range paths {
		if name == p.Path || strings.HasPrefix(name, p.Path+string(filepath.Separator)) {
			return p.Label, true
		}
	}
	return "", false
}
