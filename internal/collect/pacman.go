package collect

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// pacmanCollector reads the local pacman database. With foreign unset it
// reports native repo packages; with foreign set it reports foreign (AUR)
// packages. Both variants share one memoized orphan set from pacman
// -Qtdq, so a scan with repo and aur enabled queries it once.
type pacmanCollector struct {
	foreign bool
	orphans *pacmanOrphanSet
}

// pacmanOrphanSet memoizes the orphan query for one run. The repo and
// aur collectors run concurrently; whichever asks first performs the
// query and both see the same result, errors included.
type pacmanOrphanSet struct {
	// load is swapped out by tests; nil means pacmanOrphans.
	load func(ctx context.Context) (map[string]bool, error)

	once sync.Once
	set  map[string]bool
	err  error
}

func (o *pacmanOrphanSet) get(ctx context.Context) (map[string]bool, error) {
	o.once.Do(func() {
		load := o.load
		if load == nil {
			load = pacmanOrphans
		}
		o.set, o.err = load(ctx)
	})
	return o.set, o.err
}

// orphanSet resolves the orphan names, sharing the memoized set when
// the registry wired one in.
func (c *pacmanCollector) orphanSet(ctx context.Context) (map[string]bool, error) {
	if c.orphans == nil {
		return pacmanOrphans(ctx)
	}
	return c.orphans.get(ctx)
}

// pacmanEntry is one parsed block of `pacman -Qi` output.
type pacmanEntry struct {
	name        string
	version     string
	description string
	size        string
	explicit    bool
}

func (c *pacmanCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	queryArg := "-Qni"
	typ := inventory.TypeRepo
	source := "pacman/repo"
	if c.foreign {
		queryArg = "-Qmi"
		typ = inventory.TypeAUR
		source = "pacman/aur"
	}

	// pacman -Q exits 1 with silent stderr when the query matches nothing,
	// e.g. -Qmi on a box with no foreign packages. That is an empty
	// listing, not a failure.
	out, err := runCommand(ctx, "pacman", queryArg)
	if err != nil {
		if isEmptyQuery(err) {
			return nil, nil
		}
		return nil, err
	}

	orphans, err := c.orphanSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphans: %w", err)
	}

	var records []inventory.Record
	for _, e := range parsePacmanInfo(out) {
		if !opts.AllPackages && !e.explicit {
			continue
		}
		records = append(records, inventory.Record{
			Name:     e.name,
			Type:     typ,
			Source:   source,
			Details:  e.description,
			Version:  e.version,
			Size:     e.size,
			Orphaned: orphans[e.name],
		}.Sanitize())
	}
	return records, nil
}

// parsePacmanInfo parses the block format of `pacman -Qi`: one
// "Key : Value" line per field, blank line between packages. Wrapped
// continuation lines start with whitespace and are skipped; every field
// this collector keeps fits on one line.
func parsePacmanInfo(out string) []pacmanEntry {
	var entries []pacmanEntry
	var cur pacmanEntry

	flush := func() {
		if cur.name != "" {
			entries = append(entries, cur)
		}
		cur = pacmanEntry{}
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			cur.name = value
		case "Version":
			cur.version = value
		case "Description":
			cur.description = value
		case "Installed Size":
			cur.size = value
		case "Install Reason":
			cur.explicit = strings.HasPrefix(value, "Explicitly")
		}
	}
	flush()
	return entries
}

// pacmanOrphans returns the set of packages installed as dependencies
// that nothing depends on anymore. pacman -Qtdq exits 1 with no output
// when there are no orphans; that is an empty set, not a failure.
func pacmanOrphans(ctx context.Context) (map[string]bool, error) {
	out, err := runCommand(ctx, "pacman", "-Qtdq")
	if err != nil {
		if isEmptyQuery(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}

	orphans := make(map[string]bool)
	for _, name := range strings.Fields(out) {
		orphans[name] = true
	}
	return orphans, nil
}

func isEmptyQuery(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && len(exitErr.Stderr) == 0
}
