// Package scanner runs the collection pipeline: enabled collectors in
// parallel, their output funneled through the filter into the store,
// then one single-threaded pass to sort and summarize. All apparent
// ordering in a report comes from that final pass, never from the order
// collectors happen to finish in.
package scanner

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blackwell-systems/stocktake/internal/collect"
	"github.com/blackwell-systems/stocktake/internal/inventory"
	"github.com/blackwell-systems/stocktake/internal/logging"
)

// ErrNoOrphanSource means orphans-only mode was requested while no
// enabled source can detect orphans. Fatal before any collector runs.
var ErrNoOrphanSource = errors.New("orphans-only mode requires an orphan-capable source")

// DefaultTimeout is the per-collector budget when none is configured.
const DefaultTimeout = 30 * time.Second

// Scanner coordinates one or more pipeline runs over a registry.
type Scanner struct {
	registry *collect.Registry
	logger   *slog.Logger

	// OnCollectorDone, when set, is called as each collector settles.
	// Drives progress display; must be safe for concurrent calls.
	OnCollectorDone func(source string, done, total int)
}

// New creates a Scanner over the given registry.
func New(registry *collect.Registry, logger *slog.Logger) *Scanner {
	return &Scanner{
		registry: registry,
		logger:   logging.Default(logger).With("component", "scanner"),
	}
}

// Config is the validated configuration for one run. It is assembled
// upstream (flags, config file, or defaults) and consumed identically
// regardless of where it came from.
type Config struct {
	Selection collect.Selection
	Filter    inventory.Filter
	Options   collect.Options

	// Timeout is the independent budget for each collector. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// Jobs bounds how many collectors run at once. Zero means all.
	Jobs int
}

// Validate rejects configurations that cannot produce a meaningful run.
// It must pass before any collector starts.
func (s *Scanner) Validate(cfg Config) error {
	if cfg.Filter.OrphansOnly && !s.registry.HasOrphanCapable(cfg.Selection) {
		var capable []string
		for _, d := range s.registry.Definitions() {
			if d.OrphanCapable {
				capable = append(capable, d.ID)
			}
		}
		return fmt.Errorf("%w (orphan-capable: %s)", ErrNoOrphanSource, strings.Join(capable, ", "))
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("invalid collector timeout %v", cfg.Timeout)
	}
	for _, id := range cfg.Selection.Enabled {
		if _, ok := s.registry.Lookup(id); !ok {
			return fmt.Errorf("%w: %q", collect.ErrUnknownSource, id)
		}
	}
	return nil
}

// Warning is one non-fatal problem from the collection phase.
type Warning struct {
	Source string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Source, w.Err)
}

// Report is the immutable outcome of one run. Records are sorted and
// Summary is computed from exactly that sorted sequence.
type Report struct {
	Records  []inventory.Record
	Summary  inventory.Summary
	Warnings []Warning
	Skipped  []collect.Skip
	Started  time.Time
	Duration time.Duration
}
