package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/stocktake/internal/collect"
	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// Run executes the pipeline once. Collectors run in parallel, each under
// its own timeout; a failing or timed-out collector becomes a warning
// and zero records, never a cancelled run. The error return covers
// configuration problems only.
func (s *Scanner) Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := s.Validate(cfg); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	started := time.Now()
	store := inventory.NewStore()

	var warnMu sync.Mutex
	var warnings []Warning

	total := len(cfg.Selection.Enabled)
	var done atomic.Int32

	// The group exists for its concurrency limit; workers never return
	// errors, so one slow or broken source cannot cancel its siblings.
	g := new(errgroup.Group)
	if cfg.Jobs > 0 {
		g.SetLimit(cfg.Jobs)
	}

	for _, id := range cfg.Selection.Enabled {
		def, _ := s.registry.Lookup(id)
		g.Go(func() error {
			records, err := s.collectOne(ctx, def, cfg.Options, timeout)
			if err != nil {
				s.logger.Warn("collector failed", "source", def.ID, "error", err)
				warnMu.Lock()
				warnings = append(warnings, Warning{Source: def.ID, Err: err})
				warnMu.Unlock()
			} else {
				s.ingest(def.ID, records, cfg.Filter, store)
			}
			if s.OnCollectorDone != nil {
				s.OnCollectorDone(def.ID, int(done.Add(1)), total)
			}
			return nil
		})
	}
	g.Wait()

	// Everything below runs single-threaded over an immutable copy.
	records := store.Records()
	inventory.Sort(records)
	summary := inventory.Summarize(records)

	if summary.Total == 0 {
		s.logger.Warn("no records after filtering; report is empty")
	}

	return &Report{
		Records:  records,
		Summary:  summary,
		Warnings: warnings,
		Skipped:  cfg.Selection.Skipped,
		Started:  started,
		Duration: time.Since(started),
	}, nil
}

// collectOne invokes a single collector under its own deadline.
func (s *Scanner) collectOne(ctx context.Context, def collect.Definition, opts collect.Options, timeout time.Duration) ([]inventory.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return def.Collector.Collect(ctx, opts)
}

// ingest sanitizes, filters, and stores one collector's output.
func (s *Scanner) ingest(source string, records []inventory.Record, filter inventory.Filter, store *inventory.Store) {
	dropped := 0
	for _, r := range records {
		r = r.Sanitize()
		if !r.Valid() {
			dropped++
			continue
		}
		if !filter.Matches(r) {
			continue
		}
		store.Add(r)
	}
	if dropped > 0 {
		s.logger.Debug("dropped invalid records", "source", source, "count", dropped)
	}
}
