// Package collect holds the collector catalog: one collector per external
// inventory source, plus the registry that resolves which of them a run
// will query. Collectors normalize raw tool output into inventory records
// and never touch the aggregation store themselves.
package collect

import (
	"context"
	"time"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// DefaultProbeTimeout bounds a single unsafe version probe so one hung
// binary cannot stall a scan.
const DefaultProbeTimeout = time.Second

// Options carries the read-only global modes passed to every collector.
type Options struct {
	// AllPackages includes dependencies and runtimes, not just top-level
	// applications. Only collectors that can tell the two apart honor it.
	AllPackages bool

	// UnsafeIntrospection permits executing discovered binaries to read
	// version output. Off by default.
	UnsafeIntrospection bool

	// ProbeTimeout is the budget for one unsafe version probe. Zero means
	// DefaultProbeTimeout.
	ProbeTimeout time.Duration
}

// Collector produces raw records from one external source. A collector
// must tolerate any working directory, assume nothing about the
// environment beyond a sane PATH, and honor ctx cancellation. Errors are
// reported to the pipeline, which turns them into warnings; a failing
// collector contributes zero records and never aborts a run.
type Collector interface {
	Collect(ctx context.Context, opts Options) ([]inventory.Record, error)
}

// CollectorFunc adapts a plain function to the Collector interface.
type CollectorFunc func(ctx context.Context, opts Options) ([]inventory.Record, error)

// Collect calls f.
func (f CollectorFunc) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	return f(ctx, opts)
}
