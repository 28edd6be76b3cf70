package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/stocktake/internal/inventory"
	"github.com/blackwell-systems/stocktake/internal/snapshots"
)

// Recorder saves completed scans: the canonical snapshot file plus the
// run row describing it.
type Recorder struct {
	store       *Store
	snapshotDir string
}

// NewRecorder creates a Recorder writing snapshot files to snapshotDir.
func NewRecorder(store *Store, snapshotDir string) *Recorder {
	return &Recorder{
		store:       store,
		snapshotDir: snapshotDir,
	}
}

// Record writes the sorted records as a canonical snapshot file and
// inserts the matching run. The returned run carries the snapshot path.
func (r *Recorder) Record(records []inventory.Record, summary inventory.Summary, warnings int, duration time.Duration) (*Run, error) {
	if err := os.MkdirAll(r.snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	id := uuid.NewString()
	now := time.Now()

	// Timestamp for humans browsing the directory, ID fragment for
	// uniqueness within a second.
	name := fmt.Sprintf("%s-%s.tsv", now.Format("2006-01-02-150405"), id[:8])
	path := filepath.Join(r.snapshotDir, name)

	if err := snapshots.WriteFile(path, records, snapshots.FormatTSV); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		CreatedAt:    now,
		Total:        summary.Total,
		Duration:     duration,
		Warnings:     warnings,
		SnapshotPath: path,
	}
	types := make([]RunType, 0, len(summary.Types))
	for _, tc := range summary.Types {
		types = append(types, RunType{RunID: id, Type: tc.Type, Count: tc.Count, Orphans: tc.Orphans})
	}

	if err := r.store.InsertRun(run, types); err != nil {
		// Clean up the snapshot file if the insert fails
		os.Remove(path)
		return nil, err
	}
	return run, nil
}
