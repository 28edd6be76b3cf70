package history

import "time"

// Run represents one recorded scan.
type Run struct {
	ID           string
	CreatedAt    time.Time
	Total        int
	Duration     time.Duration
	Warnings     int
	SnapshotPath string
}

// RunType is the per-type breakdown of a recorded scan.
type RunType struct {
	RunID   string
	Type    string
	Count   int
	Orphans int
}
