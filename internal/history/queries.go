package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNotEnoughRuns is returned when a comparison needs more saved runs
// than the history contains.
var ErrNotEnoughRuns = errors.New("fewer than two saved runs in history")

// InsertRun records a run and its per-type breakdown in one transaction.
func (s *Store) InsertRun(run *Run, types []RunType) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, created_at, total, duration_ms, warnings, snapshot_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.Format(time.RFC3339),
		run.Total,
		run.Duration.Milliseconds(),
		run.Warnings,
		run.SnapshotPath,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	for _, rt := range types {
		_, err := tx.Exec(`
			INSERT INTO run_types (run_id, type, count, orphans)
			VALUES (?, ?, ?, ?)
		`, run.ID, rt.Type, rt.Count, rt.Orphans)
		if err != nil {
			return fmt.Errorf("failed to insert run type %s: %w", rt.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns saved runs ordered by creation time (newest first).
// A limit of 0 returns all runs.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, created_at, total, duration_ms, warnings, snapshot_path
		FROM runs
		ORDER BY created_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, total, duration_ms, warnings, snapshot_path
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// RunTypes returns the per-type breakdown for a run, ordered by count
// (largest first).
func (s *Store) RunTypes(runID string) ([]RunType, error) {
	rows, err := s.db.Query(`
		SELECT run_id, type, count, orphans
		FROM run_types
		WHERE run_id = ?
		ORDER BY count DESC, type
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run types for %s: %w", runID, err)
	}
	defer rows.Close()

	var types []RunType
	for rows.Next() {
		var rt RunType
		if err := rows.Scan(&rt.RunID, &rt.Type, &rt.Count, &rt.Orphans); err != nil {
			return nil, fmt.Errorf("failed to scan run type row: %w", err)
		}
		types = append(types, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run types: %w", err)
	}
	return types, nil
}

// LastTwoRuns returns the two most recent runs, newest first.
func (s *Store) LastTwoRuns() (newest, previous *Run, err error) {
	runs, err := s.ListRuns(2)
	if err != nil {
		return nil, nil, err
	}
	if len(runs) < 2 {
		return nil, nil, ErrNotEnoughRuns
	}
	return runs[0], runs[1], nil
}

// Prune deletes all but the keep most recent runs and removes their
// snapshot files. It returns the number of runs deleted.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}

	old, err := s.db.Query(`
		SELECT id, snapshot_path
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT -1 OFFSET ?
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to find old runs: %w", err)
	}
	defer old.Close()

	type victim struct{ id, path string }
	var victims []victim
	for old.Next() {
		var v victim
		if err := old.Scan(&v.id, &v.path); err != nil {
			return 0, fmt.Errorf("failed to scan old run: %w", err)
		}
		victims = append(victims, v)
	}
	if err := old.Err(); err != nil {
		return 0, fmt.Errorf("error iterating old runs: %w", err)
	}

	for _, v := range victims {
		// run_types rows go with the run via ON DELETE CASCADE
		if _, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, v.id); err != nil {
			return 0, fmt.Errorf("failed to delete run %s: %w", v.id, err)
		}
		if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("failed to delete snapshot file %s: %w", v.path, err)
		}
	}
	return len(victims), nil
}

// scanRun reads one run row from either a *sql.Row or *sql.Rows.
func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var run Run
	var createdAt string
	var durationMS int64

	err := row.Scan(
		&run.ID,
		&createdAt,
		&run.Total,
		&durationMS,
		&run.Warnings,
		&run.SnapshotPath,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run row: %w", err)
	}

	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for run %s: %w", run.ID, err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
