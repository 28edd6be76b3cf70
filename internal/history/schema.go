package history

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    total INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    warnings INTEGER NOT NULL,
    snapshot_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_types (
    run_id TEXT NOT NULL,
    type TEXT NOT NULL,
    count INTEGER NOT NULL,
    orphans INTEGER NOT NULL,
    PRIMARY KEY (run_id, type),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
