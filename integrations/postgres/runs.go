package postgres

import (
	"context"
	"fmt"
)

// RunStats is the bookkeeping stored for one import run.
type RunStats struct {
	Files      int
	Inserted   int
	Duplicates int
	Skipped    int
	Failed     int
}

// CreateRun records the start of an import run
func (db *DB) CreateRun(ctx context.Context, runID, root string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO import_runs (id, root) VALUES ($1, $2)
	`, runID, root)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters of an import run
func (db *DB) FinishRun(ctx context.Context, runID string, stats RunStats) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE import_runs
		SET files = $2, inserted = $3, duplicates = $4, skipped = $5, failed = $6,
		    finished_at = NOW()
		WHERE id = $1
	`, runID, stats.Files, stats.Inserted, stats.Duplicates, stats.Skipped, stats.Failed)
	if err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}
	return nil
}
