package postgres

import (
	"context"
	"fmt"

	"github.com/budget-finance/budget/extractor"
	"github.com/budget-finance/budget/extractor/common"
	"github.com/budget-finance/budget/logger"
	"github.com/google/uuid"
)

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	RunID        string
	Processed    int // files normalized
	Inserted     int
	Duplicates   int // rows already stored by an earlier import
	Skipped      int // files matching no bank
	Failed       int
	SkippedFiles []string
	Errors       []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Extension string // File extension to scan for
	Strict    bool   // Stop at the first unreadable file
}

// runSink tags every row it stores with the import run that produced it.
type runSink struct {
	db    *DB
	runID string
}

func (s runSink) InsertTransaction(ctx context.Context, tx common.Transaction) (bool, error) {
	return s.db.insertTransaction(ctx, tx, &s.runID)
}

// Import normalizes a file or directory into the transactions table.
// Re-importing the same export only adds rows not stored before.
func (db *DB) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()

	if err := db.CreateRun(ctx, runID, path); err != nil {
		return nil, err
	}

	result, runErr := extractor.Normalize(ctx, path, runSink{db: db, runID: runID}, extractor.Options{
		Extension: opts.Extension,
		Strict:    opts.Strict,
		RunID:     runID,
	})

	summary := summarize(result)
	summary.RunID = runID

	if err := db.FinishRun(ctx, runID, RunStats{
		Files:      summary.Processed,
		Inserted:   summary.Inserted,
		Duplicates: summary.Duplicates,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
	}); err != nil {
		log.Warn().Err(err).Msg("could not record import run")
	}

	if runErr != nil {
		return summary, fmt.Errorf("import aborted: %w", runErr)
	}
	return summary, nil
}

func summarize(result *extractor.Result) *ImportResult {
	summary := &ImportResult{}
	if result == nil {
		return summary
	}

	summary.Processed = len(result.Files)
	summary.Inserted = result.Inserted()
	summary.Duplicates = result.Duplicates()
	summary.Skipped = len(result.Skipped)
	summary.Failed = len(result.Failed)
	summary.SkippedFiles = result.Skipped
	summary.Errors = result.Errors
	return summary
}
