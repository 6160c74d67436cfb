package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/budget-finance/budget/extractor/common"
	"github.com/budget-finance/budget/logger"
	"github.com/google/uuid"
)

// DefaultExtension is the only file type scanned unless configured otherwise.
const DefaultExtension = ".csv"

// Sink persists one transaction at a time. inserted is false when the sink
// already holds a transaction with the same fingerprint.
type Sink interface {
	InsertTransaction(ctx context.Context, tx common.Transaction) (inserted bool, err error)
}

// Options configures a normalization run
type Options struct {
	Extension string // File extension to scan for, DefaultExtension if empty
	Strict    bool   // Abort the run on the first unreadable file
	RunID     string // Generated when empty
}

// SinkError aborts a run: the store rejected a transaction.
type SinkError struct {
	File     string
	Sequence int
	Err      error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s row %d: failed to store transaction: %v", e.File, e.Sequence, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// FileResult is the batch produced from one input file.
type FileResult struct {
	Path         string               `json:"path"`
	Dialect      Dialect              `json:"dialect"`
	Transactions []common.Transaction `json:"transactions"`
	Inserted     int                  `json:"inserted"`
	Duplicates   int                  `json:"duplicates"`
}

// Result tracks the outcome of one run over a directory.
type Result struct {
	RunID   string       `json:"run_id"`
	Files   []FileResult `json:"files"`
	Skipped []string     `json:"skipped"` // files matching no dialect
	Failed  []string     `json:"failed"`  // files that could not be read
	Errors  []string     `json:"errors"`
}

// Transactions concatenates every batch in file order.
func (r *Result) Transactions() []common.Transaction {
	all := []common.Transaction{}
	for _, f := range r.Files {
		all = append(all, f.Transactions...)
	}
	return all
}

// Inserted and Duplicates sum the sink outcomes over all files.
func (r *Result) Inserted() int {
	n := 0
	for _, f := range r.Files {
		n += f.Inserted
	}
	return n
}

func (r *Result) Duplicates() int {
	n := 0
	for _, f := range r.Files {
		n += f.Duplicates
	}
	return n
}

// Normalize walks root, normalizes every matching file in lexical order and
// hands each transaction to sink. A nil sink makes it a dry run.
//
// Files matching no dialect are listed in Skipped. Unreadable files are
// listed in Failed and the run moves on, unless opts.Strict is set. A sink
// failure stops the run; the partial Result is returned with the error.
func Normalize(ctx context.Context, root string, sink Sink, opts Options) (*Result, error) {
	result := &Result{RunID: opts.RunID}
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}

	log := logger.FromContext(ctx).With().Str("run_id", result.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	files, err := Discover(root, opts.Extension)
	if err != nil {
		return result, err
	}
	log.Info().Str("root", root).Int("files", len(files)).Msg("scanning")

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fileResult, err := NormalizeFile(ctx, path, sink)
		if err != nil {
			var sinkErr *SinkError
			if errors.As(err, &sinkErr) || ctx.Err() != nil || opts.Strict {
				return result, err
			}
			log.Warn().Err(err).Str("file", path).Msg("failed to read statement")
			result.Failed = append(result.Failed, path)
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		if fileResult.Dialect == Unrecognized {
			log.Warn().Str("file", path).Msg("no dialect matches file name, skipped")
			result.Skipped = append(result.Skipped, path)
			continue
		}
		result.Files = append(result.Files, fileResult)
	}

	return result, nil
}

// Discover lists files under root with the given extension, recursively.
// root may also be a single file.
func Discover(root, extension string) ([]string, error) {
	if extension == "" {
		extension = DefaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	files := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}

// NormalizeFile detects the dialect of path and normalizes its rows. An
// unrecognized file is not opened and yields an empty result.
func NormalizeFile(ctx context.Context, path string, sink Sink) (FileResult, error) {
	dialect := Detect(path)
	if dialect == Unrecognized {
		return FileResult{Path: path, Dialect: Unrecognized, Transactions: []common.Transaction{}}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return FileResult{Path: path, Dialect: dialect}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileResult, err := ProcessReader(ctx, file, path, sink)
	fileResult.Path = path
	return fileResult, err
}

// ProcessReader normalizes one CSV export read from reader. filename picks the
// dialect and is recorded as the transactions' source.
func ProcessReader(ctx context.Context, reader io.Reader, filename string, sink Sink) (FileResult, error) {
	dialect := Detect(filename)
	fileResult := FileResult{
		Path:         filename,
		Dialect:      dialect,
		Transactions: []common.Transaction{},
	}

	mapper := dialect.Mapper()
	if mapper == nil {
		return fileResult, nil
	}

	rows, err := common.ReadRows(reader)
	if err != nil {
		return fileResult, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}

	log := logger.FromContext(ctx).With().
		Str("file", filepath.Base(filename)).
		Stringer("dialect", dialect).
		Logger()

	source := filepath.Base(filename)
	seen := map[string]int{}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return fileResult, err
		}

		tx := mapper(row)

		key := common.ContentKey(tx)
		tx.Source = source
		tx.Sequence = i + 1
		tx.Fingerprint = common.Fingerprint(tx, seen[key])
		seen[key]++

		if sink != nil {
			inserted, err := sink.InsertTransaction(ctx, tx)
			if err != nil {
				return fileResult, &SinkError{File: source, Sequence: tx.Sequence, Err: err}
			}
			if inserted {
				fileResult.Inserted++
			} else {
				fileResult.Duplicates++
			}
		}

		fileResult.Transactions = append(fileResult.Transactions, tx)
	}

	log.Info().
		Int("transactions", len(fileResult.Transactions)).
		Int("inserted", fileResult.Inserted).
		Int("duplicates", fileResult.Duplicates).
		Msg("normalized")

	return fileResult, nil
}
