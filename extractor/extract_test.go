package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/budget-finance/budget/extractor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink records inserts and treats a repeated fingerprint as duplicate.
type memorySink struct {
	stored []common.Transaction
	seen   map[string]bool
	failAt int
}

func (s *memorySink) InsertTransaction(ctx context.Context, tx common.Transaction) (bool, error) {
	if s.failAt > 0 && len(s.stored)+1 == s.failAt {
		return false, errors.New("connection refused")
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[tx.Fingerprint] {
		return false, nil
	}
	s.seen[tx.Fingerprint] = true
	s.stored = append(s.stored, tx)
	return true, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessReader_ScenarioCIBC(t *testing.T) {
	csvData := "Date,Description,Debit\n12/25/2024,COFFEE SHOP,$4.50\n"

	result, err := ProcessReader(context.Background(), strings.NewReader(csvData), "cibc-dec.csv", nil)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, CIBC, result.Dialect)
	assert.Equal(t, "CIBC", common.Deref(tx.Bank))
	assert.Equal(t, "Credit Card", common.Deref(tx.AccountType))
	assert.Equal(t, "2024-12-25", common.Deref(tx.Date))
	assert.Equal(t, "COFFEE SHOP", common.Deref(tx.Description))
	assert.Equal(t, "4.50", tx.DebitAmount.Decimal.StringFixed(2))
	assert.False(t, tx.CreditAmount.Valid)
	assert.Equal(t, "cibc-dec.csv", tx.Source)
	assert.Equal(t, 1, tx.Sequence)
	assert.NotEmpty(t, tx.Fingerprint)
}

func TestProcessReader_ScenarioWalmart(t *testing.T) {
	csvData := "Amount,Merchant Name\n25.00,GROCERY\n"

	result, err := ProcessReader(context.Background(), strings.NewReader(csvData), "walmart.csv", nil)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, "25.00", tx.DebitAmount.Decimal.StringFixed(2))
	assert.False(t, tx.CreditAmount.Valid)
}

func TestProcessReader_ScenarioRBC(t *testing.T) {
	csvData := "AmountCAD,Transaction Date\n-40.00,01/02/2024\n"

	result, err := ProcessReader(context.Background(), strings.NewReader(csvData), "rbc.csv", nil)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, "40.00", tx.DebitAmount.Decimal.StringFixed(2))
	assert.False(t, tx.CreditAmount.Valid)
	assert.Equal(t, "2024-01-02", common.Deref(tx.Date))
}

func TestProcessReader_ScenarioUnrecognized(t *testing.T) {
	sink := &memorySink{}
	csvData := "Date,Amount\n2024-01-01,5.00\n"

	result, err := ProcessReader(context.Background(), strings.NewReader(csvData), "unknown-bank.csv", sink)
	require.NoError(t, err)
	assert.Equal(t, Unrecognized, result.Dialect)
	assert.Empty(t, result.Transactions)
	assert.Empty(t, sink.stored)
}

func TestProcessReader_PreservesOrderAndSinksEveryRow(t *testing.T) {
	csvData := "Date,Description,Sub-description,Amount\n" +
		"2024-02-01,A,,-1.00\n" +
		"2024-02-02,B,,2.00\n" +
		"2024-02-03,C,,-3.00\n"
	sink := &memorySink{}

	result, err := ProcessReader(context.Background(), strings.NewReader(csvData), "scotia.csv", sink)
	require.NoError(t, err)
	require.Len(t, sink.stored, 3)
	assert.Equal(t, 3, result.Inserted)

	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, common.Deref(result.Transactions[i].Description))
		assert.Equal(t, want, common.Deref(sink.stored[i].Description))
		assert.Equal(t, i+1, sink.stored[i].Sequence)
	}
}

func TestProcessReader_IdenticalRowsStayDistinct(t *testing.T) {
	csvData := "Date,Description,Debit\n" +
		"12/25/2024,COFFEE SHOP,4.50\n" +
		"12/25/2024,COFFEE SHOP,4.50\n"
	sink := &memorySink{}

	result, err := ProcessReader(context.Background(), strings.NewReader(csvData), "cibc.csv", sink)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.NotEqual(t, result.Transactions[0].Fingerprint, result.Transactions[1].Fingerprint)

	// a second import of the same export reproduces the fingerprints
	again, err := ProcessReader(context.Background(), strings.NewReader(csvData), "cibc.csv", sink)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 2, again.Duplicates)
	assert.Len(t, again.Transactions, 2)
}

func TestProcessReader_SinkFailure(t *testing.T) {
	csvData := "Amount,Merchant Name\n1.00,A\n2.00,B\n3.00,C\n"
	sink := &memorySink{failAt: 2}

	result, err := ProcessReader(context.Background(), strings.NewReader(csvData), "walmart.csv", sink)

	var sinkErr *SinkError
	require.True(t, errors.As(err, &sinkErr))
	assert.Equal(t, 2, sinkErr.Sequence)
	assert.Equal(t, "walmart.csv", sinkErr.File)
	assert.Len(t, result.Transactions, 1)
}

func TestNormalize_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dec/cibc-dec.csv", "Date,Description,Debit\n12/25/2024,COFFEE SHOP,$4.50\n")
	writeFile(t, dir, "dec/nested/rbc-dec.csv", "AmountCAD,Transaction Date\n-40.00,01/02/2024\n100,01/03/2024\n")
	writeFile(t, dir, "unknown-bank.csv", "Date,Amount\n2024-01-01,5.00\n")
	writeFile(t, dir, "walmart-notes.txt", "not a statement")

	sink := &memorySink{}
	result, err := Normalize(context.Background(), dir, sink, Options{})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, CIBC, result.Files[0].Dialect)
	assert.Equal(t, RBC, result.Files[1].Dialect)
	assert.Equal(t, []string{filepath.Join(dir, "unknown-bank.csv")}, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.NotEmpty(t, result.RunID)

	all := result.Transactions()
	require.Len(t, all, 3)
	assert.Equal(t, "CIBC", common.Deref(all[0].Bank))
	assert.Equal(t, "100", all[2].CreditAmount.Decimal.String())
	assert.Equal(t, 3, result.Inserted())
	assert.Equal(t, 0, result.Duplicates())
	assert.Len(t, sink.stored, 3)
}

func TestNormalize_ReturnsFreshResultEachRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scotia.csv", "Date,Amount\n2024-01-01,-5\n")

	first, err := Normalize(context.Background(), dir, nil, Options{})
	require.NoError(t, err)
	second, err := Normalize(context.Background(), dir, nil, Options{})
	require.NoError(t, err)

	assert.Len(t, first.Transactions(), 1)
	assert.Len(t, second.Transactions(), 1)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestNormalize_MalformedFileIsolated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-nbc.csv", "")
	writeFile(t, dir, "b-scotia.csv", "Date,Amount\n2024-01-01,-5\n")

	result, err := Normalize(context.Background(), dir, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a-nbc.csv")}, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing CSV header")
	assert.Len(t, result.Transactions(), 1)
}

func TestNormalize_UnterminatedQuoteFailsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cibc.csv", "Date,Description,Debit,Credit\n"+
		"12/25/2024,\"JOE\"S CAFE,4.50,\n"+
		"12/26/2024,B,1.00,\n"+
		"12/27/2024,C,2.00,\n")

	result, err := Normalize(context.Background(), dir, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, filepath.Join(dir, "cibc.csv"), result.Failed[0])

	_, err = Normalize(context.Background(), dir, nil, Options{Strict: true})
	assert.ErrorIs(t, err, common.ErrMultilineField)
}

func TestNormalize_StrictAbortsOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-nbc.csv", "")
	writeFile(t, dir, "b-scotia.csv", "Date,Amount\n2024-01-01,-5\n")

	result, err := Normalize(context.Background(), dir, nil, Options{Strict: true})
	assert.True(t, errors.Is(err, common.ErrNoHeader))
	assert.Empty(t, result.Files)
}

func TestNormalize_SinkFailureAbortsRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-cibc.csv", "Date,Description,Debit\n12/25/2024,A,1\n")
	writeFile(t, dir, "b-cibc.csv", "Date,Description,Debit\n12/26/2024,B,2\n")

	sink := &memorySink{failAt: 1}
	result, err := Normalize(context.Background(), dir, sink, Options{})

	var sinkErr *SinkError
	require.True(t, errors.As(err, &sinkErr))
	assert.Empty(t, result.Files)
	assert.Empty(t, sink.stored)
}

func TestNormalize_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scotia.csv", "Date,Amount\n2024-01-01,-5\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Normalize(ctx, dir, nil, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNormalize_MissingRoot(t *testing.T) {
	_, err := Normalize(context.Background(), filepath.Join(t.TempDir(), "nope"), nil, Options{})
	assert.Error(t, err)
}

func TestDiscover_Extension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.CSV", "x")
	writeFile(t, dir, "a.csv", "x")
	writeFile(t, dir, "c.txt", "x")

	files, err := Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.CSV")}, files)

	files, err = Discover(dir, "txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "c.txt")}, files)
}
