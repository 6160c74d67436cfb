package postgres

import (
	"context"
	"fmt"

	"github.com/budget-finance/budget/extractor/common"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const insertTransactionSQL = `
	INSERT INTO transactions (
		bank, account_type, account_number, name, date, category, description,
		debit_amount, credit_amount, source, sequence, fingerprint, import_run_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (fingerprint) DO NOTHING
`

// InsertTransaction stores a single transaction outside of any import run.
// It reports false when a row with the same fingerprint already exists.
func (db *DB) InsertTransaction(ctx context.Context, tx common.Transaction) (bool, error) {
	return db.insertTransaction(ctx, tx, nil)
}

func (db *DB) insertTransaction(ctx context.Context, tx common.Transaction, runID *string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, insertTransactionSQL, transactionArgs(tx, runID)...)
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// transactionArgs lays tx out in insertTransactionSQL parameter order.
// Unknown amounts and blank stamps go in as NULL.
func transactionArgs(tx common.Transaction, runID *string) []any {
	return []any{
		tx.Bank, tx.AccountType, tx.AccountNumber, tx.Name, tx.Date, tx.Category, tx.Description,
		nullableAmount(tx.DebitAmount), nullableAmount(tx.CreditAmount),
		common.Text(tx.Source), nullableSequence(tx.Sequence), common.Text(tx.Fingerprint), runID,
	}
}

func nullableAmount(amount decimal.NullDecimal) *string {
	if !amount.Valid {
		return nil
	}
	s := amount.Decimal.StringFixed(2)
	return &s
}

func nullableSequence(sequence int) *int {
	if sequence < 1 {
		return nil
	}
	return &sequence
}

// ListFilter narrows ListTransactions. Empty fields match everything.
type ListFilter struct {
	Bank  string
	Limit int
}

// ListTransactions reads stored transactions back, oldest first and in
// insertion order within a day.
func (db *DB) ListTransactions(ctx context.Context, filter ListFilter) ([]common.Transaction, error) {
	sql := `
		SELECT bank, account_type, account_number, name, date::text, category, description,
		       debit_amount::text, credit_amount::text,
		       COALESCE(source, ''), COALESCE(sequence, 0), COALESCE(fingerprint, '')
		FROM transactions
		WHERE ($1::text = '' OR bank = $1)
		ORDER BY date NULLS LAST, id
	`
	args := []any{filter.Bank}
	if filter.Limit > 0 {
		sql += " LIMIT $2"
		args = append(args, filter.Limit)
	}

	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return transactions, nil
}

func scanTransaction(row pgx.CollectableRow) (common.Transaction, error) {
	var tx common.Transaction
	var debit, credit *string

	err := row.Scan(
		&tx.Bank, &tx.AccountType, &tx.AccountNumber, &tx.Name, &tx.Date, &tx.Category, &tx.Description,
		&debit, &credit,
		&tx.Source, &tx.Sequence, &tx.Fingerprint,
	)
	if err != nil {
		return tx, err
	}

	tx.DebitAmount = storedAmount(debit)
	tx.CreditAmount = storedAmount(credit)
	return tx, nil
}

func storedAmount(value *string) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return common.ParseAmount(*value)
}
