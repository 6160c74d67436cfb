package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Canonical transactions, one row per normalized statement line
CREATE TABLE IF NOT EXISTS transactions (
    id SERIAL PRIMARY KEY,
    bank VARCHAR(100),
    account_type VARCHAR(100),
    account_number VARCHAR(100),
    name VARCHAR(255),
    date DATE,
    category VARCHAR(255),
    description TEXT,
    debit_amount NUMERIC(15,2),
    credit_amount NUMERIC(15,2),
    source VARCHAR(255),
    sequence INTEGER,
    fingerprint VARCHAR(32),
    import_run_id UUID,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

-- One row per import invocation
CREATE TABLE IF NOT EXISTS import_runs (
    id UUID PRIMARY KEY,
    root TEXT NOT NULL,
    files INTEGER NOT NULL DEFAULT 0,
    inserted INTEGER NOT NULL DEFAULT 0,
    duplicates INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMPTZ DEFAULT NOW(),
    finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_bank ON transactions(bank);
`

// migrateDDL brings tables created by earlier versions up to date
const migrateDDL = `
-- Earlier tables were created without account_number
DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'transactions' AND column_name = 'account_number') THEN
        ALTER TABLE transactions ADD COLUMN account_number VARCHAR(100);
    END IF;
END $$;

DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'transactions' AND column_name = 'source') THEN
        ALTER TABLE transactions ADD COLUMN source VARCHAR(255);
        ALTER TABLE transactions ADD COLUMN sequence INTEGER;
    END IF;
END $$;

DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'transactions' AND column_name = 'fingerprint') THEN
        ALTER TABLE transactions ADD COLUMN fingerprint VARCHAR(32);
    END IF;
END $$;

DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'transactions' AND column_name = 'import_run_id') THEN
        ALTER TABLE transactions ADD COLUMN import_run_id UUID;
    END IF;
END $$;

-- Rows imported before fingerprinting keep a NULL fingerprint and never conflict
CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_fingerprint
ON transactions(fingerprint);
`

// EnsureSchema creates tables if they don't exist and runs migrations
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err = db.Pool.Exec(ctx, migrateDDL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
