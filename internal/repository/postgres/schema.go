// internal/repository/postgres/schema.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// EnsureSchema creates the ledger tables if they do not exist. The
// partial unique index on donation_id enforces at most one SUCCESS row
// per donation, which backs the transfer idempotency check.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGINT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			bank_name TEXT NOT NULL,
			account_number TEXT NOT NULL,
			upi_id TEXT NOT NULL UNIQUE,
			pin_hash TEXT NOT NULL,
			balance NUMERIC(20, 2) NOT NULL CHECK (balance >= 0),
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			txn_id TEXT PRIMARY KEY,
			from_upi TEXT NOT NULL,
			from_name TEXT NOT NULL,
			to_upi TEXT NOT NULL,
			amount NUMERIC(20, 2) NOT NULL CHECK (amount > 0),
			order_id TEXT,
			donation_id TEXT,
			status TEXT NOT NULL,
			sender_balance NUMERIC(20, 2) NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_from_upi ON transactions (from_upi, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_to_upi ON transactions (to_upi, timestamp DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_success_donation
			ON transactions (donation_id) WHERE status = 'SUCCESS' AND donation_id IS NOT NULL`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
