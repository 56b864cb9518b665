// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"nova-ledger/internal/domain"
	"nova-ledger/internal/repository"
	"nova-ledger/internal/util"
)

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

// Create inserts a new account using the provided DBExecutor.
func (r *AccountRepository) Create(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO accounts (id, user_id, name, bank_name, account_number, upi_id, pin_hash, balance, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		account.ID,
		account.UserID,
		account.Name,
		account.BankName,
		account.AccountNumber,
		account.UpiID,
		account.PinHash,
		account.Balance,
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", account.UpiID, err)
	}
	return nil
}

// GetByUpiID retrieves an account by its UPI ID.
func (r *AccountRepository) GetByUpiID(ctx context.Context, q repository.DBExecutor, upiID string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, name, bank_name, account_number, upi_id, pin_hash, balance, created_at
              FROM accounts WHERE upi_id = $1`
	err := q.GetContext(ctx, &account, query, upiID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by upi id %s: %w", upiID, err)
	}
	return &account, nil
}

// GetByUserID retrieves an account by its internal user id.
func (r *AccountRepository) GetByUserID(ctx context.Context, q repository.DBExecutor, userID string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, name, bank_name, account_number, upi_id, pin_hash, balance, created_at
              FROM accounts WHERE user_id = $1`
	err := q.GetContext(ctx, &account, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by user id %s: %w", userID, err)
	}
	return &account, nil
}

// List retrieves all accounts except excludeUpiID, oldest first.
func (r *AccountRepository) List(ctx context.Context, q repository.DBExecutor, excludeUpiID string) ([]domain.Account, error) {
	accounts := []domain.Account{}
	query := `SELECT id, user_id, name, bank_name, account_number, upi_id, pin_hash, balance, created_at
              FROM accounts WHERE upi_id <> $1 ORDER BY id ASC`
	if err := q.SelectContext(ctx, &accounts, query, excludeUpiID); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// SetBalance performs the conditional balance write. The WHERE clause on
// the expected balance is what serializes concurrent debits on the same
// account: a writer holding a stale read matches zero rows.
func (r *AccountRepository) SetBalance(ctx context.Context, q repository.DBExecutor, upiID string, newBalance, expectedBalance decimal.Decimal) (bool, error) {
	query := `UPDATE accounts SET balance = $1 WHERE upi_id = $2 AND balance = $3`
	result, err := q.ExecContext(ctx, query, newBalance, upiID, expectedBalance)
	if err != nil {
		return false, fmt.Errorf("failed to set balance for %s: %w", upiID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for %s: %w", upiID, err)
	}
	return rowsAffected == 1, nil
}

// Increment atomically adds delta to the account balance.
func (r *AccountRepository) Increment(ctx context.Context, q repository.DBExecutor, upiID string, delta decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $1 WHERE upi_id = $2`
	result, err := q.ExecContext(ctx, query, delta, upiID)
	if err != nil {
		return fmt.Errorf("failed to increment balance for %s: %w", upiID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for %s: %w", upiID, err)
	}
	if rowsAffected == 0 {
		return util.ErrAccountNotFound
	}
	return nil
}
