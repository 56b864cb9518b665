// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"nova-ledger/internal/domain"
	"nova-ledger/internal/repository"
	"nova-ledger/internal/util"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// Record appends a new ledger row using the provided DBExecutor.
func (r *TransactionRepository) Record(ctx context.Context, q repository.DBExecutor, txn *domain.Transaction) error {
	query := `INSERT INTO transactions (txn_id, from_upi, from_name, to_upi, amount, order_id, donation_id, status, sender_balance, timestamp)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q.ExecContext(ctx, query,
		txn.TxnID,
		txn.FromUpi,
		txn.FromName,
		txn.ToUpi,
		txn.Amount,
		txn.OrderID,
		txn.DonationID,
		txn.Status,
		txn.SenderBalance,
		txn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction %s: %w", txn.TxnID, err)
	}
	return nil
}

// HistoryByParticipant retrieves transactions where the account is sender
// or receiver, newest first.
func (r *TransactionRepository) HistoryByParticipant(ctx context.Context, q repository.DBExecutor, upiID string, limit int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT txn_id, from_upi, from_name, to_upi, amount, order_id, donation_id, status, sender_balance, timestamp
		FROM transactions
		WHERE from_upi = $1 OR to_upi = $1
		ORDER BY timestamp DESC
		LIMIT $2`
	if err := q.SelectContext(ctx, &transactions, query, upiID, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for %s: %w", upiID, err)
	}
	return transactions, nil
}

// GetSuccessByDonationID finds the SUCCESS row carrying the donation
// correlation id. At most one such row can exist (partial unique index).
func (r *TransactionRepository) GetSuccessByDonationID(ctx context.Context, q repository.DBExecutor, donationID string) (*domain.Transaction, error) {
	var txn domain.Transaction
	query := `
		SELECT txn_id, from_upi, from_name, to_upi, amount, order_id, donation_id, status, sender_balance, timestamp
		FROM transactions
		WHERE donation_id = $1 AND status = $2`
	err := q.GetContext(ctx, &txn, query, donationID, domain.TransactionStatusSuccess)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by donation id %s: %w", donationID, err)
	}
	return &txn, nil
}
