// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"nova-ledger/internal/domain"
)

// TransactionRepository defines the interface for the append-only
// transfer ledger.
type TransactionRepository interface {
	// Record appends a transaction row. Rows are immutable once written;
	// a failure here means the store is unavailable and must not be
	// swallowed by callers.
	Record(ctx context.Context, q DBExecutor, txn *domain.Transaction) error
	// HistoryByParticipant retrieves transactions where the account is
	// sender or receiver, newest first, capped at limit.
	HistoryByParticipant(ctx context.Context, q DBExecutor, upiID string, limit int) ([]domain.Transaction, error)
	// GetSuccessByDonationID finds the prior SUCCESS transaction carrying
	// the donation correlation id, or util.ErrNotFound.
	GetSuccessByDonationID(ctx context.Context, q DBExecutor, donationID string) (*domain.Transaction, error)
}
