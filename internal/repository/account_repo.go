// internal/repository/account_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"nova-ledger/internal/domain"
)

// AccountRepository defines the interface for account data operations.
// Identifiers passed in must already be normalized (domain.NormalizeUpiID).
type AccountRepository interface {
	// Create adds a new account. Used at provisioning time only.
	Create(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetByUpiID retrieves an account by its UPI ID.
	GetByUpiID(ctx context.Context, q DBExecutor, upiID string) (*domain.Account, error)
	// GetByUserID retrieves an account by its internal user id.
	GetByUserID(ctx context.Context, q DBExecutor, userID string) (*domain.Account, error)
	// List retrieves all accounts except the one named by excludeUpiID.
	List(ctx context.Context, q DBExecutor, excludeUpiID string) ([]domain.Account, error)
	// SetBalance writes newBalance only if the stored balance still equals
	// expectedBalance. It returns applied=false when a concurrent write
	// changed the balance first; that is a retryable conflict, not an error.
	SetBalance(ctx context.Context, q DBExecutor, upiID string, newBalance, expectedBalance decimal.Decimal) (applied bool, err error)
	// Increment atomically adds delta to the account balance. The add is
	// commutative, so no conditional check is needed.
	Increment(ctx context.Context, q DBExecutor, upiID string, delta decimal.Decimal) error
}
