// internal/service/reconciler.go
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"nova-ledger/internal/domain"
	"nova-ledger/internal/repository"
	"nova-ledger/internal/util"
)

// ReconcileOutcome is the result of a post-commit reconciliation attempt.
type ReconcileOutcome string

const (
	OutcomeReconciled ReconcileOutcome = "RECONCILED"
	OutcomeNoOp       ReconcileOutcome = "NOOP"
	OutcomeFailed     ReconcileOutcome = "FAILED"
)

// defaultReconcileTimeout bounds the secondary-store call so a slow
// charity store cannot stall the transfer response path.
const defaultReconcileTimeout = 3 * time.Second

// CharityService covers the charity/donation side of the system: the
// post-commit reconciler plus the donation lifecycle it acts on.
type CharityService interface {
	// Reconcile marks the donation completed and bumps the charity's
	// raised amount. It never returns an error: failures are isolated,
	// logged as requiring out-of-band retry, and reported as an outcome.
	Reconcile(ctx context.Context, donationID, txnID string) ReconcileOutcome
	CreateDonation(ctx context.Context, userID, charityID string, amount decimal.Decimal) (*domain.Donation, error)
	GetDonation(ctx context.Context, id string) (*domain.Donation, error)
	ListCharities(ctx context.Context) ([]domain.Charity, error)
}

type charityService struct {
	store   repository.CharityStore
	timeout time.Duration
	logger  *slog.Logger
}

// NewCharityService creates a new CharityService. timeout <= 0 selects
// the default reconcile timeout.
func NewCharityService(store repository.CharityStore, timeout time.Duration, logger *slog.Logger) CharityService {
	if timeout <= 0 {
		timeout = defaultReconcileTimeout
	}
	return &charityService{store: store, timeout: timeout, logger: logger}
}

// Reconcile runs after the funds transfer has committed. It is detached
// from the caller's cancellation so a request timeout cannot abandon a
// transition mid-flight, and its own deadline keeps it bounded.
func (s *charityService) Reconcile(ctx context.Context, donationID, txnID string) ReconcileOutcome {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	completed, donation, err := s.store.CompleteDonation(ctx, donationID, txnID)
	if err != nil {
		// The transfer already committed; this condition is retried
		// out-of-band and never unwinds the funds movement.
		s.logger.Warn("reconciliation failed, requires out-of-band retry",
			"donationId", donationID, "txnId", txnID, "error", err)
		return OutcomeFailed
	}
	if !completed {
		s.logger.Info("donation already completed, reconcile is a no-op",
			"donationId", donationID, "txnId", donation.TxnID)
		return OutcomeNoOp
	}
	s.logger.Info("donation reconciled",
		"donationId", donationID, "charityId", donation.CharityID, "amount", donation.Amount, "txnId", txnID)
	return OutcomeReconciled
}

func (s *charityService) CreateDonation(ctx context.Context, userID, charityID string, amount decimal.Decimal) (*domain.Donation, error) {
	if userID == "" || charityID == "" {
		return nil, util.ErrInvalidInput
	}
	if !validAmount(amount) {
		return nil, util.ErrInvalidAmount
	}
	if _, err := s.store.GetCharity(ctx, charityID); err != nil {
		return nil, err
	}
	donation := domain.NewDonation(userID, charityID, amount)
	if err := s.store.CreateDonation(ctx, donation); err != nil {
		return nil, err
	}
	return donation, nil
}

func (s *charityService) GetDonation(ctx context.Context, id string) (*domain.Donation, error) {
	return s.store.GetDonation(ctx, id)
}

func (s *charityService) ListCharities(ctx context.Context) ([]domain.Charity, error) {
	return s.store.ListCharities(ctx)
}
