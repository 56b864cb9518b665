// internal/service/transfer_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"nova-ledger/internal/domain"
	"nova-ledger/internal/repository"
	"nova-ledger/internal/util"
)

// defaultDebitAttempts bounds the conditional-debit retry loop. Each
// retry re-reads the balance, so exhaustion means sustained contention
// or a broken store, both surfaced as util.ErrPersistence.
const defaultDebitAttempts = 3

// historyLimit caps transaction history responses.
const HistoryLimit = 20

// TransferInput carries one transfer request. UpiID may be denormalized
// caller input; amounts must carry at most two decimal places.
type TransferInput struct {
	UpiID      string
	PIN        string
	Amount     decimal.Decimal
	OrderID    string
	DonationID string
}

// TransferResult is the outcome of a successful (or replayed) transfer.
type TransferResult struct {
	TxnID         string
	SenderName    string
	SenderBalance decimal.Decimal
	Amount        decimal.Decimal
	Timestamp     time.Time
	Replayed      bool
}

// TransferService defines the funds-transfer business logic.
type TransferService interface {
	Transfer(ctx context.Context, input TransferInput) (*TransferResult, error)
	GetAccount(ctx context.Context, upiID string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	History(ctx context.Context, upiID string, limit int) ([]domain.Transaction, error)
	HistoryByUserID(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
}

// transferService implements TransferService. It is the only component
// that mutates account balances, and only through the conditional-write
// path of the account repository.
type transferService struct {
	db            repository.DBExecutor
	accountRepo   repository.AccountRepository
	txnRepo       repository.TransactionRepository
	guard         *AuthGuard
	merchantUpi   string
	debitAttempts int
	logger        *slog.Logger
}

// NewTransferService creates a new instance of TransferService.
// debitAttempts <= 0 selects the default bound.
func NewTransferService(
	db repository.DBExecutor,
	accountRepo repository.AccountRepository,
	txnRepo repository.TransactionRepository,
	guard *AuthGuard,
	merchantUpi string,
	debitAttempts int,
	logger *slog.Logger,
) TransferService {
	if debitAttempts <= 0 {
		debitAttempts = defaultDebitAttempts
	}
	return &transferService{
		db:            db,
		accountRepo:   accountRepo,
		txnRepo:       txnRepo,
		guard:         guard,
		merchantUpi:   merchantUpi,
		debitAttempts: debitAttempts,
		logger:        logger,
	}
}

// validAmount rejects non-positive amounts and anything finer than
// two decimal places. Invalid input is rejected, never rounded.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Exponent() >= -2
}

// Transfer moves amount from the sender to the merchant account as a
// two-step saga: conditional debit, commutative credit, compensating
// restore if the credit fails, then an append-only ledger row.
func (s *transferService) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.UpiID == "" || input.PIN == "" {
		return nil, util.ErrInvalidInput
	}
	if !validAmount(input.Amount) {
		return nil, util.ErrInvalidAmount
	}

	fromUpi := domain.NormalizeUpiID(input.UpiID)

	sender, err := s.accountRepo.GetByUpiID(ctx, s.db, fromUpi)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(sender, input.PIN); err != nil {
		return nil, err
	}

	// A retried request whose response was lost must not re-apply the
	// debit; the donation correlation id identifies the prior outcome.
	if input.DonationID != "" {
		prior, err := s.txnRepo.GetSuccessByDonationID(ctx, s.db, input.DonationID)
		if err == nil {
			s.logger.Info("transfer replayed from ledger", "txnId", prior.TxnID, "donationId", input.DonationID)
			return &TransferResult{
				TxnID:         prior.TxnID,
				SenderName:    prior.FromName,
				SenderBalance: prior.SenderBalance,
				Amount:        prior.Amount,
				Timestamp:     prior.Timestamp,
				Replayed:      true,
			}, nil
		}
		if !util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("transfer: idempotency lookup failed: %w", util.ErrPersistence)
		}
	}

	// Step a: conditional debit with bounded retry. A conflict means a
	// concurrent writer moved the balance between our read and write.
	var balanceBefore decimal.Decimal
	debited := false
	for attempt := 0; attempt < s.debitAttempts; attempt++ {
		if attempt > 0 {
			sender, err = s.accountRepo.GetByUpiID(ctx, s.db, fromUpi)
			if err != nil {
				return nil, err
			}
		}
		if sender.Balance.LessThan(input.Amount) {
			return nil, &util.InsufficientFundsError{CurrentBalance: sender.Balance}
		}
		balanceBefore = sender.Balance

		applied, err := s.accountRepo.SetBalance(ctx, s.db, fromUpi, balanceBefore.Sub(input.Amount), balanceBefore)
		if err != nil {
			return nil, fmt.Errorf("transfer: debit failed: %w", util.ErrPersistence)
		}
		if applied {
			debited = true
			break
		}
		s.logger.Warn("debit conflict, retrying", "upiId", fromUpi, "attempt", attempt+1)
	}
	if !debited {
		return nil, fmt.Errorf("transfer: debit conflict retries exhausted: %w", util.ErrPersistence)
	}

	senderBalance := balanceBefore.Sub(input.Amount)

	// Step b: commutative credit. On failure, restore the sender with a
	// conditional write expecting the debited balance, so an interleaved
	// writer is never clobbered.
	if err := s.accountRepo.Increment(ctx, s.db, s.merchantUpi, input.Amount); err != nil {
		restored, rerr := s.accountRepo.SetBalance(ctx, s.db, fromUpi, balanceBefore, senderBalance)
		if rerr != nil || !restored {
			s.logger.Error("CRITICAL: compensation failed, funds require manual reconciliation",
				"upiId", fromUpi, "amount", input.Amount, "creditError", err, "restoreError", rerr, "restored", restored)
			s.recordFailure(ctx, sender, input)
			return nil, util.ErrCompensationFailed
		}
		s.logger.Error("merchant credit failed, sender restored", "upiId", fromUpi, "amount", input.Amount, "error", err)
		s.recordFailure(ctx, sender, input)
		return nil, util.ErrPartialFailure
	}

	// Step c: ledger row. Funds have moved, so a write failure here is
	// fatal to the transfer outcome and must not be swallowed.
	now := time.Now().UTC()
	txn := domain.NewTransaction(
		domain.NewTransactionID(now),
		fromUpi, sender.Name, s.merchantUpi,
		input.Amount, input.OrderID, input.DonationID,
		domain.TransactionStatusSuccess, senderBalance, now,
	)
	if err := s.txnRepo.Record(ctx, s.db, txn); err != nil {
		s.logger.Error("ledger write failed after funds moved", "txnId", txn.TxnID, "upiId", fromUpi, "error", err)
		return nil, fmt.Errorf("transfer: ledger record failed: %w", util.ErrPersistence)
	}

	s.logger.Info("transfer complete",
		"txnId", txn.TxnID, "from", fromUpi, "to", s.merchantUpi, "amount", input.Amount)

	return &TransferResult{
		TxnID:         txn.TxnID,
		SenderName:    sender.Name,
		SenderBalance: senderBalance,
		Amount:        input.Amount,
		Timestamp:     now,
	}, nil
}

// recordFailure appends a FAILED ledger row for a post-debit failure.
// Best effort: the primary error already describes the outcome.
func (s *transferService) recordFailure(ctx context.Context, sender *domain.Account, input TransferInput) {
	now := time.Now().UTC()
	txn := domain.NewTransaction(
		domain.NewTransactionID(now),
		domain.NormalizeUpiID(input.UpiID), sender.Name, s.merchantUpi,
		input.Amount, input.OrderID, input.DonationID,
		domain.TransactionStatusFailed, sender.Balance, now,
	)
	if err := s.txnRepo.Record(ctx, s.db, txn); err != nil {
		s.logger.Error("failed to record FAILED transaction", "txnId", txn.TxnID, "error", err)
	}
}

// GetAccount looks up an account by (denormalized) UPI ID.
func (s *transferService) GetAccount(ctx context.Context, upiID string) (*domain.Account, error) {
	return s.accountRepo.GetByUpiID(ctx, s.db, domain.NormalizeUpiID(upiID))
}

// ListAccounts returns every account except the merchant collection point.
func (s *transferService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.List(ctx, s.db, s.merchantUpi)
}

// History returns the participant's transactions, newest first.
func (s *transferService) History(ctx context.Context, upiID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	return s.txnRepo.HistoryByParticipant(ctx, s.db, domain.NormalizeUpiID(upiID), limit)
}

// HistoryByUserID resolves the internal user id to an account first. An
// unknown user id is not an error: it yields an empty history.
func (s *transferService) HistoryByUserID(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	account, err := s.accountRepo.GetByUserID(ctx, s.db, userID)
	if err != nil {
		if util.IsError(err, util.ErrAccountNotFound) || util.IsError(err, util.ErrNotFound) {
			return []domain.Transaction{}, nil
		}
		return nil, err
	}
	return s.History(ctx, account.UpiID, limit)
}
