// internal/util/errors.go
package util

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common application-specific errors. The strings double as the stable
// machine-readable reasons surfaced to API callers.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("missing required fields")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAccountNotFound  = errors.New("upi id not found")
	ErrInvalidPIN       = errors.New("invalid upi pin")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrPersistence      = errors.New("store unavailable")
	// ErrPartialFailure: the debit committed but the merchant credit
	// failed; the sender was restored by compensation.
	ErrPartialFailure = errors.New("merchant credit failed, transaction rolled back")
	// ErrCompensationFailed: the debit committed, the credit failed and
	// the compensating restore also failed. Funds are in limbo and the
	// condition requires manual reconciliation.
	ErrCompensationFailed = errors.New("transfer compensation failed, manual reconciliation required")
	ErrDonationNotFound   = errors.New("donation not found")
	ErrCharityNotFound    = errors.New("charity not found")
)

// IsError checks if the given error matches the target error using errors.Is.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// InsufficientFundsError carries the sender's current balance so the
// caller can surface it alongside the failure.
type InsufficientFundsError struct {
	CurrentBalance decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: current balance %s", ErrInsufficientFunds, e.CurrentBalance)
}

// Is makes errors.Is(err, ErrInsufficientFunds) match.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
