// internal/domain/charity.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationStatus is the state of a donation in the charity store.
// A donation transitions pending -> completed exactly once; completed
// is terminal.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
)

// Charity is a fundraising target in the secondary store. Raised is
// monotonically non-decreasing and is mutated only by the reconciler.
type Charity struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Goal        decimal.Decimal `json:"goal"`
	Raised      decimal.Decimal `json:"raised"`
}

// Donation links a user's pledge to a charity. TxnID is filled in when
// the reconciler marks the donation completed.
type Donation struct {
	ID        string          `json:"id"`
	CharityID string          `json:"charityId"`
	UserID    string          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    DonationStatus  `json:"status"`
	TxnID     string          `json:"txnId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewDonation creates a pending donation with a generated id.
func NewDonation(userID, charityID string, amount decimal.Decimal) *Donation {
	return &Donation{
		ID:        uuid.NewString(),
		CharityID: charityID,
		UserID:    userID,
		Amount:    amount,
		Status:    DonationStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
