// internal/repository/charity_store.go
package repository

import (
	"context"

	"nova-ledger/internal/domain"
)

// CharityStore is the secondary store holding charities and donations.
// It lives in a different system than the funds ledger and can fail
// independently of it.
type CharityStore interface {
	// SeedCharity creates the charity if it does not exist yet.
	SeedCharity(ctx context.Context, charity *domain.Charity) error
	// GetCharity retrieves a charity by id, or util.ErrCharityNotFound.
	GetCharity(ctx context.Context, id string) (*domain.Charity, error)
	// ListCharities returns all charities.
	ListCharities(ctx context.Context) ([]domain.Charity, error)
	// CreateDonation stores a new pending donation.
	CreateDonation(ctx context.Context, donation *domain.Donation) error
	// GetDonation retrieves a donation by id, or util.ErrDonationNotFound.
	GetDonation(ctx context.Context, id string) (*domain.Donation, error)
	// CompleteDonation atomically transitions the donation from pending to
	// completed, links txnID and increments the charity's raised amount by
	// the donation amount. It returns completed=false when the donation was
	// already completed (idempotent no-op) and util.ErrDonationNotFound when
	// the donation does not exist.
	CompleteDonation(ctx context.Context, donationID, txnID string) (completed bool, donation *domain.Donation, err error)
}
