// internal/service/reconciler_test.go
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-ledger/internal/domain"
	"nova-ledger/internal/util"
)

// fakeCharityStore is an in-memory CharityStore with the same
// pending-to-completed transition semantics as the Redis implementation.
type fakeCharityStore struct {
	mu        sync.Mutex
	charities map[string]*domain.Charity
	donations map[string]*domain.Donation

	completeErr error // injected store failure
}

func newFakeCharityStore() *fakeCharityStore {
	return &fakeCharityStore{
		charities: make(map[string]*domain.Charity),
		donations: make(map[string]*domain.Donation),
	}
}

func (f *fakeCharityStore) SeedCharity(ctx context.Context, charity *domain.Charity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.charities[charity.ID]; ok {
		return nil
	}
	copied := *charity
	f.charities[charity.ID] = &copied
	return nil
}

func (f *fakeCharityStore) GetCharity(ctx context.Context, id string) (*domain.Charity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	charity, ok := f.charities[id]
	if !ok {
		return nil, util.ErrCharityNotFound
	}
	copied := *charity
	return &copied, nil
}

func (f *fakeCharityStore) ListCharities(ctx context.Context) ([]domain.Charity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Charity{}
	for _, charity := range f.charities {
		out = append(out, *charity)
	}
	return out, nil
}

func (f *fakeCharityStore) CreateDonation(ctx context.Context, donation *domain.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *donation
	f.donations[donation.ID] = &copied
	return nil
}

func (f *fakeCharityStore) GetDonation(ctx context.Context, id string) (*domain.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	donation, ok := f.donations[id]
	if !ok {
		return nil, util.ErrDonationNotFound
	}
	copied := *donation
	return &copied, nil
}

func (f *fakeCharityStore) CompleteDonation(ctx context.Context, donationID, txnID string) (bool, *domain.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return false, nil, f.completeErr
	}
	donation, ok := f.donations[donationID]
	if !ok {
		return false, nil, util.ErrDonationNotFound
	}
	if donation.Status == domain.DonationStatusCompleted {
		copied := *donation
		return false, &copied, nil
	}
	donation.Status = domain.DonationStatusCompleted
	donation.TxnID = txnID
	if charity, ok := f.charities[donation.CharityID]; ok {
		charity.Raised = charity.Raised.Add(donation.Amount)
	}
	copied := *donation
	return true, &copied, nil
}

func newTestCharityService(store *fakeCharityStore) CharityService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCharityService(store, 0, logger)
}

func seedCharityAndDonation(t *testing.T, store *fakeCharityStore) *domain.Donation {
	t.Helper()
	require.NoError(t, store.SeedCharity(context.Background(), &domain.Charity{
		ID:     "charity-water",
		Name:   "Clean Wells",
		Goal:   decimal.RequireFromString("100.00"),
		Raised: decimal.Zero,
	}))
	donation := domain.NewDonation("user-1", "charity-water", decimal.RequireFromString("25.00"))
	require.NoError(t, store.CreateDonation(context.Background(), donation))
	return donation
}

func TestReconcileCompletesPendingDonation(t *testing.T) {
	store := newFakeCharityStore()
	donation := seedCharityAndDonation(t, store)
	svc := newTestCharityService(store)

	outcome := svc.Reconcile(context.Background(), donation.ID, "TXN123")
	assert.Equal(t, OutcomeReconciled, outcome)

	got, err := store.GetDonation(context.Background(), donation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationStatusCompleted, got.Status)
	assert.Equal(t, "TXN123", got.TxnID)

	charity, err := store.GetCharity(context.Background(), "charity-water")
	require.NoError(t, err)
	assert.True(t, charity.Raised.Equal(decimal.RequireFromString("25.00")))
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newFakeCharityStore()
	donation := seedCharityAndDonation(t, store)
	svc := newTestCharityService(store)

	assert.Equal(t, OutcomeReconciled, svc.Reconcile(context.Background(), donation.ID, "TXN123"))
	assert.Equal(t, OutcomeNoOp, svc.Reconcile(context.Background(), donation.ID, "TXN123"))

	// Raised is incremented exactly once.
	charity, err := store.GetCharity(context.Background(), "charity-water")
	require.NoError(t, err)
	assert.True(t, charity.Raised.Equal(decimal.RequireFromString("25.00")))
}

func TestReconcileMissingDonationFails(t *testing.T) {
	store := newFakeCharityStore()
	svc := newTestCharityService(store)

	outcome := svc.Reconcile(context.Background(), "no-such-donation", "TXN123")
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestReconcileStoreFailureIsIsolated(t *testing.T) {
	store := newFakeCharityStore()
	donation := seedCharityAndDonation(t, store)
	store.completeErr = errors.New("redis down")
	svc := newTestCharityService(store)

	// The outcome reports the failure; no error escapes to the caller.
	outcome := svc.Reconcile(context.Background(), donation.ID, "TXN123")
	assert.Equal(t, OutcomeFailed, outcome)

	got, err := store.GetDonation(context.Background(), donation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationStatusPending, got.Status)
}

func TestReconcileIgnoresCallerCancellation(t *testing.T) {
	store := newFakeCharityStore()
	donation := seedCharityAndDonation(t, store)
	svc := newTestCharityService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled request context must not abandon the transition.
	outcome := svc.Reconcile(ctx, donation.ID, "TXN123")
	assert.Equal(t, OutcomeReconciled, outcome)
}

func TestCreateDonationValidation(t *testing.T) {
	store := newFakeCharityStore()
	seedCharityAndDonation(t, store)
	svc := newTestCharityService(store)

	_, err := svc.CreateDonation(context.Background(), "", "charity-water", decimal.RequireFromString("5.00"))
	assert.True(t, util.IsError(err, util.ErrInvalidInput))

	_, err = svc.CreateDonation(context.Background(), "user-1", "charity-water", decimal.Zero)
	assert.True(t, util.IsError(err, util.ErrInvalidAmount))

	_, err = svc.CreateDonation(context.Background(), "user-1", "no-such-charity", decimal.RequireFromString("5.00"))
	assert.True(t, util.IsError(err, util.ErrCharityNotFound))

	donation, err := svc.CreateDonation(context.Background(), "user-1", "charity-water", decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	assert.NotEmpty(t, donation.ID)
	assert.Equal(t, domain.DonationStatusPending, donation.Status)
}
