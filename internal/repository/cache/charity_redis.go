// internal/repository/cache/charity_redis.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"nova-ledger/internal/domain"
	"nova-ledger/internal/repository"
	"nova-ledger/internal/util"
)

const (
	charityKeyPrefix  = "charity:"
	donationKeyPrefix = "donation:"
	charityIndexKey   = "charities"

	// completeDonation restarts after an optimistic-lock failure.
	maxCompleteAttempts = 3
)

// CharityStore implements repository.CharityStore on Redis hashes.
// Charities and donations each live in one hash; the pending->completed
// transition uses WATCH so two reconcilers cannot both apply it.
type CharityStore struct {
	client *redis.Client
}

// NewCharityStore creates a charity store backed by Redis.
func NewCharityStore(client *redis.Client) repository.CharityStore {
	return &CharityStore{client: client}
}

func (s *CharityStore) SeedCharity(ctx context.Context, charity *domain.Charity) error {
	key := charityKeyPrefix + charity.ID
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check charity %s: %w", charity.ID, err)
	}
	if exists == 1 {
		return nil
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"name", charity.Name,
			"description", charity.Description,
			"goal", charity.Goal.String(),
			"raised", charity.Raised.String(),
		)
		p.SAdd(ctx, charityIndexKey, charity.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed charity %s: %w", charity.ID, err)
	}
	return nil
}

func (s *CharityStore) GetCharity(ctx context.Context, id string) (*domain.Charity, error) {
	data, err := s.client.HGetAll(ctx, charityKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get charity %s: %w", id, err)
	}
	if len(data) == 0 {
		return nil, util.ErrCharityNotFound
	}
	return parseCharity(id, data)
}

func (s *CharityStore) ListCharities(ctx context.Context) ([]domain.Charity, error) {
	ids, err := s.client.SMembers(ctx, charityIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list charities: %w", err)
	}
	charities := make([]domain.Charity, 0, len(ids))
	for _, id := range ids {
		charity, err := s.GetCharity(ctx, id)
		if err != nil {
			if util.IsError(err, util.ErrCharityNotFound) {
				continue
			}
			return nil, err
		}
		charities = append(charities, *charity)
	}
	return charities, nil
}

func (s *CharityStore) CreateDonation(ctx context.Context, donation *domain.Donation) error {
	key := donationKeyPrefix + donation.ID
	err := s.client.HSet(ctx, key,
		"charity_id", donation.CharityID,
		"user_id", donation.UserID,
		"amount", donation.Amount.String(),
		"status", string(donation.Status),
		"txn_id", donation.TxnID,
		"created_at", donation.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to create donation %s: %w", donation.ID, err)
	}
	return nil
}

func (s *CharityStore) GetDonation(ctx context.Context, id string) (*domain.Donation, error) {
	data, err := s.client.HGetAll(ctx, donationKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get donation %s: %w", id, err)
	}
	if len(data) == 0 {
		return nil, util.ErrDonationNotFound
	}
	return parseDonation(id, data)
}

// CompleteDonation transitions pending -> completed under WATCH. The
// donation hash is the watched key: if another writer touches it between
// the read and the pipeline, the transaction aborts and is retried.
func (s *CharityStore) CompleteDonation(ctx context.Context, donationID, txnID string) (bool, *domain.Donation, error) {
	key := donationKeyPrefix + donationID

	var completed bool
	var donation *domain.Donation

	transition := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return util.ErrDonationNotFound
		}
		donation, err = parseDonation(donationID, data)
		if err != nil {
			return err
		}
		if donation.Status == domain.DonationStatusCompleted {
			completed = false
			return nil
		}

		amount, _ := donation.Amount.Float64()
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, "status", string(domain.DonationStatusCompleted), "txn_id", txnID)
			p.HIncrByFloat(ctx, charityKeyPrefix+donation.CharityID, "raised", amount)
			return nil
		})
		if err != nil {
			return err
		}
		completed = true
		donation.Status = domain.DonationStatusCompleted
		donation.TxnID = txnID
		return nil
	}

	var err error
	for attempt := 0; attempt < maxCompleteAttempts; attempt++ {
		err = s.client.Watch(ctx, transition, key)
		if err != redis.TxFailedErr {
			break
		}
	}
	if err != nil {
		if util.IsError(err, util.ErrDonationNotFound) {
			return false, nil, err
		}
		return false, nil, fmt.Errorf("failed to complete donation %s: %w", donationID, err)
	}
	return completed, donation, nil
}

func parseCharity(id string, data map[string]string) (*domain.Charity, error) {
	goal, err := decimal.NewFromString(data["goal"])
	if err != nil {
		return nil, fmt.Errorf("charity %s has malformed goal %q: %w", id, data["goal"], err)
	}
	raised, err := decimal.NewFromString(data["raised"])
	if err != nil {
		return nil, fmt.Errorf("charity %s has malformed raised %q: %w", id, data["raised"], err)
	}
	return &domain.Charity{
		ID:          id,
		Name:        data["name"],
		Description: data["description"],
		Goal:        goal,
		Raised:      raised,
	}, nil
}

func parseDonation(id string, data map[string]string) (*domain.Donation, error) {
	amount, err := decimal.NewFromString(data["amount"])
	if err != nil {
		return nil, fmt.Errorf("donation %s has malformed amount %q: %w", id, data["amount"], err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, data["created_at"])
	return &domain.Donation{
		ID:        id,
		CharityID: data["charity_id"],
		UserID:    data["user_id"],
		Amount:    amount,
		Status:    domain.DonationStatus(data["status"]),
		TxnID:     data["txn_id"],
		CreatedAt: createdAt,
	}, nil
}
