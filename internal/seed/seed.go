// internal/seed/seed.go
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nova-ledger/internal/domain"
	"nova-ledger/internal/repository"
	"nova-ledger/internal/security"
	"nova-ledger/internal/util"
)

// demoAccount is one seeded account. PINs are only ever stored hashed.
type demoAccount struct {
	id      int64
	name    string
	upiID   string
	pin     string
	balance decimal.Decimal
}

var demoBalance = decimal.RequireFromString("1000.00")

func demoAccounts() []demoAccount {
	return []demoAccount{
		{id: 1, name: "Merchant", upiID: domain.MerchantUpiID, pin: "0000", balance: decimal.Zero},
		{id: 2, name: "Mrunal", upiID: "mrunal@upi", pin: "1111", balance: demoBalance},
		{id: 3, name: "Rakshitha", upiID: "rakshitha@upi", pin: "2222", balance: demoBalance},
		{id: 4, name: "Meghana", upiID: "meghana@upi", pin: "3333", balance: demoBalance},
		{id: 5, name: "Mitha", upiID: "mitha@upi", pin: "4444", balance: demoBalance},
	}
}

func demoCharities() []domain.Charity {
	return []domain.Charity{
		{
			ID:          "charity-education",
			Name:        "Books for All",
			Description: "Funds school books and supplies for children in rural districts.",
			Goal:        decimal.RequireFromString("50000.00"),
			Raised:      decimal.Zero,
		},
		{
			ID:          "charity-animals",
			Name:        "Street Paws",
			Description: "Vaccination and shelter for stray animals.",
			Goal:        decimal.RequireFromString("20000.00"),
			Raised:      decimal.Zero,
		},
		{
			ID:          "charity-water",
			Name:        "Clean Wells",
			Description: "Builds and maintains clean drinking water wells.",
			Goal:        decimal.RequireFromString("75000.00"),
			Raised:      decimal.Zero,
		},
	}
}

// Accounts inserts the merchant and demo sender accounts if they do not
// already exist. Existing accounts are left untouched so restarts do not
// reset balances.
func Accounts(ctx context.Context, db repository.DBExecutor, repo repository.AccountRepository, hasher security.PinHasher, logger *slog.Logger) error {
	for _, demo := range demoAccounts() {
		if _, err := repo.GetByUpiID(ctx, db, demo.upiID); err == nil {
			continue
		} else if !util.IsError(err, util.ErrAccountNotFound) {
			return fmt.Errorf("failed to check seed account %s: %w", demo.upiID, err)
		}

		pinHash, err := hasher.Hash(demo.pin)
		if err != nil {
			return fmt.Errorf("failed to hash pin for %s: %w", demo.upiID, err)
		}
		account := &domain.Account{
			ID:            demo.id,
			UserID:        uuid.NewString(),
			Name:          demo.name,
			BankName:      "Nova Bank",
			AccountNumber: fmt.Sprintf("NB%08d", demo.id),
			UpiID:         demo.upiID,
			PinHash:       pinHash,
			Balance:       demo.balance,
			CreatedAt:     time.Now().UTC(),
		}
		if err := repo.Create(ctx, db, account); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", demo.upiID, err)
		}
		logger.Info("Seeded account", "upiId", demo.upiID, "balance", demo.balance)
	}
	return nil
}

// Charities inserts the demo charities into the charity store. The
// store skips charities that already exist, preserving raised amounts.
func Charities(ctx context.Context, store repository.CharityStore, logger *slog.Logger) error {
	for _, charity := range demoCharities() {
		c := charity
		if err := store.SeedCharity(ctx, &c); err != nil {
			return fmt.Errorf("failed to seed charity %s: %w", c.ID, err)
		}
		logger.Info("Seeded charity", "charityId", c.ID, "goal", c.Goal)
	}
	return nil
}
