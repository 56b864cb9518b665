// internal/domain/account.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// MerchantUpiID is the reserved collection account every transfer credits.
// It is provisioned at startup and never deleted.
const MerchantUpiID = "merchant@bank"

// Account represents a bank account addressable by its UPI ID.
type Account struct {
	ID            int64           `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"userId"`
	Name          string          `db:"name" json:"name"`
	BankName      string          `db:"bank_name" json:"bankName"`
	AccountNumber string          `db:"account_number" json:"accountNumber"`
	UpiID         string          `db:"upi_id" json:"upiId"`
	PinHash       string          `db:"pin_hash" json:"-"` // bcrypt hash, never serialized
	Balance       decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(20, 2) in DB, non-negative
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

// NormalizeUpiID trims and case-folds a UPI ID so that lookups do not
// fail on whitespace or casing differences in caller input.
func NormalizeUpiID(upiID string) string {
	return strings.ToLower(strings.TrimSpace(upiID))
}

// IsMerchant reports whether the account is the reserved collection point.
func (a *Account) IsMerchant() bool {
	return a.UpiID == MerchantUpiID
}
