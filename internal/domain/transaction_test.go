// internal/domain/transaction_test.go
package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionID(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 42, time.UTC)
	assert.Equal(t, "TXN1714564800000000042", NewTransactionID(at))
}

func TestNewTransactionCorrelationIDs(t *testing.T) {
	amount := decimal.RequireFromString("10.00")
	balance := decimal.RequireFromString("990.00")
	now := time.Now().UTC()

	txn := NewTransaction("TXN1", "mrunal@upi", "Mrunal", MerchantUpiID, amount, "", "", TransactionStatusSuccess, balance, now)
	assert.Nil(t, txn.OrderID)
	assert.Nil(t, txn.DonationID)

	txn = NewTransaction("TXN2", "mrunal@upi", "Mrunal", MerchantUpiID, amount, "order-1", "donation-1", TransactionStatusSuccess, balance, now)
	require.NotNil(t, txn.OrderID)
	require.NotNil(t, txn.DonationID)
	assert.Equal(t, "order-1", *txn.OrderID)
	assert.Equal(t, "donation-1", *txn.DonationID)
}

func TestNormalizeUpiID(t *testing.T) {
	assert.Equal(t, "mrunal@upi", NormalizeUpiID("  MRUNAL@UPI "))
	assert.Equal(t, "mrunal@upi", NormalizeUpiID("mrunal@upi"))
}

func TestDonationStartsPending(t *testing.T) {
	donation := NewDonation("user-1", "charity-water", decimal.RequireFromString("25.00"))
	assert.Equal(t, DonationStatusPending, donation.Status)
	assert.NotEmpty(t, donation.ID)
	assert.Empty(t, donation.TxnID)
}
