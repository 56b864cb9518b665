// internal/domain/transaction.go
package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionStatus defines the outcome of an attempted transfer.
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is one immutable ledger row per attempted transfer outcome.
type Transaction struct {
	TxnID         string            `db:"txn_id" json:"txnId"` // Primary key, timestamp-derived
	FromUpi       string            `db:"from_upi" json:"fromUpi"`
	FromName      string            `db:"from_name" json:"fromName"`
	ToUpi         string            `db:"to_upi" json:"toUpi"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"`
	OrderID       *string           `db:"order_id" json:"orderId"`       // Caller correlation id (nullable)
	DonationID    *string           `db:"donation_id" json:"donationId"` // Donation correlation id (nullable)
	Status        TransactionStatus `db:"status" json:"status"`
	SenderBalance decimal.Decimal   `db:"sender_balance" json:"-"` // Sender balance after the transfer, kept for idempotent replay
	Timestamp     time.Time         `db:"timestamp" json:"timestamp"`
}

// NewTransactionID derives a transaction id from the supplied instant.
// Nanosecond resolution keeps ids unique under concurrent transfers in
// one process; the ledger's primary key backstops the rest.
func NewTransactionID(at time.Time) string {
	return "TXN" + strconv.FormatInt(at.UnixNano(), 10)
}

// NewTransaction builds a ledger row for a transfer outcome.
func NewTransaction(txnID string, fromUpi, fromName, toUpi string, amount decimal.Decimal, orderID, donationID string, status TransactionStatus, senderBalance decimal.Decimal, at time.Time) *Transaction {
	txn := &Transaction{
		TxnID:         txnID,
		FromUpi:       fromUpi,
		FromName:      fromName,
		ToUpi:         toUpi,
		Amount:        amount,
		Status:        status,
		SenderBalance: senderBalance,
		Timestamp:     at,
	}
	if orderID != "" {
		txn.OrderID = &orderID
	}
	if donationID != "" {
		txn.DonationID = &donationID
	}
	return txn
}
