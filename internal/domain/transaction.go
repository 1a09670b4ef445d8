package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionPending   TransactionStatus = "pending"
)

// TransactionRecord is an on-chain transfer matched to an order.
// Identity is TxHash + OrderID; the order is referenced by id only.
type TransactionRecord struct {
	ID            string
	OrderID       string
	TxHash        string
	FromAddress   string
	ToAddress     string
	Amount        decimal.Decimal
	Currency      Currency
	BlockNumber   int64
	Confirmations int
	Status        TransactionStatus
	CreatedAt     time.Time
}

// OrderCompletion is the unit of work applied when a transfer satisfies an order.
type OrderCompletion struct {
	OrderID     string
	Transaction TransactionRecord
	ConfirmedAt time.Time
	// ClaimTransfer rejects the completion when the hash already completed another order.
	ClaimTransfer bool
	// Callback is enqueued together with the status change when the order has a callback url.
	Callback *CallbackDelivery
}
