package domain

import (
	"context"
	"time"
)

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, msgs ...Message) error
}

// OrderEvent is published on every lifecycle transition.
type OrderEvent struct {
	OrderID         string    `json:"order_id"`
	MerchantID      string    `json:"merchant_id"`
	Status          string    `json:"status"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	PaymentAddress  string    `json:"payment_address"`
	TransactionHash string    `json:"transaction_hash,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}
