package domain

import (
	"context"
	"time"
)

type CallbackStatus string

const (
	CallbackPending   CallbackStatus = "pending"
	CallbackDelivered CallbackStatus = "delivered"
	CallbackFailed    CallbackStatus = "failed"
)

// CallbackDelivery is an outbox row for a merchant completion notification.
type CallbackDelivery struct {
	ID            string
	OrderID       string
	TxHash        string
	URL           string
	Status        CallbackStatus
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeliveredAt   *time.Time
}

type CallbackNotifier interface {
	Notify(ctx context.Context, order *Order, txHash string) error
}
