package domain

import (
	"context"
	"time"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus, txHash string, at time.Time) error
	CompleteOrder(ctx context.Context, completion OrderCompletion) error
	FindPendingOrders(ctx context.Context, now time.Time) ([]*Order, error)
	FindExpirableOrders(ctx context.Context, now time.Time) ([]*Order, error)
	ExpireOrders(ctx context.Context, now time.Time) ([]string, error)
	GetTransactionsByOrderID(ctx context.Context, orderID string) ([]*TransactionRecord, error)
}

type CallbackRepository interface {
	FindDueCallbackDeliveries(ctx context.Context, now time.Time, limit int) ([]*CallbackDelivery, error)
	// LeaseCallbackDelivery takes ownership of a due delivery until the given time.
	// It fails with ErrCallbackLeased when the row is not due or attempts moved on.
	LeaseCallbackDelivery(ctx context.Context, id string, attempts int, now, until time.Time) error
	// UpdateCallbackDelivery records the outcome of one attempt. delivery.Attempts must be
	// exactly one more than the stored count, otherwise ErrCallbackLeased is returned.
	UpdateCallbackDelivery(ctx context.Context, delivery *CallbackDelivery) error
}

// OrderStore is what a storage backend provides to the gateway.
type OrderStore interface {
	OrderRepository
	CallbackRepository
}
