// Package memory is a process-local OrderStore used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/google/uuid"
)

type Store struct {
	mu           sync.RWMutex
	orders       map[string]*domain.Order
	transactions map[string][]*domain.TransactionRecord
	callbacks    map[string]*domain.CallbackDelivery
	// claims maps a tx hash to the order that completed with it
	claims map[string]string
}

func NewStore() *Store {
	return &Store{
		orders:       make(map[string]*domain.Order),
		transactions: make(map[string][]*domain.TransactionRecord),
		callbacks:    make(map[string]*domain.CallbackDelivery),
		claims:       make(map[string]string),
	}
}

func (s *Store) CreateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.OrderID]; exists {
		return domain.ErrDuplicateOrder
	}
	s.orders[order.OrderID] = copyOrder(order)
	return nil
}

func (s *Store) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus, txHash string, at time.Time) error {
	if err := domain.ValidateTransition(status, txHash); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.pendingOrder(orderID)
	if err != nil {
		return err
	}
	applyTransition(order, status, txHash, at)
	return nil
}

func (s *Store) CompleteOrder(_ context.Context, completion domain.OrderCompletion) error {
	txHash := completion.Transaction.TxHash
	if err := domain.ValidateTransition(domain.StatusCompleted, txHash); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if completion.ClaimTransfer {
		if owner, ok := s.claims[txHash]; ok && owner != completion.OrderID {
			return domain.ErrTransferClaimed
		}
	}

	order, err := s.pendingOrder(completion.OrderID)
	if err != nil {
		return err
	}
	applyTransition(order, domain.StatusCompleted, txHash, completion.ConfirmedAt)

	record := completion.Transaction
	record.OrderID = completion.OrderID
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	s.transactions[record.OrderID] = append(s.transactions[record.OrderID], &record)
	if _, ok := s.claims[txHash]; !ok {
		s.claims[txHash] = completion.OrderID
	}

	if completion.Callback != nil {
		delivery := *completion.Callback
		s.callbacks[delivery.ID] = &delivery
	}
	return nil
}

func (s *Store) FindPendingOrders(_ context.Context, now time.Time) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []*domain.Order
	for _, order := range s.orders {
		if order.Status == domain.StatusPending && order.ExpiresAt.After(now) {
			orders = append(orders, copyOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *Store) FindExpirableOrders(_ context.Context, now time.Time) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.expirable(now), nil
}

func (s *Store) ExpireOrders(_ context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expirable := s.expirable(now)
	ids := make([]string, 0, len(expirable))
	for _, order := range expirable {
		s.orders[order.OrderID].Status = domain.StatusExpired
		ids = append(ids, order.OrderID)
	}
	return ids, nil
}

func (s *Store) GetTransactionsByOrderID(_ context.Context, orderID string) ([]*domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*domain.TransactionRecord, 0, len(s.transactions[orderID]))
	for _, record := range s.transactions[orderID] {
		cp := *record
		records = append(records, &cp)
	}
	return records, nil
}

func (s *Store) FindDueCallbackDeliveries(_ context.Context, now time.Time, limit int) ([]*domain.CallbackDelivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*domain.CallbackDelivery
	for _, delivery := range s.callbacks {
		if delivery.Status == domain.CallbackPending && !delivery.NextAttemptAt.After(now) {
			cp := *delivery
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextAttemptAt.Before(due[j].NextAttemptAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *Store) LeaseCallbackDelivery(_ context.Context, id string, attempts int, now, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.callbacks[id]
	if !ok {
		return domain.ErrCallbackNotFound
	}
	if existing.Status != domain.CallbackPending || existing.Attempts != attempts || existing.NextAttemptAt.After(now) {
		return domain.ErrCallbackLeased
	}
	existing.NextAttemptAt = until
	return nil
}

func (s *Store) UpdateCallbackDelivery(_ context.Context, delivery *domain.CallbackDelivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.callbacks[delivery.ID]
	if !ok {
		return domain.ErrCallbackNotFound
	}
	if existing.Status != domain.CallbackPending || existing.Attempts != delivery.Attempts-1 {
		return domain.ErrCallbackLeased
	}
	existing.Status = delivery.Status
	existing.Attempts = delivery.Attempts
	existing.NextAttemptAt = delivery.NextAttemptAt
	existing.LastError = delivery.LastError
	existing.UpdatedAt = delivery.UpdatedAt
	existing.DeliveredAt = delivery.DeliveredAt
	return nil
}

// pendingOrder must be called with the write lock held.
func (s *Store) pendingOrder(orderID string) (*domain.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if order.Status != domain.StatusPending {
		return nil, domain.ErrOrderNotPending
	}
	return order, nil
}

func (s *Store) expirable(now time.Time) []*domain.Order {
	var orders []*domain.Order
	for _, order := range s.orders {
		if order.Status == domain.StatusPending && !order.ExpiresAt.After(now) {
			orders = append(orders, copyOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ExpiresAt.Before(orders[j].ExpiresAt)
	})
	return orders
}

func applyTransition(order *domain.Order, status domain.OrderStatus, txHash string, at time.Time) {
	order.Status = status
	if txHash != "" {
		order.TransactionHash = txHash
		confirmedAt := at.UTC()
		order.ConfirmedAt = &confirmedAt
	}
}

func copyOrder(order *domain.Order) *domain.Order {
	cp := *order
	if order.ConfirmedAt != nil {
		confirmedAt := *order.ConfirmedAt
		cp.ConfirmedAt = &confirmedAt
	}
	return &cp
}
