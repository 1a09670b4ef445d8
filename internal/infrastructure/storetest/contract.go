// Package storetest holds the behaviour every domain.OrderStore must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

var base = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

func newOrder(id string, createdAt time.Time, ttl time.Duration) *domain.Order {
	return &domain.Order{
		OrderID:        id,
		MerchantID:     "M1",
		Amount:         decimal.RequireFromString("10.5"),
		Currency:       domain.CurrencyTRX,
		PaymentAddress: "TPayAddress",
		Status:         domain.StatusPending,
		CallbackURL:    "https://merchant.example/cb",
		CreatedAt:      createdAt,
		ExpiresAt:      createdAt.Add(ttl),
	}
}

func completion(orderID, txHash string, claim bool) domain.OrderCompletion {
	return domain.OrderCompletion{
		OrderID: orderID,
		Transaction: domain.TransactionRecord{
			TxHash:        txHash,
			FromAddress:   "TSender",
			ToAddress:     "TPayAddress",
			Amount:        decimal.RequireFromString("10.5"),
			Currency:      domain.CurrencyTRX,
			Confirmations: 1,
			Status:        domain.TransactionConfirmed,
			CreatedAt:     base.Add(time.Minute),
		},
		ConfirmedAt:   base.Add(time.Minute),
		ClaimTransfer: claim,
	}
}

// RunOrderStoreContract runs the shared suite; newStore must return an empty store.
func RunOrderStoreContract(t *testing.T, newStore func(t *testing.T) domain.OrderStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		store := newStore(t)
		order := newOrder("O1", base, 30*time.Minute)
		order.RequestedAmount = "10.50"
		if err := store.CreateOrder(ctx, order); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := store.GetOrderByID(ctx, "O1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.MerchantID != "M1" || got.Currency != domain.CurrencyTRX || got.Status != domain.StatusPending {
			t.Fatalf("unexpected order %+v", got)
		}
		if !got.Amount.Equal(decimal.RequireFromString("10.5")) {
			t.Fatalf("expected amount 10.5, got %s", got.Amount)
		}
		if got.RequestedAmount != "10.50" {
			t.Fatalf("expected submitted amount 10.50, got %q", got.RequestedAmount)
		}
		if got.CallbackURL != "https://merchant.example/cb" || got.ReturnURL != "" {
			t.Fatalf("unexpected urls %q %q", got.CallbackURL, got.ReturnURL)
		}
		if !got.ExpiresAt.Equal(base.Add(30 * time.Minute)) {
			t.Fatalf("expected expires_at %s, got %s", base.Add(30*time.Minute), got.ExpiresAt)
		}
		if got.TransactionHash != "" || got.ConfirmedAt != nil {
			t.Fatalf("expected pending order without hash, got %+v", got)
		}
	})

	t.Run("duplicate order id", func(t *testing.T) {
		store := newStore(t)
		if err := store.CreateOrder(ctx, newOrder("O1", base, time.Minute)); err != nil {
			t.Fatalf("create: %v", err)
		}
		second := newOrder("O1", base.Add(time.Second), time.Minute)
		second.MerchantID = "M2"
		if err := store.CreateOrder(ctx, second); !errors.Is(err, domain.ErrDuplicateOrder) {
			t.Fatalf("expected ErrDuplicateOrder, got %v", err)
		}
		got, _ := store.GetOrderByID(ctx, "O1")
		if got.MerchantID != "M1" {
			t.Fatalf("expected first order to be kept, got merchant %s", got.MerchantID)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.GetOrderByID(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("update status only from pending", func(t *testing.T) {
		store := newStore(t)
		_ = store.CreateOrder(ctx, newOrder("O1", base, time.Minute))

		if err := store.UpdateOrderStatus(ctx, "O1", domain.StatusCompleted, "", base); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition without hash, got %v", err)
		}
		if err := store.UpdateOrderStatus(ctx, "O1", domain.StatusPending, "", base); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition to pending, got %v", err)
		}
		if err := store.UpdateOrderStatus(ctx, "O1", domain.StatusCompleted, "H1", base); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if err := store.UpdateOrderStatus(ctx, "O1", domain.StatusExpired, "", base); !errors.Is(err, domain.ErrOrderNotPending) {
			t.Fatalf("expected ErrOrderNotPending, got %v", err)
		}
		if err := store.UpdateOrderStatus(ctx, "missing", domain.StatusExpired, "", base); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}

		got, _ := store.GetOrderByID(ctx, "O1")
		if got.Status != domain.StatusCompleted || got.TransactionHash != "H1" || got.ConfirmedAt == nil {
			t.Fatalf("unexpected order after completion %+v", got)
		}
	})

	t.Run("complete order records transaction and callback", func(t *testing.T) {
		store := newStore(t)
		_ = store.CreateOrder(ctx, newOrder("O1", base, time.Hour))

		c := completion("O1", "H1", true)
		c.Callback = &domain.CallbackDelivery{
			ID:            "cb-1",
			OrderID:       "O1",
			TxHash:        "H1",
			URL:           "https://merchant.example/cb",
			Status:        domain.CallbackPending,
			NextAttemptAt: base.Add(time.Minute),
			CreatedAt:     base.Add(time.Minute),
			UpdatedAt:     base.Add(time.Minute),
		}
		if err := store.CompleteOrder(ctx, c); err != nil {
			t.Fatalf("complete: %v", err)
		}

		got, _ := store.GetOrderByID(ctx, "O1")
		if got.Status != domain.StatusCompleted || got.TransactionHash != "H1" {
			t.Fatalf("unexpected order %+v", got)
		}
		if got.ConfirmedAt == nil || !got.ConfirmedAt.Equal(base.Add(time.Minute)) {
			t.Fatalf("unexpected confirmed_at %v", got.ConfirmedAt)
		}

		records, err := store.GetTransactionsByOrderID(ctx, "O1")
		if err != nil {
			t.Fatalf("transactions: %v", err)
		}
		if len(records) != 1 || records[0].TxHash != "H1" || records[0].ID == "" {
			t.Fatalf("unexpected transaction records %+v", records)
		}
		if records[0].Status != domain.TransactionConfirmed || !records[0].Amount.Equal(decimal.RequireFromString("10.5")) {
			t.Fatalf("unexpected transaction record %+v", records[0])
		}

		due, err := store.FindDueCallbackDeliveries(ctx, base.Add(time.Minute), 10)
		if err != nil {
			t.Fatalf("due callbacks: %v", err)
		}
		if len(due) != 1 || due[0].ID != "cb-1" || due[0].Attempts != 0 {
			t.Fatalf("unexpected due callbacks %+v", due)
		}

		if err := store.CompleteOrder(ctx, completion("O1", "H2", true)); !errors.Is(err, domain.ErrOrderNotPending) {
			t.Fatalf("expected ErrOrderNotPending on second completion, got %v", err)
		}
		got, _ = store.GetOrderByID(ctx, "O1")
		if got.TransactionHash != "H1" {
			t.Fatalf("expected hash to stay H1, got %s", got.TransactionHash)
		}
	})

	t.Run("claimed transfer cannot complete another order", func(t *testing.T) {
		store := newStore(t)
		_ = store.CreateOrder(ctx, newOrder("O1", base, time.Hour))
		_ = store.CreateOrder(ctx, newOrder("O2", base, time.Hour))

		if err := store.CompleteOrder(ctx, completion("O1", "H1", true)); err != nil {
			t.Fatalf("complete O1: %v", err)
		}
		if err := store.CompleteOrder(ctx, completion("O2", "H1", true)); !errors.Is(err, domain.ErrTransferClaimed) {
			t.Fatalf("expected ErrTransferClaimed, got %v", err)
		}
		got, _ := store.GetOrderByID(ctx, "O2")
		if got.Status != domain.StatusPending {
			t.Fatalf("expected O2 to stay pending, got %s", got.Status)
		}
		records, _ := store.GetTransactionsByOrderID(ctx, "O2")
		if len(records) != 0 {
			t.Fatalf("expected no transaction for O2, got %d", len(records))
		}

		// without claiming, one transfer may satisfy several orders
		if err := store.CompleteOrder(ctx, completion("O2", "H1", false)); err != nil {
			t.Fatalf("complete O2 without claim: %v", err)
		}
	})

	t.Run("concurrent completions apply once", func(t *testing.T) {
		store := newStore(t)
		_ = store.CreateOrder(ctx, newOrder("O1", base, time.Hour))

		const workers = 8
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				hash := "H" + string(rune('A'+i))
				errs[i] = store.CompleteOrder(ctx, completion("O1", hash, true))
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrOrderNotPending):
			default:
				t.Fatalf("unexpected error %v", err)
			}
		}
		if succeeded != 1 {
			t.Fatalf("expected exactly one completion, got %d", succeeded)
		}
		records, _ := store.GetTransactionsByOrderID(ctx, "O1")
		if len(records) != 1 {
			t.Fatalf("expected one transaction record, got %d", len(records))
		}
	})

	t.Run("pending and expirable queries", func(t *testing.T) {
		store := newStore(t)
		_ = store.CreateOrder(ctx, newOrder("live-2", base.Add(2*time.Second), time.Hour))
		_ = store.CreateOrder(ctx, newOrder("live-1", base.Add(time.Second), time.Hour))
		_ = store.CreateOrder(ctx, newOrder("stale", base, time.Minute))
		_ = store.CreateOrder(ctx, newOrder("done", base, time.Minute))
		_ = store.UpdateOrderStatus(ctx, "done", domain.StatusCompleted, "H", base)

		now := base.Add(10 * time.Minute)
		pending, err := store.FindPendingOrders(ctx, now)
		if err != nil {
			t.Fatalf("pending: %v", err)
		}
		if len(pending) != 2 || pending[0].OrderID != "live-1" || pending[1].OrderID != "live-2" {
			t.Fatalf("unexpected pending orders %v", orderIDs(pending))
		}

		expirable, err := store.FindExpirableOrders(ctx, now)
		if err != nil {
			t.Fatalf("expirable: %v", err)
		}
		if len(expirable) != 1 || expirable[0].OrderID != "stale" {
			t.Fatalf("unexpected expirable orders %v", orderIDs(expirable))
		}
	})

	t.Run("expire orders is idempotent", func(t *testing.T) {
		store := newStore(t)
		_ = store.CreateOrder(ctx, newOrder("old", base, time.Minute))
		_ = store.CreateOrder(ctx, newOrder("exact", base, 10*time.Minute))
		_ = store.CreateOrder(ctx, newOrder("fresh", base, time.Hour))
		_ = store.CreateOrder(ctx, newOrder("paid", base, time.Minute))
		_ = store.UpdateOrderStatus(ctx, "paid", domain.StatusCompleted, "H", base)

		now := base.Add(10 * time.Minute)
		ids, err := store.ExpireOrders(ctx, now)
		if err != nil {
			t.Fatalf("expire: %v", err)
		}
		if len(ids) != 2 || ids[0] != "old" || ids[1] != "exact" {
			t.Fatalf("unexpected expired ids %v", ids)
		}

		ids, err = store.ExpireOrders(ctx, now)
		if err != nil {
			t.Fatalf("second expire: %v", err)
		}
		if len(ids) != 0 {
			t.Fatalf("expected nothing to expire twice, got %v", ids)
		}

		for id, want := range map[string]domain.OrderStatus{
			"old":   domain.StatusExpired,
			"exact": domain.StatusExpired,
			"fresh": domain.StatusPending,
			"paid":  domain.StatusCompleted,
		} {
			got, _ := store.GetOrderByID(ctx, id)
			if got.Status != want {
				t.Fatalf("order %s: expected %s, got %s", id, want, got.Status)
			}
		}

		got, _ := store.GetOrderByID(ctx, "old")
		if got.TransactionHash != "" {
			t.Fatalf("expired order must not carry a hash, got %q", got.TransactionHash)
		}
		if err := store.CompleteOrder(ctx, completion("old", "H9", true)); !errors.Is(err, domain.ErrOrderNotPending) {
			t.Fatalf("expected expired order to stay terminal, got %v", err)
		}
	})

	t.Run("callback deliveries", func(t *testing.T) {
		store := newStore(t)
		for i, id := range []string{"O1", "O2"} {
			_ = store.CreateOrder(ctx, newOrder(id, base, time.Hour))
			c := completion(id, "H"+id, true)
			c.Callback = &domain.CallbackDelivery{
				ID:            "cb-" + id,
				OrderID:       id,
				TxHash:        "H" + id,
				URL:           "https://merchant.example/cb",
				Status:        domain.CallbackPending,
				NextAttemptAt: base.Add(time.Duration(i) * time.Minute),
				CreatedAt:     base,
				UpdatedAt:     base,
			}
			if err := store.CompleteOrder(ctx, c); err != nil {
				t.Fatalf("complete %s: %v", id, err)
			}
		}

		due, _ := store.FindDueCallbackDeliveries(ctx, base, 10)
		if len(due) != 1 || due[0].ID != "cb-O1" {
			t.Fatalf("expected only cb-O1 due, got %+v", due)
		}
		due, _ = store.FindDueCallbackDeliveries(ctx, base.Add(time.Hour), 1)
		if len(due) != 1 || due[0].ID != "cb-O1" {
			t.Fatalf("expected limit to return the oldest delivery, got %+v", due)
		}

		deliveredAt := base.Add(2 * time.Minute)
		delivery := due[0]
		delivery.Status = domain.CallbackDelivered
		delivery.Attempts = 1
		delivery.UpdatedAt = deliveredAt
		delivery.DeliveredAt = &deliveredAt
		if err := store.UpdateCallbackDelivery(ctx, delivery); err != nil {
			t.Fatalf("update: %v", err)
		}

		retry := &domain.CallbackDelivery{
			ID:            "cb-O2",
			Status:        domain.CallbackPending,
			Attempts:      1,
			NextAttemptAt: base.Add(30 * time.Minute),
			LastError:     "status 500",
			UpdatedAt:     deliveredAt,
		}
		if err := store.UpdateCallbackDelivery(ctx, retry); err != nil {
			t.Fatalf("update retry: %v", err)
		}

		due, _ = store.FindDueCallbackDeliveries(ctx, base.Add(10*time.Minute), 10)
		if len(due) != 0 {
			t.Fatalf("expected nothing due, got %+v", due)
		}
		due, _ = store.FindDueCallbackDeliveries(ctx, base.Add(30*time.Minute), 10)
		if len(due) != 1 || due[0].Attempts != 1 || due[0].LastError != "status 500" {
			t.Fatalf("expected rescheduled cb-O2, got %+v", due)
		}

		if err := store.UpdateCallbackDelivery(ctx, &domain.CallbackDelivery{ID: "missing"}); !errors.Is(err, domain.ErrCallbackNotFound) {
			t.Fatalf("expected ErrCallbackNotFound, got %v", err)
		}
	})

	t.Run("callback lease", func(t *testing.T) {
		store := newStore(t)
		_ = store.CreateOrder(ctx, newOrder("O1", base, time.Hour))
		c := completion("O1", "HO1", true)
		c.Callback = &domain.CallbackDelivery{
			ID:            "cb-O1",
			OrderID:       "O1",
			TxHash:        "HO1",
			URL:           "https://merchant.example/cb",
			Status:        domain.CallbackPending,
			NextAttemptAt: base,
			CreatedAt:     base,
			UpdatedAt:     base,
		}
		if err := store.CompleteOrder(ctx, c); err != nil {
			t.Fatalf("complete: %v", err)
		}

		if err := store.LeaseCallbackDelivery(ctx, "cb-O1", 1, base, base.Add(time.Minute)); !errors.Is(err, domain.ErrCallbackLeased) {
			t.Fatalf("expected wrong attempt count to be rejected, got %v", err)
		}
		if err := store.LeaseCallbackDelivery(ctx, "cb-O1", 0, base, base.Add(time.Minute)); err != nil {
			t.Fatalf("lease: %v", err)
		}
		if err := store.LeaseCallbackDelivery(ctx, "cb-O1", 0, base, base.Add(time.Minute)); !errors.Is(err, domain.ErrCallbackLeased) {
			t.Fatalf("expected second lease to fail, got %v", err)
		}
		due, _ := store.FindDueCallbackDeliveries(ctx, base.Add(30*time.Second), 10)
		if len(due) != 0 {
			t.Fatalf("expected leased delivery to be hidden, got %+v", due)
		}
		if err := store.LeaseCallbackDelivery(ctx, "missing", 0, base, base.Add(time.Minute)); !errors.Is(err, domain.ErrCallbackNotFound) {
			t.Fatalf("expected ErrCallbackNotFound, got %v", err)
		}

		deliveredAt := base.Add(10 * time.Second)
		delivered := &domain.CallbackDelivery{
			ID:          "cb-O1",
			Status:      domain.CallbackDelivered,
			Attempts:    1,
			UpdatedAt:   deliveredAt,
			DeliveredAt: &deliveredAt,
		}
		if err := store.UpdateCallbackDelivery(ctx, delivered); err != nil {
			t.Fatalf("update: %v", err)
		}

		// a concurrent attempt reporting from the same starting count loses
		stale := &domain.CallbackDelivery{
			ID:            "cb-O1",
			Status:        domain.CallbackPending,
			Attempts:      1,
			NextAttemptAt: base.Add(time.Minute),
			LastError:     "timeout",
			UpdatedAt:     deliveredAt,
		}
		if err := store.UpdateCallbackDelivery(ctx, stale); !errors.Is(err, domain.ErrCallbackLeased) {
			t.Fatalf("expected ErrCallbackLeased, got %v", err)
		}
		due, _ = store.FindDueCallbackDeliveries(ctx, base.Add(24*time.Hour), 10)
		if len(due) != 0 {
			t.Fatalf("expected delivered row to stay delivered, got %+v", due)
		}
		if err := store.LeaseCallbackDelivery(ctx, "cb-O1", 1, base.Add(time.Hour), base.Add(2*time.Hour)); !errors.Is(err, domain.ErrCallbackLeased) {
			t.Fatalf("expected delivered row to refuse a lease, got %v", err)
		}
	})
}

func orderIDs(orders []*domain.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	return ids
}
