package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// candidate is a transfer into a payment address, normalised across currencies.
type candidate struct {
	TxHash      string
	From        string
	To          string
	Amount      decimal.Decimal
	BlockNumber int64
	Timestamp   time.Time
}

type transferKey struct {
	currency domain.Currency
	address  string
}

type transferResult struct {
	candidates []candidate
	err        error
}

// transferCache lives for a single reconcile cycle so orders sharing a wallet
// trigger one indexer request per currency.
type transferCache map[transferKey]transferResult

// Reconcile matches pending orders against incoming transfers and completes the
// first order-satisfying transfer for each. Indexer failures are logged and skip
// the affected orders until the next cycle.
func (uc *DefaultOrderUsecase) Reconcile(ctx context.Context) error {
	started := time.Now()
	now := uc.Clock.Now()

	orders, err := uc.Store.FindPendingOrders(ctx, now)
	if err != nil {
		uc.recordError("reconcile", "store")
		return fmt.Errorf("failed to list pending orders: %w", err)
	}
	uc.recordPendingOrders(len(orders))

	cache := make(transferCache)
	completed := 0
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if uc.reconcileOrder(ctx, order, cache) {
			completed++
		}
	}

	uc.recordReconcileDuration(time.Since(started))
	if len(orders) > 0 {
		uc.Logger.Debug("reconcile cycle finished",
			zap.Int("pending", len(orders)),
			zap.Int("completed", completed),
		)
	}
	return nil
}

func (uc *DefaultOrderUsecase) reconcileOrder(ctx context.Context, order *domain.Order, cache transferCache) bool {
	log := uc.Logger.With(zap.String("order_id", order.OrderID), zap.String("currency", string(order.Currency)))

	// never complete an order past its expiry, even if the sweep has not run yet
	if !order.ExpiresAt.After(uc.Clock.Now()) {
		return false
	}

	candidates, err := uc.transfersFor(ctx, order, cache)
	if err != nil {
		log.Warn("failed to fetch transfers", zap.String("address", order.PaymentAddress), zap.Error(err))
		return false
	}

	for _, c := range candidates {
		if c.Amount.LessThan(order.Amount) {
			continue
		}
		if uc.Settings.IgnoreTransfersBeforeOrder && !c.Timestamp.IsZero() && c.Timestamp.Before(order.CreatedAt) {
			continue
		}

		err := uc.completeOrder(ctx, order, c)
		switch {
		case err == nil:
			return true
		case errors.Is(err, domain.ErrTransferClaimed):
			log.Debug("transfer already claimed", zap.String("tx_hash", c.TxHash))
			continue
		case errors.Is(err, domain.ErrOrderNotPending):
			log.Info("order left pending concurrently")
			return false
		default:
			uc.recordError("reconcile", "store")
			log.Error("failed to complete order", zap.String("tx_hash", c.TxHash), zap.Error(err))
			return false
		}
	}
	return false
}

// transfersFor returns newest-first candidate transfers for the order's currency and address.
func (uc *DefaultOrderUsecase) transfersFor(ctx context.Context, order *domain.Order, cache transferCache) ([]candidate, error) {
	key := transferKey{currency: order.Currency, address: order.PaymentAddress}
	if cached, ok := cache[key]; ok {
		return cached.candidates, cached.err
	}

	var result transferResult
	switch order.Currency {
	case domain.CurrencyTRX:
		transfers, err := uc.Chain.GetAccountTransfers(ctx, order.PaymentAddress, uc.Settings.TransferLimit)
		uc.recordIndexerRequest("trx_transfers", err)
		result.err = err
		for _, t := range transfers {
			if !t.Success {
				continue
			}
			result.candidates = append(result.candidates, candidate{
				TxHash:      t.TxID,
				From:        t.FromAddress,
				To:          t.ToAddress,
				Amount:      t.Amount,
				BlockNumber: t.BlockNumber,
				Timestamp:   t.BlockTimestamp,
			})
		}
	case domain.CurrencyUSDT:
		transfers, err := uc.Chain.GetTokenTransfers(ctx, order.PaymentAddress, uc.Settings.USDTContractAddress, uc.Settings.TransferLimit)
		uc.recordIndexerRequest("usdt_transfers", err)
		result.err = err
		for _, t := range transfers {
			if t.ToAddress != order.PaymentAddress {
				continue
			}
			result.candidates = append(result.candidates, candidate{
				TxHash:    t.TransactionID,
				From:      t.FromAddress,
				To:        t.ToAddress,
				Amount:    t.Amount,
				Timestamp: t.BlockTimestamp,
			})
		}
	default:
		result.err = fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, order.Currency)
	}

	if result.err != nil {
		result.candidates = nil
	}
	cache[key] = result
	return result.candidates, result.err
}

// completeOrder persists the completion and the callback outbox row in one unit,
// then makes the first delivery attempt.
func (uc *DefaultOrderUsecase) completeOrder(ctx context.Context, order *domain.Order, c candidate) error {
	now := uc.Clock.Now()

	completion := domain.OrderCompletion{
		OrderID: order.OrderID,
		Transaction: domain.TransactionRecord{
			ID:            uuid.NewString(),
			OrderID:       order.OrderID,
			TxHash:        c.TxHash,
			FromAddress:   c.From,
			ToAddress:     c.To,
			Amount:        c.Amount,
			Currency:      order.Currency,
			BlockNumber:   c.BlockNumber,
			Confirmations: uc.Settings.ConfirmationBlocks,
			Status:        domain.TransactionConfirmed,
			CreatedAt:     now,
		},
		ConfirmedAt:   now,
		ClaimTransfer: uc.Settings.ClaimTransfers,
	}
	if order.CallbackURL != "" {
		completion.Callback = &domain.CallbackDelivery{
			ID:            uuid.NewString(),
			OrderID:       order.OrderID,
			TxHash:        c.TxHash,
			URL:           order.CallbackURL,
			Status:        domain.CallbackPending,
			NextAttemptAt: now.Add(uc.callbackLease()),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	if err := uc.Store.CompleteOrder(ctx, completion); err != nil {
		return err
	}

	order.Status = domain.StatusCompleted
	order.TransactionHash = c.TxHash
	order.ConfirmedAt = &now

	uc.Logger.Info("order completed",
		zap.String("order_id", order.OrderID),
		zap.String("tx_hash", c.TxHash),
		zap.String("amount", domain.FormatAmount(c.Amount)),
		zap.String("currency", string(order.Currency)),
	)
	uc.recordOrderCompletedMetrics(order)
	uc.publishOrderEvent(ctx, order)

	if completion.Callback != nil {
		uc.deliverCallback(ctx, order, completion.Callback)
	}
	return nil
}
