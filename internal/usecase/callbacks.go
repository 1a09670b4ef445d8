package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"go.uber.org/zap"
)

// RetryCallbacks redelivers outbox rows whose next attempt is due.
func (uc *DefaultOrderUsecase) RetryCallbacks(ctx context.Context) error {
	now := uc.Clock.Now()
	due, err := uc.Store.FindDueCallbackDeliveries(ctx, now, uc.Settings.Callback.BatchSize)
	if err != nil {
		uc.recordError("callback", "store")
		return fmt.Errorf("failed to list due callbacks: %w", err)
	}

	for _, delivery := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := uc.Store.LeaseCallbackDelivery(ctx, delivery.ID, delivery.Attempts, now, now.Add(uc.callbackLease()))
		if errors.Is(err, domain.ErrCallbackLeased) {
			uc.Logger.Debug("callback already in flight", zap.String("delivery_id", delivery.ID))
			continue
		}
		if err != nil {
			uc.recordError("callback", "store")
			uc.Logger.Error("failed to lease callback",
				zap.String("delivery_id", delivery.ID),
				zap.Error(err),
			)
			continue
		}
		order, err := uc.Store.GetOrderByID(ctx, delivery.OrderID)
		if err != nil {
			uc.Logger.Error("failed to load order for callback",
				zap.String("order_id", delivery.OrderID),
				zap.String("delivery_id", delivery.ID),
				zap.Error(err),
			)
			continue
		}
		// the outbox row owns the destination
		order.CallbackURL = delivery.URL
		uc.deliverCallback(ctx, order, delivery)
	}
	return nil
}

// deliverCallback makes one attempt and records the outcome on the delivery row.
func (uc *DefaultOrderUsecase) deliverCallback(ctx context.Context, order *domain.Order, delivery *domain.CallbackDelivery) {
	log := uc.Logger.With(
		zap.String("order_id", order.OrderID),
		zap.String("delivery_id", delivery.ID),
		zap.String("tx_hash", delivery.TxHash),
	)

	notifyErr := uc.Notifier.Notify(ctx, order, delivery.TxHash)
	now := uc.Clock.Now()
	delivery.Attempts++
	delivery.UpdatedAt = now

	switch {
	case notifyErr == nil:
		delivery.Status = domain.CallbackDelivered
		delivery.LastError = ""
		delivery.DeliveredAt = &now
		uc.recordCallback("delivered")
		log.Info("callback delivered", zap.Int("attempts", delivery.Attempts))
	case delivery.Attempts >= uc.Settings.Callback.MaxAttempts:
		delivery.Status = domain.CallbackFailed
		delivery.LastError = notifyErr.Error()
		uc.recordCallback("failed")
		log.Error("callback failed permanently", zap.Int("attempts", delivery.Attempts), zap.Error(notifyErr))
	default:
		delivery.Status = domain.CallbackPending
		delivery.LastError = notifyErr.Error()
		delivery.NextAttemptAt = now.Add(uc.callbackBackoff(delivery.Attempts))
		uc.recordCallback("retry")
		log.Warn("callback failed, will retry",
			zap.Int("attempts", delivery.Attempts),
			zap.Time("next_attempt_at", delivery.NextAttemptAt),
			zap.Error(notifyErr),
		)
	}

	err := uc.Store.UpdateCallbackDelivery(ctx, delivery)
	switch {
	case errors.Is(err, domain.ErrCallbackLeased):
		log.Warn("callback attempt superseded", zap.Int("attempts", delivery.Attempts))
	case err != nil:
		log.Error("failed to record callback attempt", zap.Error(err))
	}
}

// callbackLease is how long a row stays hidden from retries while an attempt runs.
func (uc *DefaultOrderUsecase) callbackLease() time.Duration {
	return uc.Settings.Callback.AttemptTimeout + uc.Settings.Callback.BaseBackoff
}

// callbackBackoff doubles the base delay per failed attempt, capped at MaxBackoff.
func (uc *DefaultOrderUsecase) callbackBackoff(attempts int) time.Duration {
	backoff := uc.Settings.Callback.BaseBackoff
	maxBackoff := uc.Settings.Callback.MaxBackoff
	for i := 1; i < attempts; i++ {
		backoff *= 2
		if maxBackoff > 0 && backoff >= maxBackoff {
			return maxBackoff
		}
	}
	if maxBackoff > 0 && backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}
