package usecase

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"go.uber.org/zap"
)

// ExpireSweep moves every pending order past its expiry to expired.
func (uc *DefaultOrderUsecase) ExpireSweep(ctx context.Context) error {
	expiredIDs, err := uc.Store.ExpireOrders(ctx, uc.Clock.Now())
	if err != nil {
		uc.recordError("expire", "store")
		return fmt.Errorf("failed to expire orders: %w", err)
	}
	if len(expiredIDs) == 0 {
		return nil
	}

	uc.Logger.Info("orders expired", zap.Int("count", len(expiredIDs)), zap.Strings("order_ids", expiredIDs))
	uc.recordOrdersExpired(len(expiredIDs))

	if uc.Publisher == nil {
		return nil
	}
	for _, orderID := range expiredIDs {
		order, err := uc.Store.GetOrderByID(ctx, orderID)
		if err != nil {
			uc.Logger.Warn("failed to load expired order", zap.String("order_id", orderID), zap.Error(err))
			continue
		}
		if order.Status != domain.StatusExpired {
			continue
		}
		uc.publishOrderEvent(ctx, order)
	}
	return nil
}
