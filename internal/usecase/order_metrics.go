package usecase

import (
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
)

func (uc *DefaultOrderUsecase) recordOrderCreatedMetrics(order *domain.Order) {
	if uc.Metrics == nil {
		return
	}
	amount, _ := order.Amount.Float64()
	uc.Metrics.RecordOrderCreated(order.MerchantID, string(order.Currency), amount)
}

func (uc *DefaultOrderUsecase) recordOrderCompletedMetrics(order *domain.Order) {
	if uc.Metrics == nil {
		return
	}
	amount, _ := order.Amount.Float64()
	duration := -1.0
	if order.ConfirmedAt != nil && !order.CreatedAt.IsZero() {
		duration = order.ConfirmedAt.Sub(order.CreatedAt).Seconds()
	}
	uc.Metrics.RecordOrderCompleted(order.MerchantID, string(order.Currency), amount, duration)
}

func (uc *DefaultOrderUsecase) recordOrdersExpired(count int) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordOrdersExpired(count)
}

func (uc *DefaultOrderUsecase) recordPendingOrders(count int) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordPendingOrders(count)
}

func (uc *DefaultOrderUsecase) recordReconcileDuration(d time.Duration) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordReconcileDuration(d.Seconds())
}

func (uc *DefaultOrderUsecase) recordIndexerRequest(endpoint string, err error) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordIndexerRequest(endpoint, err)
}

func (uc *DefaultOrderUsecase) recordCallback(result string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordCallback(result)
}

func (uc *DefaultOrderUsecase) recordError(operation, errorType string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordError(operation, errorType)
}
