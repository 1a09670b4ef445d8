package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/models"
)

func (r *DefaultOrderRepository) FindDueCallbackDeliveries(ctx context.Context, now time.Time, limit int) ([]*domain.CallbackDelivery, error) {
	var deliveryModels []models.CallbackDeliveryModel
	query := r.DB.WithContext(ctx).
		Where("status = ?", string(domain.CallbackPending)).
		Where("next_attempt_at <= ?", now.UTC()).
		Order("next_attempt_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&deliveryModels).Error; err != nil {
		return nil, fmt.Errorf("find due callbacks: %w", err)
	}

	deliveries := make([]*domain.CallbackDelivery, len(deliveryModels))
	for i := range deliveryModels {
		deliveries[i] = mappers.ToDomainCallbackDelivery(&deliveryModels[i])
	}
	return deliveries, nil
}

func (r *DefaultOrderRepository) LeaseCallbackDelivery(ctx context.Context, id string, attempts int, now, until time.Time) error {
	result := r.DB.WithContext(ctx).
		Model(&models.CallbackDeliveryModel{}).
		Where("id = ? AND status = ? AND attempts = ?", id, string(domain.CallbackPending), attempts).
		Where("next_attempt_at <= ?", now.UTC()).
		Update("next_attempt_at", until.UTC())
	if result.Error != nil {
		return fmt.Errorf("lease callback delivery: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrLeased(ctx, id)
	}
	return nil
}

func (r *DefaultOrderRepository) UpdateCallbackDelivery(ctx context.Context, delivery *domain.CallbackDelivery) error {
	result := r.DB.WithContext(ctx).
		Model(&models.CallbackDeliveryModel{}).
		Where("id = ? AND status = ? AND attempts = ?", delivery.ID, string(domain.CallbackPending), delivery.Attempts-1).
		Updates(map[string]any{
			"status":          string(delivery.Status),
			"attempts":        delivery.Attempts,
			"next_attempt_at": delivery.NextAttemptAt.UTC(),
			"last_error":      delivery.LastError,
			"updated_at":      delivery.UpdatedAt.UTC(),
			"delivered_at":    delivery.DeliveredAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update callback delivery: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrLeased(ctx, delivery.ID)
	}
	return nil
}

func (r *DefaultOrderRepository) missingOrLeased(ctx context.Context, id string) error {
	var count int64
	if err := r.DB.WithContext(ctx).
		Model(&models.CallbackDeliveryModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check callback delivery: %w", err)
	}
	if count == 0 {
		return domain.ErrCallbackNotFound
	}
	return domain.ErrCallbackLeased
}
