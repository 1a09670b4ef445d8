package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	// insert-if-absent keeps the uniqueness check and the write in one statement
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(orderModel)
	if result.Error != nil {
		return fmt.Errorf("create order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDuplicateOrder
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).First(&order, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) UpdateOrderStatus(
	ctx context.Context,
	orderID string,
	status domain.OrderStatus,
	txHash string,
	at time.Time,
) error {
	if err := domain.ValidateTransition(status, txHash); err != nil {
		return err
	}
	return transitionPending(r.DB.WithContext(ctx), orderID, status, txHash, at)
}

func (r *DefaultOrderRepository) CompleteOrder(ctx context.Context, completion domain.OrderCompletion) error {
	txHash := completion.Transaction.TxHash
	if err := domain.ValidateTransition(domain.StatusCompleted, txHash); err != nil {
		return err
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := claimTransfer(tx, txHash, completion.OrderID, completion.ConfirmedAt, completion.ClaimTransfer); err != nil {
			return err
		}

		if err := transitionPending(tx, completion.OrderID, domain.StatusCompleted, txHash, completion.ConfirmedAt); err != nil {
			return err
		}

		record := completion.Transaction
		record.OrderID = completion.OrderID
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if err := tx.Create(mappers.ToGORMTransaction(&record)).Error; err != nil {
			return fmt.Errorf("save transaction record: %w", err)
		}

		if completion.Callback != nil {
			if err := tx.Create(mappers.ToGORMCallbackDelivery(completion.Callback)).Error; err != nil {
				return fmt.Errorf("enqueue callback: %w", err)
			}
		}
		return nil
	})
}

// claimTransfer records the first order paid by txHash. The primary key serializes
// concurrent claims of one hash; with enforce set the loser gets ErrTransferClaimed.
func claimTransfer(tx *gorm.DB, txHash, orderID string, at time.Time, enforce bool) error {
	claim := &models.TransferClaimModel{TxHash: txHash, OrderID: orderID, CreatedAt: at.UTC()}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(claim)
	if result.Error != nil {
		return fmt.Errorf("claim transfer: %w", result.Error)
	}
	if result.RowsAffected > 0 || !enforce {
		return nil
	}

	var existing models.TransferClaimModel
	if err := tx.First(&existing, "tx_hash = ?", txHash).Error; err != nil {
		return fmt.Errorf("load transfer claim: %w", err)
	}
	if existing.OrderID != orderID {
		return domain.ErrTransferClaimed
	}
	return nil
}

// transitionPending is a compare-and-set: only pending rows are ever written.
func transitionPending(db *gorm.DB, orderID string, status domain.OrderStatus, txHash string, at time.Time) error {
	updates := map[string]any{"status": string(status)}
	if txHash != "" {
		updates["transaction_hash"] = txHash
		updates["confirmed_at"] = at.UTC()
	}

	result := db.Model(&models.OrderModel{}).
		Where("order_id = ? AND status = ?", orderID, string(domain.StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update order status: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.OrderModel{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup order: %w", err)
	}
	if count == 0 {
		return domain.ErrOrderNotFound
	}
	return domain.ErrOrderNotPending
}

func (r *DefaultOrderRepository) FindPendingOrders(ctx context.Context, now time.Time) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.WithContext(ctx).
		Where("status = ?", string(domain.StatusPending)).
		Where("expires_at > ?", now.UTC()).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("find pending orders: %w", err)
	}
	return toDomainOrders(orderModels), nil
}

func (r *DefaultOrderRepository) FindExpirableOrders(ctx context.Context, now time.Time) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.WithContext(ctx).
		Where("status = ?", string(domain.StatusPending)).
		Where("expires_at <= ?", now.UTC()).
		Order("expires_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("find expirable orders: %w", err)
	}
	return toDomainOrders(orderModels), nil
}

func (r *DefaultOrderRepository) ExpireOrders(ctx context.Context, now time.Time) ([]string, error) {
	var orderIDs []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", string(domain.StatusPending)).
			Where("expires_at <= ?", now.UTC()).
			Order("expires_at ASC").
			Pluck("order_id", &orderIDs).Error; err != nil {
			return fmt.Errorf("select expirable orders: %w", err)
		}
		if len(orderIDs) == 0 {
			return nil
		}
		return tx.Model(&models.OrderModel{}).
			Where("order_id IN ?", orderIDs).
			Where("status = ?", string(domain.StatusPending)).
			Update("status", string(domain.StatusExpired)).Error
	})
	if err != nil {
		return nil, err
	}
	return orderIDs, nil
}

func (r *DefaultOrderRepository) GetTransactionsByOrderID(ctx context.Context, orderID string) ([]*domain.TransactionRecord, error) {
	var txModels []models.TransactionModel
	if err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}

	records := make([]*domain.TransactionRecord, len(txModels))
	for i := range txModels {
		records[i] = mappers.ToDomainTransaction(&txModels[i])
	}
	return records, nil
}

func toDomainOrders(orderModels []models.OrderModel) []*domain.Order {
	orders := make([]*domain.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModels[i])
	}
	return orders
}
