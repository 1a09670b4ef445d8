package mappers

import (
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		ID:            model.ID,
		OrderID:       model.OrderID,
		TxHash:        model.TxHash,
		FromAddress:   model.FromAddress,
		ToAddress:     model.ToAddress,
		Amount:        model.Amount,
		Currency:      domain.Currency(model.Currency),
		BlockNumber:   model.BlockNumber,
		Confirmations: model.Confirmations,
		Status:        domain.TransactionStatus(model.Status),
		CreatedAt:     model.CreatedAt.UTC(),
	}
}

func ToGORMTransaction(record *domain.TransactionRecord) *models.TransactionModel {
	return &models.TransactionModel{
		ID:            record.ID,
		OrderID:       record.OrderID,
		TxHash:        record.TxHash,
		FromAddress:   record.FromAddress,
		ToAddress:     record.ToAddress,
		Amount:        record.Amount,
		Currency:      string(record.Currency),
		BlockNumber:   record.BlockNumber,
		Confirmations: record.Confirmations,
		Status:        string(record.Status),
		CreatedAt:     record.CreatedAt.UTC(),
	}
}

func ToDomainCallbackDelivery(model *models.CallbackDeliveryModel) *domain.CallbackDelivery {
	delivery := &domain.CallbackDelivery{
		ID:            model.ID,
		OrderID:       model.OrderID,
		TxHash:        model.TxHash,
		URL:           model.URL,
		Status:        domain.CallbackStatus(model.Status),
		Attempts:      model.Attempts,
		NextAttemptAt: model.NextAttemptAt.UTC(),
		LastError:     model.LastError,
		CreatedAt:     model.CreatedAt.UTC(),
		UpdatedAt:     model.UpdatedAt.UTC(),
	}
	if model.DeliveredAt != nil {
		deliveredAt := model.DeliveredAt.UTC()
		delivery.DeliveredAt = &deliveredAt
	}
	return delivery
}

func ToGORMCallbackDelivery(delivery *domain.CallbackDelivery) *models.CallbackDeliveryModel {
	return &models.CallbackDeliveryModel{
		ID:            delivery.ID,
		OrderID:       delivery.OrderID,
		TxHash:        delivery.TxHash,
		URL:           delivery.URL,
		Status:        string(delivery.Status),
		Attempts:      delivery.Attempts,
		NextAttemptAt: delivery.NextAttemptAt.UTC(),
		LastError:     delivery.LastError,
		CreatedAt:     delivery.CreatedAt.UTC(),
		UpdatedAt:     delivery.UpdatedAt.UTC(),
		DeliveredAt:   delivery.DeliveredAt,
	}
}
