package mappers

import (
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	order := &domain.Order{
		OrderID:         model.OrderID,
		MerchantID:      model.MerchantID,
		Amount:          model.Amount,
		Currency:        domain.Currency(model.Currency),
		PaymentAddress:  model.PaymentAddress,
		Status:          domain.OrderStatus(model.Status),
		TransactionHash: deref(model.TransactionHash),
		CallbackURL:     deref(model.CallbackURL),
		ReturnURL:       deref(model.ReturnURL),
		CreatedAt:       model.CreatedAt.UTC(),
		ExpiresAt:       model.ExpiresAt.UTC(),
		RequestedAmount: deref(model.RequestedAmount),
	}
	if model.ConfirmedAt != nil {
		confirmedAt := model.ConfirmedAt.UTC()
		order.ConfirmedAt = &confirmedAt
	}
	return order
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		OrderID:         order.OrderID,
		MerchantID:      order.MerchantID,
		Amount:          order.Amount,
		Currency:        string(order.Currency),
		PaymentAddress:  order.PaymentAddress,
		Status:          string(order.Status),
		TransactionHash: ref(order.TransactionHash),
		CallbackURL:     ref(order.CallbackURL),
		ReturnURL:       ref(order.ReturnURL),
		CreatedAt:       order.CreatedAt.UTC(),
		ExpiresAt:       order.ExpiresAt.UTC(),
		ConfirmedAt:     order.ConfirmedAt,
		RequestedAmount: ref(order.RequestedAmount),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
