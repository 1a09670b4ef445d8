package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	orderdto "github.com/LavaJover/shvark-tron-gateway/internal/usecase/dto/order"
)

func (uc *DefaultOrderUsecase) QueryOrder(ctx context.Context, input *orderdto.QueryOrderInput) (*orderdto.QueryOrderOutput, error) {
	if err := requireFields(
		field{"payment_id", input.PaymentID},
		field{"signature", input.Signature},
	); err != nil {
		return nil, err
	}

	if !uc.Codec.Verify(input.Params, input.Signature) {
		uc.recordError("query_order", "signature")
		return nil, domain.ErrInvalidSignature
	}

	order, err := uc.Store.GetOrderByID(ctx, input.PaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	return &orderdto.QueryOrderOutput{
		PaymentID:       order.OrderID,
		Status:          string(order.Status),
		TransactionHash: order.TransactionHash,
		Amount:          order.DisplayAmount(),
		Currency:        string(order.Currency),
		CreatedAt:       order.CreatedAt,
		ExpiresAt:       order.ExpiresAt,
		ConfirmedAt:     order.ConfirmedAt,
	}, nil
}
