package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	orderdto "github.com/LavaJover/shvark-tron-gateway/internal/usecase/dto/order"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error) {
	if err := requireFields(
		field{"merchant_id", input.MerchantID},
		field{"order_id", input.OrderID},
		field{"amount", input.Amount},
		field{"currency", input.Currency},
		field{"signature", input.Signature},
	); err != nil {
		return nil, err
	}

	if !uc.Codec.Verify(input.Params, input.Signature) {
		uc.recordError("create_order", "signature")
		return nil, domain.ErrInvalidSignature
	}

	currency, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, input.Currency)
	}

	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	paymentAddress := uc.Wallets[currency]
	if paymentAddress == "" {
		uc.recordError("create_order", "wallet_not_configured")
		return nil, fmt.Errorf("%w: no wallet configured for %s", domain.ErrUnsupportedCurrency, currency)
	}

	now := uc.Clock.Now()
	order := &domain.Order{
		OrderID:        input.OrderID,
		MerchantID:     input.MerchantID,
		Amount:         amount,
		Currency:       currency,
		PaymentAddress: paymentAddress,
		Status:         domain.StatusPending,
		CallbackURL:    input.CallbackURL,
		ReturnURL:      input.ReturnURL,
		CreatedAt:      now,
		ExpiresAt:      now.Add(uc.Settings.OrderTTL),

		RequestedAmount: input.Amount,
	}

	if err := uc.Store.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			uc.recordError("create_order", "duplicate")
			return nil, err
		}
		uc.recordError("create_order", "store")
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	uc.Logger.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.String("merchant_id", order.MerchantID),
		zap.String("amount", domain.FormatAmount(order.Amount)),
		zap.String("currency", string(order.Currency)),
		zap.Time("expires_at", order.ExpiresAt),
	)
	uc.recordOrderCreatedMetrics(order)
	uc.publishOrderEvent(ctx, order)

	return &orderdto.CreateOrderOutput{
		PaymentID:      order.OrderID,
		PaymentAddress: order.PaymentAddress,
		Amount:         order.DisplayAmount(),
		Currency:       string(order.Currency),
		QRCode:         uc.qrCodeURL(order),
		ExpiresAt:      order.ExpiresAt,
	}, nil
}

type field struct {
	name  string
	value string
}

// requireFields reports the first empty field.
func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s", domain.ErrMissingField, f.name)
		}
	}
	return nil
}

// parseAmount accepts positive decimals with at most AssetDecimals fractional digits.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", domain.ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be positive", domain.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(domain.AssetDecimals)) {
		return decimal.Zero, fmt.Errorf("%w: at most %d decimal places", domain.ErrInvalidAmount, domain.AssetDecimals)
	}
	return amount, nil
}

// qrCodeURL points an image-rendering service at a tron: payment uri.
func (uc *DefaultOrderUsecase) qrCodeURL(order *domain.Order) string {
	if uc.Settings.QRCodeBaseURL == "" {
		return ""
	}
	data := fmt.Sprintf("tron:%s?amount=%s", order.PaymentAddress, domain.FormatAmount(order.Amount))
	if order.Currency == domain.CurrencyUSDT {
		data += "&token=" + uc.Settings.USDTContractAddress
	}

	query := url.Values{}
	query.Set("size", uc.Settings.QRCodeSize)
	query.Set("data", data)
	return uc.Settings.QRCodeBaseURL + "?" + query.Encode()
}
