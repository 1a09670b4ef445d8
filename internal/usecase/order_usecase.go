package usecase

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/clock"
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/metrics"
	orderdto "github.com/LavaJover/shvark-tron-gateway/internal/usecase/dto/order"
	"go.uber.org/zap"
)

type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error)
	QueryOrder(ctx context.Context, input *orderdto.QueryOrderInput) (*orderdto.QueryOrderOutput, error)

	// Background operations, each safe to call repeatedly.
	Reconcile(ctx context.Context) error
	ExpireSweep(ctx context.Context) error
	RetryCallbacks(ctx context.Context) error
}

type SignatureCodec interface {
	Sign(params map[string]string) string
	Verify(params map[string]string, signature string) bool
}

// Wallets maps a currency to the shared deposit address receiving it.
type Wallets map[domain.Currency]string

type CallbackSettings struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	BatchSize   int
	// AttemptTimeout bounds one POST; a leased row is not retried before it passes.
	AttemptTimeout time.Duration
}

type Settings struct {
	OrderTTL                   time.Duration
	TransferLimit              int
	USDTContractAddress        string
	ClaimTransfers             bool
	IgnoreTransfersBeforeOrder bool
	ConfirmationBlocks         int
	QRCodeBaseURL              string
	QRCodeSize                 string
	Callback                   CallbackSettings
}

func DefaultSettings() Settings {
	return Settings{
		OrderTTL:                   30 * time.Minute,
		TransferLimit:              50,
		USDTContractAddress:        "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		ClaimTransfers:             true,
		IgnoreTransfersBeforeOrder: true,
		ConfirmationBlocks:         1,
		QRCodeBaseURL:              "https://api.qrserver.com/v1/create-qr-code/",
		QRCodeSize:                 "200x200",
		Callback: CallbackSettings{
			MaxAttempts: 5,
			BaseBackoff: 30 * time.Second,
			MaxBackoff:  30 * time.Minute,
			BatchSize:   50,

			AttemptTimeout: 10 * time.Second,
		},
	}
}

type DefaultOrderUsecase struct {
	Store     domain.OrderStore
	Chain     domain.ChainReader
	Notifier  domain.CallbackNotifier
	Codec     SignatureCodec
	Clock     clock.Clock
	Wallets   Wallets
	Settings  Settings
	Publisher domain.OrderEventPublisher
	Metrics   *metrics.GatewayMetrics
	Logger    *zap.Logger
}

func NewDefaultOrderUsecase(
	store domain.OrderStore,
	chain domain.ChainReader,
	notifier domain.CallbackNotifier,
	codec SignatureCodec,
	clk clock.Clock,
	wallets Wallets,
	settings Settings,
	publisher domain.OrderEventPublisher,
	gatewayMetrics *metrics.GatewayMetrics,
	logger *zap.Logger,
) *DefaultOrderUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultOrderUsecase{
		Store:     store,
		Chain:     chain,
		Notifier:  notifier,
		Codec:     codec,
		Clock:     clk,
		Wallets:   wallets,
		Settings:  settings,
		Publisher: publisher,
		Metrics:   gatewayMetrics,
		Logger:    logger,
	}
}

func (uc *DefaultOrderUsecase) publishOrderEvent(ctx context.Context, order *domain.Order) {
	if uc.Publisher == nil {
		return
	}
	event := domain.OrderEvent{
		OrderID:         order.OrderID,
		MerchantID:      order.MerchantID,
		Status:          string(order.Status),
		Amount:          domain.FormatAmount(order.Amount),
		Currency:        string(order.Currency),
		PaymentAddress:  order.PaymentAddress,
		TransactionHash: order.TransactionHash,
		OccurredAt:      uc.Clock.Now(),
	}
	if err := uc.Publisher.PublishOrderEvent(ctx, event); err != nil {
		uc.Logger.Warn("failed to publish order event",
			zap.String("order_id", order.OrderID),
			zap.String("status", event.Status),
			zap.Error(err),
		)
	}
}
