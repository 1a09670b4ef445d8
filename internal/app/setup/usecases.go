package setup

import (
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/usecase"
)

type UseCases struct {
	OrderUsecase usecase.OrderUsecase
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	cfg := deps.Config

	wallets := usecase.Wallets{}
	if cfg.Wallets.USDTAddress != "" {
		wallets[domain.CurrencyUSDT] = cfg.Wallets.USDTAddress
	}
	if cfg.Wallets.TRXAddress != "" {
		wallets[domain.CurrencyTRX] = cfg.Wallets.TRXAddress
	}

	settings := usecase.Settings{
		OrderTTL:                   cfg.OrderTTL(),
		TransferLimit:              cfg.Tron.TransferLimit,
		USDTContractAddress:        cfg.Tron.USDTContractAddress,
		ClaimTransfers:             cfg.Reconcile.ClaimTransfers,
		IgnoreTransfersBeforeOrder: cfg.Reconcile.IgnoreTransfersBeforeOrder,
		ConfirmationBlocks:         cfg.Reconcile.ConfirmationBlocks,
		QRCodeBaseURL:              cfg.QRCode.BaseURL,
		QRCodeSize:                 cfg.QRCode.Size,
		Callback: usecase.CallbackSettings{
			MaxAttempts: cfg.Callback.MaxAttempts,
			BaseBackoff: cfg.Callback.BaseBackoff,
			MaxBackoff:  cfg.Callback.MaxBackoff,
			BatchSize:   cfg.Callback.BatchSize,

			AttemptTimeout: cfg.Callback.Timeout,
		},
	}

	orderUsecase := usecase.NewDefaultOrderUsecase(
		deps.Store,
		deps.Chain,
		deps.Notifier,
		deps.Codec,
		deps.Clock,
		wallets,
		settings,
		deps.OrderPublisher,
		deps.Metrics,
		deps.Logger.Named("orders"),
	)

	return &UseCases{
		OrderUsecase: orderUsecase,
	}
}
