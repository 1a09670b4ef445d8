package setup

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/LavaJover/shvark-tron-gateway/internal/clock"
	"github.com/LavaJover/shvark-tron-gateway/internal/config"
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/tron"
	"github.com/LavaJover/shvark-tron-gateway/internal/signature"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config         *config.GatewayConfig
	Logger         *zap.Logger
	Clock          clock.Clock
	DB             *gorm.DB
	Store          domain.OrderStore
	Chain          domain.ChainReader
	Codec          *signature.Codec
	Notifier       *notifier.HTTPNotifier
	Metrics        *metrics.GatewayMetrics
	KafkaPublisher *kafka.DefaultKafkaPublisher
	OrderPublisher domain.OrderEventPublisher
}

func InitializeDependencies(cfg *config.GatewayConfig, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Clock:   clock.NewSystem(),
		Metrics: metrics.NewGatewayMetrics(),
	}

	if err := initStore(deps); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	deps.Chain = tron.NewClient(tron.Config{
		BaseURL:       cfg.Tron.APIURL,
		APIKey:        cfg.Tron.APIKey,
		Timeout:       cfg.Tron.RequestTimeout,
		OnlyConfirmed: cfg.Tron.OnlyConfirmed,
	})
	deps.Codec = initCodec(cfg.Merchant)
	deps.Notifier = notifier.NewHTTPNotifier(deps.Codec, deps.Clock, cfg.Callback.Timeout)

	if len(cfg.KafkaService.Brokers) > 0 {
		deps.KafkaPublisher = kafka.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers, cfg.KafkaService.Topic)
		deps.OrderPublisher = kafka.NewOrderEventPublisher(deps.KafkaPublisher)
		logger.Info("order events enabled",
			zap.Strings("brokers", cfg.KafkaService.Brokers),
			zap.String("topic", cfg.KafkaService.Topic),
		)
	}

	return deps, nil
}

func initStore(deps *Dependencies) error {
	storage := deps.Config.Storage
	if storage.Driver == "memory" {
		deps.Store = memory.NewStore()
		deps.Logger.Warn("using in-memory store, orders are lost on restart")
		return nil
	}

	db, err := postgres.OpenDB(storage, deps.Logger.Named("gorm"))
	if err != nil {
		return err
	}
	deps.DB = db
	deps.Store = repository.NewDefaultOrderRepository(db)
	deps.Logger.Info("database ready", zap.String("driver", storage.Driver))
	return nil
}

func initCodec(merchant config.Merchant) *signature.Codec {
	if merchant.SignatureAlgorithm == "sha256" {
		return signature.NewCodec(merchant.SecretKey, signature.WithHash(sha256.New))
	}
	return signature.NewCodec(merchant.SecretKey)
}

// Ping checks the database connection; the memory store is always reachable.
func (d *Dependencies) Ping(ctx context.Context) error {
	if d.DB == nil {
		return nil
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the broker connection and the database pool.
func (d *Dependencies) Close() error {
	var firstErr error
	if d.KafkaPublisher != nil {
		if err := d.KafkaPublisher.Close(); err != nil {
			firstErr = fmt.Errorf("close kafka publisher: %w", err)
		}
	}
	if d.DB != nil {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close db: %w", err)
		}
	}
	return firstErr
}
