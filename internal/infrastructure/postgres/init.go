package postgres

import (
	"fmt"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/config"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to the configured SQL backend and brings the schema up to date.
// Postgres uses the versioned migrations; sqlite is auto-migrated from the models.
func OpenDB(cfg config.Storage, zl *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:  newGormLogger(zl),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch cfg.Driver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := migrate.RunMigrations(db); err != nil {
			return nil, err
		}
		return db, nil
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
		if err := db.AutoMigrate(&models.OrderModel{}, &models.TransactionModel{}, &models.CallbackDeliveryModel{}, &models.TransferClaimModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}
}

// gormWriter feeds gorm's slow-query and error lines into zap.
type gormWriter struct {
	logger *zap.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}

func newGormLogger(zl *zap.Logger) logger.Interface {
	if zl == nil {
		zl = zap.NewNop()
	}
	return logger.New(gormWriter{logger: zl}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
