package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/config"
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/models"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/storetest"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := postgres.OpenDB(config.Storage{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "gateway.db"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestDefaultOrderRepository_SQLiteContract(t *testing.T) {
	storetest.RunOrderStoreContract(t, func(t *testing.T) domain.OrderStore {
		return repository.NewDefaultOrderRepository(openSQLite(t))
	})
}

func TestCompleteOrder_RespectsExistingTransferClaim(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	repo := repository.NewDefaultOrderRepository(db)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"O1", "O2"} {
		err := repo.CreateOrder(ctx, &domain.Order{
			OrderID:        id,
			MerchantID:     "M1",
			Amount:         decimal.RequireFromString("10"),
			Currency:       domain.CurrencyTRX,
			PaymentAddress: "TPayAddress",
			Status:         domain.StatusPending,
			CreatedAt:      now,
			ExpiresAt:      now.Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	// a claim committed by a concurrent completion of O2
	if err := db.Create(&models.TransferClaimModel{TxHash: "H1", OrderID: "O2", CreatedAt: now}).Error; err != nil {
		t.Fatalf("seed claim: %v", err)
	}

	completion := func(orderID, txHash string) domain.OrderCompletion {
		return domain.OrderCompletion{
			OrderID: orderID,
			Transaction: domain.TransactionRecord{
				TxHash:    txHash,
				Amount:    decimal.RequireFromString("10"),
				Currency:  domain.CurrencyTRX,
				Status:    domain.TransactionConfirmed,
				CreatedAt: now,
			},
			ConfirmedAt:   now,
			ClaimTransfer: true,
		}
	}

	if err := repo.CompleteOrder(ctx, completion("O1", "H1")); !errors.Is(err, domain.ErrTransferClaimed) {
		t.Fatalf("expected ErrTransferClaimed, got %v", err)
	}
	got, err := repo.GetOrderByID(ctx, "O1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("expected O1 to stay pending, got %s", got.Status)
	}

	if err := repo.CompleteOrder(ctx, completion("O1", "H2")); err != nil {
		t.Fatalf("complete with fresh hash: %v", err)
	}
	var claim models.TransferClaimModel
	if err := db.First(&claim, "tx_hash = ?", "H2").Error; err != nil {
		t.Fatalf("expected claim row for H2: %v", err)
	}
	if claim.OrderID != "O1" {
		t.Fatalf("expected H2 claimed by O1, got %s", claim.OrderID)
	}
}
