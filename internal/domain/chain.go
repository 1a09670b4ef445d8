package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// NativeTransfer is a TRX transfer as reported by the indexer.
type NativeTransfer struct {
	TxID           string
	FromAddress    string
	ToAddress      string
	Amount         decimal.Decimal
	BlockNumber    int64
	BlockTimestamp time.Time
	Success        bool
}

// TokenTransfer is a TRC20 transfer as reported by the indexer.
type TokenTransfer struct {
	TransactionID   string
	FromAddress     string
	ToAddress       string
	ContractAddress string
	Amount          decimal.Decimal
	BlockTimestamp  time.Time
}

// ChainReader returns transfers newest first.
type ChainReader interface {
	GetAccountTransfers(ctx context.Context, address string, limit int) ([]NativeTransfer, error)
	GetTokenTransfers(ctx context.Context, address, contractAddress string, limit int) ([]TokenTransfer, error)
}
