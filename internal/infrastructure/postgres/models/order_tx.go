package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionModel is a chain transfer matched to an order.
type TransactionModel struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	OrderID       string          `gorm:"type:varchar(128);not null;uniqueIndex:uq_transactions_tx_order,priority:2;index:idx_transactions_order"`
	TxHash        string          `gorm:"type:varchar(128);not null;uniqueIndex:uq_transactions_tx_order,priority:1"`
	FromAddress   string          `gorm:"type:varchar(64)"`
	ToAddress     string          `gorm:"type:varchar(64)"`
	Amount        decimal.Decimal `gorm:"type:varchar(64);not null"`
	Currency      string          `gorm:"type:varchar(8);not null"`
	BlockNumber   int64
	Confirmations int    `gorm:"not null;default:0"`
	Status        string `gorm:"type:varchar(16);not null;default:pending"`
	CreatedAt     time.Time
}

func (TransactionModel) TableName() string {
	return "transactions"
}
