package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderModel struct {
	OrderID         string          `gorm:"primaryKey;type:varchar(128)"`
	MerchantID      string          `gorm:"type:varchar(128);not null;index:idx_orders_merchant"`
	Amount          decimal.Decimal `gorm:"type:varchar(64);not null"`
	Currency        string          `gorm:"type:varchar(8);not null"`
	PaymentAddress  string          `gorm:"type:varchar(64);not null"`
	Status          string          `gorm:"type:varchar(16);not null;default:pending;index:idx_orders_status_expires"`
	TransactionHash *string         `gorm:"type:varchar(128)"`
	CallbackURL     *string         `gorm:"type:text"`
	ReturnURL       *string         `gorm:"type:text"`
	CreatedAt       time.Time       `gorm:"not null"`
	ExpiresAt       time.Time       `gorm:"not null;index:idx_orders_status_expires"`
	ConfirmedAt     *time.Time
	RequestedAmount *string `gorm:"type:varchar(64)"`
}

func (OrderModel) TableName() string {
	return "orders"
}
