package models

import "time"

type CallbackDeliveryModel struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"`
	OrderID       string    `gorm:"type:varchar(128);not null;index:idx_callback_deliveries_order"`
	TxHash        string    `gorm:"type:varchar(128);not null"`
	URL           string    `gorm:"type:text;not null"`
	Status        string    `gorm:"type:varchar(16);not null;default:pending;index:idx_callback_deliveries_due"`
	Attempts      int       `gorm:"not null;default:0"`
	NextAttemptAt time.Time `gorm:"not null;index:idx_callback_deliveries_due"`
	LastError     string    `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeliveredAt   *time.Time
}

func (CallbackDeliveryModel) TableName() string {
	return "callback_deliveries"
}
