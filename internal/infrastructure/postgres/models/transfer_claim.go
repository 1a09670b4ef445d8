package models

import "time"

// TransferClaimModel binds a chain transfer to the one order it paid.
type TransferClaimModel struct {
	TxHash    string `gorm:"primaryKey;type:varchar(128)"`
	OrderID   string `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time
}

func (TransferClaimModel) TableName() string {
	return "transfer_claims"
}
