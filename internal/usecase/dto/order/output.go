package orderdto

import "time"

type CreateOrderOutput struct {
	PaymentID      string
	PaymentAddress string
	Amount         string
	Currency       string
	QRCode         string
	ExpiresAt      time.Time
}

type QueryOrderOutput struct {
	PaymentID       string
	Status          string
	TransactionHash string
	Amount          string
	Currency        string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	ConfirmedAt     *time.Time
}
