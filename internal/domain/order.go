package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusExpired   OrderStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

type Currency string

const (
	CurrencyUSDT Currency = "USDT"
	CurrencyTRX  Currency = "TRX"
)

// ParseCurrency accepts only the currencies the gateway can settle.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case CurrencyUSDT, CurrencyTRX:
		return Currency(s), nil
	default:
		return "", ErrUnsupportedCurrency
	}
}

// AssetDecimals is the precision of both TRX (sun) and the USDT TRC20 deployment.
const AssetDecimals = 6

type Order struct {
	OrderID         string
	MerchantID      string
	Amount          decimal.Decimal
	Currency        Currency
	PaymentAddress  string
	Status          OrderStatus
	TransactionHash string
	CallbackURL     string
	ReturnURL       string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	ConfirmedAt     *time.Time

	// RequestedAmount is the amount string exactly as the merchant submitted it.
	RequestedAmount string
}

// FormatAmount renders an amount with the asset precision, e.g. "10.000000".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AssetDecimals)
}

// DisplayAmount is the amount echoed back to the merchant.
func (o *Order) DisplayAmount() string {
	if o.RequestedAmount != "" {
		return o.RequestedAmount
	}
	return FormatAmount(o.Amount)
}

// ValidateTransition checks the target status of a pending order against the hash invariant.
func ValidateTransition(status OrderStatus, txHash string) error {
	switch status {
	case StatusCompleted:
		if txHash == "" {
			return ErrInvalidTransition
		}
	case StatusExpired:
		if txHash != "" {
			return ErrInvalidTransition
		}
	default:
		return ErrInvalidTransition
	}
	return nil
}
