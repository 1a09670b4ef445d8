package domain

import "errors"

var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidSignature    = errors.New("signature verification failed")
	ErrOrderNotFound       = errors.New("order not found")
	ErrDuplicateOrder      = errors.New("order id already exists")
	ErrOrderNotPending     = errors.New("order is not pending")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrTransferClaimed     = errors.New("transfer already claimed by another order")
	ErrCallbackNotFound    = errors.New("callback delivery not found")
	ErrCallbackLeased      = errors.New("callback delivery is owned by another attempt")
	ErrUpstream            = errors.New("upstream request failed")
)
