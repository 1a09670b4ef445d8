package notifier

// CallbackPayload is POSTed to the merchant callback url once an order completes.
type CallbackPayload struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	TransactionHash string `json:"transaction_hash"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Timestamp       int64  `json:"timestamp"`
	Signature       string `json:"signature"`
}
