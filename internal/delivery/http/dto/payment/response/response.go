package response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CreateOrderResponse struct {
	Success        bool   `json:"success"`
	PaymentID      string `json:"payment_id"`
	PaymentAddress string `json:"payment_address"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	QRCode         string `json:"qr_code,omitempty"`
	ExpiresAt      string `json:"expires_at"`
}

type QueryOrderResponse struct {
	Success         bool    `json:"success"`
	Status          string  `json:"status"`
	TransactionHash *string `json:"transaction_hash"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	CreatedAt       string  `json:"created_at"`
	ExpiresAt       string  `json:"expires_at"`
	ConfirmedAt     *string `json:"confirmed_at"`
}

type WebhookResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type IndexResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}
