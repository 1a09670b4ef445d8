package request

type CreateOrderRequest struct {
	MerchantID  string `json:"merchant_id"`
	OrderID     string `json:"order_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Signature   string `json:"signature"`
	CallbackURL string `json:"callback_url,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`

	// Params is the signed field set, signature excluded by the codec.
	Params map[string]string `json:"-"`
}

func NewCreateOrderRequest(fields Fields) (*CreateOrderRequest, error) {
	params, err := fields.Params()
	if err != nil {
		return nil, err
	}
	return &CreateOrderRequest{
		MerchantID:  params["merchant_id"],
		OrderID:     params["order_id"],
		Amount:      params["amount"],
		Currency:    params["currency"],
		Signature:   params["signature"],
		CallbackURL: params["callback_url"],
		ReturnURL:   params["return_url"],
		Params:      params,
	}, nil
}

type QueryOrderRequest struct {
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`

	Params map[string]string `json:"-"`
}

func NewQueryOrderRequest(fields Fields) (*QueryOrderRequest, error) {
	params, err := fields.Params()
	if err != nil {
		return nil, err
	}
	return &QueryOrderRequest{
		PaymentID: params["payment_id"],
		Signature: params["signature"],
		Params:    params,
	}, nil
}
