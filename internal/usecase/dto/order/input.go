package orderdto

// CreateOrderInput carries the typed request fields together with the raw
// submitted field set; the signature is verified over Params.
type CreateOrderInput struct {
	MerchantID  string
	OrderID     string
	Amount      string
	Currency    string
	Signature   string
	CallbackURL string
	ReturnURL   string
	Params      map[string]string
}

type QueryOrderInput struct {
	PaymentID string
	Signature string
	Params    map[string]string
}
