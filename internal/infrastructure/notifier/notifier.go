package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/clock"
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
)

type Signer interface {
	Sign(params map[string]string) string
}

// HTTPNotifier delivers signed completion callbacks to merchants.
type HTTPNotifier struct {
	client *http.Client
	signer Signer
	clock  clock.Clock
}

func NewHTTPNotifier(signer Signer, clk clock.Clock, timeout time.Duration) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPNotifier{
		client: &http.Client{Timeout: timeout},
		signer: signer,
		clock:  clk,
	}
}

// BuildPayload signs every payload field; the signature is computed over the string forms.
func (n *HTTPNotifier) BuildPayload(order *domain.Order, txHash string) CallbackPayload {
	payload := CallbackPayload{
		OrderID:         order.OrderID,
		Status:          string(domain.StatusCompleted),
		TransactionHash: txHash,
		Amount:          order.DisplayAmount(),
		Currency:        string(order.Currency),
		Timestamp:       n.clock.Now().Unix(),
	}
	payload.Signature = n.signer.Sign(map[string]string{
		"order_id":         payload.OrderID,
		"status":           payload.Status,
		"transaction_hash": payload.TransactionHash,
		"amount":           payload.Amount,
		"currency":         payload.Currency,
		"timestamp":        strconv.FormatInt(payload.Timestamp, 10),
	})
	return payload
}

// Notify makes a single delivery attempt. Orders without a callback url are skipped.
func (n *HTTPNotifier) Notify(ctx context.Context, order *domain.Order, txHash string) error {
	if order.CallbackURL == "" {
		return nil
	}

	body, err := json.Marshal(n.BuildPayload(order, txHash))
	if err != nil {
		return fmt.Errorf("failed to marshal callback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, order.CallbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: callback failed: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: callback returned status %d", domain.ErrUpstream, resp.StatusCode)
	}
	return nil
}
