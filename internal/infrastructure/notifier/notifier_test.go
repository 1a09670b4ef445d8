package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/clock"
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/signature"
	"github.com/shopspring/decimal"
)

var now = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

func testOrder(callbackURL string) *domain.Order {
	return &domain.Order{
		OrderID:     "O1",
		MerchantID:  "M1",
		Amount:      decimal.RequireFromString("10"),
		Currency:    domain.CurrencyTRX,
		Status:      domain.StatusCompleted,
		CallbackURL: callbackURL,
	}
}

func TestHTTPNotifier_Notify(t *testing.T) {
	t.Parallel()

	var received CallbackPayload
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	codec := signature.NewCodec("secret")
	n := NewHTTPNotifier(codec, clock.NewFixed(now), time.Second)

	if err := n.Notify(context.Background(), testOrder(server.URL), "H1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one POST, got %d", calls)
	}
	if received.OrderID != "O1" || received.Status != "completed" || received.TransactionHash != "H1" {
		t.Fatalf("unexpected payload %+v", received)
	}
	if received.Amount != "10.000000" || received.Currency != "TRX" || received.Timestamp != now.Unix() {
		t.Fatalf("unexpected payload %+v", received)
	}

	params := map[string]string{
		"order_id":         received.OrderID,
		"status":           received.Status,
		"transaction_hash": received.TransactionHash,
		"amount":           received.Amount,
		"currency":         received.Currency,
		"timestamp":        strconv.FormatInt(received.Timestamp, 10),
	}
	if !codec.Verify(params, received.Signature) {
		t.Fatalf("expected callback signature to verify")
	}
}

func TestHTTPNotifier_BuildPayloadEchoesSubmittedAmount(t *testing.T) {
	t.Parallel()

	codec := signature.NewCodec("secret")
	n := NewHTTPNotifier(codec, clock.NewFixed(now), time.Second)

	order := testOrder("https://merchant.example/cb")
	order.RequestedAmount = "10"
	payload := n.BuildPayload(order, "H1")
	if payload.Amount != "10" {
		t.Fatalf("expected submitted amount 10, got %q", payload.Amount)
	}

	params := map[string]string{
		"order_id":         payload.OrderID,
		"status":           payload.Status,
		"transaction_hash": payload.TransactionHash,
		"amount":           payload.Amount,
		"currency":         payload.Currency,
		"timestamp":        strconv.FormatInt(payload.Timestamp, 10),
	}
	if !codec.Verify(params, payload.Signature) {
		t.Fatalf("expected signature over the submitted amount to verify")
	}
}

func TestHTTPNotifier_NoCallbackURL(t *testing.T) {
	t.Parallel()

	n := NewHTTPNotifier(signature.NewCodec("secret"), clock.NewFixed(now), time.Second)
	if err := n.Notify(context.Background(), testOrder(""), "H1"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestHTTPNotifier_Non2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewHTTPNotifier(signature.NewCodec("secret"), clock.NewFixed(now), time.Second)
	err := n.Notify(context.Background(), testOrder(server.URL), "H1")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestHTTPNotifier_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	n := NewHTTPNotifier(signature.NewCodec("secret"), clock.NewFixed(now), time.Second)
	if err := n.Notify(context.Background(), testOrder(url), "H1"); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
