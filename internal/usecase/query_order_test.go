package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	orderdto "github.com/LavaJover/shvark-tron-gateway/internal/usecase/dto/order"
)

func (h *harness) queryInput(paymentID string) *orderdto.QueryOrderInput {
	params := map[string]string{"payment_id": paymentID}
	sig := h.codec.Sign(params)
	params["signature"] = sig
	return &orderdto.QueryOrderInput{PaymentID: paymentID, Signature: sig, Params: params}
}

func TestQueryOrder_PendingBeforeTransfer(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10.000000", "TRX")

	out, err := h.uc.QueryOrder(context.Background(), h.queryInput("O1"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Status != "pending" || out.TransactionHash != "" || out.ConfirmedAt != nil {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.Amount != "10.000000" || out.Currency != "TRX" || !out.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestQueryOrder_Errors(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10", "TRX")

	if _, err := h.uc.QueryOrder(context.Background(), h.queryInput("missing")); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	input := h.queryInput("O1")
	input.Signature = "00000000000000000000000000000000"
	if _, err := h.uc.QueryOrder(context.Background(), input); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	input = h.queryInput("O1")
	input.Signature = ""
	if _, err := h.uc.QueryOrder(context.Background(), input); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}

	if _, err := h.uc.QueryOrder(context.Background(), &orderdto.QueryOrderInput{Signature: "x"}); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField for payment_id, got %v", err)
	}
}
