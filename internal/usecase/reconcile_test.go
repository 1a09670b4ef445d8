package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
)

func TestReconcile_CompletesOnMatchingNativeTransfer(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10.000000", "TRX")

	h.clock.Advance(2 * time.Minute)
	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-1", trxWallet, "10.000000", t0.Add(time.Minute), true),
	}

	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	order := h.order(t, "O1")
	if order.Status != domain.StatusCompleted || order.TransactionHash != "tx-1" {
		t.Fatalf("expected completed with tx-1, got %+v", order)
	}
	if order.ConfirmedAt == nil || !order.ConfirmedAt.Equal(t0.Add(2*time.Minute)) {
		t.Fatalf("unexpected confirmed_at %v", order.ConfirmedAt)
	}

	records, _ := h.store.GetTransactionsByOrderID(context.Background(), "O1")
	if len(records) != 1 || records[0].TxHash != "tx-1" || records[0].Confirmations != 1 {
		t.Fatalf("unexpected transaction records %+v", records)
	}

	if h.notifier.count() != 1 {
		t.Fatalf("expected one callback, got %d", h.notifier.count())
	}
	call := h.notifier.calls[0]
	if call.OrderID != "O1" || call.TxHash != "tx-1" || call.CallbackURL != callbackTarget {
		t.Fatalf("unexpected callback %+v", call)
	}

	// later cycles neither re-complete nor re-notify
	h.clock.Advance(time.Minute)
	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if err := h.uc.RetryCallbacks(context.Background()); err != nil {
		t.Fatalf("retry callbacks: %v", err)
	}
	if h.notifier.count() != 1 {
		t.Fatalf("expected callback exactly once, got %d", h.notifier.count())
	}

	statuses := make([]string, 0, len(h.publisher.events))
	for _, e := range h.publisher.events {
		statuses = append(statuses, e.Status)
	}
	if fmt.Sprint(statuses) != "[pending completed]" {
		t.Fatalf("unexpected events %v", statuses)
	}
}

func TestReconcile_MatchingThreshold(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		amount   string
		success  bool
		complete bool
	}{
		{"exact amount", "10.000000", true, true},
		{"overpayment", "10.5", true, true},
		{"one sun short", "9.999999", true, false},
		{"failed transfer", "10", false, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, nil)
			h.mustCreate(t, "O1", "10", "TRX")
			h.chain.native[trxWallet] = []domain.NativeTransfer{
				nativeTransfer("tx-1", trxWallet, tc.amount, t0.Add(time.Second), tc.success),
			}

			if err := h.uc.Reconcile(context.Background()); err != nil {
				t.Fatalf("reconcile: %v", err)
			}
			got := h.order(t, "O1").Status
			if tc.complete && got != domain.StatusCompleted {
				t.Fatalf("expected completed, got %s", got)
			}
			if !tc.complete && got != domain.StatusPending {
				t.Fatalf("expected pending, got %s", got)
			}
		})
	}
}

func TestReconcile_FirstQualifyingTransferWins(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10", "TRX")

	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-small", trxWallet, "1", t0.Add(3*time.Second), true),
		nativeTransfer("tx-newest", trxWallet, "20", t0.Add(2*time.Second), true),
		nativeTransfer("tx-older", trxWallet, "10", t0.Add(time.Second), true),
	}

	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := h.order(t, "O1").TransactionHash; got != "tx-newest" {
		t.Fatalf("expected tx-newest, got %s", got)
	}
}

func TestReconcile_USDT(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "25", "USDT")

	h.chain.tokens[usdtWallet] = []domain.TokenTransfer{
		tokenTransfer("trc-out", "TSomeoneElse", "100", t0.Add(2*time.Second)),
		tokenTransfer("trc-in", usdtWallet, "25.000000", t0.Add(time.Second)),
	}

	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	order := h.order(t, "O1")
	if order.Status != domain.StatusCompleted || order.TransactionHash != "trc-in" {
		t.Fatalf("expected completion by trc-in, got %+v", order)
	}
	if h.chain.lastContract != usdtContract || h.chain.lastLimit != 50 {
		t.Fatalf("unexpected indexer query contract=%s limit=%d", h.chain.lastContract, h.chain.lastLimit)
	}
	if h.chain.nativeCalls != 0 {
		t.Fatalf("expected no native transfer lookups, got %d", h.chain.nativeCalls)
	}
}

func TestReconcile_ExpiredOrderNeverCompletes(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10.000000", "TRX")

	h.clock.Advance(30*time.Minute + time.Second)
	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-late", trxWallet, "10", t0.Add(30*time.Minute), true),
	}

	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := h.order(t, "O1").Status; got != domain.StatusPending {
		t.Fatalf("expected expired-by-time order to stay pending until swept, got %s", got)
	}

	if err := h.uc.ExpireSweep(context.Background()); err != nil {
		t.Fatalf("expire sweep: %v", err)
	}
	if got := h.order(t, "O1").Status; got != domain.StatusExpired {
		t.Fatalf("expected expired, got %s", got)
	}

	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile after expiry: %v", err)
	}
	order := h.order(t, "O1")
	if order.Status != domain.StatusExpired || order.TransactionHash != "" || order.ConfirmedAt != nil {
		t.Fatalf("expected expired order to be untouched, got %+v", order)
	}
	if h.notifier.count() != 0 {
		t.Fatalf("expected no callbacks, got %d", h.notifier.count())
	}
}

func TestReconcile_CompletedOrderSurvivesSweep(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10", "TRX")
	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-1", trxWallet, "10", t0.Add(time.Second), true),
	}
	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	before := h.order(t, "O1")

	h.clock.Advance(time.Hour)
	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-2", trxWallet, "50", t0.Add(40*time.Minute), true),
	}
	if err := h.uc.ExpireSweep(context.Background()); err != nil {
		t.Fatalf("expire sweep: %v", err)
	}
	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	after := h.order(t, "O1")
	if after.Status != domain.StatusCompleted || after.TransactionHash != "tx-1" {
		t.Fatalf("expected completed order untouched, got %+v", after)
	}
	if !after.ConfirmedAt.Equal(*before.ConfirmedAt) {
		t.Fatalf("confirmed_at changed from %s to %s", before.ConfirmedAt, after.ConfirmedAt)
	}
}

func TestReconcile_TransferClaimedOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10", "TRX")
	h.clock.Advance(time.Second)
	h.mustCreate(t, "O2", "10", "TRX")

	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-1", trxWallet, "10", t0.Add(time.Minute), true),
	}
	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if got := h.order(t, "O1").Status; got != domain.StatusCompleted {
		t.Fatalf("expected O1 completed, got %s", got)
	}
	if got := h.order(t, "O2").Status; got != domain.StatusPending {
		t.Fatalf("expected O2 to wait for its own transfer, got %s", got)
	}

	h.chain.native[trxWallet] = append([]domain.NativeTransfer{
		nativeTransfer("tx-2", trxWallet, "10", t0.Add(2*time.Minute), true),
	}, h.chain.native[trxWallet]...)
	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := h.order(t, "O2").TransactionHash; got != "tx-2" {
		t.Fatalf("expected O2 completed by tx-2, got %q", got)
	}
}

func TestReconcile_ClaimingDisabled(t *testing.T) {
	t.Parallel()
	h := newHarness(t, func(s *Settings) {
		s.ClaimTransfers = false
	})
	h.mustCreate(t, "O1", "10", "TRX")
	h.mustCreate(t, "O2", "10", "TRX")

	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-1", trxWallet, "10", t0.Add(time.Minute), true),
	}
	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	for _, id := range []string{"O1", "O2"} {
		if got := h.order(t, id).TransactionHash; got != "tx-1" {
			t.Fatalf("expected %s completed by tx-1, got %q", id, got)
		}
	}
}

func TestReconcile_IgnoresTransfersBeforeOrder(t *testing.T) {
	t.Parallel()

	for _, ignore := range []bool{true, false} {
		ignore := ignore
		t.Run(fmt.Sprintf("ignore=%v", ignore), func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, func(s *Settings) {
				s.IgnoreTransfersBeforeOrder = ignore
			})
			h.mustCreate(t, "O1", "10", "TRX")
			h.chain.native[trxWallet] = []domain.NativeTransfer{
				nativeTransfer("tx-old", trxWallet, "10", t0.Add(-time.Hour), true),
			}

			if err := h.uc.Reconcile(context.Background()); err != nil {
				t.Fatalf("reconcile: %v", err)
			}
			completed := h.order(t, "O1").Status == domain.StatusCompleted
			if completed == ignore {
				t.Fatalf("ignore=%v but completed=%v", ignore, completed)
			}
		})
	}
}

func TestReconcile_IndexerErrorIsNonFatal(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10", "TRX")
	h.mustCreate(t, "O2", "12", "TRX")
	h.chain.err = fmt.Errorf("%w: status 503", domain.ErrUpstream)

	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("expected indexer errors to be swallowed, got %v", err)
	}
	if got := h.order(t, "O1").Status; got != domain.StatusPending {
		t.Fatalf("expected pending, got %s", got)
	}
	if h.chain.nativeCalls != 1 {
		t.Fatalf("expected one indexer call per address per cycle, got %d", h.chain.nativeCalls)
	}

	h.chain.err = nil
	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-1", trxWallet, "10", t0.Add(time.Second), true),
	}
	if err := h.uc.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := h.order(t, "O1").Status; got != domain.StatusCompleted {
		t.Fatalf("expected recovery on the next cycle, got %s", got)
	}
	if h.chain.nativeCalls != 2 {
		t.Fatalf("expected cache to be per cycle, got %d calls", h.chain.nativeCalls)
	}
}

func TestReconcile_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.mustCreate(t, "O1", "10", "TRX")
	h.chain.native[trxWallet] = []domain.NativeTransfer{
		nativeTransfer("tx-1", trxWallet, "10", t0.Add(time.Second), true),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.uc.Reconcile(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := h.order(t, "O1").Status; got != domain.StatusPending {
		t.Fatalf("expected no work after cancellation, got %s", got)
	}
}
