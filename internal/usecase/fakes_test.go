package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-tron-gateway/internal/signature"
	orderdto "github.com/LavaJover/shvark-tron-gateway/internal/usecase/dto/order"
	"github.com/shopspring/decimal"
)

const (
	testSecret     = "secret"
	trxWallet      = "TTrxWalletAddress"
	usdtWallet     = "TUsdtWalletAddress"
	usdtContract   = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	callbackTarget = "https://merchant.example/callback"
)

var t0 = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeChain struct {
	mu           sync.Mutex
	native       map[string][]domain.NativeTransfer
	tokens       map[string][]domain.TokenTransfer
	err          error
	nativeCalls  int
	tokenCalls   int
	lastContract string
	lastLimit    int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		native: make(map[string][]domain.NativeTransfer),
		tokens: make(map[string][]domain.TokenTransfer),
	}
}

func (f *fakeChain) GetAccountTransfers(_ context.Context, address string, limit int) ([]domain.NativeTransfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nativeCalls++
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.native[address], nil
}

func (f *fakeChain) GetTokenTransfers(_ context.Context, address, contract string, limit int) ([]domain.TokenTransfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls++
	f.lastContract = contract
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens[address], nil
}

type notification struct {
	OrderID     string
	TxHash      string
	CallbackURL string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notification
	// errs are returned in order; once exhausted every call succeeds
	errs []error
	// when gate is set the first call signals entered and blocks until gate is closed
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeNotifier) Notify(_ context.Context, order *domain.Order, txHash string) error {
	f.mu.Lock()
	f.calls = append(f.calls, notification{OrderID: order.OrderID, TxHash: txHash, CallbackURL: order.CallbackURL})
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	gate := f.gate
	f.gate = nil
	f.mu.Unlock()

	if gate != nil {
		close(f.entered)
		<-gate
	}
	return err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (f *fakePublisher) PublishOrderEvent(_ context.Context, event domain.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type harness struct {
	uc        *DefaultOrderUsecase
	store     *memory.Store
	chain     *fakeChain
	notifier  *fakeNotifier
	publisher *fakePublisher
	clock     *testClock
	codec     *signature.Codec
}

func newHarness(t *testing.T, mutate func(*Settings)) *harness {
	t.Helper()

	settings := DefaultSettings()
	if mutate != nil {
		mutate(&settings)
	}
	h := &harness{
		store:     memory.NewStore(),
		chain:     newFakeChain(),
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
		clock:     &testClock{now: t0},
		codec:     signature.NewCodec(testSecret),
	}
	h.uc = NewDefaultOrderUsecase(
		h.store,
		h.chain,
		h.notifier,
		h.codec,
		h.clock,
		Wallets{domain.CurrencyTRX: trxWallet, domain.CurrencyUSDT: usdtWallet},
		settings,
		h.publisher,
		nil,
		nil,
	)
	return h
}

// createInput builds a signed create request from the given fields.
func (h *harness) createInput(fields map[string]string) *orderdto.CreateOrderInput {
	params := make(map[string]string, len(fields))
	for k, v := range fields {
		params[k] = v
	}
	sig := h.codec.Sign(params)
	params["signature"] = sig
	return &orderdto.CreateOrderInput{
		MerchantID:  fields["merchant_id"],
		OrderID:     fields["order_id"],
		Amount:      fields["amount"],
		Currency:    fields["currency"],
		Signature:   sig,
		CallbackURL: fields["callback_url"],
		ReturnURL:   fields["return_url"],
		Params:      params,
	}
}

func (h *harness) mustCreate(t *testing.T, orderID, amount, currency string) *orderdto.CreateOrderOutput {
	t.Helper()
	out, err := h.uc.CreateOrder(context.Background(), h.createInput(map[string]string{
		"merchant_id":  "M1",
		"order_id":     orderID,
		"amount":       amount,
		"currency":     currency,
		"callback_url": callbackTarget,
	}))
	if err != nil {
		t.Fatalf("create order %s: %v", orderID, err)
	}
	return out
}

func (h *harness) order(t *testing.T, orderID string) *domain.Order {
	t.Helper()
	order, err := h.store.GetOrderByID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get order %s: %v", orderID, err)
	}
	return order
}

func nativeTransfer(txID, to, amount string, at time.Time, success bool) domain.NativeTransfer {
	return domain.NativeTransfer{
		TxID:           txID,
		FromAddress:    "TPayer",
		ToAddress:      to,
		Amount:         decimal.RequireFromString(amount),
		BlockNumber:    100,
		BlockTimestamp: at,
		Success:        success,
	}
}

func tokenTransfer(txID, to, amount string, at time.Time) domain.TokenTransfer {
	return domain.TokenTransfer{
		TransactionID:   txID,
		FromAddress:     "TPayer",
		ToAddress:       to,
		ContractAddress: usdtContract,
		Amount:          decimal.RequireFromString(amount),
		BlockTimestamp:  at,
	}
}
