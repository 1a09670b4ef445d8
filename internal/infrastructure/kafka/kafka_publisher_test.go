package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestOrderEventPublisher_PublishOrderEvent(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	writer := &fakeWriter{}
	publisher := NewOrderEventPublisher(&DefaultKafkaPublisher{
		writer: writer,
		now:    func() time.Time { return stamp },
	})

	event := domain.OrderEvent{
		OrderID:         "O1",
		MerchantID:      "M1",
		Status:          "completed",
		Amount:          "10.000000",
		Currency:        "TRX",
		PaymentAddress:  "TPay",
		TransactionHash: "H1",
		OccurredAt:      stamp,
	}
	if err := publisher.PublishOrderEvent(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "O1" || !msg.Time.Equal(stamp) {
		t.Fatalf("unexpected message key/time %q %s", msg.Key, msg.Time)
	}

	var decoded domain.OrderEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.OrderID != "O1" || decoded.Status != "completed" || decoded.TransactionHash != "H1" || decoded.Amount != "10.000000" {
		t.Fatalf("unexpected event %+v", decoded)
	}
	if !decoded.OccurredAt.Equal(stamp) {
		t.Fatalf("expected occurred_at %s, got %s", stamp, decoded.OccurredAt)
	}
}

func TestOrderEventPublisher_WriterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	publisher := NewOrderEventPublisher(&DefaultKafkaPublisher{
		writer: &fakeWriter{err: boom},
		now:    time.Now,
	})
	if err := publisher.PublishOrderEvent(context.Background(), domain.OrderEvent{OrderID: "O1"}); !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
}
