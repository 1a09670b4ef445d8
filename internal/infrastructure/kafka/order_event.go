package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
)

// OrderEventPublisher keys events by order id so one order's transitions stay on one partition.
type OrderEventPublisher struct {
	publisher domain.PublisherPort
}

func NewOrderEventPublisher(publisher domain.PublisherPort) *OrderEventPublisher {
	return &OrderEventPublisher{publisher: publisher}
}

func (p *OrderEventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	return p.publisher.Publish(ctx, domain.Message{Key: []byte(event.OrderID), Value: v})
}
