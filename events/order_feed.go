package events

import (
	"context"
	"log/slog"

	"github.com/user/storefront-go/orders"
)

// OrderCreatedEvent is the event type published for every recorded order.
const OrderCreatedEvent = "order.created"

// OrderFeed publishes recorded orders to the admin stream.
type OrderFeed struct {
	broadcaster *Broadcaster
	logger      *slog.Logger
}

// NewOrderFeed creates an OrderFeed.
func NewOrderFeed(b *Broadcaster, logger *slog.Logger) *OrderFeed {
	return &OrderFeed{broadcaster: b, logger: logger}
}

// OrderCreated implements orders.Notifier.
func (f *OrderFeed) OrderCreated(ctx context.Context, o orders.Order) {
	e, err := NewEvent(OrderCreatedEvent, o)
	if err != nil {
		f.logger.ErrorContext(ctx, "failed to encode order event", "order_id", o.OrderID, "error", err)
		return
	}
	f.broadcaster.Publish(e)
}

var _ orders.Notifier = (*OrderFeed)(nil)
