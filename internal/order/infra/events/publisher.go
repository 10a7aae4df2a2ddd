package events

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/contracts"
	"github.com/dwikikusuma/shoping-checkout/pkg/kafka"
	"github.com/google/uuid"
)

// Publisher emits order lifecycle events to kafka, keyed by order id so a
// single order's events stay ordered within a partition.
type Publisher struct {
	created kafka.MessageWriter
	status  kafka.MessageWriter
	// timeout bounds each publish so a down broker cannot stall a request.
	timeout time.Duration
}

func NewPublisher(created, status kafka.MessageWriter, timeout time.Duration) *Publisher {
	return &Publisher{created: created, status: status, timeout: timeout}
}

func (p *Publisher) OrderCreated(ctx context.Context, o domain.Order) error {
	ev := contracts.Event{
		EventID:   uuid.NewString(),
		OrderID:   o.ID,
		CreatedAt: o.CreatedAt,
		Type:      contracts.EventOrderCreated,
		Payload: map[string]any{
			"user_id":        o.UserID,
			"status":         o.Status,
			"payment_option": o.PaymentOption,
			"items":          len(o.Items),
			"total":          o.Total().Decimal.StringFixed(2),
		},
	}
	return kafka.PublishJSON(ctx, p.created, p.timeout, o.ID, ev)
}

func (p *Publisher) StatusChanged(ctx context.Context, o domain.Order, previous domain.Status) error {
	ev := contracts.Event{
		EventID:   uuid.NewString(),
		OrderID:   o.ID,
		CreatedAt: o.ModifiedAt,
		Type:      contracts.EventOrderStatusChanged,
		Payload: map[string]any{
			"from": previous,
			"to":   o.Status,
		},
	}
	return kafka.PublishJSON(ctx, p.status, p.timeout, o.ID, ev)
}

// Close closes writers that hold connections.
func (p *Publisher) Close() error {
	return errors.Join(closeWriter(p.created), closeWriter(p.status))
}

func closeWriter(w kafka.MessageWriter) error {
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Noop drops every event; used when no brokers are configured.
type Noop struct{}

func (Noop) OrderCreated(context.Context, domain.Order) error { return nil }

func (Noop) StatusChanged(context.Context, domain.Order, domain.Status) error { return nil }

func (Noop) Close() error { return nil }
