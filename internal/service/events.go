package service

import (
	"context"
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/model"
)

// Topics published after an order transition commits.
const (
	TopicOrderCreated  = "order.created"
	TopicOrderRefunded = "order.refunded"
)

// EventPublisher delivers domain events to whatever consumes them
// asynchronously. Publishing happens after commit and is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func newOrderEvent(o *model.Order, at time.Time) dto.OrderEvent {
	ev := dto.OrderEvent{
		OrderID:     o.ID.String(),
		BranchID:    o.BranchID.String(),
		CashierID:   o.CashierID.String(),
		Status:      string(o.Status),
		PaymentType: string(o.PaymentType),
		TotalAmount: o.TotalAmount,
		OccurredAt:  at.UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, dto.OrderEventItem{
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
		})
	}
	return ev
}
