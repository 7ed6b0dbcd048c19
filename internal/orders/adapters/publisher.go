package adapters

import (
	"context"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/events"
	"b2b-orders/pkg/logger"
	"b2b-orders/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

// PublishOrderCreated publishes an order created event
func (p *RabbitMQPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	event := events.NewOrderCreatedEvent(events.OrderCreatedPayload{
		ID:            order.ID,
		CorrelationID: order.CorrelationID,
		CustomerRef:   order.CustomerRef,
		AgentRef:      order.AgentRef,
		TotalQuantity: order.TotalQuantity,
		Source:        order.Source,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
	}, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCreated, event)
}

// PublishOrderStatusChanged publishes an order.status_changed event
func (p *RabbitMQPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	event := events.NewOrderStatusChangedEvent(statusPayload(order, from), logger.GetTraceID(ctx))
	return p.publisher.Publish(ctx, events.RoutingKeyOrderStatusChanged, event)
}

// PublishOrderCancelled publishes an order.cancelled event
func (p *RabbitMQPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	event := events.NewOrderCancelledEvent(statusPayload(order, from), logger.GetTraceID(ctx))
	return p.publisher.Publish(ctx, events.RoutingKeyOrderCancelled, event)
}

func statusPayload(order *domain.Order, from domain.OrderStatus) events.OrderStatusPayload {
	p := events.OrderStatusPayload{
		ID:          order.ID,
		CustomerRef: order.CustomerRef,
		From:        string(from),
		To:          string(order.Status),
	}
	if change, ok := order.LastChange(); ok {
		p.ChangedBy = change.ChangedBy
		p.ChangedAt = change.ChangedAt
		p.Reason = change.Reason
	}
	return p
}
