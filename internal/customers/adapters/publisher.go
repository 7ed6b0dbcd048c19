package adapters

import (
	"context"

	"b2b-orders/internal/customers/domain"
	"b2b-orders/pkg/events"
	"b2b-orders/pkg/logger"
	"b2b-orders/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher) *RabbitMQPublisher {
	return &RabbitMQPublisher{publisher: publisher}
}

// PublishCustomerCreated publishes a customer created event
func (p *RabbitMQPublisher) PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error {
	event := events.NewCustomerCreatedEvent(events.CustomerCreatedPayload{
		ID:           customer.ID,
		CompanyName:  customer.CompanyName,
		ContactEmail: customer.ContactEmail,
		AgentRef:     customer.AgentRef,
		CreatedAt:    customer.CreatedAt,
	}, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, events.RoutingKeyCustomerCreated, event)
}
