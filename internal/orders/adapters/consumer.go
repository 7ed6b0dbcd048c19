package adapters

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"b2b-orders/internal/orders/ports"
	"b2b-orders/pkg/events"
	"b2b-orders/pkg/logger"
	"b2b-orders/pkg/rabbitmq"
)

// CustomerRememberer is told about customers known to be active
type CustomerRememberer interface {
	Remember(info ports.CustomerInfo)
}

// CustomerCreatedConsumer consumes customer.created events so that the
// first order of a new customer needs no directory call
type CustomerCreatedConsumer struct {
	consumer  *rabbitmq.Consumer
	customers CustomerRememberer
	log       *logger.Logger
}

// NewCustomerCreatedConsumer creates a new consumer for customer.created events
func NewCustomerCreatedConsumer(conn *rabbitmq.Connection, customers CustomerRememberer, log *logger.Logger) (*CustomerCreatedConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		"orders.customer-created",
		events.ExchangeCustomers,
		[]string{events.RoutingKeyCustomerCreated},
		log,
	)
	if err != nil {
		return nil, err
	}

	return &CustomerCreatedConsumer{
		consumer:  consumer,
		customers: customers,
		log:       log,
	}, nil
}

// Start starts consuming customer.created events
func (c *CustomerCreatedConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *CustomerCreatedConsumer) handleMessage(ctx context.Context, routingKey string, body []byte) error {
	var event events.CustomerCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.log.WithContext(ctx).Error("failed to unmarshal customer created event",
			zap.Error(err),
		)
		return err
	}

	c.customers.Remember(ports.CustomerInfo{
		ID:          event.Payload.ID,
		CompanyName: event.Payload.CompanyName,
		AgentRef:    event.Payload.AgentRef,
		Active:      true,
	})

	c.log.WithContext(ctx).Info("received customer created event",
		zap.Uint("customer_id", event.Payload.ID),
		zap.String("company_name", event.Payload.CompanyName),
		zap.String("trace_id", event.TraceID),
	)
	return nil
}
