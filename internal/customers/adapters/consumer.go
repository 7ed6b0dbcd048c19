package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"b2b-orders/internal/customers/domain"
	"b2b-orders/pkg/events"
	"b2b-orders/pkg/logger"
	"b2b-orders/pkg/rabbitmq"
)

// ActivityRecorder applies order activity to customer statistics
type ActivityRecorder interface {
	RecordOrderActivity(ctx context.Context, activity domain.OrderActivity) error
}

// OrderEventsConsumer consumes order events to keep per-customer order
// statistics
type OrderEventsConsumer struct {
	consumer *rabbitmq.Consumer
	recorder ActivityRecorder
	log      *logger.Logger
}

// NewOrderEventsConsumer creates a new consumer for order events
func NewOrderEventsConsumer(conn *rabbitmq.Connection, recorder ActivityRecorder, log *logger.Logger) (*OrderEventsConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		"customers.order-activity",
		events.ExchangeOrders,
		[]string{
			events.RoutingKeyOrderCreated,
			events.RoutingKeyOrderCancelled,
			events.RoutingKeyOrderStatusChanged,
		},
		log,
	)
	if err != nil {
		return nil, err
	}

	return &OrderEventsConsumer{
		consumer: consumer,
		recorder: recorder,
		log:      log,
	}, nil
}

// Start starts consuming order events
func (c *OrderEventsConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *OrderEventsConsumer) handleMessage(ctx context.Context, routingKey string, body []byte) error {
	activity, ok, err := ParseOrderActivity(routingKey, body)
	if err != nil {
		// a message that cannot be read will not read on redelivery either
		c.log.WithContext(ctx).Warn("dropping unreadable order event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return nil
	}
	if !ok {
		return nil
	}

	return c.recorder.RecordOrderActivity(ctx, activity)
}

// ParseOrderActivity reads an order event. ok is false for events that do
// not change customer statistics, such as a confirmation.
func ParseOrderActivity(routingKey string, body []byte) (domain.OrderActivity, bool, error) {
	switch routingKey {
	case events.RoutingKeyOrderCreated:
		var event events.OrderCreatedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return domain.OrderActivity{}, false, err
		}
		customerID, err := parseCustomerRef(event.Payload.CustomerRef)
		if err != nil {
			return domain.OrderActivity{}, false, err
		}
		return domain.NewOrderActivity(domain.ActivityPlaced, customerID, event.Payload.ID, event.Payload.CreatedAt), true, nil

	case events.RoutingKeyOrderCancelled, events.RoutingKeyOrderStatusChanged:
		var event events.OrderStatusEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return domain.OrderActivity{}, false, err
		}
		p := event.Payload

		kind := domain.ActivityCancelled
		if routingKey == events.RoutingKeyOrderStatusChanged {
			if !strings.EqualFold(p.From, "cancelled") {
				return domain.OrderActivity{}, false, nil
			}
			kind = domain.ActivityRestored
		}

		customerID, err := parseCustomerRef(p.CustomerRef)
		if err != nil {
			return domain.OrderActivity{}, false, err
		}
		return domain.NewOrderActivity(kind, customerID, p.ID, p.ChangedAt), true, nil
	}
	return domain.OrderActivity{}, false, nil
}

func parseCustomerRef(ref string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(ref), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid customer reference %q", ref)
	}
	return uint(id), nil
}
