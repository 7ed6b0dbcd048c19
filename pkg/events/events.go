package events

import "time"

// Exchange names
const (
	ExchangeCustomers = "customers.events"
	ExchangeOrders    = "orders.events"
)

// Routing keys
const (
	RoutingKeyCustomerCreated    = "customer.created"
	RoutingKeyOrderCreated       = "order.created"
	RoutingKeyOrderStatusChanged = "order.status_changed"
	RoutingKeyOrderCancelled     = "order.cancelled"
)

const schemaVersion = "1.0"

// Envelope is the common wrapper of every event on the bus
type Envelope[T any] struct {
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id"`
	Payload   T         `json:"payload"`
}

func newEnvelope[T any](eventType, traceID string, payload T) *Envelope[T] {
	return &Envelope[T]{
		Version:   schemaVersion,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// CustomerCreatedPayload contains customer data
type CustomerCreatedPayload struct {
	ID           uint      `json:"id"`
	CompanyName  string    `json:"company_name"`
	ContactEmail string    `json:"contact_email"`
	AgentRef     string    `json:"agent_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CustomerCreatedEvent is published when a customer account is opened
type CustomerCreatedEvent = Envelope[CustomerCreatedPayload]

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(p CustomerCreatedPayload, traceID string) *CustomerCreatedEvent {
	return newEnvelope(RoutingKeyCustomerCreated, traceID, p)
}

// OrderCreatedPayload contains order data
type OrderCreatedPayload struct {
	ID            uint      `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	CustomerRef   string    `json:"customer_ref"`
	AgentRef      string    `json:"agent_ref,omitempty"`
	TotalQuantity int       `json:"total_quantity"`
	Source        string    `json:"source"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderCreatedEvent is published after an order is persisted
type OrderCreatedEvent = Envelope[OrderCreatedPayload]

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(p OrderCreatedPayload, traceID string) *OrderCreatedEvent {
	return newEnvelope(RoutingKeyOrderCreated, traceID, p)
}

// OrderStatusPayload describes one lifecycle transition
type OrderStatusPayload struct {
	ID          uint      `json:"id"`
	CustomerRef string    `json:"customer_ref"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ChangedBy   string    `json:"changed_by"`
	ChangedAt   time.Time `json:"changed_at"`
	Reason      string    `json:"reason,omitempty"`
}

// OrderStatusEvent is published for confirm/restore (status_changed) and cancel (cancelled)
type OrderStatusEvent = Envelope[OrderStatusPayload]

// NewOrderStatusChangedEvent creates an order.status_changed event
func NewOrderStatusChangedEvent(p OrderStatusPayload, traceID string) *OrderStatusEvent {
	return newEnvelope(RoutingKeyOrderStatusChanged, traceID, p)
}

// NewOrderCancelledEvent creates an order.cancelled event
func NewOrderCancelledEvent(p OrderStatusPayload, traceID string) *OrderStatusEvent {
	return newEnvelope(RoutingKeyOrderCancelled, traceID, p)
}
