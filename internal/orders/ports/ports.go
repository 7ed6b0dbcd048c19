package ports

import (
	"context"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/auth"
)

// CatalogReader reads normalized catalog entries from the catalog store
type CatalogReader interface {
	// ListEntries returns every orderable entry
	ListEntries(ctx context.Context) ([]domain.CatalogEntry, error)

	// GetEntry returns one entry, or a not found error
	GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error)
}

// CatalogCache keeps the full catalog list between reads
type CatalogCache interface {
	// Get returns the cached list; ok is false on a miss
	Get(ctx context.Context) (entries []domain.CatalogEntry, ok bool, err error)

	// Set replaces the cached list
	Set(ctx context.Context, entries []domain.CatalogEntry) error

	// Invalidate drops the cached list
	Invalidate(ctx context.Context) error
}

// CartStore persists one cart per identity namespace
type CartStore interface {
	// Load returns the identity's cart, or an empty cart when none is stored
	Load(ctx context.Context, id auth.Identity) (*domain.Cart, error)

	// Save replaces the identity's cart
	Save(ctx context.Context, id auth.Identity, cart *domain.Cart) error

	// Delete removes the identity's cart
	Delete(ctx context.Context, id auth.Identity) error
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order and assigns its ID
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its status history
	GetByID(ctx context.Context, id uint) (*domain.Order, error)

	// ListByCustomer retrieves a customer's orders, newest first
	ListByCustomer(ctx context.Context, customerRef string) ([]*domain.Order, error)

	// UpdateStatus stores the order's status and appends its newest
	// history entry
	UpdateStatus(ctx context.Context, order *domain.Order) error

	// Cancel stores the cancellation: status, cancelled_by/at and the
	// newest history entry
	Cancel(ctx context.Context, order *domain.Order) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishOrderCreated publishes an order created event
	PublishOrderCreated(ctx context.Context, order *domain.Order) error

	// PublishOrderStatusChanged publishes a confirm or restore
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus) error

	// PublishOrderCancelled publishes a cancellation
	PublishOrderCancelled(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
}

// CustomerClient defines the interface for customer directory communication
type CustomerClient interface {
	// GetCustomer retrieves a customer by reference
	GetCustomer(ctx context.Context, ref string) (*CustomerInfo, error)
}

// CustomerInfo represents customer information from the customers service
type CustomerInfo struct {
	ID          uint
	CompanyName string
	AgentRef    string
	Active      bool
}
