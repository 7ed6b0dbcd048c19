package ports

import (
	"context"

	"b2b-orders/internal/customers/domain"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id uint) (*domain.Customer, error)

	// GetByEmail retrieves a customer by contact email
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// SetActive opens or closes the account
	SetActive(ctx context.Context, id uint, active bool) (*domain.Customer, error)

	// ApplyActivity folds an order activity into the customer's statistics.
	// It reports false when the activity was already applied.
	ApplyActivity(ctx context.Context, activity domain.OrderActivity) (bool, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishCustomerCreated publishes a customer created event
	PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error
}
