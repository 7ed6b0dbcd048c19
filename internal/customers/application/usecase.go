package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"b2b-orders/internal/customers/domain"
	"b2b-orders/internal/customers/ports"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/logger"
)

// CustomerUseCase handles customer directory logic
type CustomerUseCase struct {
	repo      ports.CustomerRepository
	publisher ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewCustomerUseCase creates a new customer use case. publisher may be nil.
func NewCustomerUseCase(repo ports.CustomerRepository, publisher ports.EventPublisher, log *logger.Logger) *CustomerUseCase {
	return &CustomerUseCase{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// CreateCustomerInput represents the input for opening a customer account
type CreateCustomerInput struct {
	CompanyName  string
	ContactEmail string
	AgentRef     string
}

// CreateCustomer opens a new customer account
func (uc *CustomerUseCase) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	customer, err := domain.NewCustomer(input.CompanyName, input.ContactEmail, input.AgentRef, uc.now().UTC())
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetByEmail(ctx, customer.ContactEmail)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, errors.NewInternal("failed to check email existence", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailExists
	}

	if err := uc.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, errors.CodeConflict) {
			return nil, err
		}
		return nil, errors.NewInternal("failed to create customer", err)
	}

	// Publish event (don't fail on error)
	if uc.publisher != nil {
		if err := uc.publisher.PublishCustomerCreated(ctx, customer); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish customer created event",
				zap.Error(err),
				zap.Uint("customer_id", customer.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("customer created",
		zap.Uint("customer_id", customer.ID),
		zap.String("company_name", customer.CompanyName),
	)
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id uint) (*domain.Customer, error) {
	if id == 0 {
		return nil, errors.NewValidation("invalid customer id", nil)
	}
	return uc.repo.GetByID(ctx, id)
}

// SetActive opens or closes an account. Orders for a closed account are
// refused by the ordering service.
func (uc *CustomerUseCase) SetActive(ctx context.Context, id uint, active bool) (*domain.Customer, error) {
	customer, err := uc.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("customer activity changed",
		zap.Uint("customer_id", id),
		zap.Bool("active", active),
	)
	return customer, nil
}

// RecordOrderActivity updates the customer's order statistics. Activities
// for unknown customers are dropped: the event can never apply.
func (uc *CustomerUseCase) RecordOrderActivity(ctx context.Context, activity domain.OrderActivity) error {
	applied, err := uc.repo.ApplyActivity(ctx, activity)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			uc.log.WithContext(ctx).Warn("order activity for unknown customer",
				zap.Uint("customer_id", activity.CustomerID),
				zap.Uint("order_id", activity.OrderID),
			)
			return nil
		}
		return err
	}

	if !applied {
		uc.log.WithContext(ctx).Debug("order activity already applied",
			zap.String("key", activity.Key),
		)
		return nil
	}

	uc.log.WithContext(ctx).Info("order activity recorded",
		zap.Uint("customer_id", activity.CustomerID),
		zap.Uint("order_id", activity.OrderID),
		zap.String("kind", string(activity.Kind)),
	)
	return nil
}
