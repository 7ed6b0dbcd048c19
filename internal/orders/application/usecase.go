package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/internal/orders/ports"
	"b2b-orders/pkg/auth"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/logger"
)

// OrderUseCase handles order business logic
type OrderUseCase struct {
	repo      ports.OrderRepository
	publisher ports.EventPublisher
	customers ports.CustomerClient
	carts     *CartUseCase
	catalog   *CatalogUseCase
	source    string
	log       *logger.Logger
	now       func() time.Time
}

// NewOrderUseCase creates a new order use case. publisher and customers
// may be nil.
func NewOrderUseCase(
	repo ports.OrderRepository,
	publisher ports.EventPublisher,
	customers ports.CustomerClient,
	carts *CartUseCase,
	catalog *CatalogUseCase,
	source string,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		repo:      repo,
		publisher: publisher,
		customers: customers,
		carts:     carts,
		catalog:   catalog,
		source:    source,
		log:       log,
		now:       time.Now,
	}
}

// SubmitCartInput represents the input for submitting the caller's cart
type SubmitCartInput struct {
	CustomerRef string
	AgentRef    string
	Source      string
}

// SubmitCart turns the caller's cart into an order. The cart is emptied
// only once the order exists.
func (uc *OrderUseCase) SubmitCart(ctx context.Context, id auth.Identity, input SubmitCartInput) (*domain.Order, error) {
	cart, err := uc.carts.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	order, err := uc.place(ctx, cart, input)
	if err != nil {
		return nil, err
	}

	if err := uc.carts.ClearCart(ctx, id); err != nil {
		uc.log.WithContext(ctx).Error("order placed but cart not cleared",
			zap.Uint("order_id", order.ID),
			zap.String("namespace", id.Namespace()),
			zap.Error(err),
		)
	}
	return order, nil
}

// QuickOrderInput is a single-entry order placed without the cart
type QuickOrderInput struct {
	AddToCartInput
	SubmitCartInput
}

// QuickOrderOutput is the placed order and how the selection was fitted
type QuickOrderOutput struct {
	Order   *domain.Order
	Outcome domain.Outcome
}

// QuickOrder fits one selection to availability and orders it directly.
// The caller's cart is not touched.
func (uc *OrderUseCase) QuickOrder(ctx context.Context, input QuickOrderInput) (*QuickOrderOutput, error) {
	entry, err := uc.catalog.Lookup(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}
	if domain.ComputeAvailable(entry) == 0 {
		return nil, domain.NewNoStockError(entry.ID, entry.Name+" is out of stock")
	}

	item, err := domain.NewSelection(entry, input.Colors, input.Sets, input.PerSize)
	if err != nil {
		return nil, err
	}
	cart := domain.NewCart()
	outcome := domain.Fit(cart.Add(item), entry)

	order, err := uc.place(ctx, cart, input.SubmitCartInput)
	if err != nil {
		return nil, err
	}
	return &QuickOrderOutput{Order: order, Outcome: outcome}, nil
}

func (uc *OrderUseCase) place(ctx context.Context, cart *domain.Cart, input SubmitCartInput) (*domain.Order, error) {
	ref := strings.TrimSpace(input.CustomerRef)
	if ref == "" {
		return nil, domain.ErrCustomerRequired
	}

	agentRef := input.AgentRef
	if uc.customers != nil {
		customer, err := uc.validateCustomer(ctx, ref)
		if err != nil {
			return nil, err
		}
		if agentRef == "" {
			agentRef = customer.AgentRef
		}
	}

	submission, err := domain.BuildSubmission(cart, ref, agentRef)
	if err != nil {
		return nil, err
	}
	submission.CorrelationID = uuid.NewString()
	submission.Source = input.Source
	if submission.Source == "" {
		submission.Source = uc.source
	}

	order, err := domain.NewOrder(submission, uc.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, order); err != nil {
		return nil, errors.NewInternal("failed to create order", err)
	}

	// Publish event (don't fail on error)
	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("correlation_id", order.CorrelationID),
		zap.String("customer_ref", order.CustomerRef),
		zap.Int("total_quantity", order.TotalQuantity),
	)
	return order, nil
}

func (uc *OrderUseCase) validateCustomer(ctx context.Context, ref string) (*ports.CustomerInfo, error) {
	customer, err := uc.customers.GetCustomer(ctx, ref)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) || errors.Is(err, errors.CodeValidation) {
			return nil, errors.NewValidation("customer not found", map[string]interface{}{
				"customer_ref": ref,
			})
		}
		return nil, errors.Wrap(err, "failed to validate customer")
	}
	if !customer.Active {
		return nil, errors.NewValidation("customer is inactive", map[string]interface{}{
			"customer_ref": ref,
		})
	}
	return customer, nil
}

// GetOrder retrieves an order by ID
func (uc *OrderUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListOrders retrieves a customer's orders
func (uc *OrderUseCase) ListOrders(ctx context.Context, customerRef string) ([]*domain.Order, error) {
	customerRef = strings.TrimSpace(customerRef)
	if customerRef == "" {
		return nil, domain.ErrCustomerRequired
	}
	return uc.repo.ListByCustomer(ctx, customerRef)
}

// SetStatusInput represents an explicit status update
type SetStatusInput struct {
	ID     uint
	Status string
	Actor  string
	Reason string
}

// SetStatus moves an order between Unconfirmed and Confirmed
func (uc *OrderUseCase) SetStatus(ctx context.Context, input SetStatusInput) (*domain.Order, error) {
	to, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	return uc.transition(ctx, input.ID, "status_changed", func(o *domain.Order, t domain.Transition) error {
		return o.SetStatus(to, t)
	}, input.Actor, input.Reason)
}

// LifecycleInput represents a cancel or restore request. Confirmed must be
// set: it is the caller's answer to the confirmation prompt.
type LifecycleInput struct {
	ID        uint
	Actor     string
	Reason    string
	Confirmed bool
}

// CancelOrder cancels an order
func (uc *OrderUseCase) CancelOrder(ctx context.Context, input LifecycleInput) (*domain.Order, error) {
	if !input.Confirmed {
		return nil, domain.ErrNotConfirmed
	}
	return uc.transition(ctx, input.ID, "cancelled", func(o *domain.Order, t domain.Transition) error {
		return o.Cancel(t)
	}, input.Actor, input.Reason)
}

// RestoreOrder returns a cancelled order to Unconfirmed
func (uc *OrderUseCase) RestoreOrder(ctx context.Context, input LifecycleInput) (*domain.Order, error) {
	if !input.Confirmed {
		return nil, domain.ErrNotConfirmed
	}
	return uc.transition(ctx, input.ID, "restored", func(o *domain.Order, t domain.Transition) error {
		return o.Restore(t)
	}, input.Actor, input.Reason)
}

// transition applies apply to a copy of the stored order and persists it.
// The copy is returned only after the store accepted it.
func (uc *OrderUseCase) transition(
	ctx context.Context,
	id uint,
	action string,
	apply func(*domain.Order, domain.Transition) error,
	actor, reason string,
) (*domain.Order, error) {
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	t := domain.Transition{
		ChangedBy: strings.TrimSpace(actor),
		Reason:    strings.TrimSpace(reason),
		Meta:      map[string]string{"action": action},
		At:        uc.now().UTC(),
	}
	if traceID := logger.GetTraceID(ctx); traceID != "" {
		t.Meta["trace_id"] = traceID
	}
	if err := apply(next, t); err != nil {
		return nil, err
	}

	if next.IsCancelled() {
		err = uc.repo.Cancel(ctx, next)
	} else {
		err = uc.repo.UpdateStatus(ctx, next)
	}
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		return nil, errors.NewInternal("failed to update order status", err)
	}

	if uc.publisher != nil {
		if next.IsCancelled() {
			err = uc.publisher.PublishOrderCancelled(ctx, next, current.Status)
		} else {
			err = uc.publisher.PublishOrderStatusChanged(ctx, next, current.Status)
		}
		if err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order status event",
				zap.Error(err),
				zap.Uint("order_id", next.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order "+action,
		zap.Uint("order_id", next.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
		zap.String("changed_by", t.ChangedBy),
	)
	return next, nil
}
