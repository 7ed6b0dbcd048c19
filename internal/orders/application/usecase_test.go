package application

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/errors"
)

func submitted(t *testing.T, f *fixture) *domain.Order {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Colors: []string{"Red", "Blue"}, Sets: 2})
	require.NoError(t, err)

	order, err := f.orders.SubmitCart(ctx, buyer, SubmitCartInput{CustomerRef: "1"})
	require.NoError(t, err)
	return order
}

func TestSubmitCart_Success(t *testing.T) {
	// Arrange
	f := newFixture()

	// Act
	order := submitted(t, f)

	// Assert
	if order.ID != 1 {
		t.Errorf("expected ID 1, got %d", order.ID)
	}
	if order.Status != domain.StatusUnconfirmed {
		t.Errorf("expected status Unconfirmed, got %s", order.Status)
	}
	if order.TotalQuantity != 4 {
		t.Errorf("expected total quantity 4, got %d", order.TotalQuantity)
	}
	if order.AgentRef != "agent-7" {
		t.Errorf("expected agent ref from the customer, got %q", order.AgentRef)
	}
	if order.Source != "web" {
		t.Errorf("expected source web, got %q", order.Source)
	}
	if order.CorrelationID == "" {
		t.Error("expected a correlation id")
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != "order.created" {
		t.Errorf("expected one order.created event, got %v", f.publisher.events)
	}
	if _, ok := f.store.carts[buyer.Namespace()]; ok {
		t.Error("expected cart to be cleared")
	}
}

func TestSubmitCart_EmptyCart(t *testing.T) {
	f := newFixture()

	_, err := f.orders.SubmitCart(context.Background(), buyer, SubmitCartInput{CustomerRef: "1"})

	if !stderrors.Is(err, domain.ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestSubmitCart_CustomerChecks(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		err  error
		code string
	}{
		{"missing", "", nil, errors.CodeValidation},
		{"unknown", "99", nil, errors.CodeValidation},
		{"inactive", "2", nil, errors.CodeValidation},
		{"directory down", "1", errors.NewUnavailable("customers unavailable", nil), errors.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.customers.err = tt.err
			ctx := context.Background()
			_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Sets: 1})
			require.NoError(t, err)

			_, err = f.orders.SubmitCart(ctx, buyer, SubmitCartInput{CustomerRef: tt.ref})

			assert.True(t, errors.Is(err, tt.code), "got %v", err)
			assert.Empty(t, f.repo.orders)
			// cart survives a failed submission
			assert.Contains(t, f.store.carts, buyer.Namespace())
		})
	}
}

func TestQuickOrder(t *testing.T) {
	f := newFixture()

	out, err := f.orders.QuickOrder(context.Background(), QuickOrderInput{
		AddToCartInput:  AddToCartInput{EntryID: "D-100", Colors: []string{"Red", "Blue", "Green"}, Sets: 5},
		SubmitCartInput: SubmitCartInput{CustomerRef: "1", Source: "carousel"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.NoticeClamped, out.Outcome.Notice)
	assert.Equal(t, 9, out.Order.TotalQuantity)
	assert.Equal(t, "carousel", out.Order.Source)
	assert.Empty(t, f.store.carts)

	_, err = f.orders.QuickOrder(context.Background(), QuickOrderInput{
		AddToCartInput:  AddToCartInput{EntryID: "Z-000", Sets: 1},
		SubmitCartInput: SubmitCartInput{CustomerRef: "1"},
	})
	assert.True(t, errors.Is(err, errors.CodeOutOfStock))
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.orders.GetOrder(context.Background(), 999)

	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND error, got %v", err)
	}
}

func TestListOrders(t *testing.T) {
	f := newFixture()
	submitted(t, f)

	orders, err := f.orders.ListOrders(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = f.orders.ListOrders(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrCustomerRequired)
}

func TestCancelAndRestore(t *testing.T) {
	// Arrange
	f := newFixture()
	order := submitted(t, f)
	ctx := context.Background()

	// Act
	cancelled, err := f.orders.CancelOrder(ctx, LifecycleInput{ID: order.ID, Actor: "bob", Reason: "duplicate", Confirmed: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, "bob", cancelled.CancelledBy)
	assert.Len(t, cancelled.StatusHistory, 1)
	assert.Equal(t, 1, f.repo.cancels)

	// Act
	restored, err := f.orders.RestoreOrder(ctx, LifecycleInput{ID: order.ID, Actor: "bob", Confirmed: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnconfirmed, restored.Status)
	assert.Equal(t, "bob", restored.CancelledBy)
	assert.NotNil(t, restored.CancelledAt)
	assert.Len(t, restored.StatusHistory, 2)
	assert.Equal(t, []string{"order.created", "order.cancelled", "order.status_changed"}, f.publisher.events)
}

func TestCancel_RequiresConfirmation(t *testing.T) {
	f := newFixture()
	order := submitted(t, f)

	_, err := f.orders.CancelOrder(context.Background(), LifecycleInput{ID: order.ID, Actor: "bob"})

	assert.ErrorIs(t, err, domain.ErrNotConfirmed)
	stored, _ := f.repo.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusUnconfirmed, stored.Status)
}

func TestSetStatus(t *testing.T) {
	f := newFixture()
	order := submitted(t, f)
	ctx := context.Background()

	confirmed, err := f.orders.SetStatus(ctx, SetStatusInput{ID: order.ID, Status: "confirmed", Actor: "alice"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)

	_, err = f.orders.SetStatus(ctx, SetStatusInput{ID: order.ID, Status: "canceled", Actor: "alice"})
	assert.ErrorIs(t, err, domain.ErrUseCancel)

	_, err = f.orders.SetStatus(ctx, SetStatusInput{ID: order.ID, Status: "shipped", Actor: "alice"})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestTransition_StoreFailureKeepsState(t *testing.T) {
	// Arrange
	f := newFixture()
	order := submitted(t, f)
	f.repo.updateErr = stderrors.New("connection reset")
	ctx := context.Background()

	// Act
	_, err := f.orders.CancelOrder(ctx, LifecycleInput{ID: order.ID, Actor: "bob", Confirmed: true})

	// Assert
	assert.True(t, errors.Is(err, errors.CodeInternal))
	stored, _ := f.repo.GetByID(ctx, order.ID)
	assert.Equal(t, domain.StatusUnconfirmed, stored.Status)
	assert.Empty(t, stored.StatusHistory)
	assert.Equal(t, []string{"order.created"}, f.publisher.events)
}
