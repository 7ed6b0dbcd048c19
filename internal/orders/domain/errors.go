package domain

import "b2b-orders/pkg/errors"

// Domain-specific errors
var (
	ErrCustomerRequired = errors.NewValidation("customer is required", nil)
	ErrEmptyCart        = errors.NewValidation("cart is empty", nil)
	ErrNoItems          = errors.NewValidation("order has no item with a positive quantity", nil)
	ErrColorRequired    = errors.NewValidation("color is required", nil)
	ErrActorRequired    = errors.NewValidation("changed_by is required", nil)
	ErrNotConfirmed     = errors.NewValidation("this action must be confirmed", map[string]interface{}{
		"confirmed": true,
	})
	ErrUseCancel = errors.NewValidation("use the cancel action to cancel an order", nil)
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id uint) error {
	return errors.NewNotFound("order", id)
}

// NewEntryNotFound creates a not found error for a catalog entry
func NewEntryNotFound(id string) error {
	return errors.NewNotFound("catalog entry", id)
}

// NewLineItemNotFound is returned when a cart has no line item for id
func NewLineItemNotFound(id string) error {
	return errors.NewNotFound("cart item", id)
}

// NewUnknownSizeError rejects a size the entry does not offer
func NewUnknownSizeError(entryID, size string) error {
	return errors.NewValidation("unknown size", map[string]interface{}{
		"id":   entryID,
		"size": size,
	})
}

// NewUnknownColorError rejects a color the entry does not offer
func NewUnknownColorError(entryID, color string) error {
	return errors.NewValidation("unknown color", map[string]interface{}{
		"id":    entryID,
		"color": color,
	})
}

// NewInvalidStatusError rejects a status string that is none of the known ones
func NewInvalidStatusError(raw string) error {
	return errors.NewValidation("invalid order status", map[string]interface{}{
		"status":  raw,
		"allowed": []OrderStatus{StatusUnconfirmed, StatusConfirmed, StatusCancelled},
	})
}

// NewNoStockError is returned when an entry has nothing available at all
func NewNoStockError(entryID, message string) error {
	return errors.NewOutOfStock(message, map[string]interface{}{
		"id":        entryID,
		"available": 0,
	})
}

// NewTransitionError reports a status change the lifecycle does not allow
func NewTransitionError(from, to OrderStatus) error {
	return errors.NewConflict("order cannot move from " + string(from) + " to " + string(to))
}
