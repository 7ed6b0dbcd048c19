package domain

import "b2b-orders/pkg/errors"

// Domain-specific errors
var (
	ErrCompanyRequired = errors.NewValidation("company name is required", nil)
	ErrCompanyLength   = errors.NewValidation("company name must be between 2 and 200 characters", nil)
	ErrEmailRequired   = errors.NewValidation("contact email is required", nil)
	ErrEmailInvalid    = errors.NewValidation("contact email format is invalid", nil)
	ErrAgentRefLength  = errors.NewValidation("agent reference must be at most 64 characters", nil)
	ErrEmailExists     = errors.NewConflict("contact email already exists")
)

// NewCustomerNotFound creates a not found error with the customer ID
func NewCustomerNotFound(id uint) error {
	return errors.NewNotFound("customer", id)
}
