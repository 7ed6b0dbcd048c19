package domain

import (
	"regexp"
	"strings"
	"time"
)

// Customer is a B2B account that orders are placed for
type Customer struct {
	ID           uint
	CompanyName  string
	ContactEmail string
	AgentRef     string
	Active       bool
	OrderCount   int64
	LastOrderAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmailRegex is the pattern for validating emails
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the customer entity
func (c *Customer) Validate() error {
	if c.CompanyName == "" {
		return ErrCompanyRequired
	}
	if len(c.CompanyName) < 2 || len(c.CompanyName) > 200 {
		return ErrCompanyLength
	}
	if c.ContactEmail == "" {
		return ErrEmailRequired
	}
	if !EmailRegex.MatchString(c.ContactEmail) {
		return ErrEmailInvalid
	}
	if len(c.AgentRef) > 64 {
		return ErrAgentRefLength
	}
	return nil
}

// NewCustomer opens an active account. The email is stored lower-cased so
// uniqueness does not depend on how it was typed.
func NewCustomer(companyName, email, agentRef string, now time.Time) (*Customer, error) {
	c := &Customer{
		CompanyName:  strings.TrimSpace(companyName),
		ContactEmail: strings.ToLower(strings.TrimSpace(email)),
		AgentRef:     strings.TrimSpace(agentRef),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply folds one order activity into the statistics
func (c *Customer) Apply(a OrderActivity) {
	switch a.Kind {
	case ActivityPlaced:
		c.OrderCount++
		if c.LastOrderAt == nil || a.At.After(*c.LastOrderAt) {
			at := a.At
			c.LastOrderAt = &at
		}
	case ActivityRestored:
		c.OrderCount++
	case ActivityCancelled:
		if c.OrderCount > 0 {
			c.OrderCount--
		}
	}
	c.UpdatedAt = a.At
}
