package domain

import (
	"strings"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusUnconfirmed OrderStatus = "Unconfirmed"
	StatusConfirmed   OrderStatus = "Confirmed"
	StatusCancelled   OrderStatus = "Cancelled"
)

// ParseStatus canonicalizes a status from the outside. Case is ignored,
// "canceled" is accepted and an empty value means Unconfirmed.
func ParseStatus(raw string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unconfirmed":
		return StatusUnconfirmed, nil
	case "confirmed":
		return StatusConfirmed, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	default:
		return "", NewInvalidStatusError(raw)
	}
}

// StatusChange is one entry of an order's audit trail
type StatusChange struct {
	Status    OrderStatus       `json:"status"`
	ChangedBy string            `json:"changed_by"`
	ChangedAt time.Time         `json:"changed_at"`
	Reason    string            `json:"reason,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// Order represents the order domain entity. Everything above Status is
// fixed at creation.
type Order struct {
	ID            uint
	CorrelationID string
	CustomerRef   string
	AgentRef      string
	Items         []ItemGroup
	TotalQuantity int
	Source        string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Status        OrderStatus
	CancelledBy   string
	CancelledAt   *time.Time
	StatusHistory []StatusChange
}

// NewOrder creates an unconfirmed order from an assembled submission
func NewOrder(s *Submission, now time.Time) (*Order, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Order{
		CorrelationID: s.CorrelationID,
		CustomerRef:   s.CustomerRef,
		AgentRef:      s.AgentRef,
		Items:         s.Items,
		TotalQuantity: s.TotalQuantity,
		Source:        s.Source,
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        StatusUnconfirmed,
		StatusHistory: []StatusChange{},
	}, nil
}

// IsCancelled reports whether the order is currently cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// Transition describes one requested status change
type Transition struct {
	ChangedBy string
	Reason    string
	Meta      map[string]string
	At        time.Time
}

// SetStatus moves the order between Unconfirmed and Confirmed. Cancelling
// has its own operation, and a cancelled order only leaves that state
// through Restore.
func (o *Order) SetStatus(to OrderStatus, t Transition) error {
	if t.ChangedBy == "" {
		return ErrActorRequired
	}
	switch {
	case to == StatusCancelled:
		return ErrUseCancel
	case o.Status == StatusCancelled, o.Status == to:
		return NewTransitionError(o.Status, to)
	}
	o.record(to, t)
	return nil
}

// Confirm is SetStatus(Confirmed)
func (o *Order) Confirm(t Transition) error {
	return o.SetStatus(StatusConfirmed, t)
}

// Cancel cancels the order from any other state
func (o *Order) Cancel(t Transition) error {
	if t.ChangedBy == "" {
		return ErrActorRequired
	}
	if o.IsCancelled() {
		return NewTransitionError(o.Status, StatusCancelled)
	}
	at := t.At
	o.CancelledBy = t.ChangedBy
	o.CancelledAt = &at
	o.record(StatusCancelled, t)
	return nil
}

// Restore returns a cancelled order to Unconfirmed. CancelledBy and
// CancelledAt are kept.
func (o *Order) Restore(t Transition) error {
	if t.ChangedBy == "" {
		return ErrActorRequired
	}
	if !o.IsCancelled() {
		return NewTransitionError(o.Status, StatusUnconfirmed)
	}
	o.record(StatusUnconfirmed, t)
	return nil
}

func (o *Order) record(to OrderStatus, t Transition) {
	o.Status = to
	o.UpdatedAt = t.At
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		Status:    to,
		ChangedBy: t.ChangedBy,
		ChangedAt: t.At,
		Reason:    t.Reason,
		Meta:      t.Meta,
	})
}

// LastChange returns the newest history entry, if any
func (o *Order) LastChange() (StatusChange, bool) {
	if len(o.StatusHistory) == 0 {
		return StatusChange{}, false
	}
	return o.StatusHistory[len(o.StatusHistory)-1], true
}

// Clone returns a deep copy so a transition can be tried without touching
// the original.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]ItemGroup, len(o.Items))
	for i, g := range o.Items {
		c.Items[i] = g.clone()
	}
	if o.CancelledAt != nil {
		at := *o.CancelledAt
		c.CancelledAt = &at
	}
	c.StatusHistory = append([]StatusChange{}, o.StatusHistory...)
	return &c
}
