package domain

import (
	"fmt"
	"time"
)

// ActivityKind is what happened to one of the customer's orders
type ActivityKind string

const (
	ActivityPlaced    ActivityKind = "placed"
	ActivityCancelled ActivityKind = "cancelled"
	ActivityRestored  ActivityKind = "restored"
)

// OrderActivity is one order event as it concerns the customer. Key is
// unique per event so a redelivered message is applied once.
type OrderActivity struct {
	Key        string
	CustomerID uint
	OrderID    uint
	Kind       ActivityKind
	At         time.Time
}

// NewOrderActivity builds the activity and its deduplication key. A placed
// order happens once; cancel and restore can repeat, so their key carries
// the time of the change.
func NewOrderActivity(kind ActivityKind, customerID, orderID uint, at time.Time) OrderActivity {
	key := fmt.Sprintf("%s:%d", kind, orderID)
	if kind != ActivityPlaced {
		key = fmt.Sprintf("%s:%d", key, at.UnixNano())
	}
	return OrderActivity{
		Key:        key,
		CustomerID: customerID,
		OrderID:    orderID,
		Kind:       kind,
		At:         at,
	}
}
