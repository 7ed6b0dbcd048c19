package adapters

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2b-orders/internal/customers/domain"
	"b2b-orders/pkg/events"
	"b2b-orders/pkg/logger"
)

var at = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func statusEvent(t *testing.T, key, from, to string) []byte {
	p := events.OrderStatusPayload{ID: 10, CustomerRef: "7", From: from, To: to, ChangedBy: "ops", ChangedAt: at}
	if key == events.RoutingKeyOrderCancelled {
		return mustJSON(t, events.NewOrderCancelledEvent(p, "trace"))
	}
	return mustJSON(t, events.NewOrderStatusChangedEvent(p, "trace"))
}

func TestParseOrderActivity(t *testing.T) {
	created := mustJSON(t, events.NewOrderCreatedEvent(events.OrderCreatedPayload{
		ID: 10, CustomerRef: " 7 ", CreatedAt: at,
	}, "trace"))

	tests := []struct {
		name   string
		key    string
		body   []byte
		wantOK bool
		kind   domain.ActivityKind
	}{
		{"created", events.RoutingKeyOrderCreated, created, true, domain.ActivityPlaced},
		{"cancelled", events.RoutingKeyOrderCancelled, statusEvent(t, events.RoutingKeyOrderCancelled, "Confirmed", "Cancelled"), true, domain.ActivityCancelled},
		{"restored", events.RoutingKeyOrderStatusChanged, statusEvent(t, events.RoutingKeyOrderStatusChanged, "Cancelled", "Unconfirmed"), true, domain.ActivityRestored},
		{"confirmed", events.RoutingKeyOrderStatusChanged, statusEvent(t, events.RoutingKeyOrderStatusChanged, "Unconfirmed", "Confirmed"), false, ""},
		{"unrelated key", "order.archived", created, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activity, ok, err := ParseOrderActivity(tt.key, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.kind, activity.Kind)
				assert.Equal(t, uint(7), activity.CustomerID)
				assert.Equal(t, uint(10), activity.OrderID)
				assert.True(t, activity.At.Equal(at))
			}
		})
	}
}

func TestParseOrderActivity_Invalid(t *testing.T) {
	_, _, err := ParseOrderActivity(events.RoutingKeyOrderCreated, []byte("{"))
	assert.Error(t, err)

	body := mustJSON(t, events.NewOrderCreatedEvent(events.OrderCreatedPayload{ID: 1, CustomerRef: "ACME"}, ""))
	_, _, err = ParseOrderActivity(events.RoutingKeyOrderCreated, body)
	assert.Error(t, err)
}

// MockRecorder is a mock implementation of ActivityRecorder
type MockRecorder struct {
	activities []domain.OrderActivity
}

func (m *MockRecorder) RecordOrderActivity(ctx context.Context, activity domain.OrderActivity) error {
	m.activities = append(m.activities, activity)
	return nil
}

func TestOrderEventsConsumer_DropsUnreadable(t *testing.T) {
	recorder := &MockRecorder{}
	consumer := &OrderEventsConsumer{recorder: recorder, log: logger.New("test", "debug")}

	err := consumer.handleMessage(context.Background(), events.RoutingKeyOrderCreated, []byte("garbage"))
	require.NoError(t, err)
	assert.Empty(t, recorder.activities)

	err = consumer.handleMessage(context.Background(), events.RoutingKeyOrderCancelled,
		statusEvent(t, events.RoutingKeyOrderCancelled, "Unconfirmed", "Cancelled"))
	require.NoError(t, err)
	assert.Len(t, recorder.activities, 1)
}
