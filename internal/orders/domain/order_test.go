package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"b2b-orders/pkg/errors"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestOrder(t testing.TB) *Order {
	t.Helper()
	order, err := NewOrder(&Submission{
		CustomerRef: "C-42",
		AgentRef:    "agent-7",
		Rows:        []SubmissionRow{{SKU: "D-1", ItemName: "Polo", Qty: 2}},
		Items:       []ItemGroup{{ItemName: "Polo", Colors: []ColorSets{{Sets: 2}}}},
	}, testNow)
	require.NoError(t, err)
	return order
}

func at(minutes int) Transition {
	return Transition{ChangedBy: "alice", At: testNow.Add(time.Duration(minutes) * time.Minute)}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    OrderStatus
		wantErr bool
	}{
		{"", StatusUnconfirmed, false},
		{"unconfirmed", StatusUnconfirmed, false},
		{"CONFIRMED", StatusConfirmed, false},
		{"Cancelled", StatusCancelled, false},
		{"canceled", StatusCancelled, false},
		{" Canceled ", StatusCancelled, false},
		{"shipped", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.raw)
		if tt.wantErr {
			assert.True(t, errors.Is(err, errors.CodeValidation), "raw %q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewOrder_Defaults(t *testing.T) {
	order := newTestOrder(t)

	assert.Equal(t, StatusUnconfirmed, order.Status)
	assert.Empty(t, order.StatusHistory)
	assert.Nil(t, order.CancelledAt)

	_, err := NewOrder(&Submission{Rows: []SubmissionRow{{SKU: "D-1", Qty: 1}}}, testNow)
	assert.ErrorIs(t, err, ErrCustomerRequired)
}

func TestOrder_CancelThenRestore(t *testing.T) {
	// Arrange
	order := newTestOrder(t)

	// Act
	require.NoError(t, order.Cancel(Transition{ChangedBy: "bob", Reason: "duplicate", At: testNow.Add(time.Hour)}))

	// Assert
	assert.Equal(t, StatusCancelled, order.Status)
	assert.Equal(t, "bob", order.CancelledBy)
	require.NotNil(t, order.CancelledAt)
	assert.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "duplicate", order.StatusHistory[0].Reason)

	// Act
	require.NoError(t, order.Restore(at(90)))

	// Assert
	assert.Equal(t, StatusUnconfirmed, order.Status)
	assert.Equal(t, "bob", order.CancelledBy)
	assert.Equal(t, testNow.Add(time.Hour), *order.CancelledAt)
	assert.Len(t, order.StatusHistory, 2)
	assert.Equal(t, StatusCancelled, order.StatusHistory[0].Status)
	assert.Equal(t, StatusUnconfirmed, order.StatusHistory[1].Status)
}

func TestOrder_Transitions(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.Confirm(at(1)))
	assert.Equal(t, StatusConfirmed, order.Status)

	err := order.Confirm(at(2))
	assert.True(t, errors.Is(err, errors.CodeConflict))

	require.NoError(t, order.SetStatus(StatusUnconfirmed, at(3)))

	err = order.SetStatus(StatusCancelled, at(4))
	assert.ErrorIs(t, err, ErrUseCancel)

	require.NoError(t, order.Cancel(at(5)))
	err = order.Cancel(at(6))
	assert.True(t, errors.Is(err, errors.CodeConflict))
	err = order.Confirm(at(7))
	assert.True(t, errors.Is(err, errors.CodeConflict))

	assert.Len(t, order.StatusHistory, 3)
}

func TestOrder_RestoreRequiresCancelled(t *testing.T) {
	order := newTestOrder(t)

	err := order.Restore(at(1))

	assert.True(t, errors.Is(err, errors.CodeConflict))
	assert.Empty(t, order.StatusHistory)
}

func TestOrder_ActorRequired(t *testing.T) {
	order := newTestOrder(t)

	assert.ErrorIs(t, order.Cancel(Transition{At: testNow}), ErrActorRequired)
	assert.Equal(t, StatusUnconfirmed, order.Status)
}

func TestOrder_CloneIsIndependent(t *testing.T) {
	order := newTestOrder(t)
	c := order.Clone()

	require.NoError(t, c.Cancel(at(1)))

	assert.Equal(t, StatusUnconfirmed, order.Status)
	assert.Empty(t, order.StatusHistory)
	assert.Nil(t, order.CancelledAt)
}

func TestOrder_HistoryNeverShrinks(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		order := newTestOrder(t)
		steps := rapid.IntRange(1, 30).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			before := append([]StatusChange{}, order.StatusHistory...)
			tr := at(i)

			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				_ = order.Confirm(tr)
			case 1:
				_ = order.SetStatus(StatusUnconfirmed, tr)
			case 2:
				_ = order.Cancel(tr)
			case 3:
				_ = order.Restore(tr)
			}

			if len(order.StatusHistory) < len(before) {
				rt.Fatalf("history shrank from %d to %d", len(before), len(order.StatusHistory))
			}
			for j := range before {
				if order.StatusHistory[j].Status != before[j].Status || !order.StatusHistory[j].ChangedAt.Equal(before[j].ChangedAt) {
					rt.Fatalf("history entry %d was rewritten", j)
				}
			}
		}
	})
}
