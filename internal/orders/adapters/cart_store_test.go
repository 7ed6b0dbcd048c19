package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/auth"
)

func TestCartKey_Namespaced(t *testing.T) {
	assert.Equal(t, "cart:anon:s-1", cartKey(auth.Anonymous("s-1")))
	assert.Equal(t, "cart:user:u-1", cartKey(auth.User("u-1", "s-1")))
}

func TestMemoryCartStore_RoundTrip(t *testing.T) {
	// Arrange
	store := NewMemoryCartStore(0)
	ctx := context.Background()
	anon := auth.Anonymous("s-1")
	user := auth.User("u-1", "s-1")
	cart := domain.NewCart()
	cart.Add(domain.LineItem{EntryID: "D-1", SetsCount: 2})

	// Act
	require.NoError(t, store.Save(ctx, anon, cart))
	cart.Items[0].SetsCount = 99

	// Assert
	loaded, err := store.Load(ctx, anon)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Get("D-1").SetsCount)

	other, err := store.Load(ctx, user)
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())

	require.NoError(t, store.Delete(ctx, anon))
	loaded, err = store.Load(ctx, anon)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestMemoryCartStore_Expiry(t *testing.T) {
	store := NewMemoryCartStore(time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	id := auth.Anonymous("s-1")
	cart := domain.NewCart()
	cart.Add(domain.LineItem{EntryID: "D-1", SetsCount: 1})

	require.NoError(t, store.Save(ctx, id, cart))
	now = now.Add(2 * time.Hour)

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}
