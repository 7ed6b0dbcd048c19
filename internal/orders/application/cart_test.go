package application

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/auth"
	"b2b-orders/pkg/errors"
)

var buyer = auth.Anonymous("session-1")

func TestAddToCart_Success(t *testing.T) {
	// Arrange
	f := newFixture()

	// Act
	out, err := f.carts.AddToCart(context.Background(), buyer, AddToCartInput{
		EntryID: "D-100",
		Colors:  []string{"red", "Blue"},
		Sets:    2,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.TotalLineItems != 1 {
		t.Errorf("expected 1 line item, got %d", out.TotalLineItems)
	}
	if out.TotalPieces != 4 {
		t.Errorf("expected 4 pieces, got %d", out.TotalPieces)
	}
	li := f.store.carts[buyer.Namespace()].Get("D-100")
	assert.Equal(t, []string{"Red", "Blue"}, li.SelectedColors)
}

func TestAddToCart_ClampsMergedQuantity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Sets: 6})
	require.NoError(t, err)

	out, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Sets: 6})

	require.NoError(t, err)
	assert.Equal(t, 10, out.Cart.Get("D-100").SetsCount)
	require.NotNil(t, out.Outcome)
	assert.Equal(t, domain.NoticeClamped, out.Outcome.Notice)
}

func TestAddToCart_NoStockLeavesCartUnchanged(t *testing.T) {
	// Arrange
	f := newFixture()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Sets: 1})
	require.NoError(t, err)
	saves := f.store.saves

	// Act
	_, err = f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "Z-000", Sets: 1})

	// Assert
	if !errors.Is(err, errors.CodeOutOfStock) {
		t.Fatalf("expected OUT_OF_STOCK, got %v", err)
	}
	assert.Equal(t, saves, f.store.saves)
	assert.Equal(t, []string{"D-100"}, f.store.carts[buyer.Namespace()].EntryIDs())
}

func TestAddToCart_UnknownEntry(t *testing.T) {
	f := newFixture()

	_, err := f.carts.AddToCart(context.Background(), buyer, AddToCartInput{EntryID: "nope"})

	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestIncrementSets_AtCeilingDoesNotSave(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Sets: 10})
	require.NoError(t, err)
	saves := f.store.saves

	out, err := f.carts.IncrementSets(ctx, buyer, "D-100")

	require.NoError(t, err)
	assert.Equal(t, domain.NoticeAtCeiling, out.Outcome.Notice)
	assert.Equal(t, saves, f.store.saves)
	assert.Equal(t, 10, out.Cart.Get("D-100").SetsCount)
}

func TestToggleColor_ClampsThroughUseCase(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Colors: []string{"Red", "Blue"}, Sets: 4})
	require.NoError(t, err)

	out, err := f.carts.ToggleColor(ctx, buyer, "D-100", "Green")

	require.NoError(t, err)
	assert.Equal(t, 3, out.Cart.Get("D-100").SetsCount)
	assert.Equal(t, 9, out.TotalPieces)
	assert.True(t, out.Outcome.Blocking())
}

func TestSetSizeCount_UnknownSize(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "T-200"})
	require.NoError(t, err)

	_, err = f.carts.SetSizeCount(ctx, buyer, "T-200", "XXL", "3")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	out, err := f.carts.SetSizeCount(ctx, buyer, "T-200", "m", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalSets)
}

func TestMutate_MissingLineItem(t *testing.T) {
	f := newFixture()

	_, err := f.carts.SetSets(context.Background(), buyer, "D-100", "4")

	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestMutate_SaveFailureReportsError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Sets: 1})
	require.NoError(t, err)
	f.store.saveErr = stderrors.New("redis down")

	_, err = f.carts.SetSets(ctx, buyer, "D-100", "5")

	assert.True(t, errors.Is(err, errors.CodeInternal))
	f.store.saveErr = nil
	out, err := f.carts.GetCart(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalSets)
}

func TestSelectAllColorsAndApplyToAll(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "D-100", Sets: 1})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, buyer, AddToCartInput{EntryID: "T-200"})
	require.NoError(t, err)

	out, err := f.carts.SelectAllColors(ctx, buyer, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Red", "Blue", "Green"}, out.Cart.Get("D-100").SelectedColors)

	out, err = f.carts.ApplyToAll(ctx, buyer, 5)
	require.NoError(t, err)
	// floor(10/3) = 3 sets of Polo
	assert.Equal(t, 3, out.Cart.Get("D-100").SetsCount)
	// 5 per size, 15 of 30 for the Tee
	assert.Equal(t, map[string]int{"S": 5, "M": 5, "L": 5}, out.Cart.Get("T-200").PerSizeCount)
	require.Len(t, out.Outcomes, 2)

	_, err = f.carts.ApplyToAll(ctx, buyer, -1)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestMergeSessionCart(t *testing.T) {
	// Arrange
	f := newFixture()
	ctx := context.Background()
	anon := auth.Anonymous("session-9")
	user := auth.User("u-1", "session-9")
	_, err := f.carts.AddToCart(ctx, anon, AddToCartInput{EntryID: "D-100", Colors: []string{"Red"}, Sets: 2})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, user, AddToCartInput{EntryID: "D-100", Colors: []string{"Blue"}, Sets: 3})
	require.NoError(t, err)

	// Act
	out, err := f.carts.MergeSessionCart(ctx, user)

	// Assert
	require.NoError(t, err)
	li := out.Cart.Get("D-100")
	// 5 sets of 2 colors would be 10 pieces: exactly what is available
	assert.Equal(t, 5, li.SetsCount)
	assert.ElementsMatch(t, []string{"Blue", "Red"}, li.SelectedColors)
	_, stillThere := f.store.carts[anon.Namespace()]
	assert.False(t, stillThere)

	_, err = f.carts.MergeSessionCart(ctx, anon)
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}
