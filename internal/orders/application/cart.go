package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/internal/orders/ports"
	"b2b-orders/pkg/auth"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/logger"
)

// CartUseCase applies buyer edits to the cart of the calling identity.
// Every operation loads the cart, changes it and saves it back; when the
// save fails nothing is reported as applied.
type CartUseCase struct {
	store   ports.CartStore
	catalog *CatalogUseCase
	log     *logger.Logger
	now     func() time.Time
}

// NewCartUseCase creates a new cart use case
func NewCartUseCase(store ports.CartStore, catalog *CatalogUseCase, log *logger.Logger) *CartUseCase {
	return &CartUseCase{
		store:   store,
		catalog: catalog,
		log:     log,
		now:     time.Now,
	}
}

// CartOutput is a cart with its totals and the effect of the last edit
type CartOutput struct {
	Cart           *domain.Cart
	TotalLineItems int
	TotalSets      int
	TotalPieces    int
	Outcome        *domain.Outcome
	Outcomes       []domain.ItemOutcome
}

func newCartOutput(cart *domain.Cart) *CartOutput {
	return &CartOutput{
		Cart:           cart,
		TotalLineItems: cart.TotalLineItems(),
		TotalSets:      cart.TotalSets(),
		TotalPieces:    cart.TotalPieces(),
	}
}

// GetCart returns the caller's cart
func (uc *CartUseCase) GetCart(ctx context.Context, id auth.Identity) (*CartOutput, error) {
	cart, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newCartOutput(cart), nil
}

// AddToCartInput is the buyer's initial selection for one entry
type AddToCartInput struct {
	EntryID string
	Colors  []string
	Sets    int
	PerSize map[string]int
}

// AddToCart adds a selection, merging it into the entry's line item when
// there is one, and fits the result to what is available. An entry with
// nothing available is refused and the cart is left as it was.
func (uc *CartUseCase) AddToCart(ctx context.Context, id auth.Identity, input AddToCartInput) (*CartOutput, error) {
	entry, err := uc.catalog.Lookup(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}
	if domain.ComputeAvailable(entry) == 0 {
		return nil, domain.NewNoStockError(entry.ID, entry.Name+" is out of stock")
	}

	item, err := domain.NewSelection(entry, input.Colors, input.Sets, input.PerSize)
	if err != nil {
		return nil, err
	}

	cart, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	li := cart.Add(item)
	outcome := domain.Fit(li, entry)
	outcome.Changed = true

	if err := uc.save(ctx, id, cart); err != nil {
		return nil, err
	}

	out := newCartOutput(cart)
	out.Outcome = &outcome
	return out, nil
}

// RemoveFromCart drops the entry's line item
func (uc *CartUseCase) RemoveFromCart(ctx context.Context, id auth.Identity, entryID string) (*CartOutput, error) {
	cart, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(entryID) {
		return nil, domain.NewLineItemNotFound(entryID)
	}
	if err := uc.save(ctx, id, cart); err != nil {
		return nil, err
	}
	return newCartOutput(cart), nil
}

// UpdateLineItem overwrites the patched fields, then fits the line item to
// what is available.
func (uc *CartUseCase) UpdateLineItem(ctx context.Context, id auth.Identity, entryID string, patch domain.LineItemPatch) (*CartOutput, error) {
	return uc.mutate(ctx, id, entryID, func(cart *domain.Cart, li *domain.LineItem, e domain.CatalogEntry) (domain.Outcome, error) {
		if _, err := cart.Update(entryID, patch); err != nil {
			return domain.Outcome{}, err
		}
		out := domain.Fit(li, e)
		out.Changed = true
		return out, nil
	})
}

// IncrementSets adds one set, or one to every size
func (uc *CartUseCase) IncrementSets(ctx context.Context, id auth.Identity, entryID string) (*CartOutput, error) {
	return uc.mutate(ctx, id, entryID, func(_ *domain.Cart, li *domain.LineItem, e domain.CatalogEntry) (domain.Outcome, error) {
		return domain.Increment(li, e), nil
	})
}

// DecrementSets removes one set, or one from every size
func (uc *CartUseCase) DecrementSets(ctx context.Context, id auth.Identity, entryID string) (*CartOutput, error) {
	return uc.mutate(ctx, id, entryID, func(_ *domain.Cart, li *domain.LineItem, e domain.CatalogEntry) (domain.Outcome, error) {
		return domain.Decrement(li, e), nil
	})
}

// SetSets applies a typed-in quantity
func (uc *CartUseCase) SetSets(ctx context.Context, id auth.Identity, entryID, raw string) (*CartOutput, error) {
	return uc.mutate(ctx, id, entryID, func(_ *domain.Cart, li *domain.LineItem, e domain.CatalogEntry) (domain.Outcome, error) {
		return domain.SetSets(li, e, raw), nil
	})
}

// SetSizeCount applies a typed-in quantity to one size
func (uc *CartUseCase) SetSizeCount(ctx context.Context, id auth.Identity, entryID, size, raw string) (*CartOutput, error) {
	return uc.mutate(ctx, id, entryID, func(_ *domain.Cart, li *domain.LineItem, e domain.CatalogEntry) (domain.Outcome, error) {
		return domain.SetSizeCount(li, e, size, raw)
	})
}

// ToggleColor selects or deselects one color
func (uc *CartUseCase) ToggleColor(ctx context.Context, id auth.Identity, entryID, color string) (*CartOutput, error) {
	return uc.mutate(ctx, id, entryID, func(_ *domain.Cart, li *domain.LineItem, e domain.CatalogEntry) (domain.Outcome, error) {
		return domain.ToggleColor(li, e, color)
	})
}

// SelectAllColors selects every color of every line item, or clears them all
func (uc *CartUseCase) SelectAllColors(ctx context.Context, id auth.Identity, enable bool) (*CartOutput, error) {
	cart, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := uc.catalog.Entries(ctx, cart.EntryIDs())
	if err != nil {
		return nil, err
	}

	domain.SelectAllColors(cart.Items, entries, enable)

	if err := uc.save(ctx, id, cart); err != nil {
		return nil, err
	}
	return newCartOutput(cart), nil
}

// ApplyToAll sets every line item to n, clamping each on its own
func (uc *CartUseCase) ApplyToAll(ctx context.Context, id auth.Identity, n int) (*CartOutput, error) {
	if n < 0 {
		return nil, errors.NewValidation("quantity must not be negative", map[string]interface{}{"quantity": n})
	}
	cart, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := uc.catalog.Entries(ctx, cart.EntryIDs())
	if err != nil {
		return nil, err
	}

	outcomes := domain.ApplyToAll(cart.Items, entries, n)

	if err := uc.save(ctx, id, cart); err != nil {
		return nil, err
	}
	out := newCartOutput(cart)
	out.Outcomes = outcomes
	return out, nil
}

// ClearCart empties the caller's cart
func (uc *CartUseCase) ClearCart(ctx context.Context, id auth.Identity) error {
	if err := uc.store.Delete(ctx, id); err != nil {
		return errors.NewInternal("failed to clear cart", err)
	}
	return nil
}

// MergeSessionCart folds the anonymous cart of the caller's session into
// their account cart at sign-in. The anonymous cart is removed afterwards.
func (uc *CartUseCase) MergeSessionCart(ctx context.Context, id auth.Identity) (*CartOutput, error) {
	if !id.Authenticated {
		return nil, errors.NewUnauthorized("sign in to merge carts")
	}
	anonID := auth.Anonymous(id.SessionID)

	anon, err := uc.load(ctx, anonID)
	if err != nil {
		return nil, err
	}
	account, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if anon.IsEmpty() {
		return newCartOutput(account), nil
	}

	merged := domain.MergeCarts(account, anon)
	entries, err := uc.catalog.Entries(ctx, merged.EntryIDs())
	if err != nil {
		return nil, err
	}
	var outcomes []domain.ItemOutcome
	for _, li := range merged.Items {
		if e, ok := entries[li.EntryID]; ok {
			if out := domain.Fit(li, e); out.Changed {
				outcomes = append(outcomes, domain.ItemOutcome{EntryID: li.EntryID, Outcome: out})
			}
		}
	}

	if err := uc.save(ctx, id, merged); err != nil {
		return nil, err
	}
	if err := uc.store.Delete(ctx, anonID); err != nil {
		uc.log.WithContext(ctx).Warn("failed to delete session cart after merge", zap.Error(err))
	}

	uc.log.WithContext(ctx).Info("cart merged",
		zap.String("user_id", id.UserID),
		zap.Int("line_items", merged.TotalLineItems()),
	)

	out := newCartOutput(merged)
	out.Outcomes = outcomes
	return out, nil
}

type mutation func(cart *domain.Cart, li *domain.LineItem, e domain.CatalogEntry) (domain.Outcome, error)

// mutate runs fn on a copy of the entry's line item and stores the cart
// only when fn succeeds and changed something.
func (uc *CartUseCase) mutate(ctx context.Context, id auth.Identity, entryID string, fn mutation) (*CartOutput, error) {
	cart, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart.Get(entryID) == nil {
		return nil, domain.NewLineItemNotFound(entryID)
	}
	entry, err := uc.catalog.Lookup(ctx, entryID)
	if err != nil {
		return nil, err
	}

	work := cart.Clone()
	outcome, err := fn(work, work.Get(entryID), entry)
	if err != nil {
		return nil, err
	}

	if outcome.Changed {
		if err := uc.save(ctx, id, work); err != nil {
			return nil, err
		}
		cart = work
	}

	out := newCartOutput(cart)
	out.Outcome = &outcome
	return out, nil
}

func (uc *CartUseCase) load(ctx context.Context, id auth.Identity) (*domain.Cart, error) {
	cart, err := uc.store.Load(ctx, id)
	if err != nil {
		return nil, errors.NewInternal("failed to load cart", err)
	}
	return cart, nil
}

func (uc *CartUseCase) save(ctx context.Context, id auth.Identity, cart *domain.Cart) error {
	cart.UpdatedAt = uc.now().UTC()
	if err := uc.store.Save(ctx, id, cart); err != nil {
		uc.log.WithContext(ctx).Error("failed to save cart",
			zap.String("namespace", id.Namespace()),
			zap.Error(err),
		)
		return errors.NewInternal("failed to save cart", err)
	}
	return nil
}
