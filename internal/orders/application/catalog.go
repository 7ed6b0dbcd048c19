package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/internal/orders/ports"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/logger"
)

// CatalogUseCase serves catalog reads, through the cache when one is set
type CatalogUseCase struct {
	reader     ports.CatalogReader
	cache      ports.CatalogCache
	thresholds domain.StockThresholds
	log        *logger.Logger
}

// NewCatalogUseCase creates a new catalog use case. cache may be nil.
func NewCatalogUseCase(
	reader ports.CatalogReader,
	cache ports.CatalogCache,
	thresholds domain.StockThresholds,
	log *logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		reader:     reader,
		cache:      cache,
		thresholds: thresholds,
		log:        log,
	}
}

// CatalogItem is a catalog entry with its computed availability
type CatalogItem struct {
	Entry      domain.CatalogEntry
	Available  int
	StockLevel domain.StockLevel
}

// List returns the entries whose name or id contains query, ignoring case.
// An empty query lists everything.
func (uc *CatalogUseCase) List(ctx context.Context, query string) ([]CatalogItem, error) {
	entries, err := uc.entries(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	items := make([]CatalogItem, 0, len(entries))
	for _, e := range entries {
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Name), q) &&
			!strings.Contains(strings.ToLower(e.ID), q) {
			continue
		}
		items = append(items, uc.item(e))
	}
	return items, nil
}

// Get returns one entry with its availability
func (uc *CatalogUseCase) Get(ctx context.Context, id string) (*CatalogItem, error) {
	e, err := uc.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	item := uc.item(e)
	return &item, nil
}

// Lookup returns the entry for id. Stock is read from the catalog store,
// never from the cache.
func (uc *CatalogUseCase) Lookup(ctx context.Context, id string) (domain.CatalogEntry, error) {
	e, err := uc.reader.GetEntry(ctx, id)
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	return *e, nil
}

// Entries returns the entries for ids. Ids no longer in the catalog are
// absent from the result.
func (uc *CatalogUseCase) Entries(ctx context.Context, ids []string) (map[string]domain.CatalogEntry, error) {
	out := make(map[string]domain.CatalogEntry, len(ids))
	for _, id := range ids {
		e, err := uc.reader.GetEntry(ctx, id)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		out[id] = *e
	}
	return out, nil
}

// Refresh drops the cached catalog so the next read sees freshly imported rows
func (uc *CatalogUseCase) Refresh(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		return errors.NewInternal("failed to invalidate catalog cache", err)
	}
	return nil
}

func (uc *CatalogUseCase) item(e domain.CatalogEntry) CatalogItem {
	avail := domain.ComputeAvailable(e)
	return CatalogItem{
		Entry:      e,
		Available:  avail,
		StockLevel: uc.thresholds.Classify(float64(avail)),
	}
}

func (uc *CatalogUseCase) entries(ctx context.Context) ([]domain.CatalogEntry, error) {
	if uc.cache != nil {
		entries, ok, err := uc.cache.Get(ctx)
		if err != nil {
			uc.log.WithContext(ctx).Warn("catalog cache read failed", zap.Error(err))
		} else if ok {
			return entries, nil
		}
	}

	entries, err := uc.reader.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, entries); err != nil {
			uc.log.WithContext(ctx).Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}
