package adapters

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"b2b-orders/internal/orders/domain"
)

const catalogCacheKey = "catalog:entries"

// RedisCatalogCache implements CatalogCache with a single JSON value
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCatalogCache creates a new Redis catalog cache
func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{client: client, ttl: ttl}
}

// Get returns the cached catalog
func (c *RedisCatalogCache) Get(ctx context.Context) ([]domain.CatalogEntry, bool, error) {
	val, err := c.client.Get(ctx, catalogCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []domain.CatalogEntry
	if err := json.Unmarshal(val, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Set replaces the cached catalog
func (c *RedisCatalogCache) Set(ctx context.Context, entries []domain.CatalogEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogCacheKey, payload, c.ttl).Err()
}

// Invalidate drops the cached catalog
func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogCacheKey).Err()
}

// NoopCatalogCache never holds anything
type NoopCatalogCache struct{}

func (NoopCatalogCache) Get(context.Context) ([]domain.CatalogEntry, bool, error) {
	return nil, false, nil
}

func (NoopCatalogCache) Set(context.Context, []domain.CatalogEntry) error { return nil }

func (NoopCatalogCache) Invalidate(context.Context) error { return nil }
