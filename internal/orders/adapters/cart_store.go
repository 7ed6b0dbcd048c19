package adapters

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/auth"
)

const cartKeyPrefix = "cart:"

func cartKey(id auth.Identity) string {
	return cartKeyPrefix + id.Namespace()
}

// RedisCartStore implements CartStore with one JSON value per identity.
// Every save renews the TTL.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartStore creates a new Redis cart store
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

// Load returns the stored cart, or an empty one
func (s *RedisCartStore) Load(ctx context.Context, id auth.Identity) (*domain.Cart, error) {
	val, err := s.client.Get(ctx, cartKey(id)).Bytes()
	if err == redis.Nil {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, err
	}

	cart := domain.NewCart()
	if err := json.Unmarshal(val, cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []*domain.LineItem{}
	}
	return cart, nil
}

// Save replaces the stored cart
func (s *RedisCartStore) Save(ctx context.Context, id auth.Identity, cart *domain.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(id), payload, s.ttl).Err()
}

// Delete removes the stored cart
func (s *RedisCartStore) Delete(ctx context.Context, id auth.Identity) error {
	return s.client.Del(ctx, cartKey(id)).Err()
}

// MemoryCartStore implements CartStore in process memory. It is used when
// no Redis address is configured and in tests.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]memoryCart
	ttl   time.Duration
	now   func() time.Time
}

type memoryCart struct {
	cart      *domain.Cart
	expiresAt time.Time
}

// NewMemoryCartStore creates a new in-memory cart store. A ttl of zero
// keeps carts until deleted.
func NewMemoryCartStore(ttl time.Duration) *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[string]memoryCart),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Load returns a copy of the stored cart, or an empty one
func (s *MemoryCartStore) Load(ctx context.Context, id auth.Identity) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.carts[cartKey(id)]
	if !ok || s.expired(stored) {
		return domain.NewCart(), nil
	}
	return stored.cart.Clone(), nil
}

// Save stores a copy of cart
func (s *MemoryCartStore) Save(ctx context.Context, id auth.Identity, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := memoryCart{cart: cart.Clone()}
	if s.ttl > 0 {
		stored.expiresAt = s.now().Add(s.ttl)
	}
	s.carts[cartKey(id)] = stored
	return nil
}

// Delete removes the stored cart
func (s *MemoryCartStore) Delete(ctx context.Context, id auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, cartKey(id))
	return nil
}

func (s *MemoryCartStore) expired(c memoryCart) bool {
	return !c.expiresAt.IsZero() && s.now().After(c.expiresAt)
}
