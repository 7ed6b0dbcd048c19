package infrastructure

import (
	"context"
	"sort"
	"sync"

	"b2b-orders/internal/orders/adapters"
	"b2b-orders/internal/orders/application"
	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/logger"
)

// StubCatalog is an in-memory CatalogReader
type StubCatalog struct {
	entries map[string]domain.CatalogEntry
}

func (s *StubCatalog) ListEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	out := make([]domain.CatalogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *StubCatalog) GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, domain.NewEntryNotFound(id)
	}
	return &e, nil
}

// MemoryOrders is an in-memory OrderRepository
type MemoryOrders struct {
	mu     sync.Mutex
	orders map[uint]*domain.Order
	nextID uint
}

func (m *MemoryOrders) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	order.ID = m.nextID
	m.orders[order.ID] = order.Clone()
	return nil
}

func (m *MemoryOrders) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return o.Clone(), nil
}

func (m *MemoryOrders) ListByCustomer(ctx context.Context, customerRef string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.CustomerRef == customerRef {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryOrders) UpdateStatus(ctx context.Context, order *domain.Order) error {
	return m.store(order)
}

func (m *MemoryOrders) Cancel(ctx context.Context, order *domain.Order) error {
	return m.store(order)
}

func (m *MemoryOrders) store(order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; !ok {
		return domain.NewOrderNotFound(order.ID)
	}
	m.orders[order.ID] = order.Clone()
	return nil
}

func intPtr(n int) *int { return &n }

type testApp struct {
	catalog *application.CatalogUseCase
	carts   *application.CartUseCase
	orders  *application.OrderUseCase
	repo    *MemoryOrders
}

func newTestApp() *testApp {
	log := logger.New("test", "debug")
	reader := &StubCatalog{entries: map[string]domain.CatalogEntry{
		"D-100": {ID: "D-100", Name: "Polo", Colors: []string{"Red", "Blue"}, ClosingStock: 6, ProductionQty: 4},
		"T-200": {ID: "T-200", Name: "Tee", Colors: []string{"White"}, Sizes: []string{"S", "M"}, Available: intPtr(30)},
		"Z-000": {ID: "Z-000", Name: "Gone", Colors: []string{"Black"}},
	}}
	repo := &MemoryOrders{orders: make(map[uint]*domain.Order)}

	catalog := application.NewCatalogUseCase(reader, adapters.NoopCatalogCache{}, domain.DefaultStockThresholds, log)
	carts := application.NewCartUseCase(adapters.NewMemoryCartStore(0), catalog, log)
	orders := application.NewOrderUseCase(repo, nil, nil, carts, catalog, "web", log)
	return &testApp{catalog: catalog, carts: carts, orders: orders, repo: repo}
}
