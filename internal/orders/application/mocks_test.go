package application

import (
	"context"
	"sort"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/internal/orders/ports"
	"b2b-orders/pkg/auth"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/logger"
)

func intPtr(v int) *int { return &v }

// MockCatalogReader is a mock implementation of CatalogReader
type MockCatalogReader struct {
	entries   map[string]domain.CatalogEntry
	listCalls int
}

func NewMockCatalogReader(entries ...domain.CatalogEntry) *MockCatalogReader {
	m := &MockCatalogReader{entries: make(map[string]domain.CatalogEntry)}
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return m
}

func (m *MockCatalogReader) ListEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	m.listCalls++
	var out []domain.CatalogEntry
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockCatalogReader) GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, domain.NewEntryNotFound(id)
	}
	return &e, nil
}

// MockCatalogCache is a mock implementation of CatalogCache
type MockCatalogCache struct {
	entries []domain.CatalogEntry
	set     bool
}

func (m *MockCatalogCache) Get(ctx context.Context) ([]domain.CatalogEntry, bool, error) {
	return m.entries, m.set, nil
}

func (m *MockCatalogCache) Set(ctx context.Context, entries []domain.CatalogEntry) error {
	m.entries, m.set = entries, true
	return nil
}

func (m *MockCatalogCache) Invalidate(ctx context.Context) error {
	m.entries, m.set = nil, false
	return nil
}

// MockCartStore is a mock implementation of CartStore
type MockCartStore struct {
	carts   map[string]*domain.Cart
	saveErr error
	saves   int
}

func NewMockCartStore() *MockCartStore {
	return &MockCartStore{carts: make(map[string]*domain.Cart)}
}

func (m *MockCartStore) Load(ctx context.Context, id auth.Identity) (*domain.Cart, error) {
	c, ok := m.carts[id.Namespace()]
	if !ok {
		return domain.NewCart(), nil
	}
	return c.Clone(), nil
}

func (m *MockCartStore) Save(ctx context.Context, id auth.Identity, cart *domain.Cart) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.carts[id.Namespace()] = cart.Clone()
	return nil
}

func (m *MockCartStore) Delete(ctx context.Context, id auth.Identity) error {
	delete(m.carts, id.Namespace())
	return nil
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	orders    map[uint]*domain.Order
	nextID    uint
	updateErr error
	cancels   int
	updates   int
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[uint]*domain.Order),
		nextID: 1,
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	order.ID = m.nextID
	m.nextID++
	m.orders[order.ID] = order.Clone()
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return order.Clone(), nil
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerRef string) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.CustomerRef == customerRef {
			result = append(result, order.Clone())
		}
	}
	return result, nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates++
	m.orders[order.ID] = order.Clone()
	return nil
}

func (m *MockOrderRepository) Cancel(ctx context.Context, order *domain.Order) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.cancels++
	m.orders[order.ID] = order.Clone()
	return nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	events []string
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	m.events = append(m.events, "order.created")
	return nil
}

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	m.events = append(m.events, "order.status_changed")
	return nil
}

func (m *MockEventPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	m.events = append(m.events, "order.cancelled")
	return nil
}

// MockCustomerClient is a mock implementation of CustomerClient
type MockCustomerClient struct {
	customers map[string]*ports.CustomerInfo
	err       error
}

func NewMockCustomerClient() *MockCustomerClient {
	return &MockCustomerClient{
		customers: map[string]*ports.CustomerInfo{
			"1": {ID: 1, CompanyName: "Acme Retail", AgentRef: "agent-7", Active: true},
			"2": {ID: 2, CompanyName: "Closed Ltd", Active: false},
		},
	}
}

func (m *MockCustomerClient) GetCustomer(ctx context.Context, ref string) (*ports.CustomerInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.customers[ref]
	if !ok {
		return nil, errors.NewNotFound("customer", ref)
	}
	return c, nil
}

var (
	polo = domain.CatalogEntry{
		ID: "D-100", Name: "Polo", Colors: []string{"Red", "Blue", "Green"},
		ClosingStock: 6, ProductionQty: 4,
	}
	tee = domain.CatalogEntry{
		ID: "T-200", Name: "Tee", Colors: []string{"White"}, Sizes: []string{"S", "M", "L"},
		Available: intPtr(30),
	}
	soldOut = domain.CatalogEntry{ID: "Z-000", Name: "Cap", Available: intPtr(0)}
)

type fixture struct {
	reader    *MockCatalogReader
	store     *MockCartStore
	repo      *MockOrderRepository
	publisher *MockEventPublisher
	customers *MockCustomerClient
	catalog   *CatalogUseCase
	carts     *CartUseCase
	orders    *OrderUseCase
}

func newFixture() *fixture {
	log := logger.New("test", "debug")
	f := &fixture{
		reader:    NewMockCatalogReader(polo, tee, soldOut),
		store:     NewMockCartStore(),
		repo:      NewMockOrderRepository(),
		publisher: &MockEventPublisher{},
		customers: NewMockCustomerClient(),
	}
	f.catalog = NewCatalogUseCase(f.reader, nil, domain.DefaultStockThresholds, log)
	f.carts = NewCartUseCase(f.store, f.catalog, log)
	f.orders = NewOrderUseCase(f.repo, f.publisher, f.customers, f.carts, f.catalog, "web", log)
	return f
}
