package application

import (
	"context"
	"testing"
	"time"

	"b2b-orders/internal/customers/domain"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/logger"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	customers map[uint]*domain.Customer
	byEmail   map[string]*domain.Customer
	applied   map[string]bool
	nextID    uint
	createFn  func(ctx context.Context, customer *domain.Customer) error
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[uint]*domain.Customer),
		byEmail:   make(map[string]*domain.Customer),
		applied:   make(map[string]bool),
		nextID:    1,
	}
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if m.createFn != nil {
		return m.createFn(ctx, customer)
	}
	customer.ID = m.nextID
	m.nextID++
	m.customers[customer.ID] = customer
	m.byEmail[customer.ContactEmail] = customer
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, domain.NewCustomerNotFound(id)
	}
	return customer, nil
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	customer, ok := m.byEmail[email]
	if !ok {
		return nil, errors.NewNotFound("customer", email)
	}
	return customer, nil
}

func (m *MockCustomerRepository) SetActive(ctx context.Context, id uint, active bool) (*domain.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, domain.NewCustomerNotFound(id)
	}
	customer.Active = active
	return customer, nil
}

func (m *MockCustomerRepository) ApplyActivity(ctx context.Context, activity domain.OrderActivity) (bool, error) {
	customer, ok := m.customers[activity.CustomerID]
	if !ok {
		return false, domain.NewCustomerNotFound(activity.CustomerID)
	}
	if m.applied[activity.Key] {
		return false, nil
	}
	m.applied[activity.Key] = true
	customer.Apply(activity)
	return true, nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	events []interface{}
}

func (m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error {
	m.events = append(m.events, customer)
	return nil
}

func newUseCase() (*CustomerUseCase, *MockCustomerRepository, *MockEventPublisher) {
	repo := NewMockCustomerRepository()
	publisher := &MockEventPublisher{}
	return NewCustomerUseCase(repo, publisher, logger.New("test", "debug")), repo, publisher
}

func TestCreateCustomer_Success(t *testing.T) {
	// Arrange
	useCase, _, publisher := newUseCase()

	input := CreateCustomerInput{
		CompanyName:  "Acme Retail",
		ContactEmail: "buyer@acme.com",
		AgentRef:     "agent-7",
	}

	// Act
	customer, err := useCase.CreateCustomer(context.Background(), input)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if customer.ID != 1 {
		t.Errorf("expected ID 1, got %d", customer.ID)
	}

	if !customer.Active {
		t.Error("expected a new customer to be active")
	}

	if len(publisher.events) != 1 {
		t.Errorf("expected 1 event published, got %d", len(publisher.events))
	}
}

func TestCreateCustomer_InvalidEmail(t *testing.T) {
	// Arrange
	useCase, _, _ := newUseCase()

	// Act
	_, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName:  "Acme Retail",
		ContactEmail: "invalid-email",
	})

	// Assert
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	// Arrange
	useCase, _, _ := newUseCase()
	_, _ = useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName:  "Acme Retail",
		ContactEmail: "buyer@acme.com",
	})

	// Act: same address, different case
	_, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName:  "Acme Wholesale",
		ContactEmail: "Buyer@Acme.com",
	})

	// Assert
	if !errors.Is(err, errors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestGetCustomer_NotFound(t *testing.T) {
	// Arrange
	useCase, _, _ := newUseCase()

	// Act
	_, err := useCase.GetCustomer(context.Background(), 999)

	// Assert
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	// Arrange
	useCase, _, _ := newUseCase()
	created, _ := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		CompanyName:  "Acme Retail",
		ContactEmail: "buyer@acme.com",
	})

	// Act
	customer, err := useCase.SetActive(context.Background(), created.ID, false)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if customer.Active {
		t.Error("expected customer to be inactive")
	}
}

func TestRecordOrderActivity(t *testing.T) {
	// Arrange
	useCase, repo, _ := newUseCase()
	ctx := context.Background()
	created, _ := useCase.CreateCustomer(ctx, CreateCustomerInput{
		CompanyName:  "Acme Retail",
		ContactEmail: "buyer@acme.com",
	})
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	placed := domain.NewOrderActivity(domain.ActivityPlaced, created.ID, 10, at)

	// Act: the second delivery of the same event is ignored
	if err := useCase.RecordOrderActivity(ctx, placed); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := useCase.RecordOrderActivity(ctx, placed); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Assert
	customer := repo.customers[created.ID]
	if customer.OrderCount != 1 {
		t.Errorf("expected order count 1, got %d", customer.OrderCount)
	}
	if customer.LastOrderAt == nil || !customer.LastOrderAt.Equal(at) {
		t.Errorf("expected last order at %v, got %v", at, customer.LastOrderAt)
	}

	cancelled := domain.NewOrderActivity(domain.ActivityCancelled, created.ID, 10, at.Add(time.Hour))
	if err := useCase.RecordOrderActivity(ctx, cancelled); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if customer.OrderCount != 0 {
		t.Errorf("expected order count 0, got %d", customer.OrderCount)
	}
}

func TestRecordOrderActivity_UnknownCustomer(t *testing.T) {
	// Arrange
	useCase, _, _ := newUseCase()

	// Act
	err := useCase.RecordOrderActivity(context.Background(),
		domain.NewOrderActivity(domain.ActivityPlaced, 42, 1, time.Now()))

	// Assert
	if err != nil {
		t.Errorf("expected unknown customer to be dropped, got %v", err)
	}
}
