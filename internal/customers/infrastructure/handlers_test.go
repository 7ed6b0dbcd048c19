package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	customersv1 "b2b-orders/api/customers/v1"
	"b2b-orders/internal/customers/application"
	"b2b-orders/internal/customers/domain"
	"b2b-orders/pkg/errors"
	grpcpkg "b2b-orders/pkg/grpc"
	"b2b-orders/pkg/logger"
	"b2b-orders/pkg/middleware"
)

// MemoryCustomers is an in-memory CustomerRepository
type MemoryCustomers struct {
	mu        sync.Mutex
	customers map[uint]*domain.Customer
	nextID    uint
}

func (m *MemoryCustomers) Create(ctx context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	copied := *c
	m.customers[c.ID] = &copied
	return nil
}

func (m *MemoryCustomers) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, domain.NewCustomerNotFound(id)
	}
	copied := *c
	return &copied, nil
}

func (m *MemoryCustomers) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ContactEmail == email {
			copied := *c
			return &copied, nil
		}
	}
	return nil, errors.NewNotFound("customer", email)
}

func (m *MemoryCustomers) SetActive(ctx context.Context, id uint, active bool) (*domain.Customer, error) {
	m.mu.Lock()
	c, ok := m.customers[id]
	if ok {
		c.Active = active
	}
	m.mu.Unlock()
	if !ok {
		return nil, domain.NewCustomerNotFound(id)
	}
	return m.GetByID(ctx, id)
}

func (m *MemoryCustomers) ApplyActivity(ctx context.Context, a domain.OrderActivity) (bool, error) {
	return false, nil
}

func newUseCase() *application.CustomerUseCase {
	repo := &MemoryCustomers{customers: make(map[uint]*domain.Customer)}
	return application.NewCustomerUseCase(repo, nil, logger.New("test", "debug"))
}

func newRouter(useCase *application.CustomerUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.ErrorHandler(logger.New("test", "debug")))
	NewHTTPHandler(useCase).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func request(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHTTP_CreateAndGetCustomer(t *testing.T) {
	router := newRouter(newUseCase())

	w := request(t, router, http.MethodPost, "/api/v1/customers", CreateCustomerRequest{
		CompanyName: "Acme Retail", ContactEmail: "buyer@acme.com", AgentRef: "agent-7",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(t, router, http.MethodPut, "/api/v1/customers/1/active", map[string]bool{"active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = request(t, router, http.MethodGet, "/api/v1/customers/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data customersv1.Customer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Acme Retail", resp.Data.CompanyName)
	assert.Equal(t, "agent-7", resp.Data.AgentRef)
	assert.False(t, resp.Data.Active)
}

func TestHTTP_CreateCustomer_Invalid(t *testing.T) {
	router := newRouter(newUseCase())

	w := request(t, router, http.MethodPost, "/api/v1/customers", map[string]string{"company_name": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, router, http.MethodPut, "/api/v1/customers/1/active", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, router, http.MethodGet, "/api/v1/customers/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGRPC_CustomerService(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(logger.NewNop(), time.Second)))
	customersv1.RegisterCustomerServiceServer(server, NewGRPCServer(newUseCase()))
	go func() { _ = server.Serve(listener) }()
	defer server.Stop()

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(grpcpkg.UnaryClientInterceptor(time.Second)),
	)
	require.NoError(t, err)
	defer conn.Close()
	client := customersv1.NewCustomerServiceClient(conn)
	ctx := context.Background()

	req, err := customersv1.EncodeCreateCustomerRequest(&customersv1.CreateCustomerRequest{
		CompanyName: "Acme Retail", ContactEmail: "buyer@acme.com",
	})
	require.NoError(t, err)
	resp, err := client.CreateCustomer(ctx, req)
	require.NoError(t, err)
	created, err := customersv1.DecodeCustomer(resp)
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = client.CreateCustomer(ctx, req)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	resp, err = client.GetCustomer(ctx, wrapperspb.UInt64(created.ID))
	require.NoError(t, err)
	got, err := customersv1.DecodeCustomer(resp)
	require.NoError(t, err)
	assert.Equal(t, "buyer@acme.com", got.ContactEmail)

	_, err = client.GetCustomer(ctx, wrapperspb.UInt64(404))
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
