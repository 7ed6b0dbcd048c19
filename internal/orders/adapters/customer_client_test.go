package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	customersv1 "b2b-orders/api/customers/v1"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/events"
	"b2b-orders/pkg/logger"
)

// MockCustomerService is a mock implementation of CustomerServiceClient
type MockCustomerService struct {
	customers map[uint64]*customersv1.Customer
	calls     int
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	m.calls++
	c, ok := m.customers[in.GetValue()]
	if !ok {
		return nil, errors.NewNotFound("customer", in.GetValue())
	}
	return customersv1.EncodeCustomer(c)
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return nil, errors.NewInternal("not used", nil)
}

func TestGRPCCustomerClient_GetCustomer(t *testing.T) {
	// Arrange
	svc := &MockCustomerService{customers: map[uint64]*customersv1.Customer{
		7: {ID: 7, CompanyName: "Acme Retail", AgentRef: "agent-1", Active: true},
		8: {ID: 8, CompanyName: "Dormant", Active: false},
	}}
	client := newCustomerClient(svc)
	ctx := context.Background()

	// Act
	info, err := client.GetCustomer(ctx, " 7 ")
	require.NoError(t, err)
	_, err = client.GetCustomer(ctx, "7")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "Acme Retail", info.CompanyName)
	assert.True(t, info.Active)
	assert.Equal(t, 1, svc.calls)

	inactive, err := client.GetCustomer(ctx, "8")
	require.NoError(t, err)
	assert.False(t, inactive.Active)

	_, err = client.GetCustomer(ctx, "ACME")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = client.GetCustomer(ctx, "99")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestGRPCCustomerClient_CacheExpires(t *testing.T) {
	svc := &MockCustomerService{customers: map[uint64]*customersv1.Customer{
		7: {ID: 7, Active: true},
	}}
	client := newCustomerClient(svc)
	now := time.Now()
	client.now = func() time.Time { return now }

	_, err := client.GetCustomer(context.Background(), "7")
	require.NoError(t, err)
	now = now.Add(customerCacheTTL + time.Second)
	_, err = client.GetCustomer(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, 2, svc.calls)
}

func TestCustomerCreatedConsumer_Remembers(t *testing.T) {
	svc := &MockCustomerService{customers: map[uint64]*customersv1.Customer{}}
	client := newCustomerClient(svc)
	consumer := &CustomerCreatedConsumer{customers: client, log: logger.New("test", "debug")}
	body := []byte(`{"version":"1.0","event_type":"customer.created","payload":{"id":12,"company_name":"New Co"}}`)

	err := consumer.handleMessage(context.Background(), events.RoutingKeyCustomerCreated, body)
	require.NoError(t, err)

	info, err := client.GetCustomer(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, "New Co", info.CompanyName)
	assert.Equal(t, 0, svc.calls)

	assert.Error(t, consumer.handleMessage(context.Background(), events.RoutingKeyCustomerCreated, []byte("{")))
}
