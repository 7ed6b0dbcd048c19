package adapters

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	customersv1 "b2b-orders/api/customers/v1"
	"b2b-orders/internal/orders/ports"
	"b2b-orders/pkg/config"
	"b2b-orders/pkg/errors"
	grpcpkg "b2b-orders/pkg/grpc"
)

// GRPCCustomerClient implements CustomerClient using gRPC. Active
// customers are remembered for a short while so a burst of orders from one
// customer costs one call.
type GRPCCustomerClient struct {
	client customersv1.CustomerServiceClient
	conn   *grpc.ClientConn

	mu    sync.RWMutex
	known map[uint]knownCustomer
	ttl   time.Duration
	now   func() time.Time
}

type knownCustomer struct {
	info    ports.CustomerInfo
	expires time.Time
}

const customerCacheTTL = 5 * time.Minute

// NewGRPCCustomerClient creates a new gRPC client for the customers service
func NewGRPCCustomerClient(cfg *config.Config) (*GRPCCustomerClient, error) {
	conn, err := grpcpkg.Dial(cfg, cfg.CustomersGRPCAddr)
	if err != nil {
		return nil, err
	}
	c := newCustomerClient(customersv1.NewCustomerServiceClient(conn))
	c.conn = conn
	return c, nil
}

func newCustomerClient(client customersv1.CustomerServiceClient) *GRPCCustomerClient {
	return &GRPCCustomerClient{
		client: client,
		known:  make(map[uint]knownCustomer),
		ttl:    customerCacheTTL,
		now:    time.Now,
	}
}

// GetCustomer retrieves a customer via gRPC. ref is the customer's numeric id.
func (c *GRPCCustomerClient) GetCustomer(ctx context.Context, ref string) (*ports.CustomerInfo, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(ref), 10, 64)
	if err != nil || id == 0 {
		return nil, errors.NewValidation("invalid customer reference", map[string]interface{}{
			"customer_ref": ref,
		})
	}

	if info, ok := c.cached(uint(id)); ok {
		return &info, nil
	}

	resp, err := c.client.GetCustomer(ctx, wrapperspb.UInt64(id))
	if err != nil {
		return nil, err
	}
	customer, err := customersv1.DecodeCustomer(resp)
	if err != nil {
		return nil, errors.NewInternal("failed to decode customer", err)
	}

	info := ports.CustomerInfo{
		ID:          uint(customer.ID),
		CompanyName: customer.CompanyName,
		AgentRef:    customer.AgentRef,
		Active:      customer.Active,
	}
	if info.Active {
		c.Remember(info)
	}
	return &info, nil
}

// Remember caches an active customer
func (c *GRPCCustomerClient) Remember(info ports.CustomerInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[info.ID] = knownCustomer{info: info, expires: c.now().Add(c.ttl)}
}

func (c *GRPCCustomerClient) cached(id uint) (ports.CustomerInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.known[id]
	if !ok || c.now().After(k.expires) {
		return ports.CustomerInfo{}, false
	}
	return k.info, true
}

// Close closes the gRPC connection
func (c *GRPCCustomerClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
