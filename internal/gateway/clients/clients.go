package clients

import (
	"google.golang.org/grpc"

	customersv1 "b2b-orders/api/customers/v1"
	ordersv1 "b2b-orders/api/orders/v1"
	"b2b-orders/pkg/config"
	grpcpkg "b2b-orders/pkg/grpc"
)

// Clients holds all gRPC clients for the gateway
type Clients struct {
	Customers customersv1.CustomerServiceClient
	Orders    ordersv1.OrderServiceClient

	customersConn *grpc.ClientConn
	ordersConn    *grpc.ClientConn
}

// NewClients creates all gRPC clients for the gateway
func NewClients(cfg *config.Config) (*Clients, error) {
	customersConn, err := grpcpkg.Dial(cfg, cfg.CustomersGRPCAddr)
	if err != nil {
		return nil, err
	}

	ordersConn, err := grpcpkg.Dial(cfg, cfg.OrdersGRPCAddr)
	if err != nil {
		customersConn.Close()
		return nil, err
	}

	return &Clients{
		Customers:     customersv1.NewCustomerServiceClient(customersConn),
		Orders:        ordersv1.NewOrderServiceClient(ordersConn),
		customersConn: customersConn,
		ordersConn:    ordersConn,
	}, nil
}

// Close closes all gRPC connections
func (c *Clients) Close() error {
	if c.customersConn != nil {
		c.customersConn.Close()
	}
	if c.ordersConn != nil {
		c.ordersConn.Close()
	}
	return nil
}
