package infrastructure

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	customersv1 "b2b-orders/api/customers/v1"
	"b2b-orders/internal/customers/application"
	"b2b-orders/internal/customers/domain"
)

// GRPCServer implements the gRPC CustomerServiceServer
type GRPCServer struct {
	customersv1.UnimplementedCustomerServiceServer
	useCase *application.CustomerUseCase
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(useCase *application.CustomerUseCase) *GRPCServer {
	return &GRPCServer{useCase: useCase}
}

// GetCustomer implements CustomerServiceServer.GetCustomer
func (s *GRPCServer) GetCustomer(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	customer, err := s.useCase.GetCustomer(ctx, uint(req.GetValue()))
	if err != nil {
		return nil, err
	}
	return customersv1.EncodeCustomer(toWire(customer))
}

// CreateCustomer implements CustomerServiceServer.CreateCustomer
func (s *GRPCServer) CreateCustomer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := customersv1.DecodeCreateCustomerRequest(req)
	if err != nil {
		return nil, err
	}

	customer, err := s.useCase.CreateCustomer(ctx, application.CreateCustomerInput{
		CompanyName:  in.CompanyName,
		ContactEmail: in.ContactEmail,
		AgentRef:     in.AgentRef,
	})
	if err != nil {
		return nil, err
	}
	return customersv1.EncodeCustomer(toWire(customer))
}

// toWire converts a customer to the shape shared by the HTTP and gRPC APIs
func toWire(c *domain.Customer) *customersv1.Customer {
	return &customersv1.Customer{
		ID:           uint64(c.ID),
		CompanyName:  c.CompanyName,
		ContactEmail: c.ContactEmail,
		AgentRef:     c.AgentRef,
		Active:       c.Active,
		OrderCount:   c.OrderCount,
		LastOrderAt:  c.LastOrderAt,
		CreatedAt:    c.CreatedAt,
	}
}
