// Package customersv1 defines the CustomerService gRPC API. Messages are
// protobuf well-known types; the Customer shape travels as a Struct.
package customersv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"b2b-orders/api/wire"
)

const (
	CustomerService_GetCustomer_FullMethodName    = "/customers.v1.CustomerService/GetCustomer"
	CustomerService_CreateCustomer_FullMethodName = "/customers.v1.CustomerService/CreateCustomer"
)

// Customer is the wire shape of a customer
type Customer struct {
	ID           uint64     `json:"id"`
	CompanyName  string     `json:"company_name"`
	ContactEmail string     `json:"contact_email"`
	AgentRef     string     `json:"agent_ref,omitempty"`
	Active       bool       `json:"active"`
	OrderCount   int64      `json:"order_count"`
	LastOrderAt  *time.Time `json:"last_order_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CreateCustomerRequest is the wire shape of a new customer
type CreateCustomerRequest struct {
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
	AgentRef     string `json:"agent_ref,omitempty"`
}

// CustomerServiceClient is the client API for CustomerService
type CustomerServiceClient interface {
	GetCustomer(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateCustomer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type customerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCustomerServiceClient creates a CustomerService client over cc
func NewCustomerServiceClient(cc grpc.ClientConnInterface) CustomerServiceClient {
	return &customerServiceClient{cc}
}

func (c *customerServiceClient) GetCustomer(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CustomerService_GetCustomer_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *customerServiceClient) CreateCustomer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CustomerService_CreateCustomer_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CustomerServiceServer is the server API for CustomerService
type CustomerServiceServer interface {
	GetCustomer(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	CreateCustomer(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedCustomerServiceServer can be embedded to have forward
// compatible implementations
type UnimplementedCustomerServiceServer struct{}

func (UnimplementedCustomerServiceServer) GetCustomer(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCustomer not implemented")
}

func (UnimplementedCustomerServiceServer) CreateCustomer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateCustomer not implemented")
}

// RegisterCustomerServiceServer registers srv on s
func RegisterCustomerServiceServer(s grpc.ServiceRegistrar, srv CustomerServiceServer) {
	s.RegisterService(&CustomerService_ServiceDesc, srv)
}

func _CustomerService_GetCustomer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CustomerServiceServer).GetCustomer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CustomerService_GetCustomer_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CustomerServiceServer).GetCustomer(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func _CustomerService_CreateCustomer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CustomerServiceServer).CreateCustomer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CustomerService_CreateCustomer_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CustomerServiceServer).CreateCustomer(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// CustomerService_ServiceDesc is the grpc.ServiceDesc for CustomerService
var CustomerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "customers.v1.CustomerService",
	HandlerType: (*CustomerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCustomer", Handler: _CustomerService_GetCustomer_Handler},
		{MethodName: "CreateCustomer", Handler: _CustomerService_CreateCustomer_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "customers/v1/customers.proto",
}

// EncodeCustomer converts c to its message form
func EncodeCustomer(c *Customer) (*structpb.Struct, error) {
	return wire.ToStruct(c)
}

// DecodeCustomer reads a customer message
func DecodeCustomer(s *structpb.Struct) (*Customer, error) {
	var c Customer
	if err := wire.FromStruct(s, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// EncodeCreateCustomerRequest converts r to its message form
func EncodeCreateCustomerRequest(r *CreateCustomerRequest) (*structpb.Struct, error) {
	return wire.ToStruct(r)
}

// DecodeCreateCustomerRequest reads a create request, rejecting malformed
// messages as invalid arguments
func DecodeCreateCustomerRequest(s *structpb.Struct) (*CreateCustomerRequest, error) {
	var r CreateCustomerRequest
	if err := wire.FromStruct(s, &r); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &r, nil
}
