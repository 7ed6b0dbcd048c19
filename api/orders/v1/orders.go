// Package ordersv1 defines the OrderService gRPC API used by the
// back-office. Messages are protobuf well-known types; structured
// payloads travel as a Struct.
package ordersv1

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
	OrderService_GetOrder_FullMethodName     = "/orders.v1.OrderService/GetOrder"
	OrderService_ListOrders_FullMethodName   = "/orders.v1.OrderService/ListOrders"
	OrderService_SetStatus_FullMethodName    = "/orders.v1.OrderService/SetStatus"
	OrderService_CancelOrder_FullMethodName  = "/orders.v1.OrderService/CancelOrder"
	OrderService_RestoreOrder_FullMethodName = "/orders.v1.OrderService/RestoreOrder"
)

// ColorSets is the ordered quantity of one color
type ColorSets struct {
	Color string         `json:"color"`
	Sets  int            `json:"sets"`
	Sizes map[string]int `json:"sizes,omitempty"`
}

// ItemGroup is one ordered item
type ItemGroup struct {
	ItemName string      `json:"item_name"`
	Colors   []ColorSets `json:"colors"`
}

// StatusChange is one audit trail entry
type StatusChange struct {
	Status    string            `json:"status"`
	ChangedBy string            `json:"changed_by"`
	ChangedAt time.Time         `json:"changed_at"`
	Reason    string            `json:"reason,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// Order is the wire shape of an order
type Order struct {
	ID            uint64         `json:"id"`
	CorrelationID string         `json:"correlation_id"`
	CustomerRef   string         `json:"customer_ref"`
	AgentRef      string         `json:"agent_ref,omitempty"`
	Items         []ItemGroup    `json:"items"`
	TotalQuantity int            `json:"total_quantity"`
	Source        string         `json:"source"`
	Status        string         `json:"status"`
	CancelledBy   string         `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time     `json:"cancelled_at,omitempty"`
	StatusHistory []StatusChange `json:"status_history"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// OrderList is the response of ListOrders
type OrderList struct {
	Orders []Order `json:"orders"`
}

// StatusRequest asks for an explicit status change
type StatusRequest struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}

// LifecycleRequest asks for a cancel or a restore
type LifecycleRequest struct {
	ID        uint64 `json:"id"`
	Actor     string `json:"actor"`
	Reason    string `json:"reason,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

// Encode converts a wire value to its message form
func Encode[T any](v *T) (*structpb.Struct, error) {
	return wire.ToStruct(v)
}

// Decode reads a message into a wire value
func Decode[T any](s *structpb.Struct) (*T, error) {
	v := new(T)
	if err := wire.FromStruct(s, v); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return v, nil
}

// OrderServiceClient is the client API for OrderService
type OrderServiceClient interface {
	GetOrder(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListOrders(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CancelOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RestoreOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderServiceClient creates an OrderService client over cc
func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc}
}

func (c *orderServiceClient) invoke(ctx context.Context, method string, in interface{}, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) GetOrder(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, OrderService_GetOrder_FullMethodName, in, opts)
}

func (c *orderServiceClient) ListOrders(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, OrderService_ListOrders_FullMethodName, in, opts)
}

func (c *orderServiceClient) SetStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, OrderService_SetStatus_FullMethodName, in, opts)
}

func (c *orderServiceClient) CancelOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, OrderService_CancelOrder_FullMethodName, in, opts)
}

func (c *orderServiceClient) RestoreOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, OrderService_RestoreOrder_FullMethodName, in, opts)
}

// OrderServiceServer is the server API for OrderService
type OrderServiceServer interface {
	GetOrder(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	ListOrders(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RestoreOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedOrderServiceServer can be embedded to have forward
// compatible implementations
type UnimplementedOrderServiceServer struct{}

func (UnimplementedOrderServiceServer) GetOrder(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetOrder not implemented")
}

func (UnimplementedOrderServiceServer) ListOrders(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListOrders not implemented")
}

func (UnimplementedOrderServiceServer) SetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetStatus not implemented")
}

func (UnimplementedOrderServiceServer) CancelOrder(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CancelOrder not implemented")
}

func (UnimplementedOrderServiceServer) RestoreOrder(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RestoreOrder not implemented")
}

// RegisterOrderServiceServer registers srv on s
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderService_ServiceDesc, srv)
}

// unaryHandler builds the method handler for one OrderService method
func unaryHandler[Req any](method string, call func(OrderServiceServer, context.Context, *Req) (*structpb.Struct, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrderServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(OrderServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// OrderService_ServiceDesc is the grpc.ServiceDesc for OrderService
var OrderService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "orders.v1.OrderService",
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetOrder",
			Handler:    unaryHandler(OrderService_GetOrder_FullMethodName, OrderServiceServer.GetOrder),
		},
		{
			MethodName: "ListOrders",
			Handler:    unaryHandler(OrderService_ListOrders_FullMethodName, OrderServiceServer.ListOrders),
		},
		{
			MethodName: "SetStatus",
			Handler:    unaryHandler(OrderService_SetStatus_FullMethodName, OrderServiceServer.SetStatus),
		},
		{
			MethodName: "CancelOrder",
			Handler:    unaryHandler(OrderService_CancelOrder_FullMethodName, OrderServiceServer.CancelOrder),
		},
		{
			MethodName: "RestoreOrder",
			Handler:    unaryHandler(OrderService_RestoreOrder_FullMethodName, OrderServiceServer.RestoreOrder),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orders/v1/orders.proto",
}
