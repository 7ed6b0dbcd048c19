package infrastructure

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	ordersv1 "b2b-orders/api/orders/v1"
	"b2b-orders/internal/orders/application"
	"b2b-orders/internal/orders/domain"
)

// GRPCServer implements the gRPC OrderServiceServer
type GRPCServer struct {
	ordersv1.UnimplementedOrderServiceServer
	useCase *application.OrderUseCase
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(useCase *application.OrderUseCase) *GRPCServer {
	return &GRPCServer{useCase: useCase}
}

// GetOrder implements OrderServiceServer.GetOrder
func (s *GRPCServer) GetOrder(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	order, err := s.useCase.GetOrder(ctx, uint(req.GetValue()))
	if err != nil {
		return nil, err
	}
	return encodeOrder(order)
}

// ListOrders implements OrderServiceServer.ListOrders
func (s *GRPCServer) ListOrders(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	orders, err := s.useCase.ListOrders(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}

	list := ordersv1.OrderList{Orders: make([]ordersv1.Order, 0, len(orders))}
	for _, o := range orders {
		list.Orders = append(list.Orders, toWireOrder(o))
	}
	return ordersv1.Encode(&list)
}

// SetStatus implements OrderServiceServer.SetStatus
func (s *GRPCServer) SetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := ordersv1.Decode[ordersv1.StatusRequest](req)
	if err != nil {
		return nil, err
	}

	order, err := s.useCase.SetStatus(ctx, application.SetStatusInput{
		ID:     uint(in.ID),
		Status: in.Status,
		Actor:  in.Actor,
		Reason: in.Reason,
	})
	if err != nil {
		return nil, err
	}
	return encodeOrder(order)
}

// CancelOrder implements OrderServiceServer.CancelOrder
func (s *GRPCServer) CancelOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := ordersv1.Decode[ordersv1.LifecycleRequest](req)
	if err != nil {
		return nil, err
	}

	order, err := s.useCase.CancelOrder(ctx, lifecycleInput(in))
	if err != nil {
		return nil, err
	}
	return encodeOrder(order)
}

// RestoreOrder implements OrderServiceServer.RestoreOrder
func (s *GRPCServer) RestoreOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := ordersv1.Decode[ordersv1.LifecycleRequest](req)
	if err != nil {
		return nil, err
	}

	order, err := s.useCase.RestoreOrder(ctx, lifecycleInput(in))
	if err != nil {
		return nil, err
	}
	return encodeOrder(order)
}

func lifecycleInput(in *ordersv1.LifecycleRequest) application.LifecycleInput {
	return application.LifecycleInput{
		ID:        uint(in.ID),
		Actor:     in.Actor,
		Reason:    in.Reason,
		Confirmed: in.Confirmed,
	}
}

func encodeOrder(order *domain.Order) (*structpb.Struct, error) {
	out := toWireOrder(order)
	return ordersv1.Encode(&out)
}

// toWireOrder converts an order to the shape shared by the HTTP and gRPC APIs
func toWireOrder(o *domain.Order) ordersv1.Order {
	out := ordersv1.Order{
		ID:            uint64(o.ID),
		CorrelationID: o.CorrelationID,
		CustomerRef:   o.CustomerRef,
		AgentRef:      o.AgentRef,
		Items:         make([]ordersv1.ItemGroup, 0, len(o.Items)),
		TotalQuantity: o.TotalQuantity,
		Source:        o.Source,
		Status:        string(o.Status),
		CancelledBy:   o.CancelledBy,
		CancelledAt:   o.CancelledAt,
		StatusHistory: make([]ordersv1.StatusChange, 0, len(o.StatusHistory)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}

	for _, g := range o.Items {
		group := ordersv1.ItemGroup{ItemName: g.ItemName, Colors: make([]ordersv1.ColorSets, 0, len(g.Colors))}
		for _, c := range g.Colors {
			group.Colors = append(group.Colors, ordersv1.ColorSets{Color: c.Color, Sets: c.Sets, Sizes: c.Sizes})
		}
		out.Items = append(out.Items, group)
	}
	for _, h := range o.StatusHistory {
		out.StatusHistory = append(out.StatusHistory, ordersv1.StatusChange{
			Status:    string(h.Status),
			ChangedBy: h.ChangedBy,
			ChangedAt: h.ChangedAt,
			Reason:    h.Reason,
			Meta:      h.Meta,
		})
	}
	return out
}
