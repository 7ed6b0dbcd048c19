package infrastructure

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	ordersv1 "b2b-orders/api/orders/v1"
	"b2b-orders/internal/orders/application"
	"b2b-orders/pkg/auth"
	"b2b-orders/pkg/errors"
	grpcpkg "b2b-orders/pkg/grpc"
	"b2b-orders/pkg/logger"
)

type OrderServiceSuite struct {
	suite.Suite

	app      *testApp
	server   *grpc.Server
	listener *bufconn.Listener
	conn     *grpc.ClientConn
	client   ordersv1.OrderServiceClient
	leaks    goleak.Option
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupSuite() {
	s.leaks = goleak.IgnoreCurrent()
	s.app = newTestApp()

	s.listener = bufconn.Listen(1 << 20)
	s.server = grpc.NewServer(grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(logger.NewNop(), time.Second)))
	ordersv1.RegisterOrderServiceServer(s.server, NewGRPCServer(s.app.orders))
	go func() { _ = s.server.Serve(s.listener) }()

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return s.listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(grpcpkg.UnaryClientInterceptor(time.Second)),
	)
	s.Require().NoError(err)
	s.conn = conn
	s.client = ordersv1.NewOrderServiceClient(conn)
}

func (s *OrderServiceSuite) TearDownSuite() {
	s.Require().NoError(s.conn.Close())
	s.server.Stop()
	goleak.VerifyNone(s.T(), s.leaks)
}

func (s *OrderServiceSuite) placeOrder(ref string) uint64 {
	ctx := context.Background()
	buyer := auth.Anonymous("grpc-" + ref)
	_, err := s.app.carts.AddToCart(ctx, buyer, application.AddToCartInput{
		EntryID: "T-200", Colors: []string{"White"}, PerSize: map[string]int{"S": 2, "M": 1},
	})
	s.Require().NoError(err)
	order, err := s.app.orders.SubmitCart(ctx, buyer, application.SubmitCartInput{CustomerRef: ref})
	s.Require().NoError(err)
	return uint64(order.ID)
}

func (s *OrderServiceSuite) TestGetOrder() {
	id := s.placeOrder("100")

	resp, err := s.client.GetOrder(context.Background(), wrapperspb.UInt64(id))
	s.Require().NoError(err)
	order, err := ordersv1.Decode[ordersv1.Order](resp)
	s.Require().NoError(err)

	s.Equal(id, order.ID)
	s.Equal("100", order.CustomerRef)
	s.Equal("Unconfirmed", order.Status)
	s.Equal(3, order.TotalQuantity)
	s.Require().Len(order.Items, 1)
	s.Equal("Tee", order.Items[0].ItemName)
	s.Equal(map[string]int{"S": 2, "M": 1}, order.Items[0].Colors[0].Sizes)
}

func (s *OrderServiceSuite) TestGetOrder_NotFound() {
	_, err := s.client.GetOrder(context.Background(), wrapperspb.UInt64(9999))

	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeNotFound))
}

func (s *OrderServiceSuite) TestListOrders() {
	s.placeOrder("200")
	s.placeOrder("200")

	resp, err := s.client.ListOrders(context.Background(), wrapperspb.String("200"))
	s.Require().NoError(err)
	list, err := ordersv1.Decode[ordersv1.OrderList](resp)
	s.Require().NoError(err)

	s.Len(list.Orders, 2)
	s.Greater(list.Orders[0].ID, list.Orders[1].ID)
}

func (s *OrderServiceSuite) TestLifecycle() {
	ctx := context.Background()
	id := s.placeOrder("300")

	req, err := ordersv1.Encode(&ordersv1.StatusRequest{ID: id, Status: "confirmed", Actor: "ops-1"})
	s.Require().NoError(err)
	resp, err := s.client.SetStatus(ctx, req)
	s.Require().NoError(err)
	order, err := ordersv1.Decode[ordersv1.Order](resp)
	s.Require().NoError(err)
	s.Equal("Confirmed", order.Status)

	req, err = ordersv1.Encode(&ordersv1.LifecycleRequest{ID: id, Actor: "ops-1", Reason: "customer asked"})
	s.Require().NoError(err)
	_, err = s.client.CancelOrder(ctx, req)
	s.True(errors.Is(err, errors.CodeValidation))

	req, err = ordersv1.Encode(&ordersv1.LifecycleRequest{ID: id, Actor: "ops-1", Reason: "customer asked", Confirmed: true})
	s.Require().NoError(err)
	resp, err = s.client.CancelOrder(ctx, req)
	s.Require().NoError(err)
	order, err = ordersv1.Decode[ordersv1.Order](resp)
	s.Require().NoError(err)
	s.Equal("Cancelled", order.Status)
	s.Equal("ops-1", order.CancelledBy)

	resp, err = s.client.RestoreOrder(ctx, req)
	s.Require().NoError(err)
	order, err = ordersv1.Decode[ordersv1.Order](resp)
	s.Require().NoError(err)
	s.Equal("Unconfirmed", order.Status)
	s.Require().Len(order.StatusHistory, 3)
	s.Equal("restored", order.StatusHistory[2].Meta["action"])
}
