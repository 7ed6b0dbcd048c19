package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"b2b-orders/pkg/config"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/logger"
	"b2b-orders/pkg/tls"
)

const (
	// TraceIDMetadataKey is the metadata key for trace ID
	TraceIDMetadataKey = "x-trace-id"
)

// UnaryServerInterceptor logs calls, propagates the trace ID, applies the
// timeout and converts application errors to gRPC statuses
func UnaryServerInterceptor(log *logger.Logger, timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		traceID := extractTraceID(ctx)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		ctx = logger.WithTraceIDContext(ctx, traceID)

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp, err := handler(ctx, req)

		logFields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
		}

		if err != nil {
			grpcErr := errors.GRPCStatus(err)
			st, _ := status.FromError(grpcErr)
			logFields = append(logFields, zap.String("grpc_code", st.Code().String()), zap.Error(err))
			log.WithContext(ctx).Error("grpc request failed", logFields...)
			return nil, grpcErr
		}

		log.WithContext(ctx).Info("grpc request completed", logFields...)
		return resp, nil
	}
}

// UnaryClientInterceptor propagates the trace ID, applies the timeout and
// converts gRPC statuses back into application errors
func UnaryClientInterceptor(timeout time.Duration) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if traceID := logger.GetTraceID(ctx); traceID != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, TraceIDMetadataKey, traceID)
		}

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := invoker(ctx, method, req, reply, cc, opts...); err != nil {
			return errors.FromGRPCStatus(err)
		}
		return nil
	}
}

// NewServer builds a gRPC server with the standard interceptor and, when
// configured, mTLS
func NewServer(cfg *config.Config, log *logger.Logger) (*grpc.Server, error) {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(UnaryServerInterceptor(log, cfg.GRPCTimeout)),
	}

	creds, err := tls.ServerCredentials(cfg.GRPCMTLSEnabled, tls.Files{
		CertFile: cfg.GRPCServerCert,
		KeyFile:  cfg.GRPCServerKey,
		CAFile:   cfg.TLSCAFile,
	})
	if err != nil {
		return nil, err
	}
	if creds != nil {
		opts = append(opts, grpc.Creds(creds))
		log.Info("gRPC mTLS enabled")
	}

	return grpc.NewServer(opts...), nil
}

// Dial opens a client connection to addr with the standard interceptor
func Dial(cfg *config.Config, addr string) (*grpc.ClientConn, error) {
	creds, err := tls.ClientCredentials(cfg.GRPCMTLSEnabled, tls.Files{
		CertFile: cfg.GRPCClientCert,
		KeyFile:  cfg.GRPCClientKey,
		CAFile:   cfg.TLSCAFile,
	})
	if err != nil {
		return nil, err
	}

	return grpc.Dial(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithUnaryInterceptor(UnaryClientInterceptor(cfg.GRPCTimeout)),
	)
}

func extractTraceID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(TraceIDMetadataKey)
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
