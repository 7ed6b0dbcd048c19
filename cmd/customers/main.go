package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	customersv1 "b2b-orders/api/customers/v1"
	"b2b-orders/internal/customers/adapters"
	"b2b-orders/internal/customers/application"
	"b2b-orders/internal/customers/infrastructure"
	"b2b-orders/internal/customers/ports"
	"b2b-orders/pkg/config"
	"b2b-orders/pkg/db"
	"b2b-orders/pkg/events"
	grpcpkg "b2b-orders/pkg/grpc"
	"b2b-orders/pkg/logger"
	"b2b-orders/pkg/middleware"
	"b2b-orders/pkg/rabbitmq"
)

func main() {
	// Load configuration
	cfg := config.LoadForService("CUSTOMERS")

	// Initialize logger
	log := logger.NewWithFormat("customers-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting customers service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConn, err := db.NewConnection(db.FromConfig(cfg))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close(dbConn)
	log.Info("connected to database")

	// Initialize repository and run migrations
	repo := adapters.NewPostgresCustomerRepository(dbConn)
	if err := repo.Migrate(); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Connect to RabbitMQ
	var publisher ports.EventPublisher
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled", zap.Error(err))
	} else {
		defer rabbitConn.Close()

		pub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeCustomers, log)
		if err != nil {
			log.Warn("failed to create publisher", zap.Error(err))
		} else {
			publisher = adapters.NewRabbitMQPublisher(pub)
		}
	}

	// Initialize use case
	useCase := application.NewCustomerUseCase(repo, publisher, log)

	// Order activity keeps the customer statistics current
	if rabbitConn != nil {
		consumer, err := adapters.NewOrderEventsConsumer(rabbitConn, useCase, log.Named("activity"))
		if err != nil {
			log.Warn("failed to create order events consumer", zap.Error(err))
		} else if err := consumer.Start(ctx); err != nil {
			log.Warn("failed to start consumer", zap.Error(err))
		}
	}

	// Start HTTP server
	httpHandler := infrastructure.NewHTTPHandler(useCase)
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	api := router.Group("/api/v1")
	httpHandler.RegisterRoutes(api)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Start gRPC server
	grpcServer, err := grpcpkg.NewServer(cfg, log)
	if err != nil {
		log.Fatal("failed to create gRPC server", zap.Error(err))
	}
	customersv1.RegisterCustomerServiceServer(grpcServer, infrastructure.NewGRPCServer(useCase))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen for gRPC", zap.Error(err))
	}

	go func() {
		log.Info("gRPC server listening on :" + cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("gRPC server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down servers...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error", zap.Error(err))
	}

	log.Info("servers stopped")
}
