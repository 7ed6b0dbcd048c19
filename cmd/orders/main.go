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
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	ordersv1 "b2b-orders/api/orders/v1"
	"b2b-orders/internal/orders/adapters"
	"b2b-orders/internal/orders/application"
	"b2b-orders/internal/orders/domain"
	"b2b-orders/internal/orders/infrastructure"
	"b2b-orders/internal/orders/ports"
	"b2b-orders/pkg/auth"
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
	cfg := config.LoadForService("ORDERS")

	// Initialize logger
	log := logger.NewWithFormat("orders-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting orders service")

	if cfg.AuthSecret == "" {
		log.Fatal("AUTH_SECRET is required for the orders service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConn, err := db.NewConnection(db.FromConfig(cfg))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close(dbConn)
	log.Info("connected to database")

	// Initialize repositories and run migrations
	orderRepo := adapters.NewPostgresOrderRepository(dbConn)
	if err := orderRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate orders", zap.Error(err))
	}
	catalogRepo := adapters.NewPostgresCatalogRepository(dbConn, log.Named("catalog"))
	if err := catalogRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate catalog", zap.Error(err))
	}

	// Cart sessions and catalog cache live in Redis when configured
	var cartStore ports.CartStore
	var catalogCache ports.CatalogCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cartStore = adapters.NewRedisCartStore(redisClient, cfg.CartTTL)
		catalogCache = adapters.NewRedisCatalogCache(redisClient, cfg.CatalogCacheTTL)
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		cartStore = adapters.NewMemoryCartStore(cfg.CartTTL)
		catalogCache = adapters.NoopCatalogCache{}
		log.Warn("REDIS_ADDR not set, carts are kept in memory")
	}

	// Connect to customers service via gRPC
	var customers ports.CustomerClient
	customerClient, err := adapters.NewGRPCCustomerClient(cfg)
	if err != nil {
		log.Warn("failed to connect to customers service, customer refs will not be checked", zap.Error(err))
	} else {
		defer customerClient.Close()
		customers = customerClient
		log.Info("connected to customers service", zap.String("addr", cfg.CustomersGRPCAddr))
	}

	// Connect to RabbitMQ
	var publisher ports.EventPublisher
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled", zap.Error(err))
	} else {
		defer rabbitConn.Close()

		// Setup publisher
		pub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeOrders, log)
		if err != nil {
			log.Warn("failed to create publisher", zap.Error(err))
		} else {
			publisher = adapters.NewRabbitMQPublisher(pub, log)
		}

		// New customers are known before their first order arrives
		if customerClient != nil {
			consumer, err := adapters.NewCustomerCreatedConsumer(rabbitConn, customerClient, log)
			if err != nil {
				log.Warn("failed to create CustomerCreated consumer", zap.Error(err))
			} else if err := consumer.Start(ctx); err != nil {
				log.Warn("failed to start consumer", zap.Error(err))
			}
		}
	}

	// Initialize use cases
	thresholds := domain.StockThresholds{LowMax: cfg.StockLowMax, MediumMax: cfg.StockMediumMax}
	catalogUseCase := application.NewCatalogUseCase(catalogRepo, catalogCache, thresholds, log.Named("catalog"))
	cartUseCase := application.NewCartUseCase(cartStore, catalogUseCase, log.Named("cart"))
	orderUseCase := application.NewOrderUseCase(
		orderRepo, publisher, customers, cartUseCase, catalogUseCase, cfg.OrderSource, log.Named("lifecycle"),
	)

	if cfg.CatalogSeedFile != "" {
		n, err := catalogRepo.ImportFile(ctx, cfg.CatalogSeedFile)
		if err != nil {
			log.Fatal("failed to import catalog seed", zap.String("file", cfg.CatalogSeedFile), zap.Error(err))
		}
		if err := catalogUseCase.Refresh(ctx); err != nil {
			log.Warn("catalog cache not refreshed, it expires on its own", zap.Error(err))
		}
		log.Info("catalog seed imported", zap.Int("rows", n))
	}

	// Start HTTP server
	verifier := auth.NewVerifier(cfg.AuthSecret, cfg.AuthIssuer)

	httpHandler := infrastructure.NewHTTPHandler(catalogUseCase, cartUseCase, orderUseCase)
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())
	router.Use(middleware.Identity(verifier))

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
	ordersv1.RegisterOrderServiceServer(grpcServer, infrastructure.NewGRPCServer(orderUseCase))

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
