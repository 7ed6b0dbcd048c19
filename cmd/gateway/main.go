// Package main B2B Orders Back-Office Gateway
//
// Authenticated REST entry point for back-office staff. It talks to the
// customers and orders services over gRPC.
//
//	@title			B2B Orders Back-Office API
//	@version		1.0
//	@description	Back-office gateway for the B2B ordering services
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.email	support@example.com
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8443
//	@BasePath	/
//	@schemes	https http
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "b2b-orders/docs/swagger"
	"b2b-orders/internal/gateway/clients"
	"b2b-orders/internal/gateway/handlers"
	"b2b-orders/pkg/auth"
	"b2b-orders/pkg/config"
	"b2b-orders/pkg/logger"
	"b2b-orders/pkg/middleware"
	pkgtls "b2b-orders/pkg/tls"
)

func main() {
	// Load configuration
	cfg := config.LoadForService("GATEWAY")

	// Initialize logger
	log := logger.NewWithFormat("gateway", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting gateway service")

	if cfg.AuthSecret == "" {
		log.Fatal("AUTH_SECRET is required for the gateway")
	}
	verifier := auth.NewVerifier(cfg.AuthSecret, cfg.AuthIssuer)

	// Create gRPC clients
	grpcClients, err := clients.NewClients(cfg)
	if err != nil {
		log.Fatal("failed to create gRPC clients", zap.Error(err))
	}
	defer grpcClients.Close()
	log.Info("connected to backend services via gRPC",
		zap.String("customers", cfg.CustomersGRPCAddr),
		zap.String("orders", cfg.OrdersGRPCAddr),
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	// Register API routes
	handler := handlers.NewHandler(grpcClients.Customers, grpcClients.Orders)
	api := router.Group("/api/v1")
	api.Use(middleware.Identity(verifier))
	handler.RegisterRoutes(api)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Root redirect to Swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})

	if cfg.TLSEnabled {
		startHTTPSServer(cfg, log, router)
	} else {
		startHTTPServer(cfg, log, router)
	}
}

func startHTTPServer(cfg *config.Config, log *logger.Logger, router *gin.Engine) {
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		log.Info("HTTP server listening on http://localhost:" + cfg.HTTPPort)
		log.Info("Swagger UI: http://localhost:" + cfg.HTTPPort + "/swagger/index.html")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	waitForShutdown(server, log)
}

func startHTTPSServer(cfg *config.Config, log *logger.Logger, router *gin.Engine) {
	tlsConfig, err := pkgtls.ServerConfig(pkgtls.Files{
		CertFile: cfg.TLSCertFile,
		KeyFile:  cfg.TLSKeyFile,
	}, false)
	if err != nil {
		log.Fatal("failed to load TLS config", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      router,
		TLSConfig:    tlsConfig,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		log.Info("HTTPS server listening on https://localhost:" + cfg.HTTPSPort)
		log.Info("Swagger UI: https://localhost:" + cfg.HTTPSPort + "/swagger/index.html")
		if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTPS server error", zap.Error(err))
		}
	}()

	waitForShutdown(server, log)
}

func waitForShutdown(server *http.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}
