package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/helpshipping/internal/application/membership"
	"github.com/omishoninjp-sys/helpshipping/internal/application/shipping"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/config"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/logger"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/storefront"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/warehouse"
	"github.com/omishoninjp-sys/helpshipping/internal/interfaces/http/handler"
	"github.com/omishoninjp-sys/helpshipping/internal/interfaces/http/middleware"
	"github.com/omishoninjp-sys/helpshipping/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting forwarding bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Warehouse API client
	jpdClient, err := warehouse.NewClient(&warehouse.Config{
		BaseURL:        cfg.JPD.BaseURL,
		Email:          cfg.JPD.Email,
		Password:       cfg.JPD.Password,
		WarehouseID:    cfg.JPD.WarehouseID,
		DelivID:        cfg.JPD.DelivID,
		TimeoutSeconds: cfg.JPD.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to create warehouse client", zap.Error(err))
	}

	// Storefront API client
	shopifyClient, err := storefront.NewClient(&storefront.Config{
		Store:                 cfg.Shopify.Store,
		AccessToken:           cfg.Shopify.AccessToken,
		APIVersion:            cfg.Shopify.APIVersion,
		TimeoutSeconds:        cfg.Shopify.TimeoutSeconds,
		AllowInsecureFallback: cfg.Shopify.AllowInsecureFallback,
	}, log)
	if err != nil {
		log.Fatal("Failed to create storefront client", zap.Error(err))
	}

	// Application services
	directory := membership.NewDirectoryService(shopifyClient, membership.Config{
		MetafieldNamespace:  cfg.Bridge.MetafieldNamespace,
		MemberCodeKey:       cfg.Bridge.MemberCodeKey,
		ShippingRateKey:     cfg.Bridge.ShippingRateKey,
		DefaultShippingRate: cfg.Bridge.DefaultShippingRate,
		AdminPassword:       cfg.Bridge.AdminPassword,
		PhonePrefixes:       cfg.Bridge.PhonePrefixes,
	}, log)
	forecasts := shipping.NewForecastService(jpdClient, log)
	shipments := shipping.NewShipmentService(jpdClient, log)
	orders := shipping.NewOrderService(shopifyClient, shipping.FulfillmentConfig{
		CarrierName:         cfg.Bridge.CarrierName,
		TrackingURLTemplate: cfg.Bridge.TrackingURLTemplate,
	}, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Routes
	r := router.NewRouter(engine)
	r.Register(handler.NewCustomerHandler(directory, forecasts, log)).
		Register(handler.NewAdminHandler(directory, log)).
		Register(handler.NewWarehouseHandler(forecasts, shipments, log)).
		Register(handler.NewStorefrontHandler(orders, log)).
		RegisterRoot(handler.NewSystemHandler(cfg.Shopify.Store, cfg.JPD.Email != ""))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
