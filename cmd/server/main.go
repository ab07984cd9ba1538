package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tatylu/storefront/internal/config"
	"github.com/tatylu/storefront/internal/coupon"
	"github.com/tatylu/storefront/internal/events"
	"github.com/tatylu/storefront/internal/handlers"
	"github.com/tatylu/storefront/internal/middleware"
	"github.com/tatylu/storefront/internal/models"
	"github.com/tatylu/storefront/internal/pricing"
	"github.com/tatylu/storefront/internal/repository"
	"github.com/tatylu/storefront/internal/service"
	"github.com/tatylu/storefront/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting storefront api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	// Load pricing policy (coupons, shipping schedule, tax rate)
	policy := pricing.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = pricing.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			log.Error("failed to load pricing policy", "file", cfg.PolicyFile, "error", err)
			os.Exit(1)
		}
		log.Info("pricing policy loaded", "file", cfg.PolicyFile, "schedule", policy.Shipping.Schedule)
	}

	// Initialize coupon validator
	couponValidator := coupon.NewValidator(policy.Coupons)
	if len(policy.Campaigns) > 0 {
		log.Info("loading coupon campaign files...", "files", len(policy.Campaigns))
		if err := couponValidator.LoadCampaignFiles(context.Background(), policy.Campaigns); err != nil {
			log.Error("failed to load coupon campaign files", "error", err)
			os.Exit(1)
		}
		stats := couponValidator.Stats()
		log.Info("coupon campaigns loaded",
			"campaign_files", stats["campaign_files"],
			"total_codes", stats["total_codes"],
		)
	}

	// Initialize pricing engine
	engine := pricing.NewEngineWithResolver(policy, couponValidator)

	// Initialize repositories
	catalog := repository.NewInMemoryCatalog()
	orderStore := repository.NewInMemoryOrderStore()
	userStore := repository.NewInMemoryUserStore()

	// Optional order-event publisher
	var publisher service.OrderPublisher
	if cfg.Events.AMQPURL != "" {
		pool, err := events.NewChannelPool(cfg.Events.AMQPURL, cfg.Events.QueueName, cfg.Events.PoolSize, log)
		if err != nil {
			log.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		publisher = events.NewPublisher(pool, cfg.Events.QueueName, log)
	}

	// Initialize services
	productService := service.NewProductService(catalog)
	loyaltyService := service.NewLoyaltyService(userStore)
	analyticsService := service.NewAnalyticsService(orderStore)
	checkoutService := service.NewCheckoutService(
		catalog,
		orderStore,
		userStore,
		engine,
		publisher,
		models.OrderStatus(cfg.Checkout.InitialOrderStatus),
		log,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	productHandler := handlers.NewProductHandler(productService, log)
	couponHandler := handlers.NewCouponHandler(couponValidator)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, log)
	cartHandler := handlers.NewCartHandler(checkoutService, engine, log)
	orderHandler := handlers.NewOrderHandler(orderStore, log)
	loyaltyHandler := handlers.NewLoyaltyHandler(loyaltyService, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Product endpoints
		r.Get("/product", productHandler.ListProducts)
		r.Get("/product/{productId}", productHandler.GetProduct)

		// Coupon endpoints
		r.Get("/coupon/stats", couponHandler.GetStats)
		r.Get("/coupon/{couponCode}", couponHandler.ValidateCoupon)

		// Cart pricing previews
		r.Post("/cart/totals", cartHandler.Totals)
		r.Post("/cart/coupon", cartHandler.ApplyCoupon)

		// Analytics endpoints
		r.Get("/analytics/sales-summary", analyticsHandler.SalesSummary)
		r.Get("/analytics/top-products", analyticsHandler.TopProducts)

		// Checkout and order endpoints require an API key
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.Auth))

			r.Post("/checkout", checkoutHandler.Checkout)
			r.Post("/checkout/validate", checkoutHandler.ValidateCart)

			r.Get("/order", orderHandler.ListOrders)
			r.Get("/order/{orderId}", orderHandler.GetOrder)
			r.Put("/order/{orderId}/status", orderHandler.UpdateStatus)

			r.Get("/loyalty/{userId}", loyaltyHandler.GetStatus)
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
