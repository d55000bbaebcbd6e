package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adityaraut/dairydrop-backend/api/routes"
	"github.com/adityaraut/dairydrop-backend/internal/address"
	internalauth "github.com/adityaraut/dairydrop-backend/internal/auth"
	"github.com/adityaraut/dairydrop-backend/internal/catalog"
	"github.com/adityaraut/dairydrop-backend/internal/coupons"
	"github.com/adityaraut/dairydrop-backend/internal/inventory"
	"github.com/adityaraut/dairydrop-backend/internal/orders"
	"github.com/adityaraut/dairydrop-backend/internal/payments"
	"github.com/adityaraut/dairydrop-backend/internal/pricing"
	"github.com/adityaraut/dairydrop-backend/internal/users"
	"github.com/adityaraut/dairydrop-backend/pkg/config"
	"github.com/adityaraut/dairydrop-backend/pkg/db"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
	"github.com/adityaraut/dairydrop-backend/pkg/env"
	"github.com/adityaraut/dairydrop-backend/pkg/logger"
	"github.com/adityaraut/dairydrop-backend/pkg/metrics"
	"github.com/adityaraut/dairydrop-backend/pkg/migrate"
	"github.com/adityaraut/dairydrop-backend/pkg/razorpay"
	"github.com/adityaraut/dairydrop-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	razorpayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}

	metricsReg := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(metricsReg)

	gdb := dbClient.DB()
	catalogRepo := catalog.NewRepository(gdb)
	couponsRepo := coupons.NewRepository(gdb)
	inventoryRepo := inventory.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	paymentsRepo := payments.NewRepository(gdb)
	usersRepo := users.NewRepository(gdb)
	sessionsRepo := internalauth.NewSessionRepository(gdb)

	addressSvc, err := address.NewService(address.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	pricingSvc, err := pricing.NewService(catalogRepo, couponsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	authSvc, err := internalauth.NewService(internalauth.ServiceParams{
		UserRepo:       usersRepo,
		SessionRepo:    sessionsRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(
		dbClient,
		ordersRepo,
		pricingSvc,
		addressSvc,
		inventoryRepo,
		couponsRepo,
		paymentsRepo,
		checkoutMetrics,
		orders.Options{
			OrderNumberPrefix:  cfg.Checkout.OrderNumberPrefix,
			OrderNumberRetries: cfg.Checkout.OrderNumberRetries,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsSvc, err := payments.NewService(
		dbClient,
		paymentsRepo,
		pricingSvc,
		razorpayClient,
		checkoutMetrics,
		enums.Currency(cfg.Checkout.Currency),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			metricsReg,
			authSvc,
			pricingSvc,
			ordersSvc,
			paymentsSvc,
			catalogRepo,
			inventoryRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
