package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adityaraut/dairydrop-backend/api/controllers"
	"github.com/adityaraut/dairydrop-backend/api/middleware"
	"github.com/adityaraut/dairydrop-backend/internal/auth"
	"github.com/adityaraut/dairydrop-backend/internal/catalog"
	"github.com/adityaraut/dairydrop-backend/internal/inventory"
	"github.com/adityaraut/dairydrop-backend/internal/orders"
	"github.com/adityaraut/dairydrop-backend/internal/payments"
	"github.com/adityaraut/dairydrop-backend/internal/pricing"
	"github.com/adityaraut/dairydrop-backend/pkg/config"
	"github.com/adityaraut/dairydrop-backend/pkg/db"
	"github.com/adityaraut/dairydrop-backend/pkg/logger"
	"github.com/adityaraut/dairydrop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsReg *prometheus.Registry,
	authService auth.Service,
	pricingService pricing.Service,
	ordersService orders.Service,
	paymentsService payments.Service,
	catalogRepo catalog.Repository,
	inventoryRepo inventory.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(registerPolicy, redisClient, logg),
				middleware.Idempotency(redisClient, logg),
			).Post("/register", controllers.AuthRegister(authService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).Post("/signout", controllers.AuthSignout(authService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(catalogRepo, logg))
			r.Get("/{slug}", controllers.ProductsGet(catalogRepo, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Post("/pricing/quote", controllers.PricingQuote(pricingService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrdersCreate(ordersService, logg))
				r.Get("/", controllers.OrdersList(ordersService, logg))
				r.Get("/{orderNumber}", controllers.OrdersGet(ordersService, logg))
			})

			r.Route("/payments/razorpay", func(r chi.Router) {
				r.Post("/order", controllers.PaymentsInitiate(paymentsService, logg))
				r.Post("/confirm", controllers.PaymentsConfirm(paymentsService, logg))
				r.Post("/cancel", controllers.PaymentsCancel(paymentsService, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/inventory/{productID}/movements", controllers.InventoryMovements(inventoryRepo, logg))
			})
		})
	})

	return r
}
