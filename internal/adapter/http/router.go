package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gobalance/internal/adapter/http/handler"
	"github.com/iho/gobalance/internal/adapter/http/middleware"
	"github.com/iho/gobalance/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger zerolog.Logger

	UserHandler           *handler.UserHandler
	AuthHandler           *handler.AuthHandler
	AccountHandler        *handler.AccountHandler
	TransactionHandler    *handler.TransactionHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	Tokens middleware.TokenDecoder
	Users  middleware.UserLoader

	// IdempotencyStore enables Idempotency-Key handling when set.
	IdempotencyStore usecase.IdempotencyStore

	// RateLimiter guards register and login when set.
	RateLimiter *middleware.RateLimiter

	// Metrics and Gatherer expose request metrics on /metrics when set.
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer

	AllowedOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{"Location", middleware.RequestIDHeader, middleware.IdempotencyReplayHeader},
		MaxAge:         300,
	}))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Limit)
			}
			r.Post("/register", cfg.UserHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Tokens, cfg.Users))
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, 0).Wrap)
			}

			r.Route("/user", func(r chi.Router) {
				r.Get("/", cfg.UserHandler.Get)
				r.Put("/", cfg.UserHandler.Update)
				r.Delete("/", cfg.UserHandler.Delete)
			})

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", cfg.AccountHandler.List)
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/inactive", cfg.AccountHandler.ListInactive)

				r.Route("/{accountID}", func(r chi.Router) {
					r.Get("/", cfg.AccountHandler.Get)
					r.Put("/", cfg.AccountHandler.Update)
					r.Delete("/", cfg.AccountHandler.Delete)
					r.Put("/activate", cfg.AccountHandler.Activate)
					r.Put("/deactivate", cfg.AccountHandler.Deactivate)

					r.Get("/reconciliation", cfg.ReconciliationHandler.Check)
					r.Post("/reconciliation", cfg.ReconciliationHandler.Repair)

					r.Route("/transactions", func(r chi.Router) {
						r.Get("/", cfg.TransactionHandler.List)
						r.Post("/", cfg.TransactionHandler.Create)

						r.Route("/{transactionID}", func(r chi.Router) {
							r.Get("/", cfg.TransactionHandler.Get)
							r.Put("/", cfg.TransactionHandler.Update)
							r.Delete("/", cfg.TransactionHandler.Delete)
							r.Put("/attachment", cfg.TransactionHandler.Attach)
							r.Delete("/attachment", cfg.TransactionHandler.Detach)
						})
					})
				})
			})
		})
	})

	return r
}
