package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openbank/walletd/internal/adapter/http/handler"
	"github.com/openbank/walletd/internal/adapter/http/middleware"
	"github.com/openbank/walletd/internal/infrastructure/auth"
	"github.com/openbank/walletd/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler         *handler.WalletHandler
	AuthHandler           *handler.AuthHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	JWTManager        *auth.JWTManager
	IdempotencyStore  usecase.IdempotencyStore
	IdempotencyTTL    time.Duration
	RateLimiter       *middleware.RateLimiter
	LoggingMiddleware *middleware.LoggingMiddleware
	MetricsMiddleware *middleware.MetricsMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Wrap)
	}
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware.Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public authentication endpoints
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			}

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/wallet", func(r chi.Router) {
				// Idempotency middleware for mutating requests
				if cfg.IdempotencyStore != nil {
					idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
					r.Use(idempotencyMiddleware.Wrap)
				}

				r.Post("/deposit", cfg.WalletHandler.Deposit)
				r.Post("/transfer", cfg.WalletHandler.Transfer)
				r.Get("/balance", cfg.WalletHandler.Balance)
				r.Get("/transactions", cfg.WalletHandler.History)
				r.Get("/transactions/{id}", cfg.WalletHandler.GetTransaction)
				r.Post("/transactions/{id}/chargeback", cfg.WalletHandler.Chargeback)
			})

			// Admin-only reconciliation endpoints
			r.Route("/admin/reconciliation", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/sweep", cfg.ReconciliationHandler.Sweep)
				r.Get("/conservation", cfg.ReconciliationHandler.Conservation)
			})
		})
	})

	return r
}
