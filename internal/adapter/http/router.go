package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hrkit/leaveledger/internal/adapter/http/handler"
	"github.com/hrkit/leaveledger/internal/adapter/http/middleware"
	"github.com/hrkit/leaveledger/internal/infrastructure/auth"
	"github.com/hrkit/leaveledger/internal/infrastructure/metrics"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// RouterConfig holds dependencies for the router. JWTManager, Metrics,
// RateLimiter and IdempotencyStore are optional; nil disables the
// corresponding middleware.
type RouterConfig struct {
	BalanceHandler   *handler.BalanceHandler
	RequestHandler   *handler.RequestHandler
	EmployeeHandler  *handler.EmployeeHandler
	RuleHandler      *handler.RuleHandler
	JobHandler       *handler.JobHandler
	HealthHandler    *handler.HealthHandler
	Logger           zerolog.Logger
	JWTManager       *auth.JWTManager
	Metrics          *metrics.Metrics
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Decisions, adjustments, rules and jobs are admin-only when auth is on.
	requireAdmin := func(next http.Handler) http.Handler { return next }
	if cfg.JWTManager != nil {
		requireAdmin = middleware.RequireAdmin
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Employees
		r.Route("/employees", func(r chi.Router) {
			r.With(requireAdmin).Post("/", cfg.EmployeeHandler.Create)
			r.Get("/", cfg.EmployeeHandler.List)
			r.Get("/{id}", cfg.EmployeeHandler.Get)
			r.With(requireAdmin).Put("/{id}/grade", cfg.EmployeeHandler.ChangeGrade)
			r.Get("/{id}/balance", cfg.BalanceHandler.GetForEmployee)
			r.Get("/{id}/balances", cfg.BalanceHandler.ListForEmployee)
			r.Get("/{id}/requests", cfg.RequestHandler.ListForEmployee)
		})

		// Balances
		r.Route("/balances", func(r chi.Router) {
			r.With(requireAdmin).Post("/", cfg.BalanceHandler.Initialize)
			r.Get("/{id}", cfg.BalanceHandler.Get)
			r.With(requireAdmin).Post("/{id}/adjust", cfg.BalanceHandler.Adjust)
			r.With(requireAdmin).Post("/{id}/vesting", cfg.BalanceHandler.RecomputeVesting)
		})

		// Leave requests
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", cfg.RequestHandler.Submit)
			r.Get("/{id}", cfg.RequestHandler.Get)
			r.With(requireAdmin).Post("/{id}/approve", cfg.RequestHandler.Approve)
			r.With(requireAdmin).Post("/{id}/reject", cfg.RequestHandler.Reject)
			r.Post("/{id}/cancel", cfg.RequestHandler.Cancel)
		})

		// Entitlement rules
		r.Route("/rules", func(r chi.Router) {
			r.With(requireAdmin).Post("/", cfg.RuleHandler.Change)
			r.Get("/", cfg.RuleHandler.List)
			r.Get("/current", cfg.RuleHandler.GetCurrent)
		})

		// Batch jobs
		r.Route("/jobs", func(r chi.Router) {
			r.With(requireAdmin).Post("/rollover", cfg.JobHandler.Rollover)
			r.With(requireAdmin).Post("/vesting", cfg.JobHandler.Vesting)
		})
	})

	return r
}
