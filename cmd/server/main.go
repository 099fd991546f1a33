package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/hrkit/leaveledger/internal/adapter/http"
	"github.com/hrkit/leaveledger/internal/adapter/http/handler"
	"github.com/hrkit/leaveledger/internal/adapter/http/middleware"
	postgresRepo "github.com/hrkit/leaveledger/internal/adapter/repository/postgres"
	redisRepo "github.com/hrkit/leaveledger/internal/adapter/repository/redis"
	"github.com/hrkit/leaveledger/internal/infrastructure/auth"
	"github.com/hrkit/leaveledger/internal/infrastructure/config"
	"github.com/hrkit/leaveledger/internal/infrastructure/eventpublisher"
	"github.com/hrkit/leaveledger/internal/infrastructure/logger"
	"github.com/hrkit/leaveledger/internal/infrastructure/metrics"
	"github.com/hrkit/leaveledger/internal/infrastructure/postgres"
	"github.com/hrkit/leaveledger/internal/infrastructure/redis"
	"github.com/hrkit/leaveledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	ctx := context.Background()

	// Run migrations
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics registry
	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	requestRepo := postgresRepo.NewRequestRepository(pool)
	employeeRepo := postgresRepo.NewEmployeeRepository(pool)
	ruleRepo := postgresRepo.NewRuleRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	balanceUC := usecase.NewBalanceUseCase(txManager, balanceRepo, employeeRepo,
		ruleRepo, outboxRepo, idGen, cache, appMetrics, appLogger)
	requestUC := usecase.NewRequestUseCase(txManager, requestRepo, balanceRepo,
		outboxRepo, idGen, cache, retrier, appMetrics, appLogger, cfg.DecisionLockWindow)
	employeeUC := usecase.NewEmployeeUseCase(txManager, employeeRepo, balanceRepo,
		requestRepo, ruleRepo, outboxRepo, idGen, cache, retrier, appLogger)
	ruleUC := usecase.NewRuleUseCase(txManager, ruleRepo, balanceRepo, employeeRepo,
		outboxRepo, idGen, cache, retrier, appLogger)
	rolloverUC := usecase.NewRolloverUseCase(txManager, balanceRepo, employeeRepo,
		ruleRepo, outboxRepo, idGen, cache, retrier, appMetrics, appLogger)

	// Optional JWT verification
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("authentication enabled")
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
			WithMetrics(appMetrics)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:   handler.NewBalanceHandler(balanceUC),
		RequestHandler:   handler.NewRequestHandler(requestUC),
		EmployeeHandler:  handler.NewEmployeeHandler(employeeUC),
		RuleHandler:      handler.NewRuleHandler(ruleUC),
		JobHandler:       handler.NewJobHandler(rolloverUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		Logger:           appLogger,
		JWTManager:       jwtManager,
		Metrics:          appMetrics,
		RateLimiter:      rateLimiter,
		IdempotencyStore: idempotencyStore,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	// Outbox publisher drains committed events to the log sink
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(nil),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Pool stats feed the connection gauge
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				appMetrics.DBConnections.Set(float64(pool.Stat().TotalConns()))
			}
		}
	}()

	// Idle per-IP limiters are pruned hourly
	if rateLimiter != nil {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()

			for {
				select {
				case <-workerCtx.Done():
					return
				case <-ticker.C:
					rateLimiter.CleanupIdle(time.Hour)
				}
			}
		}()
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
