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

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/openbank/walletd/internal/adapter/http"
	"github.com/openbank/walletd/internal/adapter/http/handler"
	"github.com/openbank/walletd/internal/adapter/http/middleware"
	postgresRepo "github.com/openbank/walletd/internal/adapter/repository/postgres"
	redisRepo "github.com/openbank/walletd/internal/adapter/repository/redis"
	"github.com/openbank/walletd/internal/infrastructure/auth"
	"github.com/openbank/walletd/internal/infrastructure/config"
	"github.com/openbank/walletd/internal/infrastructure/eventpublisher"
	"github.com/openbank/walletd/internal/infrastructure/logger"
	"github.com/openbank/walletd/internal/infrastructure/metrics"
	"github.com/openbank/walletd/internal/infrastructure/postgres"
	"github.com/openbank/walletd/internal/infrastructure/redis"
	"github.com/openbank/walletd/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

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

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Metrics
	m := metrics.New()

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txnRepo, outboxRepo, retrier, idGen, cache, m)
	queryUC := usecase.NewQueryUseCase(txnRepo, accountRepo, cache)
	userUC := usecase.NewUserUseCase(txManager, userRepo, accountRepo, outboxRepo, idGen, m)
	reconciliationUC := usecase.NewReconciliationUseCase(txnRepo, ledgerRepo, m)

	// Authentication
	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required when auth is enabled")
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Initialize handlers
	walletHandler := handler.NewWalletHandler(ledgerUC, queryUC)
	authHandler := handler.NewAuthHandler(userUC, jwtManager)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationUC, cfg.StalePendingCutoff)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:         walletHandler,
		AuthHandler:           authHandler,
		ReconciliationHandler: reconciliationHandler,
		HealthHandler:         healthHandler,
		JWTManager:            jwtManager,
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m),
		LoggingMiddleware:     middleware.NewLoggingMiddleware(appLogger),
		MetricsMiddleware:     middleware.NewMetricsMiddleware(m),
	})

	// Background workers run until the root context is cancelled
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slog.Default()),
		Logger:     slog.Default(),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go runSweepLoop(workerCtx, reconciliationUC, cfg.SweepInterval, cfg.StalePendingCutoff)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
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

// runSweepLoop periodically fails pending transactions that outlived the
// cutoff, so a crash between the audit record and the commit cannot leave
// them pending forever.
func runSweepLoop(ctx context.Context, uc *usecase.ReconciliationUseCase, interval, cutoff time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := uc.SweepStalePending(ctx, cutoff)
			if err != nil {
				log.Error().Err(err).Msg("stale pending sweep failed")
				continue
			}
			if swept > 0 {
				log.Info().Int("swept", swept).Msg("failed stale pending transactions")
			}
		}
	}
}
