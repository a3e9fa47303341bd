package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/gobalance/internal/adapter/http"
	"github.com/iho/gobalance/internal/adapter/http/handler"
	"github.com/iho/gobalance/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/gobalance/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobalance/internal/adapter/repository/redis"
	"github.com/iho/gobalance/internal/adapter/storage/gcs"
	"github.com/iho/gobalance/internal/infrastructure/auth"
	"github.com/iho/gobalance/internal/infrastructure/config"
	"github.com/iho/gobalance/internal/infrastructure/logger"
	"github.com/iho/gobalance/internal/infrastructure/metrics"
	"github.com/iho/gobalance/internal/infrastructure/postgres"
	"github.com/iho/gobalance/internal/infrastructure/redis"
	"github.com/iho/gobalance/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stdout)
	zerolog.DefaultContextLogger = &log

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	checks := map[string]handler.Pinger{"postgres": pool}

	// Redis is optional; without it Idempotency-Key is ignored.
	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		checks["redis"] = redisPinger(redisClient)
	}

	var attachments usecase.AttachmentStore
	if cfg.AttachmentsEnabled() {
		gcsClient, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("create storage client: %w", err)
		}
		defer gcsClient.Close()
		attachments = gcs.NewAttachmentStore(gcsClient, cfg.AttachmentsBucket)
		log.Info().Str("bucket", cfg.AttachmentsBucket).Msg("attachments enabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, idGen)
	transactionUC := usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		TxManager:       txManager,
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		IDGen:           idGen,
		Retrier:         postgresRepo.NewRetrier(),
		Attachments:     attachments,
		Observer:        appMetrics,
	})
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, accountRepo, transactionRepo, appMetrics)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration)

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, "auth", appMetrics)
	go limiter.RunCleanup(ctx, limiterCleanupInterval, limiterIdleTimeout)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:                log,
		UserHandler:           handler.NewUserHandler(userUC),
		AuthHandler:           handler.NewAuthHandler(userUC, tokens, appMetrics),
		AccountHandler:        handler.NewAccountHandler(accountUC),
		TransactionHandler:    handler.NewTransactionHandler(transactionUC, cfg.AttachmentMaxBytes),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(checks),
		Tokens:                tokens,
		Users:                 userUC,
		IdempotencyStore:      idempotencyStore,
		RateLimiter:           limiter,
		Metrics:               middleware.NewHTTPMetrics(reg),
		Gatherer:              reg,
		AllowedOrigins:        cfg.CORSAllowedOrigins,
	})

	server := newHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}

func redisPinger(client goredis.UniversalClient) handler.PingFunc {
	return func(ctx context.Context) error {
		return redis.Ping(ctx, client)
	}
}
