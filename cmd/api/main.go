package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/iris/internal/api"
	"github.com/saturnino-fabrica-de-software/iris/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/iris/internal/audit"
	"github.com/saturnino-fabrica-de-software/iris/internal/config"
	"github.com/saturnino-fabrica-de-software/iris/internal/database"
	"github.com/saturnino-fabrica-de-software/iris/internal/face"
	"github.com/saturnino-fabrica-de-software/iris/internal/fetcher"
	"github.com/saturnino-fabrica-de-software/iris/internal/repository"
	"github.com/saturnino-fabrica-de-software/iris/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting Iris API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("engine", cfg.FaceEngine),
	)

	// Face engine, loaded once and shared behind the guard
	engine, err := face.NewFaceEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize face engine: %w", err)
	}
	guard := face.NewEngineGuard(engine)
	defer func() {
		if err := guard.Close(); err != nil {
			logger.Error("engine close error", slog.Any("error", err))
		}
	}()

	imageFetcher := fetcher.New(fetcher.Config{
		UserAgent:  cfg.FetchUserAgent,
		Timeout:    cfg.FetchTimeout,
		MaxBytes:   cfg.FetchMaxBytes,
		RetryCount: cfg.FetchRetryCount,
	})

	compareService := service.NewCompareService(
		imageFetcher,
		face.NewExtractor(guard),
		face.NewComparator(engine, cfg.MatchThreshold),
		logger,
	).
		WithConcurrency(cfg.FetchConcurrency).
		WithMaxCandidates(cfg.MaxCandidates).
		WithTimeout(cfg.CompareTimeout)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional audit trail
	var pool *pgxpool.Pool
	if cfg.AuditEnabled() {
		if cfg.DatabaseAutoMigrate {
			if err := database.MigrateUp(cfg.DatabaseURL, logger); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		poolConfig := database.DefaultPoolConfig(cfg.DatabaseURL)
		poolConfig.MaxConns = cfg.DatabaseMaxConns
		pool, err = database.NewPool(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		auditRepo := repository.NewComparisonAuditRepository(pool)
		compareService.WithAudit(auditRepo, guard.EngineName())
		logger.Info("comparison audit enabled", slog.String("sink", "postgres"))

		if cfg.RetentionEnabled() {
			worker := service.NewAuditRetentionWorker(auditRepo, logger, cfg.AuditRetention, cfg.AuditRetentionInterval)
			go worker.Run(ctx)
		}
	} else if cfg.AuditLog {
		compareService.WithAudit(audit.NewSlogLogger(logger), guard.EngineName())
		logger.Info("comparison audit enabled", slog.String("sink", "log"))
	}

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		CompareService: compareService,
		EngineName:     guard.EngineName(),
		DB:             pool,
		RateLimit: middleware.RateLimiterConfig{
			Max:    cfg.RateLimitMax,
			Window: cfg.RateLimitWindow,
		},
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out, in-flight comparisons abandoned")
	}

	logger.Info("server stopped")
	return nil
}
