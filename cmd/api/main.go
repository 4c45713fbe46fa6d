package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classforge/classforge/internal/api"
	"github.com/classforge/classforge/internal/api/middleware"
	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/cache"
	"github.com/classforge/classforge/internal/config"
	"github.com/classforge/classforge/internal/domain"
	"github.com/classforge/classforge/internal/ledger"
	"github.com/classforge/classforge/internal/notify"
	"github.com/classforge/classforge/internal/report"
	"github.com/classforge/classforge/internal/repository"
	"github.com/classforge/classforge/internal/usage"
	"github.com/classforge/classforge/internal/webhook"
)

const adjustmentRetention = 400 * 24 * time.Hour

// tenantProvider adapts the tenant repository to the engine's lookup
// interface.
type tenantProvider struct {
	repo *repository.TenantRepository
}

func (p tenantProvider) GetTenant(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return p.repo.GetByID(ctx, id)
}

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
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Classforge API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Repositories
	tenantRepo := repository.NewTenantRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	ruleRepo := repository.NewBillingRuleRepository(pool)
	execLogRepo := repository.NewExecutionLogRepository(pool)

	webhookService := webhook.NewService(pool)

	// Usage tracking doubles as the engine's metrics and pricing source.
	usageRepo := usage.NewRepository(pool)
	pgCache := cache.NewPGCache(pool)
	// The router owns the websocket hub, so the engine's service instance
	// carries no dashboard notifier.
	usageService := usage.NewService(usageRepo, webhookService, usage.NewCacheAdapter(pgCache), nil)

	// Notifications
	var mailer notify.Mailer
	if cfg.IsProduction() {
		sesMailer, err := notify.NewSESMailer(ctx, cfg.AWSRegion, cfg.EmailFrom)
		if err != nil {
			return fmt.Errorf("failed to create SES mailer: %w", err)
		}
		mailer = sesMailer
	} else {
		mailer = notify.NewLogMailer(logger)
	}
	dispatcher := notify.NewDispatcher(tenantRepo, mailer, webhookService, logger)

	// Rules engine
	billingLedger := ledger.New(pool, tenantRepo, logger)
	executor := billing.NewExecutor(billingLedger, dispatcher, execLogRepo, logger)
	engine := billing.NewEngine(
		ruleRepo,
		tenantProvider{repo: tenantRepo},
		usageService,
		usageService,
		executor,
		logger,
		billing.WithCurrency(cfg.DefaultCurrency),
	)

	// Background workers
	lastUsedWorker := middleware.NewLastUsedWorker(apiKeyRepo, logger, middleware.DefaultLastUsedWorkerConfig())
	lastUsedWorker.Start()
	defer lastUsedWorker.Stop()

	scheduler := billing.NewWorker(engine, tenantRepo, logger, cfg.ScheduledRuleInterval)
	go scheduler.Start(ctx)
	defer scheduler.Stop()

	retention := report.NewRetention(report.NewRepository(pool), logger, adjustmentRetention, 24*time.Hour)
	go retention.Start(ctx)
	defer retention.Stop()

	// HTTP layer
	jwtSecret := cfg.AdminJWTSecret
	if jwtSecret == "" {
		jwtSecret = cfg.APIKeySecret
	}

	router := api.NewRouter(logger, &api.Dependencies{
		TenantRepo:           tenantRepo,
		APIKeyRepo:           apiKeyRepo,
		Engine:               engine,
		WebhookService:       webhookService,
		LastUsedWorker:       lastUsedWorker,
		DB:                   pool,
		JWTSecret:            jwtSecret,
		WebhookRetryInterval: cfg.WebhookRetryInterval,
		QuotaCheckInterval:   cfg.QuotaCheckInterval,
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

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
