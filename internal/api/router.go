package api

import (
	"context"
	"log/slog"
	"time"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classforge/classforge/internal/admin"
	"github.com/classforge/classforge/internal/api/docs"
	"github.com/classforge/classforge/internal/api/handler"
	adminHandler "github.com/classforge/classforge/internal/api/handler/admin"
	superHandler "github.com/classforge/classforge/internal/api/handler/super"
	"github.com/classforge/classforge/internal/api/middleware"
	"github.com/classforge/classforge/internal/audit"
	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/cache"
	"github.com/classforge/classforge/internal/ratelimit"
	"github.com/classforge/classforge/internal/repository"
	"github.com/classforge/classforge/internal/usage"
	"github.com/classforge/classforge/internal/webhook"
	"github.com/classforge/classforge/internal/ws"
)

type Dependencies struct {
	TenantRepo     *repository.TenantRepository
	APIKeyRepo     *repository.APIKeyRepository
	Engine         *billing.Engine
	WebhookService *webhook.Service
	LastUsedWorker *middleware.LastUsedWorker
	DB             *pgxpool.Pool
	JWTSecret      string

	// Worker cadences. Zero values fall back to the workers' defaults.
	WebhookRetryInterval time.Duration
	QuotaCheckInterval   time.Duration
}

type Router struct {
	app               *fiber.App
	logger            *slog.Logger
	deps              *Dependencies
	rateLimiter       *middleware.RateLimiter
	wsHub             *ws.Hub
	webhookWorker     *webhook.Worker
	cancelWorker      context.CancelFunc
	cancelUsageWorker context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Classforge API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Tenant-ID",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	healthHandler := handler.NewHealthHandler()
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group with authentication
	v1 := r.app.Group("/v1")

	// Only configure authenticated routes if dependencies were provided
	if r.deps != nil {
		// WebSocket Hub
		r.wsHub = ws.NewHub()
		go r.wsHub.Run()

		// Webhook delivery worker
		r.webhookWorker = webhook.NewWorker(r.deps.DB, r.deps.WebhookService, r.logger, r.deps.WebhookRetryInterval)

		ctx, cancel := context.WithCancel(context.Background())
		r.cancelWorker = cancel
		go r.webhookWorker.Run(ctx)

		// Auth middleware with async last-used tracking
		v1.Use(middleware.Auth(
			r.deps.TenantRepo,
			middleware.WithKeyTracking(r.deps.APIKeyRepo, r.deps.LastUsedWorker),
		))

		// Rate limiting (per tenant) - must come after auth to have tenant context
		r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
		v1.Use(r.rateLimiter.Handler())

		// Rules handler
		auditLog := audit.NewSlogLogger(r.logger)
		rulesHandler := handler.NewRulesHandler(r.deps.Engine, r.wsHub, auditLog, r.logger)

		v1.Get("/rules", rulesHandler.List)
		v1.Post("/rules", rulesHandler.Create)
		v1.Post("/rules/test", rulesHandler.Test)
		v1.Get("/rules/:id", rulesHandler.Get)
		v1.Put("/rules/:id", rulesHandler.Update)
		v1.Delete("/rules/:id", rulesHandler.Delete)
		v1.Post("/rules/:id/execute", rulesHandler.Execute)
		v1.Get("/rules/:id/history", rulesHandler.History)

		// Billing calculations, throttled per tenant
		previewLimiter := ratelimit.NewRateLimiter(r.deps.DB, time.Minute)
		billingHandler := handler.NewBillingHandler(r.deps.Engine, previewLimiter, auditLog, r.logger)

		v1.Post("/billing/calculate", billingHandler.Calculate)
		v1.Get("/billing/current", billingHandler.Current)

		// Usage service
		usageRepo := usage.NewRepository(r.deps.DB)
		pgCache := cache.NewPGCache(r.deps.DB)
		cacheAdapter := usage.NewCacheAdapter(pgCache)
		usageService := usage.NewService(usageRepo, r.deps.WebhookService, cacheAdapter, r.wsHub)

		usageHandler := handler.NewUsageHandler(usageService)

		v1.Get("/usage", usageHandler.GetUsage)
		v1.Post("/usage/events", usageHandler.PostEvent)
		v1.Post("/usage/snapshots", usageHandler.PostSnapshot)

		// Quota check worker
		usageWorker := usage.NewWorker(usageService, usageRepo, r.logger, r.deps.QuotaCheckInterval)
		usageWorkerCtx, usageWorkerCancel := context.WithCancel(context.Background())
		r.cancelUsageWorker = usageWorkerCancel
		go usageWorker.Run(usageWorkerCtx)

		// WebSocket endpoint
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))

		// Admin routes
		adminGroup := v1.Group("/admin")
		r.setupAdminRoutes(adminGroup)

		// Super Admin routes (JWT auth)
		r.setupSuperAdminRoutes(v1)
	}
}

func (r *Router) setupAdminRoutes(adminGroup fiber.Router) {
	adminService := admin.NewService(r.deps.DB, r.logger)

	reportsHandler := adminHandler.NewReportsHandler(adminService, r.logger)
	webhooksHandler := adminHandler.NewWebhooksHandler(r.deps.WebhookService, r.logger)
	apiKeysHandler := adminHandler.NewAPIKeysHandler(r.deps.DB, r.logger)

	// Billing reports
	reportsGroup := adminGroup.Group("/reports")
	reportsGroup.Get("/executions", reportsHandler.GetExecutionsReport)
	reportsGroup.Get("/adjustments", reportsHandler.GetAdjustmentsReport)

	// Webhooks routes
	adminGroup.Get("/webhooks", webhooksHandler.List)
	adminGroup.Post("/webhooks", webhooksHandler.Create)
	adminGroup.Delete("/webhooks/:id", webhooksHandler.Delete)

	// API keys
	adminGroup.Get("/api-keys", apiKeysHandler.List)
}

func (r *Router) setupSuperAdminRoutes(v1Group fiber.Router) {
	adminService := admin.NewService(r.deps.DB, r.logger)

	// JWT service for super admin authentication
	jwtService := admin.NewJWTService(
		r.deps.JWTSecret,
		"classforge-api",
		24*time.Hour,
	)

	// Super admin group with JWT authentication
	superGroup := v1Group.Group("/super")
	superGroup.Use(middleware.AdminAuth(
		middleware.AdminLevelSuper,
		middleware.AdminAuthDependencies{
			JWTService: jwtService,
			Logger:     r.logger,
		},
	))

	superTenantsHandler := superHandler.NewTenantsHandler(adminService, r.wsHub, audit.NewSlogLogger(r.logger), r.logger)
	superSystemHandler := superHandler.NewSystemHandler(adminService, r.logger)

	// Tenants routes
	superGroup.Get("/tenants", superTenantsHandler.ListTenants)
	superGroup.Get("/tenants/:id/billing", superTenantsHandler.GetTenantBilling)
	superGroup.Post("/tenants/:id/plan", superTenantsHandler.UpdateTenantPlan)

	// System routes
	superGroup.Get("/system/health", superSystemHandler.GetSystemHealth)
	superGroup.Get("/system/metrics", superSystemHandler.GetSystemMetrics)
}

func (r *Router) App() *fiber.App {
	return r.app
}

// Hub exposes the WebSocket hub so callers can publish events after Setup.
func (r *Router) Hub() *ws.Hub {
	return r.wsHub
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop webhook worker
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	// Stop usage quota check worker
	if r.cancelUsageWorker != nil {
		r.cancelUsageWorker()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
