package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/api/middleware"
	"github.com/classforge/classforge/internal/audit"
	"github.com/classforge/classforge/internal/billing"
)

// previewRateLimit caps how many ad-hoc calculations a tenant may run per
// window. Previews read every active rule, so they are not free.
const previewRateLimit = 60

// PreviewLimiter throttles billing previews per tenant.
type PreviewLimiter interface {
	CheckPreviewLimit(ctx context.Context, tenantID uuid.UUID, limit int) error
}

type BillingHandler struct {
	engine  *billing.Engine
	limiter PreviewLimiter
	audit   audit.Logger
	logger  *slog.Logger
}

func NewBillingHandler(engine *billing.Engine, limiter PreviewLimiter, auditLog audit.Logger, logger *slog.Logger) *BillingHandler {
	if auditLog == nil {
		auditLog = &audit.NoOpLogger{}
	}
	return &BillingHandler{
		engine:  engine,
		limiter: limiter,
		audit:   auditLog,
		logger:  logger,
	}
}

type CalculateRequest struct {
	Metrics []billing.UsageMetric `json:"metrics" validate:"required"`
}

// Calculate prices a supplied usage snapshot for the calling tenant. The
// result is a preview: nothing is persisted.
func (h *BillingHandler) Calculate(c *fiber.Ctx) error {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		return err
	}

	if h.limiter != nil {
		if err := h.limiter.CheckPreviewLimit(c.Context(), tenantID, previewRateLimit); err != nil {
			return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
		}
	}

	var req CalculateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	calc, err := h.engine.CalculateBilling(c.Context(), tenantID, req.Metrics)
	if err != nil {
		h.logger.Error("billing calculation failed", "tenant_id", tenantID, "error", err)
		h.auditCalculation(c, tenantID, false)
		return err
	}

	h.auditCalculation(c, tenantID, true)

	return c.JSON(calc)
}

func (h *BillingHandler) auditCalculation(c *fiber.Ctx, tenantID uuid.UUID, success bool) {
	_ = h.audit.Log(c.Context(), audit.Event{
		TenantID:  tenantID,
		EventType: audit.EventCalculationRun,
		Actor:     "api_key",
		Success:   success,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	})
}

// Current prices the tenant's billing-period-to-date usage as recorded by
// the usage pipeline.
func (h *BillingHandler) Current(c *fiber.Ctx) error {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		return err
	}

	calc, err := h.engine.CalculateCurrent(c.Context(), tenantID)
	if err != nil {
		h.logger.Error("billing calculation failed", "tenant_id", tenantID, "error", err)
		h.auditCalculation(c, tenantID, false)
		return err
	}

	h.auditCalculation(c, tenantID, true)

	return c.JSON(calc)
}
