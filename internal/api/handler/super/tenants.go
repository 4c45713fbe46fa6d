package super

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/admin"
	"github.com/classforge/classforge/internal/audit"
	"github.com/classforge/classforge/internal/domain"
	"github.com/classforge/classforge/internal/ws"
)

// EventBroadcaster pushes events to the tenant's connected dashboard clients.
type EventBroadcaster interface {
	BroadcastToTenant(tenantID uuid.UUID, eventType ws.EventType, data interface{})
}

type TenantsHandler struct {
	adminService admin.SuperAdminService
	events       EventBroadcaster
	audit        audit.Logger
	logger       *slog.Logger
}

func NewTenantsHandler(adminService admin.SuperAdminService, events EventBroadcaster, auditLog audit.Logger, logger *slog.Logger) *TenantsHandler {
	if auditLog == nil {
		auditLog = &audit.NoOpLogger{}
	}
	return &TenantsHandler{
		adminService: adminService,
		events:       events,
		audit:        auditLog,
		logger:       logger,
	}
}

// ListTenants handles GET /super/tenants
func (h *TenantsHandler) ListTenants(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	if limit > 100 {
		limit = 100
	}
	if limit < 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	tenants, err := h.adminService.ListAllTenants(c.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list tenants", "error", err)
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"data": tenants,
		"meta": fiber.Map{
			"total":  len(tenants),
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GetTenantBilling handles GET /super/tenants/:id/billing
func (h *TenantsHandler) GetTenantBilling(c *fiber.Ctx) error {
	tenantIDStr := c.Params("id")
	tenantID, err := uuid.Parse(tenantIDStr)
	if err != nil {
		h.logger.Debug("invalid tenant id", "id", tenantIDStr)
		return fiber.NewError(fiber.StatusBadRequest, "invalid tenant ID format")
	}

	summary, err := h.adminService.GetTenantBillingSummary(c.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to get tenant billing summary", "error", err, "tenant_id", tenantID)
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"data": summary,
		"meta": fiber.Map{
			"tenant_id": tenantID.String(),
		},
	})
}

// UpdateTenantPlan handles POST /super/tenants/:id/plan
func (h *TenantsHandler) UpdateTenantPlan(c *fiber.Ctx) error {
	tenantIDStr := c.Params("id")
	tenantID, err := uuid.Parse(tenantIDStr)
	if err != nil {
		h.logger.Debug("invalid tenant id", "id", tenantIDStr)
		return fiber.NewError(fiber.StatusBadRequest, "invalid tenant ID format")
	}

	var req admin.UpdatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("invalid request body", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.adminService.UpdateTenantPlan(c.Context(), tenantID, req); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return err
		}
		h.logger.Error("failed to update tenant plan", "error", err, "tenant_id", tenantID)
		return fiber.ErrInternalServerError
	}

	if h.events != nil {
		h.events.BroadcastToTenant(tenantID, ws.EventPlanChanged, fiber.Map{"plan": req.Plan})
	}
	_ = h.audit.Log(c.Context(), audit.Event{
		TenantID:  tenantID,
		EventType: audit.EventPlanChanged,
		Actor:     "super_admin",
		Success:   true,
		Metadata:  map[string]string{"plan": req.Plan},
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	})

	return c.JSON(fiber.Map{
		"message":   "plan updated successfully",
		"tenant_id": tenantID.String(),
		"plan":      req.Plan,
	})
}
