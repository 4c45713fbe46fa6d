package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/api/middleware"
	"github.com/classforge/classforge/internal/usage"
)

type UsageService interface {
	GetCurrentUsage(ctx context.Context, tenantID uuid.UUID, planID string) (*usage.UsageSummary, error)
	GetUsageForPeriod(ctx context.Context, tenantID uuid.UUID, planID, period string) (*usage.UsageSummary, error)
	RecordEvent(ctx context.Context, tenantID uuid.UUID, metric string, amount int) error
	RecordSnapshot(ctx context.Context, tenantID uuid.UUID, activeStudents int, storageGB float64) error
}

type UsageHandler struct {
	service UsageService
}

func NewUsageHandler(service UsageService) *UsageHandler {
	return &UsageHandler{service: service}
}

func (h *UsageHandler) GetUsage(c *fiber.Ctx) error {
	tenant, err := middleware.GetTenant(c)
	if err != nil {
		return err
	}

	period := strings.TrimSpace(c.Query("period"))

	var summary *usage.UsageSummary
	if period == "" {
		summary, err = h.service.GetCurrentUsage(c.Context(), tenant.ID, tenant.Plan)
	} else {
		summary, err = h.service.GetUsageForPeriod(c.Context(), tenant.ID, tenant.Plan, period)
	}

	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(summary)
}

type UsageEventRequest struct {
	Metric string `json:"metric" validate:"required"`
	Amount int    `json:"amount"`
}

type UsageSnapshotRequest struct {
	ActiveStudents int     `json:"active_students"`
	StorageGB      float64 `json:"storage_gb"`
}

// PostEvent increments a counter metric (api_calls, sms_sent) for today.
func (h *UsageHandler) PostEvent(c *fiber.Ctx) error {
	tenant, err := middleware.GetTenant(c)
	if err != nil {
		return err
	}

	var req UsageEventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Metric != usage.MetricAPICalls && req.Metric != usage.MetricSMS {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "metric must be api_calls or sms_sent")
	}

	amount := req.Amount
	if amount == 0 {
		amount = 1
	}
	if amount < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
	}

	if err := h.service.RecordEvent(c.Context(), tenant.ID, req.Metric, amount); err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"recorded": true,
		"metric":   req.Metric,
		"amount":   amount,
	})
}

// PostSnapshot records current gauge readings (active students, storage) for
// today. Gauges replace rather than accumulate.
func (h *UsageHandler) PostSnapshot(c *fiber.Ctx) error {
	tenant, err := middleware.GetTenant(c)
	if err != nil {
		return err
	}

	var req UsageSnapshotRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.ActiveStudents < 0 || req.StorageGB < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "readings must not be negative")
	}

	if err := h.service.RecordSnapshot(c.Context(), tenant.ID, req.ActiveStudents, req.StorageGB); err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"recorded": true,
	})
}
