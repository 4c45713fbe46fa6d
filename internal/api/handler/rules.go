package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/api/middleware"
	"github.com/classforge/classforge/internal/audit"
	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/ws"
)

// EventBroadcaster pushes tenant-scoped events to connected dashboard
// clients. A nil broadcaster disables push notifications.
type EventBroadcaster interface {
	BroadcastToTenant(tenantID uuid.UUID, eventType ws.EventType, data interface{})
}

type RulesHandler struct {
	engine *billing.Engine
	events EventBroadcaster
	audit  audit.Logger
	logger *slog.Logger
}

func NewRulesHandler(engine *billing.Engine, events EventBroadcaster, auditLog audit.Logger, logger *slog.Logger) *RulesHandler {
	if auditLog == nil {
		auditLog = &audit.NoOpLogger{}
	}
	return &RulesHandler{
		engine: engine,
		events: events,
		audit:  auditLog,
		logger: logger,
	}
}

func (h *RulesHandler) notify(tenantID uuid.UUID, eventType ws.EventType, data interface{}) {
	if h.events == nil {
		return
	}
	h.events.BroadcastToTenant(tenantID, eventType, data)
}

func (h *RulesHandler) auditEvent(c *fiber.Ctx, eventType audit.EventType, ruleID uuid.UUID, success bool) {
	tenantID, _ := middleware.GetTenantID(c)
	_ = h.audit.Log(c.Context(), audit.Event{
		TenantID:  tenantID,
		EventType: eventType,
		RuleID:    ruleID.String(),
		Actor:     "api_key",
		Success:   success,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	})
}

type CreateRuleRequest struct {
	Name        string                  `json:"name" validate:"required,min=3,max=255"`
	Description string                  `json:"description,omitempty"`
	Type        billing.RuleType        `json:"type" validate:"required"`
	Trigger     billing.RuleTrigger     `json:"trigger" validate:"required"`
	Conditions  []billing.RuleCondition `json:"conditions,omitempty"`
	Action      billing.RuleAction      `json:"action" validate:"required"`
	Priority    int                     `json:"priority"`
	IsActive    bool                    `json:"is_active"`
	TenantIDs   []uuid.UUID             `json:"tenant_ids,omitempty"`
	Plans       []string                `json:"plans,omitempty"`
}

type UpdateRuleRequest struct {
	Name        *string                 `json:"name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Type        *billing.RuleType       `json:"type,omitempty"`
	Trigger     *billing.RuleTrigger    `json:"trigger,omitempty"`
	Conditions  []billing.RuleCondition `json:"conditions,omitempty"`
	Action      *billing.RuleAction     `json:"action,omitempty"`
	Priority    *int                    `json:"priority,omitempty"`
	IsActive    *bool                   `json:"is_active,omitempty"`
	TenantIDs   []uuid.UUID             `json:"tenant_ids,omitempty"`
	Plans       []string                `json:"plans,omitempty"`
}

type TestRuleRequest struct {
	Rule    CreateRuleRequest `json:"rule"`
	Context map[string]any    `json:"context"`
}

type ExecuteRuleRequest struct {
	Context map[string]any `json:"context,omitempty"`
}

func (r CreateRuleRequest) toRule() *billing.BillingRule {
	return &billing.BillingRule{
		ID:          uuid.New(),
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Trigger:     r.Trigger,
		Conditions:  r.Conditions,
		Action:      r.Action,
		Priority:    r.Priority,
		IsActive:    r.IsActive,
		TenantIDs:   r.TenantIDs,
		Plans:       r.Plans,
	}
}

func (h *RulesHandler) List(c *fiber.Ctx) error {
	rules, err := h.engine.ListRules(c.Context())
	if err != nil {
		h.logger.Error("failed to list rules", "error", err)
		return err
	}

	if rules == nil {
		rules = []billing.BillingRule{}
	}

	return c.JSON(fiber.Map{
		"rules": rules,
		"count": len(rules),
	})
}

func (h *RulesHandler) Get(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid rule ID")
	}

	rule, err := h.engine.GetRule(c.Context(), ruleID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"rule": rule})
}

func (h *RulesHandler) Create(c *fiber.Ctx) error {
	var req CreateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rule := req.toRule()
	if err := h.engine.CreateRule(c.Context(), rule); err != nil {
		return err
	}

	h.logger.Info("rule created",
		"rule_id", rule.ID,
		"name", rule.Name,
		"type", rule.Type,
	)
	h.auditEvent(c, audit.EventRuleCreated, rule.ID, true)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"rule": rule})
}

func (h *RulesHandler) Update(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid rule ID")
	}

	var req UpdateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rule, err := h.engine.GetRule(c.Context(), ruleID)
	if err != nil {
		return err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.Type != nil {
		rule.Type = *req.Type
	}
	if req.Trigger != nil {
		rule.Trigger = *req.Trigger
	}
	if req.Conditions != nil {
		rule.Conditions = req.Conditions
	}
	if req.Action != nil {
		rule.Action = *req.Action
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.TenantIDs != nil {
		rule.TenantIDs = req.TenantIDs
	}
	if req.Plans != nil {
		rule.Plans = req.Plans
	}

	if err := h.engine.UpdateRule(c.Context(), rule); err != nil {
		return err
	}

	h.logger.Info("rule updated", "rule_id", rule.ID)
	h.auditEvent(c, audit.EventRuleUpdated, rule.ID, true)

	for _, tenantID := range rule.TenantIDs {
		h.notify(tenantID, ws.EventRuleUpdated, fiber.Map{"rule_id": rule.ID, "name": rule.Name})
	}

	return c.JSON(fiber.Map{"rule": rule})
}

func (h *RulesHandler) Delete(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid rule ID")
	}

	if err := h.engine.DeleteRule(c.Context(), ruleID); err != nil {
		return err
	}

	h.logger.Info("rule deleted", "rule_id", ruleID)
	h.auditEvent(c, audit.EventRuleDeleted, ruleID, true)

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// Test simulates a draft rule against sample data. Nothing is persisted and
// no actions run.
func (h *RulesHandler) Test(c *fiber.Ctx) error {
	var req TestRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rule := req.Rule.toRule()
	result := h.engine.TestRule(rule, billing.Context(req.Context))

	h.auditEvent(c, audit.EventRuleTested, rule.ID, len(result.Errors) == 0)

	return c.JSON(result)
}

// Execute runs one rule's event path for the calling tenant: the trigger is
// evaluated against the supplied context and, when it fires, the action is
// executed and recorded.
func (h *RulesHandler) Execute(c *fiber.Ctx) error {
	tenant, err := middleware.GetTenant(c)
	if err != nil {
		return err
	}

	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid rule ID")
	}

	var req ExecuteRuleRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	evalCtx := billing.Context(req.Context)

	fired, err := h.engine.EvaluateTrigger(c.Context(), ruleID, tenant.ID, evalCtx)
	if err != nil {
		return err
	}
	if !fired {
		return c.JSON(fiber.Map{
			"executed": false,
			"reason":   "trigger conditions not met",
		})
	}

	if err := h.engine.ExecuteAction(c.Context(), ruleID, tenant.ID, evalCtx); err != nil {
		h.logger.Error("failed to execute rule",
			"rule_id", ruleID,
			"tenant_id", tenant.ID,
			"error", err,
		)
		h.auditEvent(c, audit.EventRuleExecuted, ruleID, false)
		return err
	}

	h.logger.Info("rule executed",
		"rule_id", ruleID,
		"tenant_id", tenant.ID,
	)

	h.auditEvent(c, audit.EventRuleExecuted, ruleID, true)
	h.notify(tenant.ID, ws.EventRuleExecuted, fiber.Map{"rule_id": ruleID})

	return c.JSON(fiber.Map{"executed": true})
}

func (h *RulesHandler) History(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid rule ID")
	}

	limit := 50
	if l := c.QueryInt("limit", 50); l > 0 && l <= 100 {
		limit = l
	}

	history, err := h.engine.History(c.Context(), ruleID, limit)
	if err != nil {
		return err
	}

	if history == nil {
		history = []billing.ExecutionRecord{}
	}

	return c.JSON(fiber.Map{
		"history": history,
		"count":   len(history),
	})
}
