package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/domain"
)

// RuleStore provides read/write access to authored rules. The engine treats
// it as read-only during evaluation; authoring endpoints use the passthrough
// CRUD methods below.
type RuleStore interface {
	ListActive(ctx context.Context) ([]BillingRule, error)
	Get(ctx context.Context, id uuid.UUID) (*BillingRule, error)
	Create(ctx context.Context, rule *BillingRule) error
	Update(ctx context.Context, rule *BillingRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TenantProvider resolves tenants by id.
type TenantProvider interface {
	GetTenant(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
}

// UsageProvider supplies the current-period usage snapshot for a tenant. The
// engine never computes usage itself.
type UsageProvider interface {
	CurrentMetrics(ctx context.Context, tenantID uuid.UUID) ([]UsageMetric, error)
}

// PlanPricing maps a plan name to its base amount.
type PlanPricing interface {
	BaseAmount(ctx context.Context, plan string) (float64, error)
}

// Engine ties the pure evaluators to the injected collaborators. It holds no
// state of its own beyond configuration; every calculation reads rules and
// usage fresh.
type Engine struct {
	rules    RuleStore
	tenants  TenantProvider
	usage    UsageProvider
	pricing  PlanPricing
	executor *Executor
	currency string
	logger   *slog.Logger
}

type EngineOption func(*Engine)

// WithCurrency overrides the currency stamped on calculations.
func WithCurrency(currency string) EngineOption {
	return func(e *Engine) { e.currency = currency }
}

func NewEngine(rules RuleStore, tenants TenantProvider, usage UsageProvider, pricing PlanPricing, executor *Executor, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:    rules,
		tenants:  tenants,
		usage:    usage,
		pricing:  pricing,
		executor: executor,
		currency: DefaultCurrency,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateBilling is the primary pure read path: it scopes the active rules
// to the tenant and supplied usage snapshot and folds them into a
// calculation. Safe to call speculatively; nothing is mutated.
func (e *Engine) CalculateBilling(ctx context.Context, tenantID uuid.UUID, metrics []UsageMetric) (*BillingCalculation, error) {
	tenant, err := e.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, err)
	}

	baseAmount, err := e.pricing.BaseAmount(ctx, tenant.Plan)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: plan %q: %w", tenantID, tenant.Plan, err)
	}

	rules, err := e.rules.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: list rules: %w", tenantID, err)
	}

	scoped := SelectApplicable(rules, tenant, metrics)

	return Compute(baseAmount, scoped, metrics, e.currency), nil
}

// CalculateCurrent previews the bill from the current-period metered usage.
func (e *Engine) CalculateCurrent(ctx context.Context, tenantID uuid.UUID) (*BillingCalculation, error) {
	metrics, err := e.usage.CurrentMetrics(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: current usage: %w", tenantID, err)
	}
	return e.CalculateBilling(ctx, tenantID, metrics)
}

// EvaluateTrigger reports whether the rule fires for the given event
// context: trigger holds and all conditions evaluate true.
func (e *Engine) EvaluateTrigger(ctx context.Context, ruleID, tenantID uuid.UUID, evalCtx Context) (bool, error) {
	rule, err := e.rules.Get(ctx, ruleID)
	if err != nil {
		return false, fmt.Errorf("get rule %s: %w", ruleID, err)
	}

	evalCtx, err = e.withTenant(ctx, tenantID, evalCtx)
	if err != nil {
		return false, err
	}

	return Fires(rule, evalCtx), nil
}

// ExecuteAction runs the rule's action through the executor: fire-and-log.
// It does not re-check the trigger; callers on the event path are expected
// to gate on EvaluateTrigger first.
func (e *Engine) ExecuteAction(ctx context.Context, ruleID, tenantID uuid.UUID, evalCtx Context) error {
	rule, err := e.rules.Get(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("get rule %s: %w", ruleID, err)
	}

	evalCtx, err = e.withTenant(ctx, tenantID, evalCtx)
	if err != nil {
		return err
	}

	return e.executor.Execute(ctx, rule, tenantID, evalCtx)
}

// TestRule simulates a candidate rule against sample data. No side effects.
func (e *Engine) TestRule(rule *BillingRule, sample Context) TestResult {
	return TestRule(rule, sample)
}

// History lists execution records for a rule, most recent first.
func (e *Engine) History(ctx context.Context, ruleID uuid.UUID, limit int) ([]ExecutionRecord, error) {
	return e.executor.log.ListHistory(ctx, ruleID, limit)
}

// CreateRule validates and persists a new rule.
func (e *Engine) CreateRule(ctx context.Context, rule *BillingRule) error {
	if err := rule.Validate(); err != nil {
		return domain.ErrInvalidRule.WithError(err)
	}
	return e.rules.Create(ctx, rule)
}

// UpdateRule validates and persists changes to an existing rule.
func (e *Engine) UpdateRule(ctx context.Context, rule *BillingRule) error {
	if err := rule.Validate(); err != nil {
		return domain.ErrInvalidRule.WithError(err)
	}
	return e.rules.Update(ctx, rule)
}

// DeleteRule removes a rule.
func (e *Engine) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return e.rules.Delete(ctx, id)
}

// GetRule fetches a rule by id.
func (e *Engine) GetRule(ctx context.Context, id uuid.UUID) (*BillingRule, error) {
	return e.rules.Get(ctx, id)
}

// ListRules lists all active rules.
func (e *Engine) ListRules(ctx context.Context) ([]BillingRule, error) {
	return e.rules.ListActive(ctx)
}

// withTenant merges the tenant object into the evaluation context when the
// caller did not supply one.
func (e *Engine) withTenant(ctx context.Context, tenantID uuid.UUID, evalCtx Context) (Context, error) {
	if evalCtx == nil {
		evalCtx = Context{}
	}
	if _, ok := evalCtx["tenant"]; ok {
		return evalCtx, nil
	}

	tenant, err := e.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, err)
	}

	evalCtx["tenant"] = map[string]any{
		"id":        tenant.ID.String(),
		"name":      tenant.Name,
		"slug":      tenant.Slug,
		"plan":      tenant.Plan,
		"is_active": tenant.IsActive,
	}
	return evalCtx, nil
}
