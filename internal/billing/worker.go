package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/domain"
)

// TenantLister enumerates the tenants a scheduled rule without an explicit
// tenant list applies to.
type TenantLister interface {
	ListActive(ctx context.Context) ([]domain.Tenant, error)
}

// Worker periodically runs active scheduled rules through the executor.
// Event-triggered and manual rules are never picked up here; they go through
// the API execute path.
type Worker struct {
	engine   *Engine
	tenants  TenantLister
	logger   *slog.Logger
	interval time.Duration
	done     chan struct{}
}

func NewWorker(engine *Engine, tenants TenantLister, logger *slog.Logger, interval time.Duration) *Worker {
	if interval == 0 {
		interval = time.Minute
	}

	return &Worker{
		engine:   engine,
		tenants:  tenants,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("scheduled rule worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("scheduled rule worker stopped")
			return
		case <-w.done:
			w.logger.Info("scheduled rule worker stopped")
			return
		case <-ticker.C:
			w.process(ctx)
		}
	}
}

func (w *Worker) Stop() {
	close(w.done)
}

func (w *Worker) process(ctx context.Context) {
	rules, err := w.engine.ListRules(ctx)
	if err != nil {
		w.logger.Error("failed to list active rules", "error", err)
		return
	}

	for i := range rules {
		rule := &rules[i]
		if rule.Trigger.Event != TriggerScheduled {
			continue
		}
		if err := w.runRule(ctx, rule); err != nil {
			w.logger.Error("failed to run scheduled rule",
				"rule_id", rule.ID,
				"rule_name", rule.Name,
				"error", err,
			)
		}
	}
}

func (w *Worker) runRule(ctx context.Context, rule *BillingRule) error {
	targets, err := w.targetTenants(ctx, rule)
	if err != nil {
		return err
	}

	for _, tenantID := range targets {
		tenant, err := w.engine.tenants.GetTenant(ctx, tenantID)
		if err != nil {
			w.logger.Error("failed to resolve tenant for scheduled rule",
				"rule_id", rule.ID,
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}

		if !tenant.IsActive {
			continue
		}
		if len(rule.Plans) > 0 && !containsString(rule.Plans, tenant.Plan) {
			continue
		}

		metrics, err := w.engine.usage.CurrentMetrics(ctx, tenantID)
		if err != nil {
			w.logger.Error("failed to load usage for scheduled rule",
				"rule_id", rule.ID,
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}

		evalCtx := EvalContext(tenant, metrics, EventScheduled)
		if !Fires(rule, evalCtx) {
			continue
		}

		w.logger.Info("scheduled rule fired",
			"rule_id", rule.ID,
			"rule_name", rule.Name,
			"tenant_id", tenantID,
		)

		if err := w.engine.executor.Execute(ctx, rule, tenantID, evalCtx); err != nil {
			w.logger.Error("failed to execute scheduled rule",
				"rule_id", rule.ID,
				"tenant_id", tenantID,
				"error", err,
			)
		}
	}

	return nil
}

// targetTenants resolves the tenant set for one run: the rule's explicit list
// when present, every active tenant otherwise.
func (w *Worker) targetTenants(ctx context.Context, rule *BillingRule) ([]uuid.UUID, error) {
	if len(rule.TenantIDs) > 0 {
		return rule.TenantIDs, nil
	}

	tenants, err := w.tenants.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(tenants))
	for _, t := range tenants {
		ids = append(ids, t.ID)
	}
	return ids, nil
}
