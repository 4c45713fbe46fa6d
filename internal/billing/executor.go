package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Effectuator performs the actual monetary mutation for a fired rule
// (adjusting an invoice or subscription record). Implementations live
// outside the engine.
type Effectuator interface {
	ApplyDiscount(ctx context.Context, tenantID uuid.UUID, amount float64, amountType AmountType, metadata map[string]string) error
	AddCharge(ctx context.Context, tenantID uuid.UUID, amount float64, target string, metadata map[string]string) error
	AddCredit(ctx context.Context, tenantID uuid.UUID, amount float64, metadata map[string]string) error
	ChangePlan(ctx context.Context, tenantID uuid.UUID, targetPlan string) error
}

// Notifier delivers send_notification actions through whichever channels the
// tenant has configured.
type Notifier interface {
	Notify(ctx context.Context, tenantID uuid.UUID, rule *BillingRule, evalCtx Context) error
}

// ExecutionLog persists a record of each action execution for audit.
type ExecutionLog interface {
	Record(ctx context.Context, rec *ExecutionRecord) error
	ListHistory(ctx context.Context, ruleID uuid.UUID, limit int) ([]ExecutionRecord, error)
}

// Executor dispatches a fired rule's action to the injected collaborators.
// It is only reached from the event/trigger path; the calculation pass never
// touches it, so previews can never mutate tenant state.
type Executor struct {
	effectuator Effectuator
	notifier    Notifier
	log         ExecutionLog
	logger      *slog.Logger
}

func NewExecutor(effectuator Effectuator, notifier Notifier, log ExecutionLog, logger *slog.Logger) *Executor {
	return &Executor{
		effectuator: effectuator,
		notifier:    notifier,
		log:         log,
		logger:      logger,
	}
}

// Execute runs the rule's action and then unconditionally attempts to write
// one execution-history record. A recorder failure does not roll back the
// action: it is logged and the handler's own result is returned. Retries are
// the caller's concern; the contract here is attempt once, always attempt to
// log the attempt.
func (e *Executor) Execute(ctx context.Context, rule *BillingRule, tenantID uuid.UUID, evalCtx Context) error {
	handlerErr := e.dispatch(ctx, rule, tenantID, evalCtx)

	rec := &ExecutionRecord{
		ID:         uuid.New(),
		RuleID:     rule.ID,
		TenantID:   tenantID,
		Action:     rule.Action,
		Context:    evalCtx,
		ExecutedAt: time.Now().UTC(),
	}

	if err := e.log.Record(ctx, rec); err != nil {
		e.logger.Error("failed to record rule execution",
			"rule_id", rule.ID,
			"tenant_id", tenantID,
			"error", err,
		)
	}

	if handlerErr != nil {
		return fmt.Errorf("execute rule %s: %w", rule.ID, handlerErr)
	}

	e.logger.Info("rule action executed",
		"rule_id", rule.ID,
		"rule_name", rule.Name,
		"tenant_id", tenantID,
		"action", rule.Action.Type,
	)

	return nil
}

func (e *Executor) dispatch(ctx context.Context, rule *BillingRule, tenantID uuid.UUID, evalCtx Context) error {
	action := rule.Action

	switch action.Type {
	case ActionApplyDiscount:
		return e.effectuator.ApplyDiscount(ctx, tenantID, action.Amount, action.AmountType, action.Metadata)
	case ActionAddCharge:
		return e.effectuator.AddCharge(ctx, tenantID, action.Amount, action.Target, action.Metadata)
	case ActionAddCredit:
		return e.effectuator.AddCredit(ctx, tenantID, action.Amount, action.Metadata)
	case ActionSendNotification:
		return e.notifier.Notify(ctx, tenantID, rule, evalCtx)
	case ActionUpgradePlan, ActionDowngradePlan:
		return e.effectuator.ChangePlan(ctx, tenantID, action.Target)
	default:
		return fmt.Errorf("unsupported action type: %s", action.Type)
	}
}
