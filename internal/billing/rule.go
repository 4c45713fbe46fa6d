package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RuleType classifies the pricing policy a rule implements.
type RuleType string

const (
	RuleTypeUsage     RuleType = "usage"
	RuleTypeDiscount  RuleType = "discount"
	RuleTypeSurcharge RuleType = "surcharge"
	RuleTypeCredit    RuleType = "credit"
	RuleTypeProration RuleType = "proration"
)

// TriggerEvent is the event class that makes a rule eligible for execution.
type TriggerEvent string

const (
	TriggerUsageThreshold TriggerEvent = "usage_threshold"
	TriggerPlanChange     TriggerEvent = "plan_change"
	TriggerRenewal        TriggerEvent = "renewal"
	TriggerManual         TriggerEvent = "manual"
	TriggerScheduled      TriggerEvent = "scheduled"
)

// Context event values matched by event-driven triggers.
const (
	EventPlanChanged         = "plan_changed"
	EventSubscriptionRenewed = "subscription_renewed"
	EventScheduled           = "scheduled"
	EventManual              = "manual"
)

// Operator is the comparison operator of a single condition.
type Operator string

const (
	OpEq      Operator = "eq"
	OpNe      Operator = "ne"
	OpGt      Operator = "gt"
	OpGte     Operator = "gte"
	OpLt      Operator = "lt"
	OpLte     Operator = "lte"
	OpIn      Operator = "in"
	OpBetween Operator = "between"
)

// ActionType identifies the effect a fired rule produces.
type ActionType string

const (
	ActionApplyDiscount    ActionType = "apply_discount"
	ActionAddCharge        ActionType = "add_charge"
	ActionAddCredit        ActionType = "add_credit"
	ActionSendNotification ActionType = "send_notification"
	ActionUpgradePlan      ActionType = "upgrade_plan"
	ActionDowngradePlan    ActionType = "downgrade_plan"
)

// AmountType selects between absolute and percentage amounts.
type AmountType string

const (
	AmountFixed      AmountType = "fixed"
	AmountPercentage AmountType = "percentage"
)

// RuleTrigger describes when a rule becomes eligible.
// For usage_threshold, Metric and Threshold are required together.
type RuleTrigger struct {
	Event     TriggerEvent `json:"event"`
	Metric    string       `json:"metric,omitempty"`
	Threshold *float64     `json:"threshold,omitempty"`
	Schedule  string       `json:"schedule,omitempty"`
}

// ConditionRange is the inclusive [Low, High] operand of a between condition.
type ConditionRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// RuleCondition is a single typed comparison against the evaluation context.
// Each operator reads exactly one operand field: scalar operators use Value,
// in uses Values, between uses Range.
type RuleCondition struct {
	Field    string          `json:"field"`
	Operator Operator        `json:"operator"`
	Value    any             `json:"value,omitempty"`
	Values   []any           `json:"values,omitempty"`
	Range    *ConditionRange `json:"range,omitempty"`
}

// RuleAction is the effect specification of a rule.
type RuleAction struct {
	Type       ActionType        `json:"type"`
	Amount     float64           `json:"amount,omitempty"`
	AmountType AmountType        `json:"amount_type,omitempty"`
	Target     string            `json:"target,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// BillingRule is a named, versioned policy unit. Rules are authored and
// stored externally; the engine only reads them per evaluation call.
type BillingRule struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        RuleType        `json:"type"`
	Trigger     RuleTrigger     `json:"trigger"`
	Conditions  []RuleCondition `json:"conditions"`
	Action      RuleAction      `json:"action"`
	Priority    int             `json:"priority"`
	IsActive    bool            `json:"is_active"`
	TenantIDs   []uuid.UUID     `json:"tenant_ids,omitempty"`
	Plans       []string        `json:"plans,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UsageMetric is a read-only usage sample supplied by the usage collaborator.
type UsageMetric struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Period string  `json:"period"`
	Cost   float64 `json:"cost,omitempty"`
}

// Adjustment is one rule's contribution to a billing calculation.
type Adjustment struct {
	RuleID      uuid.UUID `json:"rule_id"`
	RuleName    string    `json:"rule_name"`
	Type        RuleType  `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
}

// BillingCalculation is the pure output of a calculation pass.
// FinalAmount = max(0, BaseAmount + sum of adjustment amounts); adjustments
// appear in the exact order rules were applied.
type BillingCalculation struct {
	BaseAmount  float64      `json:"base_amount"`
	Adjustments []Adjustment `json:"adjustments"`
	FinalAmount float64      `json:"final_amount"`
	Currency    string       `json:"currency"`
}

// ExecutionRecord is the audit entry written after each action execution.
type ExecutionRecord struct {
	ID         uuid.UUID      `json:"id"`
	RuleID     uuid.UUID      `json:"rule_id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	Action     RuleAction     `json:"action"`
	Context    map[string]any `json:"context,omitempty"`
	ExecutedAt time.Time      `json:"executed_at"`
}

var validOperators = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGte: true,
	OpLt: true, OpLte: true, OpIn: true, OpBetween: true,
}

var validActionTypes = map[ActionType]bool{
	ActionApplyDiscount: true, ActionAddCharge: true, ActionAddCredit: true,
	ActionSendNotification: true, ActionUpgradePlan: true, ActionDowngradePlan: true,
}

var validTriggerEvents = map[TriggerEvent]bool{
	TriggerUsageThreshold: true, TriggerPlanChange: true, TriggerRenewal: true,
	TriggerManual: true, TriggerScheduled: true,
}

var validRuleTypes = map[RuleType]bool{
	RuleTypeUsage: true, RuleTypeDiscount: true, RuleTypeSurcharge: true,
	RuleTypeCredit: true, RuleTypeProration: true,
}

// Validate checks structural validity of an authored rule. The evaluators
// themselves fail closed on malformed rules; validation exists so authoring
// endpoints can reject drafts with a useful message instead.
func (r *BillingRule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name cannot be empty")
	}

	if !validRuleTypes[r.Type] {
		return fmt.Errorf("invalid rule type: %q", r.Type)
	}

	if !validTriggerEvents[r.Trigger.Event] {
		return fmt.Errorf("invalid trigger event: %q", r.Trigger.Event)
	}

	if r.Trigger.Event == TriggerUsageThreshold {
		if r.Trigger.Metric == "" || r.Trigger.Threshold == nil {
			return errors.New("usage_threshold trigger requires metric and threshold")
		}
	}

	for i, cond := range r.Conditions {
		if err := cond.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}

	if !validActionTypes[r.Action.Type] {
		return fmt.Errorf("invalid action type: %q", r.Action.Type)
	}

	switch r.Action.Type {
	case ActionApplyDiscount, ActionAddCharge, ActionAddCredit:
		if r.Action.Amount < 0 {
			return errors.New("action amount cannot be negative")
		}
	case ActionUpgradePlan, ActionDowngradePlan:
		if r.Action.Target == "" {
			return errors.New("plan change action requires a target plan")
		}
	}

	return nil
}

// Validate checks that the condition carries the operand its operator reads.
func (c *RuleCondition) Validate() error {
	if c.Field == "" {
		return errors.New("condition field cannot be empty")
	}

	if !validOperators[c.Operator] {
		return fmt.Errorf("invalid operator: %q", c.Operator)
	}

	switch c.Operator {
	case OpIn:
		if len(c.Values) == 0 {
			return errors.New("in operator requires a non-empty values list")
		}
	case OpBetween:
		if c.Range == nil {
			return errors.New("between operator requires a range")
		}
		if c.Range.Low > c.Range.High {
			return errors.New("between range low cannot exceed high")
		}
	}

	return nil
}
