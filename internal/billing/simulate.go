package billing

import (
	"fmt"
)

// TestResult is the outcome of simulating a candidate rule against sample
// data. Errors from malformed drafts are collected instead of propagated;
// this path is interactive by design.
type TestResult struct {
	Triggered bool           `json:"triggered"`
	Result    map[string]any `json:"result,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}

// TestRule evaluates a candidate rule's conditions against sample data with
// the same condition evaluator used in production, then synthesizes a
// description of what the action would do. The Action Executor and Execution
// Log are never touched: simulation has zero side effects. The trigger is
// not consulted either, since a draft rule need not be persisted or
// scheduled yet.
func TestRule(rule *BillingRule, sample Context) (result TestResult) {
	defer func() {
		if r := recover(); r != nil {
			result = TestResult{Errors: []string{fmt.Sprintf("evaluation error: %v", r)}}
		}
	}()

	for i, cond := range rule.Conditions {
		if err := cond.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("condition %d: %v", i, err))
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	if !EvaluateAll(rule.Conditions, sample) {
		return TestResult{Triggered: false}
	}

	result.Triggered = true
	result.Result = describeAction(rule)
	return result
}

func describeAction(rule *BillingRule) map[string]any {
	action := rule.Action
	out := map[string]any{"action": string(action.Type)}

	switch action.Type {
	case ActionApplyDiscount:
		out["amount"] = action.Amount
		out["amount_type"] = string(action.AmountType)
		if action.AmountType == AmountPercentage {
			out["description"] = fmt.Sprintf("would apply a %.0f%% discount", action.Amount)
		} else {
			out["description"] = fmt.Sprintf("would apply a fixed discount of %.2f", action.Amount)
		}

	case ActionAddCharge:
		out["amount"] = action.Amount
		out["target"] = action.Target
		out["description"] = fmt.Sprintf("would charge %.4f per unit of %s over the threshold", action.Amount, action.Target)

	case ActionAddCredit:
		out["amount"] = action.Amount
		out["description"] = fmt.Sprintf("would credit %.2f", action.Amount)

	case ActionSendNotification:
		out["target"] = action.Target
		out["description"] = "would send a notification"

	case ActionUpgradePlan, ActionDowngradePlan:
		out["target"] = action.Target
		out["description"] = fmt.Sprintf("would change plan to %s", action.Target)

	default:
		out["description"] = "no effect"
	}

	return out
}
