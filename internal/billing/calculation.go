package billing

import (
	"fmt"
	"sort"
)

// DefaultCurrency is used when the engine is not configured with one.
const DefaultCurrency = "USD"

// Compute folds the scoped rules into a BillingCalculation. Rules apply in
// ascending priority order (stable: equal priorities keep their scoping
// order). Percentage discounts are taken from the original base amount, not
// the running total, so discount ordering cannot compound. The final amount
// is clamped at zero. Pure: identical inputs always yield identical output.
func Compute(baseAmount float64, scopedRules []BillingRule, metrics []UsageMetric, currency string) *BillingCalculation {
	if currency == "" {
		currency = DefaultCurrency
	}

	ordered := make([]BillingRule, len(scopedRules))
	copy(ordered, scopedRules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	calc := &BillingCalculation{
		BaseAmount:  baseAmount,
		Adjustments: []Adjustment{},
		Currency:    currency,
	}

	total := baseAmount
	for i := range ordered {
		adjustment := computeAdjustment(&ordered[i], baseAmount, metrics)
		if adjustment == nil {
			continue
		}
		calc.Adjustments = append(calc.Adjustments, *adjustment)
		total += adjustment.Amount
	}

	total = roundCents(total)
	if total < 0 {
		total = 0
	}
	calc.FinalAmount = total

	return calc
}

// computeAdjustment returns the rule's monetary effect, or nil when the rule
// produces none (zero overage, or a side-effecting action type).
func computeAdjustment(rule *BillingRule, baseAmount float64, metrics []UsageMetric) *Adjustment {
	switch rule.Action.Type {
	case ActionApplyDiscount:
		amount := rule.Action.Amount
		description := fmt.Sprintf("%s: %.2f discount", rule.Name, amount)
		if rule.Action.AmountType == AmountPercentage {
			amount = baseAmount * rule.Action.Amount / 100
			description = fmt.Sprintf("%s: %.0f%% discount", rule.Name, rule.Action.Amount)
		}
		return &Adjustment{
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			Type:        rule.Type,
			Amount:      roundCents(-amount),
			Description: description,
		}

	case ActionAddCharge:
		metric := findMetric(metrics, rule.Action.Target)
		if metric == nil {
			return nil
		}

		var threshold float64
		if rule.Trigger.Threshold != nil {
			threshold = *rule.Trigger.Threshold
		}

		overage := metric.Value - threshold
		if overage <= 0 {
			return nil
		}

		amount := roundCents(overage * rule.Action.Amount)
		if amount == 0 {
			return nil
		}

		return &Adjustment{
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			Type:        rule.Type,
			Amount:      amount,
			Description: fmt.Sprintf("%s: %.2f %s over %.2f", rule.Name, overage, metric.Unit, threshold),
		}

	case ActionAddCredit:
		return &Adjustment{
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			Type:        rule.Type,
			Amount:      roundCents(-rule.Action.Amount),
			Description: fmt.Sprintf("%s: %.2f credit", rule.Name, rule.Action.Amount),
		}

	default:
		// Notifications and plan changes have no monetary effect at
		// calculation time; they only run on the event path.
		return nil
	}
}

func findMetric(metrics []UsageMetric, name string) *UsageMetric {
	for i := range metrics {
		if metrics[i].Name == name {
			return &metrics[i]
		}
	}
	return nil
}
