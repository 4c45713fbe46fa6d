package billing

// Triggered reports whether the rule's activation event currently holds for
// the given context. Inactive rules never trigger. A malformed
// usage_threshold trigger (missing metric or threshold) evaluates to not
// triggered rather than erroring, so a bad rule cannot fire.
func Triggered(rule *BillingRule, ctx Context) bool {
	if !rule.IsActive {
		return false
	}

	switch rule.Trigger.Event {
	case TriggerUsageThreshold:
		if rule.Trigger.Metric == "" || rule.Trigger.Threshold == nil {
			return false
		}
		value, ok := ctx.MetricValue(rule.Trigger.Metric)
		if !ok {
			return false
		}
		return value > *rule.Trigger.Threshold

	case TriggerPlanChange:
		return ctx.Event() == EventPlanChanged

	case TriggerRenewal:
		return ctx.Event() == EventSubscriptionRenewed

	case TriggerManual, TriggerScheduled:
		// Externally triggered: eligible whenever the scheduler or a manual
		// call explicitly reaches this rule.
		return true

	default:
		return false
	}
}

// Fires reports whether the rule is considered fired for action execution:
// the trigger holds and all conditions evaluate true.
func Fires(rule *BillingRule, ctx Context) bool {
	return Triggered(rule, ctx) && EvaluateAll(rule.Conditions, ctx)
}
