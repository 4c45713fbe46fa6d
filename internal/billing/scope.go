package billing

import (
	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/domain"
)

// SelectApplicable filters the full rule set down to the rules applicable to
// a tenant and usage snapshot: active, within the tenant/plan allow-lists
// (absent list = applies to all), and with every condition holding against
// the {tenant, usage} context. Input order is preserved so the sequencer's
// stable priority sort keeps deterministic tie-breaking.
func SelectApplicable(rules []BillingRule, tenant *domain.Tenant, metrics []UsageMetric) []BillingRule {
	ctx := EvalContext(tenant, metrics, "")

	var applicable []BillingRule
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}

		if len(rule.TenantIDs) > 0 && !containsUUID(rule.TenantIDs, tenant.ID) {
			continue
		}

		if len(rule.Plans) > 0 && !containsString(rule.Plans, tenant.Plan) {
			continue
		}

		if !EvaluateAll(rule.Conditions, ctx) {
			continue
		}

		applicable = append(applicable, rule)
	}

	return applicable
}

func containsUUID(list []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range list {
		if candidate == id {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}
