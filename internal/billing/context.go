package billing

import (
	"strings"

	"github.com/classforge/classforge/internal/domain"
)

// EvalContext assembles the context object conditions and triggers are
// evaluated against. Usage metrics are exposed twice: under "usage" keyed by
// metric name, and flattened at the top level both by name and as
// "<name>_<unit>" (lowercased), so authors can write either
// "usage.storage" or "storage_gb".
func EvalContext(tenant *domain.Tenant, metrics []UsageMetric, event string) Context {
	usage := make(map[string]any, len(metrics))
	for _, m := range metrics {
		usage[m.Name] = m.Value
		if m.Unit != "" {
			usage[m.Name+"_"+strings.ToLower(m.Unit)] = m.Value
		}
	}

	ctx := Context{"usage": usage}
	for key, value := range usage {
		ctx[key] = value
	}

	if tenant != nil {
		ctx["tenant"] = map[string]any{
			"id":        tenant.ID.String(),
			"name":      tenant.Name,
			"slug":      tenant.Slug,
			"plan":      tenant.Plan,
			"is_active": tenant.IsActive,
		}
	}

	if event != "" {
		ctx["event"] = event
	}

	return ctx
}

// Event returns the event string of a context, if any.
func (c Context) Event() string {
	event, _ := c["event"].(string)
	return event
}

// MetricValue looks up a named usage metric in the context.
func (c Context) MetricValue(name string) (float64, bool) {
	usage, ok := asMap(c["usage"])
	if !ok {
		return 0, false
	}
	return toFloat(usage[name])
}
