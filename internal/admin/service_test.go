package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsParams_Defaults(t *testing.T) {
	now := time.Now()
	params := MetricsParams{
		StartDate: now.AddDate(0, 0, -30),
		EndDate:   now,
		Interval:  "day",
		Limit:     100,
		Offset:    0,
	}

	assert.Equal(t, "day", params.Interval)
	assert.Equal(t, 100, params.Limit)
	assert.Equal(t, 0, params.Offset)
	assert.True(t, params.StartDate.Before(params.EndDate))
}

func TestExecutionsMetrics_Structure(t *testing.T) {
	metrics := ExecutionsMetrics{
		TotalExecutions: 42,
		ByAction: map[string]int64{
			"add_charge":  30,
			"add_credit":  10,
			"change_plan": 2,
		},
		Timeline: []ExecutionsTimeline{
			{Period: "2026-08-01", Executions: 20},
			{Period: "2026-08-02", Executions: 22},
		},
	}

	assert.Equal(t, int64(42), metrics.TotalExecutions)
	assert.Equal(t, int64(30), metrics.ByAction["add_charge"])
	assert.Len(t, metrics.Timeline, 2)
}

func TestAdjustmentsMetrics_Structure(t *testing.T) {
	metrics := AdjustmentsMetrics{
		TotalAdjustments: 5,
		NetAmount:        25.70,
		ByKind: map[string]float64{
			"charge":   45.50,
			"discount": -19.80,
		},
		Timeline: []AdjustmentsTimeline{
			{Period: "2026-08-01", Count: 3, Total: 15.50},
		},
	}

	assert.Equal(t, int64(5), metrics.TotalAdjustments)
	assert.Equal(t, 25.70, metrics.NetAmount)
	assert.Equal(t, -19.80, metrics.ByKind["discount"])
	assert.Len(t, metrics.Timeline, 1)
}

func TestTenantWithBilling_Structure(t *testing.T) {
	tenant := TenantWithBilling{
		ID:       "tenant-id",
		Name:     "Springfield High",
		Plan:     "professional",
		IsActive: true,
		Billing: TenantBillingSummary{
			RuleExecutions: 12,
			AdjustmentsNet: 5.00,
			ActiveWebhooks: 2,
		},
	}

	assert.Equal(t, "professional", tenant.Plan)
	assert.Equal(t, int64(12), tenant.Billing.RuleExecutions)
	assert.Equal(t, int64(2), tenant.Billing.ActiveWebhooks)
}

func TestSystemHealth_DegradedOnDatabaseFailure(t *testing.T) {
	health := SystemHealth{
		Status: "healthy",
		Database: ServiceHealth{
			Status:  "unhealthy",
			Message: "connection refused",
		},
	}

	if health.Database.Status != "healthy" {
		health.Status = "degraded"
	}

	assert.Equal(t, "degraded", health.Status)
}
