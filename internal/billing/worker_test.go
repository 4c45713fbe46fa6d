package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/domain"
)

type mockTenantLister struct {
	tenants []domain.Tenant
	err     error
}

func (m *mockTenantLister) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	return m.tenants, m.err
}

func newTestWorker(store *mockRuleStore, tenants *mockTenantProvider, lister *mockTenantLister, usage *mockUsageProvider, eff *mockEffectuator, log *mockExecutionLog) *Worker {
	pricing := &mockPlanPricing{amounts: map[string]float64{
		domain.PlanBasic:        29,
		domain.PlanProfessional: 99,
	}}
	exec := NewExecutor(eff, &mockNotifier{}, log, discardLogger())
	engine := NewEngine(store, tenants, usage, pricing, exec, discardLogger())
	return NewWorker(engine, lister, discardLogger(), 0)
}

func TestWorker_RunsScheduledRules(t *testing.T) {
	tenant := testTenant(domain.PlanBasic)
	store := &mockRuleStore{rules: []BillingRule{
		{
			ID:       uuid.New(),
			Name:     "monthly loyalty credit",
			Type:     RuleTypeCredit,
			IsActive: true,
			Trigger:  RuleTrigger{Event: TriggerScheduled, Schedule: "monthly"},
			Action:   RuleAction{Type: ActionAddCredit, Amount: 5},
		},
		{
			ID:       uuid.New(),
			Name:     "renewal discount",
			Type:     RuleTypeDiscount,
			IsActive: true,
			Trigger:  RuleTrigger{Event: TriggerRenewal},
			Action:   RuleAction{Type: ActionApplyDiscount, Amount: 10, AmountType: AmountPercentage},
		},
	}}

	eff := &mockEffectuator{}
	log := &mockExecutionLog{}
	w := newTestWorker(store, &mockTenantProvider{tenant: tenant}, &mockTenantLister{tenants: []domain.Tenant{*tenant}}, &mockUsageProvider{}, eff, log)

	w.process(context.Background())

	if eff.credits != 1 {
		t.Errorf("credits = %d, want 1 (scheduled rule only)", eff.credits)
	}
	if eff.discounts != 0 {
		t.Errorf("discounts = %d, want 0 (event rules are not picked up)", eff.discounts)
	}
	if len(log.records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(log.records))
	}
}

func TestWorker_PlanScope(t *testing.T) {
	tenant := testTenant(domain.PlanBasic)
	store := &mockRuleStore{rules: []BillingRule{
		{
			ID:       uuid.New(),
			Name:     "pro-only credit",
			Type:     RuleTypeCredit,
			IsActive: true,
			Plans:    []string{domain.PlanProfessional},
			Trigger:  RuleTrigger{Event: TriggerScheduled, Schedule: "monthly"},
			Action:   RuleAction{Type: ActionAddCredit, Amount: 5},
		},
	}}

	eff := &mockEffectuator{}
	w := newTestWorker(store, &mockTenantProvider{tenant: tenant}, &mockTenantLister{tenants: []domain.Tenant{*tenant}}, &mockUsageProvider{}, eff, &mockExecutionLog{})

	w.process(context.Background())

	if eff.credits != 0 {
		t.Errorf("credits = %d, want 0 for out-of-plan tenant", eff.credits)
	}
}

func TestWorker_ExplicitTenantList(t *testing.T) {
	tenant := testTenant(domain.PlanBasic)
	other := uuid.New()
	store := &mockRuleStore{rules: []BillingRule{
		{
			ID:        uuid.New(),
			Name:      "targeted credit",
			Type:      RuleTypeCredit,
			IsActive:  true,
			TenantIDs: []uuid.UUID{tenant.ID, other},
			Trigger:   RuleTrigger{Event: TriggerScheduled},
			Action:    RuleAction{Type: ActionAddCredit, Amount: 5},
		},
	}}

	eff := &mockEffectuator{}
	lister := &mockTenantLister{err: domain.ErrTenantNotFound} // must not be consulted
	w := newTestWorker(store, &mockTenantProvider{tenant: tenant}, lister, &mockUsageProvider{}, eff, &mockExecutionLog{})

	w.process(context.Background())

	// The provider resolves every id to the same tenant, so both targets run.
	if eff.credits != 2 {
		t.Errorf("credits = %d, want 2 (explicit tenant list)", eff.credits)
	}
}

func TestWorker_ConditionsGateExecution(t *testing.T) {
	tenant := testTenant(domain.PlanBasic)
	store := &mockRuleStore{rules: []BillingRule{
		{
			ID:       uuid.New(),
			Name:     "storage cleanup charge",
			Type:     RuleTypeSurcharge,
			IsActive: true,
			Trigger:  RuleTrigger{Event: TriggerScheduled},
			Conditions: []RuleCondition{
				{Field: "usage.storage", Operator: OpGt, Value: 100.0},
			},
			Action: RuleAction{Type: ActionAddCharge, Amount: 1, Target: "storage"},
		},
	}}

	usage := &mockUsageProvider{metrics: []UsageMetric{{Name: "storage", Value: 50, Unit: "GB"}}}
	eff := &mockEffectuator{}
	w := newTestWorker(store, &mockTenantProvider{tenant: tenant}, &mockTenantLister{tenants: []domain.Tenant{*tenant}}, usage, eff, &mockExecutionLog{})

	w.process(context.Background())
	if eff.charges != 0 {
		t.Errorf("charges = %d, want 0 below threshold", eff.charges)
	}

	usage.metrics = []UsageMetric{{Name: "storage", Value: 150, Unit: "GB"}}
	w.process(context.Background())
	if eff.charges != 1 {
		t.Errorf("charges = %d, want 1 above threshold", eff.charges)
	}
}
