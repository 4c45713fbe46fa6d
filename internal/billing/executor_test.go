package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

type mockEffectuator struct {
	discounts   int
	charges     int
	credits     int
	planChanges []string
	err         error
}

func (m *mockEffectuator) ApplyDiscount(ctx context.Context, tenantID uuid.UUID, amount float64, amountType AmountType, metadata map[string]string) error {
	m.discounts++
	return m.err
}

func (m *mockEffectuator) AddCharge(ctx context.Context, tenantID uuid.UUID, amount float64, target string, metadata map[string]string) error {
	m.charges++
	return m.err
}

func (m *mockEffectuator) AddCredit(ctx context.Context, tenantID uuid.UUID, amount float64, metadata map[string]string) error {
	m.credits++
	return m.err
}

func (m *mockEffectuator) ChangePlan(ctx context.Context, tenantID uuid.UUID, targetPlan string) error {
	m.planChanges = append(m.planChanges, targetPlan)
	return m.err
}

type mockNotifier struct {
	notified int
	err      error
}

func (m *mockNotifier) Notify(ctx context.Context, tenantID uuid.UUID, rule *BillingRule, evalCtx Context) error {
	m.notified++
	return m.err
}

type mockExecutionLog struct {
	records []ExecutionRecord
	err     error
}

func (m *mockExecutionLog) Record(ctx context.Context, rec *ExecutionRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockExecutionLog) ListHistory(ctx context.Context, ruleID uuid.UUID, limit int) ([]ExecutionRecord, error) {
	return m.records, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecutor_Execute_ActionDispatch(t *testing.T) {
	tests := []struct {
		name   string
		action RuleAction
		check  func(t *testing.T, eff *mockEffectuator, ntf *mockNotifier)
	}{
		{
			name:   "apply_discount",
			action: RuleAction{Type: ActionApplyDiscount, Amount: 20, AmountType: AmountPercentage},
			check: func(t *testing.T, eff *mockEffectuator, ntf *mockNotifier) {
				if eff.discounts != 1 {
					t.Errorf("discounts = %d, want 1", eff.discounts)
				}
			},
		},
		{
			name:   "add_charge",
			action: RuleAction{Type: ActionAddCharge, Amount: 0.10, Target: "storage"},
			check: func(t *testing.T, eff *mockEffectuator, ntf *mockNotifier) {
				if eff.charges != 1 {
					t.Errorf("charges = %d, want 1", eff.charges)
				}
			},
		},
		{
			name:   "add_credit",
			action: RuleAction{Type: ActionAddCredit, Amount: 15},
			check: func(t *testing.T, eff *mockEffectuator, ntf *mockNotifier) {
				if eff.credits != 1 {
					t.Errorf("credits = %d, want 1", eff.credits)
				}
			},
		},
		{
			name:   "send_notification",
			action: RuleAction{Type: ActionSendNotification, Target: "billing_email"},
			check: func(t *testing.T, eff *mockEffectuator, ntf *mockNotifier) {
				if ntf.notified != 1 {
					t.Errorf("notified = %d, want 1", ntf.notified)
				}
			},
		},
		{
			name:   "upgrade_plan",
			action: RuleAction{Type: ActionUpgradePlan, Target: "enterprise"},
			check: func(t *testing.T, eff *mockEffectuator, ntf *mockNotifier) {
				if len(eff.planChanges) != 1 || eff.planChanges[0] != "enterprise" {
					t.Errorf("planChanges = %v, want [enterprise]", eff.planChanges)
				}
			},
		},
		{
			name:   "downgrade_plan",
			action: RuleAction{Type: ActionDowngradePlan, Target: "basic"},
			check: func(t *testing.T, eff *mockEffectuator, ntf *mockNotifier) {
				if len(eff.planChanges) != 1 || eff.planChanges[0] != "basic" {
					t.Errorf("planChanges = %v, want [basic]", eff.planChanges)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff := &mockEffectuator{}
			ntf := &mockNotifier{}
			log := &mockExecutionLog{}
			exec := NewExecutor(eff, ntf, log, discardLogger())

			rule := &BillingRule{ID: uuid.New(), Name: tt.name, IsActive: true, Action: tt.action}
			tenantID := uuid.New()

			if err := exec.Execute(context.Background(), rule, tenantID, Context{}); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			tt.check(t, eff, ntf)

			if len(log.records) != 1 {
				t.Fatalf("len(records) = %d, want 1", len(log.records))
			}
			rec := log.records[0]
			if rec.RuleID != rule.ID || rec.TenantID != tenantID {
				t.Errorf("record = %+v, want rule %s tenant %s", rec, rule.ID, tenantID)
			}
			if rec.Action.Type != tt.action.Type {
				t.Errorf("record action = %s, want %s", rec.Action.Type, tt.action.Type)
			}
		})
	}
}

func TestExecutor_Execute_RecordsEvenWhenHandlerFails(t *testing.T) {
	eff := &mockEffectuator{err: errors.New("ledger unavailable")}
	log := &mockExecutionLog{}
	exec := NewExecutor(eff, &mockNotifier{}, log, discardLogger())

	rule := &BillingRule{
		ID:     uuid.New(),
		Name:   "credit",
		Action: RuleAction{Type: ActionAddCredit, Amount: 10},
	}

	err := exec.Execute(context.Background(), rule, uuid.New(), Context{})
	if err == nil {
		t.Fatal("Execute() should surface the handler error")
	}
	if !errors.Is(err, eff.err) {
		t.Errorf("Execute() error = %v, want wrapped %v", err, eff.err)
	}

	if len(log.records) != 1 {
		t.Errorf("len(records) = %d, want 1 (recording is unconditional)", len(log.records))
	}
}

func TestExecutor_Execute_RecorderFailureDoesNotFailAction(t *testing.T) {
	eff := &mockEffectuator{}
	log := &mockExecutionLog{err: errors.New("db down")}
	exec := NewExecutor(eff, &mockNotifier{}, log, discardLogger())

	rule := &BillingRule{
		ID:     uuid.New(),
		Name:   "credit",
		Action: RuleAction{Type: ActionAddCredit, Amount: 10},
	}

	if err := exec.Execute(context.Background(), rule, uuid.New(), Context{}); err != nil {
		t.Errorf("Execute() error = %v, want nil when only the recorder fails", err)
	}
	if eff.credits != 1 {
		t.Errorf("credits = %d, want 1", eff.credits)
	}
}

func TestExecutor_Execute_UnknownActionType(t *testing.T) {
	log := &mockExecutionLog{}
	exec := NewExecutor(&mockEffectuator{}, &mockNotifier{}, log, discardLogger())

	rule := &BillingRule{
		ID:     uuid.New(),
		Name:   "bad",
		Action: RuleAction{Type: "explode"},
	}

	if err := exec.Execute(context.Background(), rule, uuid.New(), Context{}); err == nil {
		t.Error("Execute() should fail for an unknown action type")
	}
	if len(log.records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(log.records))
	}
}
