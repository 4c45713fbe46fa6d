package billing

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestTestRule(t *testing.T) {
	sample := Context{
		"storage_gb": 150.0,
		"tenant":     map[string]any{"plan": "professional"},
	}

	tests := []struct {
		name          string
		rule          BillingRule
		wantTriggered bool
		wantErrors    bool
	}{
		{
			name: "conditions hold",
			rule: BillingRule{
				ID:   uuid.New(),
				Name: "storage overage",
				Conditions: []RuleCondition{
					{Field: "storage_gb", Operator: OpGt, Value: 100.0},
				},
				Action: RuleAction{Type: ActionAddCharge, Amount: 0.10, Target: "storage"},
			},
			wantTriggered: true,
		},
		{
			name: "conditions fail",
			rule: BillingRule{
				ID:   uuid.New(),
				Name: "storage overage",
				Conditions: []RuleCondition{
					{Field: "storage_gb", Operator: OpGt, Value: 500.0},
				},
				Action: RuleAction{Type: ActionAddCharge, Amount: 0.10, Target: "storage"},
			},
			wantTriggered: false,
		},
		{
			name: "malformed condition collected as error",
			rule: BillingRule{
				ID:   uuid.New(),
				Name: "draft",
				Conditions: []RuleCondition{
					{Field: "storage_gb", Operator: "matches", Value: 100.0},
				},
				Action: RuleAction{Type: ActionAddCredit, Amount: 5},
			},
			wantErrors: true,
		},
		{
			name: "no conditions always triggers",
			rule: BillingRule{
				ID:     uuid.New(),
				Name:   "unconditional",
				Action: RuleAction{Type: ActionApplyDiscount, Amount: 10, AmountType: AmountPercentage},
			},
			wantTriggered: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TestRule(&tt.rule, sample)

			if tt.wantErrors {
				if len(result.Errors) == 0 {
					t.Error("TestRule() should collect errors for a malformed draft")
				}
				return
			}

			if result.Triggered != tt.wantTriggered {
				t.Errorf("Triggered = %v, want %v", result.Triggered, tt.wantTriggered)
			}
			if tt.wantTriggered && result.Result == nil {
				t.Error("Result should describe the action when triggered")
			}
			if !tt.wantTriggered && result.Result != nil {
				t.Error("Result should be empty when not triggered")
			}
		})
	}
}

func TestTestRule_ActionDescriptions(t *testing.T) {
	sample := Context{"storage_gb": 150.0}
	cond := []RuleCondition{{Field: "storage_gb", Operator: OpGt, Value: 100.0}}

	tests := []struct {
		name     string
		action   RuleAction
		contains string
	}{
		{"percentage discount", RuleAction{Type: ActionApplyDiscount, Amount: 20, AmountType: AmountPercentage}, "20% discount"},
		{"fixed discount", RuleAction{Type: ActionApplyDiscount, Amount: 15, AmountType: AmountFixed}, "fixed discount of 15.00"},
		{"charge", RuleAction{Type: ActionAddCharge, Amount: 0.10, Target: "storage"}, "per unit of storage"},
		{"credit", RuleAction{Type: ActionAddCredit, Amount: 5}, "credit 5.00"},
		{"notification", RuleAction{Type: ActionSendNotification, Target: "billing_email"}, "send a notification"},
		{"upgrade", RuleAction{Type: ActionUpgradePlan, Target: "enterprise"}, "change plan to enterprise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := BillingRule{ID: uuid.New(), Name: tt.name, Conditions: cond, Action: tt.action}
			result := TestRule(&rule, sample)

			if !result.Triggered {
				t.Fatal("rule should trigger against the sample")
			}
			desc, _ := result.Result["description"].(string)
			if !strings.Contains(desc, tt.contains) {
				t.Errorf("description = %q, want it to contain %q", desc, tt.contains)
			}
		})
	}
}

func TestTestRule_NoSideEffects(t *testing.T) {
	// Simulation must be callable without an executor at all; it only ever
	// reads the sample context.
	sample := Context{"storage_gb": 150.0}
	rule := BillingRule{
		ID:   uuid.New(),
		Name: "auto upgrade",
		Conditions: []RuleCondition{
			{Field: "storage_gb", Operator: OpGt, Value: 100.0},
		},
		Action: RuleAction{Type: ActionUpgradePlan, Target: "enterprise"},
	}

	result := TestRule(&rule, sample)

	if !result.Triggered {
		t.Fatal("rule should trigger")
	}
	if len(sample) != 1 {
		t.Errorf("sample context mutated: %v", sample)
	}
}
