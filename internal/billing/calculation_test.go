package billing

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestCompute_StorageOverage(t *testing.T) {
	// Professional plan at 99.00 with 150 GB used against a 100 GB
	// threshold at 0.10/GB: 50 GB overage adds 5.00.
	rule := BillingRule{
		ID:       uuid.New(),
		Name:     "storage overage",
		Type:     RuleTypeUsage,
		IsActive: true,
		Trigger:  RuleTrigger{Event: TriggerUsageThreshold, Metric: "storage", Threshold: floatPtr(100)},
		Action:   RuleAction{Type: ActionAddCharge, Amount: 0.10, Target: "storage"},
	}

	metrics := []UsageMetric{{Name: "storage", Value: 150, Unit: "GB", Period: "2026-08"}}

	calc := Compute(99.00, []BillingRule{rule}, metrics, "USD")

	if calc.BaseAmount != 99.00 {
		t.Errorf("BaseAmount = %v, want 99.00", calc.BaseAmount)
	}
	if len(calc.Adjustments) != 1 {
		t.Fatalf("len(Adjustments) = %d, want 1", len(calc.Adjustments))
	}
	if calc.Adjustments[0].Amount != 5.00 {
		t.Errorf("Adjustments[0].Amount = %v, want 5.00", calc.Adjustments[0].Amount)
	}
	if calc.FinalAmount != 104.00 {
		t.Errorf("FinalAmount = %v, want 104.00", calc.FinalAmount)
	}
	if calc.Currency != "USD" {
		t.Errorf("Currency = %v, want USD", calc.Currency)
	}
}

func TestCompute_PriorityOrderAndNonCompoundingDiscount(t *testing.T) {
	// Two rules out of priority order: the discount (priority 1) must apply
	// before the surcharge (priority 2), and the percentage is taken from
	// the original base, not the running total.
	surcharge := BillingRule{
		ID:       uuid.New(),
		Name:     "api overage",
		Type:     RuleTypeSurcharge,
		IsActive: true,
		Priority: 2,
		Trigger:  RuleTrigger{Event: TriggerUsageThreshold, Metric: "api_calls", Threshold: floatPtr(1000)},
		Action:   RuleAction{Type: ActionAddCharge, Amount: 0.10, Target: "api_calls"},
	}
	discount := BillingRule{
		ID:       uuid.New(),
		Name:     "loyalty discount",
		Type:     RuleTypeDiscount,
		IsActive: true,
		Priority: 1,
		Trigger:  RuleTrigger{Event: TriggerRenewal},
		Action:   RuleAction{Type: ActionApplyDiscount, Amount: 20, AmountType: AmountPercentage},
	}

	metrics := []UsageMetric{{Name: "api_calls", Value: 1100, Unit: "calls", Period: "2026-08"}}

	calc := Compute(100.00, []BillingRule{surcharge, discount}, metrics, "USD")

	if len(calc.Adjustments) != 2 {
		t.Fatalf("len(Adjustments) = %d, want 2", len(calc.Adjustments))
	}
	if calc.Adjustments[0].RuleName != "loyalty discount" || calc.Adjustments[0].Amount != -20.00 {
		t.Errorf("Adjustments[0] = %+v, want loyalty discount at -20.00", calc.Adjustments[0])
	}
	if calc.Adjustments[1].RuleName != "api overage" || calc.Adjustments[1].Amount != 10.00 {
		t.Errorf("Adjustments[1] = %+v, want api overage at +10.00", calc.Adjustments[1])
	}
	if calc.FinalAmount != 90.00 {
		t.Errorf("FinalAmount = %v, want 90.00", calc.FinalAmount)
	}
}

func TestCompute_StablePriorityTieBreak(t *testing.T) {
	first := BillingRule{
		ID:       uuid.New(),
		Name:     "first credit",
		Type:     RuleTypeCredit,
		IsActive: true,
		Priority: 5,
		Action:   RuleAction{Type: ActionAddCredit, Amount: 1},
	}
	second := BillingRule{
		ID:       uuid.New(),
		Name:     "second credit",
		Type:     RuleTypeCredit,
		IsActive: true,
		Priority: 5,
		Action:   RuleAction{Type: ActionAddCredit, Amount: 2},
	}

	calc := Compute(50, []BillingRule{first, second}, nil, "")

	if len(calc.Adjustments) != 2 {
		t.Fatalf("len(Adjustments) = %d, want 2", len(calc.Adjustments))
	}
	if calc.Adjustments[0].RuleName != "first credit" || calc.Adjustments[1].RuleName != "second credit" {
		t.Errorf("equal priorities must keep input order, got %q then %q",
			calc.Adjustments[0].RuleName, calc.Adjustments[1].RuleName)
	}
}

func TestCompute_ClampsAtZero(t *testing.T) {
	credit := BillingRule{
		ID:       uuid.New(),
		Name:     "big credit",
		Type:     RuleTypeCredit,
		IsActive: true,
		Action:   RuleAction{Type: ActionAddCredit, Amount: 500},
	}

	calc := Compute(29, []BillingRule{credit}, nil, "USD")

	if calc.FinalAmount != 0 {
		t.Errorf("FinalAmount = %v, want 0 (never negative)", calc.FinalAmount)
	}
	if calc.Adjustments[0].Amount != -500 {
		t.Errorf("Adjustments[0].Amount = %v, want -500 (adjustment itself unclamped)", calc.Adjustments[0].Amount)
	}
}

func TestCompute_NoOverageNoAdjustment(t *testing.T) {
	rule := BillingRule{
		ID:       uuid.New(),
		Name:     "storage overage",
		Type:     RuleTypeUsage,
		IsActive: true,
		Trigger:  RuleTrigger{Event: TriggerUsageThreshold, Metric: "storage", Threshold: floatPtr(100)},
		Action:   RuleAction{Type: ActionAddCharge, Amount: 0.10, Target: "storage"},
	}

	tests := []struct {
		name    string
		metrics []UsageMetric
	}{
		{"usage below threshold", []UsageMetric{{Name: "storage", Value: 80, Unit: "GB"}}},
		{"usage at threshold", []UsageMetric{{Name: "storage", Value: 100, Unit: "GB"}}},
		{"metric missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := Compute(99, []BillingRule{rule}, tt.metrics, "USD")
			if len(calc.Adjustments) != 0 {
				t.Errorf("len(Adjustments) = %d, want 0", len(calc.Adjustments))
			}
			if calc.FinalAmount != 99 {
				t.Errorf("FinalAmount = %v, want 99", calc.FinalAmount)
			}
		})
	}
}

func TestCompute_SideEffectActionsHaveNoMonetaryEffect(t *testing.T) {
	rules := []BillingRule{
		{
			ID:       uuid.New(),
			Name:     "quota warning",
			Type:     RuleTypeUsage,
			IsActive: true,
			Action:   RuleAction{Type: ActionSendNotification, Target: "billing_email"},
		},
		{
			ID:       uuid.New(),
			Name:     "auto upgrade",
			Type:     RuleTypeUsage,
			IsActive: true,
			Action:   RuleAction{Type: ActionUpgradePlan, Target: "enterprise"},
		},
	}

	calc := Compute(29, rules, nil, "USD")

	if len(calc.Adjustments) != 0 {
		t.Errorf("len(Adjustments) = %d, want 0", len(calc.Adjustments))
	}
	if calc.FinalAmount != 29 {
		t.Errorf("FinalAmount = %v, want 29", calc.FinalAmount)
	}
}

func TestCompute_FixedDiscountAndRounding(t *testing.T) {
	rule := BillingRule{
		ID:       uuid.New(),
		Name:     "partner discount",
		Type:     RuleTypeDiscount,
		IsActive: true,
		Action:   RuleAction{Type: ActionApplyDiscount, Amount: 33.333, AmountType: AmountFixed},
	}

	calc := Compute(99.99, []BillingRule{rule}, nil, "USD")

	if calc.Adjustments[0].Amount != -33.33 {
		t.Errorf("Adjustments[0].Amount = %v, want -33.33", calc.Adjustments[0].Amount)
	}
	if calc.FinalAmount != 66.66 {
		t.Errorf("FinalAmount = %v, want 66.66", calc.FinalAmount)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	rules := []BillingRule{
		{
			ID:       uuid.New(),
			Name:     "discount",
			Type:     RuleTypeDiscount,
			IsActive: true,
			Priority: 1,
			Action:   RuleAction{Type: ActionApplyDiscount, Amount: 10, AmountType: AmountPercentage},
		},
		{
			ID:       uuid.New(),
			Name:     "credit",
			Type:     RuleTypeCredit,
			IsActive: true,
			Priority: 2,
			Action:   RuleAction{Type: ActionAddCredit, Amount: 3.50},
		},
	}
	metrics := []UsageMetric{{Name: "storage", Value: 120, Unit: "GB"}}

	first := Compute(99, rules, metrics, "USD")
	for i := 0; i < 10; i++ {
		again := Compute(99, rules, metrics, "USD")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Compute() not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	rules := []BillingRule{
		{ID: uuid.New(), Name: "b", IsActive: true, Priority: 2, Action: RuleAction{Type: ActionAddCredit, Amount: 1}},
		{ID: uuid.New(), Name: "a", IsActive: true, Priority: 1, Action: RuleAction{Type: ActionAddCredit, Amount: 1}},
	}

	Compute(10, rules, nil, "USD")

	if rules[0].Name != "b" || rules[1].Name != "a" {
		t.Error("Compute() must not reorder the caller's slice")
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.1 + 0.2, 0.3},
		{104.0049, 104.00},
		{104.006, 104.01},
		{-20.004, -20.00},
		{0, 0},
	}

	for _, tt := range tests {
		if got := roundCents(tt.in); got != tt.want {
			t.Errorf("roundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
