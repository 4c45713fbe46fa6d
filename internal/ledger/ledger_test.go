package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/domain"
)

type mockTenants struct {
	tenant      *domain.Tenant
	planUpdates []string
	err         error
}

func (m *mockTenants) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tenant, nil
}

func (m *mockTenants) UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error {
	m.planUpdates = append(m.planUpdates, plan)
	return m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLedger_InsertAdjustments(t *testing.T) {
	tests := []struct {
		name string
		call func(l *Ledger, tenantID uuid.UUID) error
		kind string
	}{
		{
			name: "percentage discount",
			call: func(l *Ledger, tenantID uuid.UUID) error {
				return l.ApplyDiscount(context.Background(), tenantID, 20, billing.AmountPercentage, nil)
			},
			kind: KindDiscount,
		},
		{
			name: "charge",
			call: func(l *Ledger, tenantID uuid.UUID) error {
				return l.AddCharge(context.Background(), tenantID, 5, "storage", nil)
			},
			kind: KindCharge,
		},
		{
			name: "credit",
			call: func(l *Ledger, tenantID uuid.UUID) error {
				return l.AddCredit(context.Background(), tenantID, 10, map[string]string{"reason": "welcome"})
			},
			kind: KindCredit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tenantID := uuid.New()
			mock.ExpectExec(`INSERT INTO invoice_adjustments`).
				WithArgs(pgxmock.AnyArg(), tenantID, tt.kind, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))

			ledger := New(mock, &mockTenants{}, testLogger())
			require.NoError(t, tt.call(ledger, tenantID))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLedger_ChangePlan(t *testing.T) {
	tenantID := uuid.New()

	t.Run("changes plan", func(t *testing.T) {
		tenants := &mockTenants{tenant: &domain.Tenant{ID: tenantID, Plan: domain.PlanBasic}}
		ledger := New(nil, tenants, testLogger())

		require.NoError(t, ledger.ChangePlan(context.Background(), tenantID, domain.PlanProfessional))
		assert.Equal(t, []string{domain.PlanProfessional}, tenants.planUpdates)
	})

	t.Run("noop when already on target plan", func(t *testing.T) {
		tenants := &mockTenants{tenant: &domain.Tenant{ID: tenantID, Plan: domain.PlanEnterprise}}
		ledger := New(nil, tenants, testLogger())

		require.NoError(t, ledger.ChangePlan(context.Background(), tenantID, domain.PlanEnterprise))
		assert.Empty(t, tenants.planUpdates)
	})

	t.Run("rejects unknown plan", func(t *testing.T) {
		tenants := &mockTenants{tenant: &domain.Tenant{ID: tenantID, Plan: domain.PlanBasic}}
		ledger := New(nil, tenants, testLogger())

		err := ledger.ChangePlan(context.Background(), tenantID, "platinum")
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.ErrPlanNotFound.Code, appErr.Code)
		assert.Empty(t, tenants.planUpdates)
	})
}
