// Package ledger records the monetary side effects of fired billing rules.
// Each effect becomes a pending invoice adjustment that the next invoice run
// picks up; plan changes go straight to the tenant record.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/domain"
)

// InvoiceAdjustment is one pending line item on a tenant's next invoice.
type InvoiceAdjustment struct {
	ID        uuid.UUID         `json:"id"`
	TenantID  uuid.UUID         `json:"tenant_id"`
	Kind      string            `json:"kind"`
	Amount    float64           `json:"amount"`
	Unit      string            `json:"unit,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

const (
	KindDiscount = "discount"
	KindCharge   = "charge"
	KindCredit   = "credit"
)

type TenantPlanUpdater interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error
}

type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Ledger satisfies the engine's effectuator dependency.
type Ledger struct {
	pool    pgxExecutor
	tenants TenantPlanUpdater
	logger  *slog.Logger
}

func New(pool pgxExecutor, tenants TenantPlanUpdater, logger *slog.Logger) *Ledger {
	return &Ledger{pool: pool, tenants: tenants, logger: logger}
}

func (l *Ledger) ApplyDiscount(ctx context.Context, tenantID uuid.UUID, amount float64, amountType billing.AmountType, metadata map[string]string) error {
	unit := ""
	if amountType == billing.AmountPercentage {
		unit = "percent"
	}
	return l.insert(ctx, &InvoiceAdjustment{
		TenantID: tenantID,
		Kind:     KindDiscount,
		Amount:   amount,
		Unit:     unit,
		Metadata: metadata,
	})
}

func (l *Ledger) AddCharge(ctx context.Context, tenantID uuid.UUID, amount float64, target string, metadata map[string]string) error {
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["target"] = target
	return l.insert(ctx, &InvoiceAdjustment{
		TenantID: tenantID,
		Kind:     KindCharge,
		Amount:   amount,
		Metadata: metadata,
	})
}

func (l *Ledger) AddCredit(ctx context.Context, tenantID uuid.UUID, amount float64, metadata map[string]string) error {
	return l.insert(ctx, &InvoiceAdjustment{
		TenantID: tenantID,
		Kind:     KindCredit,
		Amount:   amount,
		Metadata: metadata,
	})
}

// ChangePlan moves the tenant to the target plan after validating it exists.
func (l *Ledger) ChangePlan(ctx context.Context, tenantID uuid.UUID, targetPlan string) error {
	if !domain.IsValidPlan(targetPlan) {
		return domain.ErrPlanNotFound.WithError(fmt.Errorf("plan %q", targetPlan))
	}

	tenant, err := l.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("change plan: %w", err)
	}

	if tenant.Plan == targetPlan {
		l.logger.Debug("plan change skipped, tenant already on target plan",
			"tenant_id", tenantID,
			"plan", targetPlan,
		)
		return nil
	}

	if err := l.tenants.UpdatePlan(ctx, tenantID, targetPlan); err != nil {
		return fmt.Errorf("change plan: %w", err)
	}

	l.logger.Info("tenant plan changed",
		"tenant_id", tenantID,
		"from", tenant.Plan,
		"to", targetPlan,
	)

	return nil
}

func (l *Ledger) insert(ctx context.Context, adj *InvoiceAdjustment) error {
	metadata, err := json.Marshal(adj.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		INSERT INTO invoice_adjustments (id, tenant_id, kind, amount, unit, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if adj.ID == uuid.Nil {
		adj.ID = uuid.New()
	}

	if _, err := l.pool.Exec(ctx, query, adj.ID, adj.TenantID, adj.Kind, adj.Amount, adj.Unit, metadata); err != nil {
		return fmt.Errorf("insert invoice adjustment: %w", err)
	}

	return nil
}
