package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classforge/classforge/internal/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetPlanByID(ctx context.Context, planID string) (*Plan, error) {
	query := `
		SELECT id, name, monthly_price, quota_students, quota_storage_gb, quota_api_calls, quota_sms, created_at, updated_at
		FROM plans
		WHERE id = $1
	`

	var plan Plan
	err := r.pool.QueryRow(ctx, query, planID).Scan(
		&plan.ID,
		&plan.Name,
		&plan.MonthlyPrice,
		&plan.QuotaStudents,
		&plan.QuotaStorageGB,
		&plan.QuotaAPICalls,
		&plan.QuotaSMS,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan by id: %w", err)
	}

	return &plan, nil
}

func (r *Repository) GetDailyUsage(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]UsageRecord, error) {
	query := `
		SELECT id, tenant_id, date, active_students, storage_gb, api_calls, sms_sent, created_at, updated_at
		FROM usage_daily
		WHERE tenant_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`

	rows, err := r.pool.Query(ctx, query, tenantID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: get daily usage: %w", tenantID, err)
	}
	defer rows.Close()

	var records []UsageRecord
	for rows.Next() {
		var record UsageRecord
		err := rows.Scan(
			&record.ID,
			&record.TenantID,
			&record.Date,
			&record.ActiveStudents,
			&record.StorageGB,
			&record.APICalls,
			&record.SMSSent,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("tenant %s: scan usage record: %w", tenantID, err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tenant %s: iterate usage records: %w", tenantID, err)
	}

	return records, nil
}

// AggregatePeriod folds a date range into one record: gauges take the
// period's peak, counters are summed.
func (r *Repository) AggregatePeriod(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) (*UsageRecord, error) {
	query := `
		SELECT
			COALESCE(MAX(active_students), 0) as peak_students,
			COALESCE(MAX(storage_gb), 0) as peak_storage,
			COALESCE(SUM(api_calls), 0) as total_api_calls,
			COALESCE(SUM(sms_sent), 0) as total_sms
		FROM usage_daily
		WHERE tenant_id = $1 AND date >= $2 AND date <= $3
	`

	var record UsageRecord
	record.TenantID = tenantID
	record.Date = startDate

	err := r.pool.QueryRow(ctx, query, tenantID, startDate, endDate).Scan(
		&record.ActiveStudents,
		&record.StorageGB,
		&record.APICalls,
		&record.SMSSent,
	)

	if err != nil {
		return nil, fmt.Errorf("tenant %s: aggregate period: %w", tenantID, err)
	}

	return &record, nil
}

// IncrementDaily bumps one of the counter metrics for today's row.
func (r *Repository) IncrementDaily(ctx context.Context, tenantID uuid.UUID, date time.Time, field string, amount int) error {
	if field != "api_calls" && field != "sms_sent" {
		return domain.ErrInvalidMetric.WithError(fmt.Errorf("field %q is not a counter", field))
	}

	query := fmt.Sprintf(`
		INSERT INTO usage_daily (tenant_id, date, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, date)
		DO UPDATE SET %s = usage_daily.%s + EXCLUDED.%s, updated_at = NOW()
	`, field, field, field, field)

	_, err := r.pool.Exec(ctx, query, tenantID, date, amount)
	if err != nil {
		return fmt.Errorf("tenant %s: increment daily %s: %w", tenantID, field, err)
	}

	return nil
}

// RecordSnapshot upserts the gauge metrics for a day, keeping the high-water
// mark when called repeatedly.
func (r *Repository) RecordSnapshot(ctx context.Context, tenantID uuid.UUID, date time.Time, activeStudents int, storageGB float64) error {
	query := `
		INSERT INTO usage_daily (tenant_id, date, active_students, storage_gb)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, date)
		DO UPDATE SET
			active_students = GREATEST(usage_daily.active_students, EXCLUDED.active_students),
			storage_gb = GREATEST(usage_daily.storage_gb, EXCLUDED.storage_gb),
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, tenantID, date, activeStudents, storageGB)
	if err != nil {
		return fmt.Errorf("tenant %s: record snapshot: %w", tenantID, err)
	}

	return nil
}

// GetActiveTenantsWithPlan lists active tenants with their plan, for the
// quota check worker.
func (r *Repository) GetActiveTenantsWithPlan(ctx context.Context) ([]TenantPlan, error) {
	query := `
		SELECT id, plan
		FROM tenants
		WHERE is_active = true
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var tenants []TenantPlan
	for rows.Next() {
		var tp TenantPlan
		if err := rows.Scan(&tp.TenantID, &tp.PlanID); err != nil {
			return nil, fmt.Errorf("scan tenant plan: %w", err)
		}
		tenants = append(tenants, tp)
	}

	return tenants, rows.Err()
}
