package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB interface for database operations (compatible with pgxpool.Pool and pgxmock)
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// AdjustmentSummary aggregates invoice adjustments of one kind over a period.
type AdjustmentSummary struct {
	Kind  string  `json:"kind"`
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

// DailyAdjustment is one day of adjustment totals for timeline charts.
type DailyAdjustment struct {
	Day   time.Time `json:"day"`
	Kind  string    `json:"kind"`
	Total float64   `json:"total"`
}

// RuleActivity counts executions per rule over a period.
type RuleActivity struct {
	RuleID       uuid.UUID  `json:"rule_id"`
	Executions   int64      `json:"executions"`
	LastExecuted *time.Time `json:"last_executed,omitempty"`
}

// Repository handles database reads for billing reports
type Repository struct {
	db DB
}

// NewRepository creates a new report repository
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// AdjustmentSummary returns per-kind adjustment totals for one tenant.
func (r *Repository) AdjustmentSummary(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]AdjustmentSummary, error) {
	query := `
		SELECT kind, COUNT(*), COALESCE(SUM(amount), 0)
		FROM invoice_adjustments
		WHERE tenant_id = $1
		  AND created_at >= $2
		  AND created_at < $3
		GROUP BY kind
		ORDER BY kind
	`

	rows, err := r.db.Query(ctx, query, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []AdjustmentSummary
	for rows.Next() {
		var s AdjustmentSummary
		if err := rows.Scan(&s.Kind, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// AdjustmentTimeline returns per-day adjustment totals for one tenant,
// oldest first, for dashboard charts.
func (r *Repository) AdjustmentTimeline(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]DailyAdjustment, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day, kind, COALESCE(SUM(amount), 0)
		FROM invoice_adjustments
		WHERE tenant_id = $1
		  AND created_at >= $2
		  AND created_at < $3
		GROUP BY day, kind
		ORDER BY day ASC, kind
	`

	rows, err := r.db.Query(ctx, query, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timeline []DailyAdjustment
	for rows.Next() {
		var d DailyAdjustment
		if err := rows.Scan(&d.Day, &d.Kind, &d.Total); err != nil {
			return nil, err
		}
		timeline = append(timeline, d)
	}

	return timeline, rows.Err()
}

// RuleActivity returns execution counts per rule for one tenant, most active
// first.
func (r *Repository) RuleActivity(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]RuleActivity, error) {
	query := `
		SELECT rule_id, COUNT(*), MAX(executed_at)
		FROM rule_executions
		WHERE tenant_id = $1
		  AND executed_at >= $2
		  AND executed_at < $3
		GROUP BY rule_id
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.db.Query(ctx, query, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []RuleActivity
	for rows.Next() {
		var a RuleActivity
		if err := rows.Scan(&a.RuleID, &a.Executions, &a.LastExecuted); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}

	return activity, rows.Err()
}

// GlobalAdjustmentSummary returns per-kind totals across all tenants (super
// admin overview).
func (r *Repository) GlobalAdjustmentSummary(ctx context.Context, start, end time.Time) ([]AdjustmentSummary, error) {
	query := `
		SELECT kind, COUNT(*), COALESCE(SUM(amount), 0)
		FROM invoice_adjustments
		WHERE created_at >= $1
		  AND created_at < $2
		GROUP BY kind
		ORDER BY kind
	`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []AdjustmentSummary
	for rows.Next() {
		var s AdjustmentSummary
		if err := rows.Scan(&s.Kind, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// DeleteOldExecutions removes rule execution records older than the specified
// duration.
func (r *Repository) DeleteOldExecutions(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM rule_executions
		WHERE executed_at < $1
	`

	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
