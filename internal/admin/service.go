package admin

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classforge/classforge/internal/domain"
)

// Service handles admin business logic
type Service struct {
	db        *pgxpool.Pool
	logger    *slog.Logger
	startedAt time.Time
}

// NewService creates a new admin service
func NewService(db *pgxpool.Pool, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// GetExecutionsMetrics retrieves rule execution statistics for a tenant
func (s *Service) GetExecutionsMetrics(ctx context.Context, tenantID uuid.UUID, params MetricsParams) (*ExecutionsMetrics, error) {
	var totalExecutions int64
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM rule_executions
		WHERE tenant_id = $1
		  AND executed_at BETWEEN $2 AND $3
	`, tenantID, params.StartDate, params.EndDate).Scan(&totalExecutions)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: failed to count executions: %w", tenantID, err)
	}

	// Breakdown by action type
	rows, err := s.db.Query(ctx, `
		SELECT action->>'type' as action_type, COUNT(*)
		FROM rule_executions
		WHERE tenant_id = $1
		  AND executed_at BETWEEN $2 AND $3
		GROUP BY action_type
	`, tenantID, params.StartDate, params.EndDate)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: failed to query action breakdown: %w", tenantID, err)
	}
	defer rows.Close()

	byAction := make(map[string]int64)
	for rows.Next() {
		var actionType string
		var count int64
		if err := rows.Scan(&actionType, &count); err != nil {
			return nil, fmt.Errorf("tenant %s: failed to scan action breakdown: %w", tenantID, err)
		}
		byAction[actionType] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("tenant %s: action breakdown iteration error: %w", tenantID, err)
	}

	// Timeline of executions
	rows, err = s.db.Query(ctx, `
		SELECT
			date_trunc($1, executed_at) as period,
			COUNT(*) as executions
		FROM rule_executions
		WHERE tenant_id = $2
		  AND executed_at BETWEEN $3 AND $4
		GROUP BY period
		ORDER BY period ASC
		LIMIT $5 OFFSET $6
	`, params.Interval, tenantID, params.StartDate, params.EndDate, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: failed to query executions timeline: %w", tenantID, err)
	}
	defer rows.Close()

	timeline := make([]ExecutionsTimeline, 0)
	for rows.Next() {
		var entry ExecutionsTimeline
		var period interface{}
		if err := rows.Scan(&period, &entry.Executions); err != nil {
			return nil, fmt.Errorf("tenant %s: failed to scan executions timeline: %w", tenantID, err)
		}
		entry.Period = fmt.Sprint(period)
		timeline = append(timeline, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("tenant %s: executions timeline iteration error: %w", tenantID, err)
	}

	return &ExecutionsMetrics{
		TotalExecutions: totalExecutions,
		ByAction:        byAction,
		Timeline:        timeline,
	}, nil
}

// GetAdjustmentsMetrics retrieves invoice adjustment statistics for a tenant
func (s *Service) GetAdjustmentsMetrics(ctx context.Context, tenantID uuid.UUID, params MetricsParams) (*AdjustmentsMetrics, error) {
	var totalAdjustments int64
	var netAmount float64
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM invoice_adjustments
		WHERE tenant_id = $1
		  AND created_at BETWEEN $2 AND $3
	`, tenantID, params.StartDate, params.EndDate).Scan(&totalAdjustments, &netAmount)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: failed to sum adjustments: %w", tenantID, err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT kind, COALESCE(SUM(amount), 0)
		FROM invoice_adjustments
		WHERE tenant_id = $1
		  AND created_at BETWEEN $2 AND $3
		GROUP BY kind
	`, tenantID, params.StartDate, params.EndDate)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: failed to query kind breakdown: %w", tenantID, err)
	}
	defer rows.Close()

	byKind := make(map[string]float64)
	for rows.Next() {
		var kind string
		var total float64
		if err := rows.Scan(&kind, &total); err != nil {
			return nil, fmt.Errorf("tenant %s: failed to scan kind breakdown: %w", tenantID, err)
		}
		byKind[kind] = total
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("tenant %s: kind breakdown iteration error: %w", tenantID, err)
	}

	// Timeline of adjustments
	rows, err = s.db.Query(ctx, `
		SELECT
			date_trunc($1, created_at) as period,
			COUNT(*) as count,
			COALESCE(SUM(amount), 0) as total
		FROM invoice_adjustments
		WHERE tenant_id = $2
		  AND created_at BETWEEN $3 AND $4
		GROUP BY period
		ORDER BY period ASC
		LIMIT $5 OFFSET $6
	`, params.Interval, tenantID, params.StartDate, params.EndDate, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: failed to query adjustments timeline: %w", tenantID, err)
	}
	defer rows.Close()

	timeline := make([]AdjustmentsTimeline, 0)
	for rows.Next() {
		var entry AdjustmentsTimeline
		var period interface{}
		if err := rows.Scan(&period, &entry.Count, &entry.Total); err != nil {
			return nil, fmt.Errorf("tenant %s: failed to scan adjustments timeline: %w", tenantID, err)
		}
		entry.Period = fmt.Sprint(period)
		timeline = append(timeline, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("tenant %s: adjustments timeline iteration error: %w", tenantID, err)
	}

	return &AdjustmentsMetrics{
		TotalAdjustments: totalAdjustments,
		NetAmount:        netAmount,
		ByKind:           byKind,
		Timeline:         timeline,
	}, nil
}

// Super Admin Methods

// ListAllTenants retrieves all tenants with billing summaries
func (s *Service) ListAllTenants(ctx context.Context, limit, offset int) ([]TenantWithBilling, error) {
	query := `
		WITH tenant_billing AS (
			SELECT
				t.id,
				COUNT(DISTINCT e.id) as rule_executions,
				COALESCE(SUM(a.amount), 0) as adjustments_net,
				COUNT(DISTINCT w.id) FILTER (WHERE w.enabled = true) as active_webhooks
			FROM tenants t
			LEFT JOIN rule_executions e ON e.tenant_id = t.id
			LEFT JOIN invoice_adjustments a ON a.tenant_id = t.id
			LEFT JOIN webhooks w ON w.tenant_id = t.id
			GROUP BY t.id
		)
		SELECT
			t.id,
			t.name,
			t.plan,
			t.is_active,
			t.created_at,
			COALESCE(tb.rule_executions, 0) as rule_executions,
			COALESCE(tb.adjustments_net, 0) as adjustments_net,
			COALESCE(tb.active_webhooks, 0) as active_webhooks
		FROM tenants t
		LEFT JOIN tenant_billing tb ON tb.id = t.id
		ORDER BY t.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]TenantWithBilling, 0)
	for rows.Next() {
		var t TenantWithBilling
		var tenantID uuid.UUID
		var createdAt interface{}

		err := rows.Scan(
			&tenantID,
			&t.Name,
			&t.Plan,
			&t.IsActive,
			&createdAt,
			&t.Billing.RuleExecutions,
			&t.Billing.AdjustmentsNet,
			&t.Billing.ActiveWebhooks,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}

		t.ID = tenantID.String()
		t.CreatedAt = fmt.Sprint(createdAt)
		tenants = append(tenants, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("tenants iteration error: %w", err)
	}

	return tenants, nil
}

// GetTenantBillingSummary retrieves aggregated billing figures for one tenant
func (s *Service) GetTenantBillingSummary(ctx context.Context, tenantID uuid.UUID) (*TenantBillingSummary, error) {
	var summary TenantBillingSummary

	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT e.id) as rule_executions,
			COALESCE(SUM(a.amount), 0) as adjustments_net,
			COUNT(DISTINCT w.id) FILTER (WHERE w.enabled = true) as active_webhooks
		FROM tenants t
		LEFT JOIN rule_executions e ON e.tenant_id = t.id
		LEFT JOIN invoice_adjustments a ON a.tenant_id = t.id
		LEFT JOIN webhooks w ON w.tenant_id = t.id
		WHERE t.id = $1
		GROUP BY t.id
	`, tenantID).Scan(
		&summary.RuleExecutions,
		&summary.AdjustmentsNet,
		&summary.ActiveWebhooks,
	)

	if err != nil {
		return nil, fmt.Errorf("tenant %s: failed to get billing summary: %w", tenantID, err)
	}

	return &summary, nil
}

// UpdateTenantPlan moves a tenant to another plan
func (s *Service) UpdateTenantPlan(ctx context.Context, tenantID uuid.UUID, req UpdatePlanRequest) error {
	if !domain.IsValidPlan(req.Plan) {
		return domain.ErrPlanNotFound.WithError(fmt.Errorf("unknown plan %q", req.Plan))
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE tenants
		SET plan = $1, updated_at = NOW()
		WHERE id = $2
	`, req.Plan, tenantID)
	if err != nil {
		return fmt.Errorf("tenant %s: failed to update plan: %w", tenantID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}

	s.logger.Info("tenant plan updated",
		"tenant_id", tenantID,
		"plan", req.Plan,
	)

	return nil
}

// GetSystemHealth checks the health of all system components
func (s *Service) GetSystemHealth(ctx context.Context) (*SystemHealth, error) {
	health := &SystemHealth{
		Status:  "healthy",
		Version: "1.0.0",
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
		Workers: []WorkerHealth{
			{Name: "webhook_retry", Status: "healthy"},
			{Name: "quota_check", Status: "healthy"},
			{Name: "scheduled_rules", Status: "healthy"},
		},
	}

	dbHealth := s.checkDatabaseHealth(ctx)
	health.Database = dbHealth

	if dbHealth.Status != "healthy" {
		health.Status = "degraded"
	}

	return health, nil
}

// checkDatabaseHealth verifies database connectivity and performance
func (s *Service) checkDatabaseHealth(ctx context.Context) ServiceHealth {
	var result int
	start := time.Now()
	err := s.db.QueryRow(ctx, "SELECT 1").Scan(&result)

	if err != nil {
		return ServiceHealth{
			Status:  "unhealthy",
			Latency: "N/A",
			Message: err.Error(),
		}
	}

	return ServiceHealth{
		Status:  "healthy",
		Latency: time.Since(start).Round(time.Microsecond).String(),
	}
}

// GetSystemMetrics retrieves system-wide metrics
func (s *Service) GetSystemMetrics(ctx context.Context) (*SystemMetrics, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := &SystemMetrics{
		Memory: MemoryMetrics{
			Alloc:      memStats.Alloc,
			TotalAlloc: memStats.TotalAlloc,
			Sys:        memStats.Sys,
			NumGC:      memStats.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
		DBConnections: DBConnMetrics{
			TotalConns: s.db.Stat().TotalConns(),
			IdleConns:  s.db.Stat().IdleConns(),
			MaxConns:   s.db.Stat().MaxConns(),
		},
	}

	return metrics, nil
}
