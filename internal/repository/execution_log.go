package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/billing"
)

// ExecutionLogRepository persists one row per rule action execution.
type ExecutionLogRepository struct {
	pool PgxPool
}

func NewExecutionLogRepository(pool PgxPool) *ExecutionLogRepository {
	return &ExecutionLogRepository{pool: pool}
}

func (r *ExecutionLogRepository) Record(ctx context.Context, rec *billing.ExecutionRecord) error {
	action, err := json.Marshal(rec.Action)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}

	evalCtx, err := json.Marshal(rec.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	query := `
		INSERT INTO rule_executions (id, rule_id, tenant_id, action, context, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	_, err = r.pool.Exec(ctx, query,
		rec.ID, rec.RuleID, rec.TenantID, action, evalCtx, rec.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("record rule execution: %w", err)
	}

	return nil
}

// ListHistory returns the most recent executions of a rule, newest first.
func (r *ExecutionLogRepository) ListHistory(ctx context.Context, ruleID uuid.UUID, limit int) ([]billing.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, rule_id, tenant_id, action, context, executed_at
		FROM rule_executions
		WHERE rule_id = $1
		ORDER BY executed_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ruleID, limit)
	if err != nil {
		return nil, fmt.Errorf("list rule executions: %w", err)
	}
	defer rows.Close()

	var records []billing.ExecutionRecord
	for rows.Next() {
		var rec billing.ExecutionRecord
		var action, evalCtx []byte

		err := rows.Scan(&rec.ID, &rec.RuleID, &rec.TenantID, &action, &evalCtx, &rec.ExecutedAt)
		if err != nil {
			return nil, fmt.Errorf("scan rule execution: %w", err)
		}

		if err := json.Unmarshal(action, &rec.Action); err != nil {
			return nil, fmt.Errorf("unmarshal action: %w", err)
		}
		if len(evalCtx) > 0 {
			if err := json.Unmarshal(evalCtx, &rec.Context); err != nil {
				return nil, fmt.Errorf("unmarshal context: %w", err)
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListByTenant returns a tenant's recent executions across all rules.
func (r *ExecutionLogRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, rule_id, tenant_id, action, context, executed_at
		FROM rule_executions
		WHERE tenant_id = $1
		ORDER BY executed_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list tenant executions: %w", err)
	}
	defer rows.Close()

	var records []billing.ExecutionRecord
	for rows.Next() {
		var rec billing.ExecutionRecord
		var action, evalCtx []byte

		err := rows.Scan(&rec.ID, &rec.RuleID, &rec.TenantID, &action, &evalCtx, &rec.ExecutedAt)
		if err != nil {
			return nil, fmt.Errorf("scan rule execution: %w", err)
		}

		if err := json.Unmarshal(action, &rec.Action); err != nil {
			return nil, fmt.Errorf("unmarshal action: %w", err)
		}
		if len(evalCtx) > 0 {
			if err := json.Unmarshal(evalCtx, &rec.Context); err != nil {
				return nil, fmt.Errorf("unmarshal context: %w", err)
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}
