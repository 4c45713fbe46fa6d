package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/domain"
)

// BillingRuleRepository persists authored billing rules. The trigger,
// conditions, action and scoping lists are stored as JSONB blobs and only
// marshalled at this boundary.
type BillingRuleRepository struct {
	pool PgxPool
}

func NewBillingRuleRepository(pool PgxPool) *BillingRuleRepository {
	return &BillingRuleRepository{pool: pool}
}

const ruleColumns = `id, name, description, type, trigger, conditions, action,
	       priority, is_active, tenant_ids, plans, created_at, updated_at`

func (r *BillingRuleRepository) Create(ctx context.Context, rule *billing.BillingRule) error {
	trigger, conditions, action, tenantIDs, plans, err := marshalRule(rule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO billing_rules (
			id, name, description, type, trigger, conditions, action,
			priority, is_active, tenant_ids, plans
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}

	err = r.pool.QueryRow(ctx, query,
		rule.ID, rule.Name, rule.Description, rule.Type, trigger, conditions,
		action, rule.Priority, rule.IsActive, tenantIDs, plans,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AppError{
				Code:       "RULE_ALREADY_EXISTS",
				Message:    "Billing rule with this name already exists",
				StatusCode: 409,
			}
		}
		return fmt.Errorf("create billing rule: %w", err)
	}

	return nil
}

func (r *BillingRuleRepository) Get(ctx context.Context, id uuid.UUID) (*billing.BillingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM billing_rules
		WHERE id = $1
	`

	rule, err := scanRule(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get billing rule: %w", err)
	}

	return rule, nil
}

func (r *BillingRuleRepository) List(ctx context.Context) ([]billing.BillingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM billing_rules
		ORDER BY priority, created_at
	`

	return r.queryRules(ctx, query)
}

// ListActive returns the active rules in priority order. This is the set the
// engine scopes per calculation.
func (r *BillingRuleRepository) ListActive(ctx context.Context) ([]billing.BillingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM billing_rules
		WHERE is_active = true
		ORDER BY priority, created_at
	`

	return r.queryRules(ctx, query)
}

func (r *BillingRuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]billing.BillingRule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list billing rules: %w", err)
	}
	defer rows.Close()

	var rules []billing.BillingRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan billing rule: %w", err)
		}
		rules = append(rules, *rule)
	}

	return rules, rows.Err()
}

func (r *BillingRuleRepository) Update(ctx context.Context, rule *billing.BillingRule) error {
	trigger, conditions, action, tenantIDs, plans, err := marshalRule(rule)
	if err != nil {
		return err
	}

	query := `
		UPDATE billing_rules
		SET name = $2, description = $3, type = $4, trigger = $5,
		    conditions = $6, action = $7, priority = $8, is_active = $9,
		    tenant_ids = $10, plans = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err = r.pool.QueryRow(ctx, query,
		rule.ID, rule.Name, rule.Description, rule.Type, trigger, conditions,
		action, rule.Priority, rule.IsActive, tenantIDs, plans,
	).Scan(&rule.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrRuleNotFound
	}
	if err != nil {
		return fmt.Errorf("update billing rule: %w", err)
	}

	return nil
}

func (r *BillingRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM billing_rules WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete billing rule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}

func marshalRule(rule *billing.BillingRule) (trigger, conditions, action, tenantIDs, plans []byte, err error) {
	if trigger, err = json.Marshal(rule.Trigger); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal trigger: %w", err)
	}
	if conditions, err = json.Marshal(rule.Conditions); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal conditions: %w", err)
	}
	if action, err = json.Marshal(rule.Action); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal action: %w", err)
	}
	if tenantIDs, err = json.Marshal(rule.TenantIDs); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal tenant ids: %w", err)
	}
	if plans, err = json.Marshal(rule.Plans); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal plans: %w", err)
	}
	return trigger, conditions, action, tenantIDs, plans, nil
}

func scanRule(row pgx.Row) (*billing.BillingRule, error) {
	var rule billing.BillingRule
	var trigger, conditions, action, tenantIDs, plans []byte

	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Description, &rule.Type, &trigger,
		&conditions, &action, &rule.Priority, &rule.IsActive, &tenantIDs,
		&plans, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(trigger, &rule.Trigger); err != nil {
		return nil, fmt.Errorf("unmarshal trigger: %w", err)
	}
	if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("unmarshal conditions: %w", err)
	}
	if err := json.Unmarshal(action, &rule.Action); err != nil {
		return nil, fmt.Errorf("unmarshal action: %w", err)
	}
	if err := json.Unmarshal(tenantIDs, &rule.TenantIDs); err != nil {
		return nil, fmt.Errorf("unmarshal tenant ids: %w", err)
	}
	if err := json.Unmarshal(plans, &rule.Plans); err != nil {
		return nil, fmt.Errorf("unmarshal plans: %w", err)
	}

	return &rule, nil
}
