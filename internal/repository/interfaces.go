package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/domain"
)

// TenantRepositoryInterface defines operations for tenant data access
type TenantRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Tenant, error)
	ListActive(ctx context.Context) ([]domain.Tenant, error)
	Create(ctx context.Context, tenant *domain.Tenant) error
	Update(ctx context.Context, tenant *domain.Tenant) error
	UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// APIKeyRepositoryInterface defines operations for API key data access
type APIKeyRepositoryInterface interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.APIKey, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.APIKey, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
	Revoke(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BillingRuleRepositoryInterface defines operations for billing rule storage
type BillingRuleRepositoryInterface interface {
	Create(ctx context.Context, rule *billing.BillingRule) error
	Get(ctx context.Context, id uuid.UUID) (*billing.BillingRule, error)
	List(ctx context.Context) ([]billing.BillingRule, error)
	ListActive(ctx context.Context) ([]billing.BillingRule, error)
	Update(ctx context.Context, rule *billing.BillingRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExecutionLogRepositoryInterface defines operations for execution history
type ExecutionLogRepositoryInterface interface {
	Record(ctx context.Context, rec *billing.ExecutionRecord) error
	ListHistory(ctx context.Context, ruleID uuid.UUID, limit int) ([]billing.ExecutionRecord, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]billing.ExecutionRecord, error)
}
