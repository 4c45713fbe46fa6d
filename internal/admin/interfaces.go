package admin

import (
	"context"

	"github.com/google/uuid"
)

// SuperAdminService defines the interface for super admin operations
type SuperAdminService interface {
	// Tenant operations
	ListAllTenants(ctx context.Context, limit, offset int) ([]TenantWithBilling, error)
	GetTenantBillingSummary(ctx context.Context, tenantID uuid.UUID) (*TenantBillingSummary, error)
	UpdateTenantPlan(ctx context.Context, tenantID uuid.UUID, req UpdatePlanRequest) error

	// System operations
	GetSystemHealth(ctx context.Context) (*SystemHealth, error)
	GetSystemMetrics(ctx context.Context) (*SystemMetrics, error)
}
