package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Plan types
const (
	PlanFree         = "free"
	PlanBasic        = "basic"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

var (
	validPlans = map[string]bool{
		PlanFree:         true,
		PlanBasic:        true,
		PlanProfessional: true,
		PlanEnterprise:   true,
	}

	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Tenant representa uma instituição de ensino cliente do sistema
type Tenant struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Slug      string                 `json:"slug"`
	IsActive  bool                   `json:"is_active"`
	Plan      string                 `json:"plan"`
	Settings  map[string]interface{} `json:"settings,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// TenantSettings contém configurações de cobrança específicas do tenant
type TenantSettings struct {
	BillingEmail       string  `json:"billing_email"`
	Currency           string  `json:"currency"`
	QuotaAlertsEnabled bool    `json:"quota_alerts_enabled"`
	QuotaWarningPct    float64 `json:"quota_warning_pct"`
	QuotaCriticalPct   float64 `json:"quota_critical_pct"`
	PreviewRateLimit   int     `json:"preview_rate_limit"`
}

// DefaultTenantSettings retorna configurações padrão
func DefaultTenantSettings() TenantSettings {
	return TenantSettings{
		Currency:           "USD",
		QuotaAlertsEnabled: true,
		QuotaWarningPct:    80,
		QuotaCriticalPct:   90,
		PreviewRateLimit:   60,
	}
}

// GetSettings returns typed tenant settings with defaults for missing values
func (t *Tenant) GetSettings() TenantSettings {
	defaults := DefaultTenantSettings()

	if t.Settings == nil {
		return defaults
	}

	// Parse each setting with type assertion and fallback to default
	if v, ok := t.Settings["billing_email"].(string); ok {
		defaults.BillingEmail = v
	}
	if v, ok := t.Settings["currency"].(string); ok {
		defaults.Currency = v
	}
	if v, ok := t.Settings["quota_alerts_enabled"].(bool); ok {
		defaults.QuotaAlertsEnabled = v
	}
	if v, ok := t.Settings["quota_warning_pct"].(float64); ok {
		defaults.QuotaWarningPct = v
	}
	if v, ok := t.Settings["quota_critical_pct"].(float64); ok {
		defaults.QuotaCriticalPct = v
	}
	if v, ok := t.Settings["preview_rate_limit"].(float64); ok {
		defaults.PreviewRateLimit = int(v)
	}

	return defaults
}

// Validate verifica se o tenant é válido
func (t *Tenant) Validate() error {
	if t.Name == "" {
		return errors.New("tenant name cannot be empty")
	}

	if t.Slug == "" {
		return errors.New("tenant slug cannot be empty")
	}

	if !slugRegex.MatchString(t.Slug) {
		return errors.New("tenant slug must contain only lowercase letters, numbers and hyphens")
	}

	if !validPlans[t.Plan] {
		return errors.New("invalid plan type")
	}

	return nil
}

// IsValidPlan verifica se o plano é válido
func IsValidPlan(plan string) bool {
	return validPlans[plan]
}
