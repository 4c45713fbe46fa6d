package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// Rules API Types

// RuleTrigger describes when a rule is evaluated
type RuleTrigger struct {
	Event     string  `json:"event" example:"usage_threshold"`
	Metric    string  `json:"metric,omitempty" example:"active_students"`
	Threshold float64 `json:"threshold,omitempty" example:"500"`
}

// RuleCondition is one predicate evaluated against the rule context
type RuleCondition struct {
	Field    string      `json:"field" example:"tenant.plan"`
	Operator string      `json:"operator" example:"eq"`
	Value    interface{} `json:"value" example:"professional"`
}

// RuleAction describes what happens when a rule fires
type RuleAction struct {
	Type       string  `json:"type" example:"apply_discount"`
	Amount     float64 `json:"amount,omitempty" example:"10"`
	AmountType string  `json:"amount_type,omitempty" example:"percentage"`
	Target     string  `json:"target,omitempty" example:"next_invoice"`
	Message    string  `json:"message,omitempty" example:"Desconto de fidelidade aplicado"`
}

// RuleResponse represents a billing rule in responses
type RuleResponse struct {
	ID          string          `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string          `json:"name" example:"Volume discount for large schools"`
	Description string          `json:"description,omitempty" example:"10% off above 500 active students"`
	Type        string          `json:"type" example:"discount"`
	Trigger     RuleTrigger     `json:"trigger"`
	Conditions  []RuleCondition `json:"conditions,omitempty"`
	Action      RuleAction      `json:"action"`
	Priority    int             `json:"priority" example:"10"`
	IsActive    bool            `json:"is_active" example:"true"`
	TenantIDs   []string        `json:"tenant_ids,omitempty"`
	Plans       []string        `json:"plans,omitempty" example:"professional,enterprise"`
	CreatedAt   string          `json:"created_at" example:"2026-01-01T00:00:00Z"`
	UpdatedAt   string          `json:"updated_at" example:"2026-01-01T00:00:00Z"`
}

// RuleEnvelope wraps a single rule
type RuleEnvelope struct {
	Rule RuleResponse `json:"rule"`
}

// RulesListResponse wraps a rule listing
type RulesListResponse struct {
	Rules []RuleResponse `json:"rules"`
	Count int            `json:"count" example:"4"`
}

// TestRuleResponse reports a dry-run evaluation
type TestRuleResponse struct {
	Triggered     bool              `json:"triggered" example:"true"`
	ConditionsMet bool              `json:"conditions_met" example:"true"`
	WouldFire     bool              `json:"would_fire" example:"true"`
	Explanation   []string          `json:"explanation"`
	ActionPreview map[string]string `json:"action_preview,omitempty"`
}

// ExecuteRuleResponse reports the outcome of an event execution
type ExecuteRuleResponse struct {
	Executed bool   `json:"executed" example:"true"`
	Reason   string `json:"reason,omitempty" example:"trigger conditions not met"`
}

// ExecutionRecordResponse is one history entry for a rule
type ExecutionRecordResponse struct {
	ID         string                 `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RuleID     string                 `json:"rule_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID   string                 `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Action     RuleAction             `json:"action"`
	Context    map[string]interface{} `json:"context,omitempty"`
	ExecutedAt string                 `json:"executed_at" example:"2026-01-01T00:00:00Z"`
}

// RuleHistoryResponse wraps a rule's execution history
type RuleHistoryResponse struct {
	History []ExecutionRecordResponse `json:"history"`
	Count   int                       `json:"count" example:"12"`
}

// Billing API Types

// UsageMetricInput is one usage reading in a calculation request
type UsageMetricInput struct {
	Name  string  `json:"name" example:"active_students"`
	Value float64 `json:"value" example:"320"`
	Unit  string  `json:"unit,omitempty" example:"count"`
}

// CalculateBillingRequest carries a usage snapshot to price
type CalculateBillingRequest struct {
	Metrics []UsageMetricInput `json:"metrics"`
}

// AdjustmentResponse is one rule-produced line item
type AdjustmentResponse struct {
	RuleID      string  `json:"rule_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RuleName    string  `json:"rule_name" example:"Volume discount for large schools"`
	Kind        string  `json:"kind" example:"discount"`
	Amount      float64 `json:"amount" example:"-9.90"`
	Description string  `json:"description,omitempty"`
}

// BillingCalculationResponse is the priced result
type BillingCalculationResponse struct {
	TenantID     string               `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Plan         string               `json:"plan" example:"professional"`
	BaseAmount   float64              `json:"base_amount" example:"99"`
	Adjustments  []AdjustmentResponse `json:"adjustments"`
	FinalAmount  float64              `json:"final_amount" example:"89.10"`
	Currency     string               `json:"currency" example:"BRL"`
	CalculatedAt string               `json:"calculated_at" example:"2026-01-01T00:00:00Z"`
}

// Usage API Types

// UsageSummaryResponse reports period usage against plan quotas
type UsageSummaryResponse struct {
	TenantID string                    `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Period   string                    `json:"period" example:"2026-01"`
	Metrics  map[string]UsageQuotaInfo `json:"metrics"`
}

// UsageQuotaInfo is one metric's consumption against its quota
type UsageQuotaInfo struct {
	Used    float64 `json:"used" example:"320"`
	Quota   float64 `json:"quota" example:"500"`
	Percent float64 `json:"percent" example:"64"`
}

// UsageEventRequest increments a counter metric
type UsageEventRequest struct {
	Metric string `json:"metric" example:"api_calls"`
	Amount int    `json:"amount" example:"1"`
}

// UsageEventResponse acknowledges an ingested event
type UsageEventResponse struct {
	Recorded bool   `json:"recorded" example:"true"`
	Metric   string `json:"metric" example:"api_calls"`
	Amount   int    `json:"amount" example:"1"`
}

// UsageSnapshotRequest records current gauge readings
type UsageSnapshotRequest struct {
	ActiveStudents int     `json:"active_students" example:"320"`
	StorageGB      float64 `json:"storage_gb" example:"12.5"`
}

// UsageSnapshotResponse acknowledges an ingested snapshot
type UsageSnapshotResponse struct {
	Recorded bool `json:"recorded" example:"true"`
}

// Admin Report Types

// AdminResponseMeta contains metadata for admin report responses
type AdminResponseMeta struct {
	TenantID    string `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PeriodStart string `json:"period_start" example:"2026-01-01"`
	PeriodEnd   string `json:"period_end" example:"2026-01-31"`
	GeneratedAt string `json:"generated_at" example:"2026-02-01T00:00:00Z"`
}

// PaginationMeta contains pagination information
type PaginationMeta struct {
	Total  int `json:"total" example:"30"`
	Limit  int `json:"limit" example:"100"`
	Offset int `json:"offset" example:"0"`
}

// ExecutionsTimeline is one bucket of rule executions
type ExecutionsTimeline struct {
	Period     string `json:"period" example:"2026-01-01"`
	Executions int64  `json:"executions" example:"18"`
}

// ExecutionsReportData aggregates rule executions
type ExecutionsReportData struct {
	TotalExecutions int64                `json:"total_executions" example:"240"`
	ByAction        map[string]int64     `json:"by_action"`
	Timeline        []ExecutionsTimeline `json:"timeline"`
}

// ExecutionsReportResponse wraps the executions report
type ExecutionsReportResponse struct {
	Data       ExecutionsReportData `json:"data"`
	Meta       AdminResponseMeta    `json:"meta"`
	Pagination *PaginationMeta      `json:"pagination,omitempty"`
}

// AdjustmentsTimeline is one bucket of invoice adjustments
type AdjustmentsTimeline struct {
	Period string  `json:"period" example:"2026-01-01"`
	Count  int64   `json:"count" example:"5"`
	Total  float64 `json:"total" example:"-49.50"`
}

// AdjustmentsReportData aggregates invoice adjustments
type AdjustmentsReportData struct {
	TotalAdjustments int64                 `json:"total_adjustments" example:"64"`
	NetAmount        float64               `json:"net_amount" example:"-320.40"`
	ByKind           map[string]float64    `json:"by_kind"`
	Timeline         []AdjustmentsTimeline `json:"timeline"`
}

// AdjustmentsReportResponse wraps the adjustments report
type AdjustmentsReportResponse struct {
	Data       AdjustmentsReportData `json:"data"`
	Meta       AdminResponseMeta     `json:"meta"`
	Pagination *PaginationMeta       `json:"pagination,omitempty"`
}

// Webhook Admin Types

// CreateWebhookRequest registers a webhook endpoint
type CreateWebhookRequest struct {
	Name    string   `json:"name" example:"Billing events sink"`
	URL     string   `json:"url" example:"https://example.com/hooks/billing"`
	Events  []string `json:"events" example:"rule.executed,quota.alert"`
	Enabled bool     `json:"enabled" example:"true"`
}

// WebhookResponse represents a configured webhook
type WebhookResponse struct {
	ID              string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name            string   `json:"name" example:"Billing events sink"`
	URL             string   `json:"url" example:"https://example.com/hooks/billing"`
	Events          []string `json:"events" example:"rule.executed,quota.alert"`
	Enabled         bool     `json:"enabled" example:"true"`
	LastTriggeredAt string   `json:"last_triggered_at,omitempty" example:"2026-01-01T00:00:00Z"`
	CreatedAt       string   `json:"created_at" example:"2026-01-01T00:00:00Z"`
	UpdatedAt       string   `json:"updated_at" example:"2026-01-01T00:00:00Z"`
}

// WebhooksListResponse wraps webhook listing
type WebhooksListResponse struct {
	Webhooks []WebhookResponse `json:"webhooks"`
}

// APIKeyInfo describes one API key without its secret
type APIKeyInfo struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string `json:"name" example:"Backoffice integration"`
	KeyPrefix   string `json:"key_prefix" example:"sk_live_Ab12Cd"`
	Environment string `json:"environment" example:"live"`
	IsActive    bool   `json:"is_active" example:"true"`
	LastUsedAt  string `json:"last_used_at,omitempty" example:"2026-01-01T00:00:00Z"`
	CreatedAt   string `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

// APIKeysListResponse wraps the tenant's keys
type APIKeysListResponse struct {
	PublicKey string       `json:"public_key" example:"pk_live_Ab12Cd34Ef56"`
	Keys      []APIKeyInfo `json:"keys"`
}

// Super Admin Types

// TenantBillingSummary contains aggregated billing figures for a tenant
type TenantBillingSummary struct {
	RuleExecutions int64   `json:"rule_executions" example:"240"`
	AdjustmentsNet float64 `json:"adjustments_net" example:"-320.40"`
	ActiveWebhooks int64   `json:"active_webhooks" example:"2"`
}

// TenantWithBilling represents a tenant with billing aggregates
type TenantWithBilling struct {
	ID        string               `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string               `json:"name" example:"Escola Horizonte"`
	Plan      string               `json:"plan" example:"professional"`
	IsActive  bool                 `json:"is_active" example:"true"`
	CreatedAt string               `json:"created_at" example:"2026-01-01T00:00:00Z"`
	Billing   TenantBillingSummary `json:"billing"`
}

// ListTenantsResponse wraps list of tenants with billing aggregates
type ListTenantsResponse struct {
	Data []TenantWithBilling `json:"data"`
	Meta map[string]int      `json:"meta"`
}

// TenantBillingResponse wraps one tenant's billing summary
type TenantBillingResponse struct {
	Data TenantBillingSummary `json:"data"`
	Meta map[string]string    `json:"meta"`
}

// UpdatePlanRequest moves a tenant to another plan
type UpdatePlanRequest struct {
	Plan string `json:"plan" example:"enterprise"`
}

// UpdatePlanResponse acknowledges a plan change
type UpdatePlanResponse struct {
	Message  string `json:"message" example:"plan updated successfully"`
	TenantID string `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Plan     string `json:"plan" example:"enterprise"`
}

// ServiceHealth represents health of a single service
type ServiceHealth struct {
	Status  string `json:"status" example:"healthy"`
	Latency string `json:"latency" example:"< 1ms"`
	Message string `json:"message,omitempty"`
}

// WorkerHealth represents health of a background worker
type WorkerHealth struct {
	Name    string `json:"name" example:"scheduled_rules"`
	Status  string `json:"status" example:"running"`
	Message string `json:"message,omitempty"`
}

// SystemHealthResponse represents system health check response
type SystemHealthResponse struct {
	Status   string         `json:"status" example:"healthy"`
	Database ServiceHealth  `json:"database"`
	Workers  []WorkerHealth `json:"workers"`
	Uptime   string         `json:"uptime" example:"24h30m0s"`
	Version  string         `json:"version" example:"1.0.0"`
}

// MemoryMetrics contains Go runtime memory metrics
type MemoryMetrics struct {
	Alloc      uint64 `json:"alloc_bytes" example:"5242880"`
	TotalAlloc uint64 `json:"total_alloc_bytes" example:"104857600"`
	Sys        uint64 `json:"sys_bytes" example:"20971520"`
	NumGC      uint32 `json:"num_gc" example:"42"`
}

// DBConnMetrics contains database connection pool metrics
type DBConnMetrics struct {
	TotalConns int32 `json:"total_conns" example:"10"`
	IdleConns  int32 `json:"idle_conns" example:"8"`
	MaxConns   int32 `json:"max_conns" example:"20"`
}

// SystemMetricsData contains system-wide metrics
type SystemMetricsData struct {
	Memory        MemoryMetrics `json:"memory"`
	Goroutines    int           `json:"goroutines" example:"50"`
	DBConnections DBConnMetrics `json:"db_connections"`
}

// SystemMetricsResponse wraps system metrics
type SystemMetricsResponse struct {
	Data SystemMetricsData `json:"data"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Classforge Billing API",
		Version:     "v1.0.0",
		Description: "Tenant billing rules engine for multi-tenant education platforms: usage metering, rule-driven invoice adjustments and plan management",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// Rules endpoints

		// GET /v1/rules - List rules
		endpoint.New(
			endpoint.GET,
			"/rules",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("List billing rules"),
			endpoint.WithDescription("Lists every billing rule visible to the caller, ordered by priority"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RulesListResponse{}, "200", "Rules listed successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/rules - Create rule
		endpoint.New(
			endpoint.POST,
			"/rules",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("Create a billing rule"),
			endpoint.WithDescription("Creates a new billing rule. The rule is validated before being persisted: unknown trigger events, operators or action types are rejected."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(RuleEnvelope{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RuleEnvelope{}, "201", "Rule created successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INVALID_RULE", Message: "Rule failed validation"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/rules/test - Dry-run a draft rule
		endpoint.New(
			endpoint.POST,
			"/rules/test",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("Test a draft rule against sample data"),
			endpoint.WithDescription("Evaluates a draft rule against a supplied sample context. Nothing is persisted and no actions run; the response explains each trigger and condition decision."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TestRuleResponse{}, "200", "Dry run completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/rules/:id - Get rule
		endpoint.New(
			endpoint.GET,
			"/rules/{id}",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("Get a billing rule"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Rule ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RuleEnvelope{}, "200", "Rule retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "RULE_NOT_FOUND", Message: "Rule not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// PUT /v1/rules/:id - Update rule
		endpoint.New(
			endpoint.PUT,
			"/rules/{id}",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("Update a billing rule"),
			endpoint.WithDescription("Partially updates a rule: only the fields present in the body are changed. The merged rule is re-validated before being persisted."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Rule ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RuleEnvelope{}, "200", "Rule updated successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "RULE_NOT_FOUND", Message: "Rule not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INVALID_RULE", Message: "Rule failed validation"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /v1/rules/:id - Delete rule
		endpoint.New(
			endpoint.DELETE,
			"/rules/{id}",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("Delete a billing rule"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Rule ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Rule deleted successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "RULE_NOT_FOUND", Message: "Rule not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/rules/:id/execute - Execute rule for an event
		endpoint.New(
			endpoint.POST,
			"/rules/{id}/execute",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("Execute a rule's event path"),
			endpoint.WithDescription("Evaluates the rule's trigger against the supplied event context for the calling tenant. When the rule fires, its action is executed and recorded in the execution history."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Rule ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ExecuteRuleResponse{}, "200", "Execution attempted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "RULE_NOT_FOUND", Message: "Rule not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "ACTION_FAILED", Message: "Rule action failed"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/rules/:id/history - Rule execution history
		endpoint.New(
			endpoint.GET,
			"/rules/{id}/history",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("Get a rule's execution history"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Rule ID")),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum entries to return (default: 50, max: 100)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RuleHistoryResponse{}, "200", "History retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// Billing endpoints

		// POST /v1/billing/calculate - Price a usage snapshot
		endpoint.New(
			endpoint.POST,
			"/billing/calculate",
			endpoint.WithTags("Billing"),
			endpoint.WithSummary("Price a usage snapshot"),
			endpoint.WithDescription("Runs the full calculation pass for the calling tenant against the supplied usage metrics. The result is a preview: no adjustments are persisted."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CalculateBillingRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(BillingCalculationResponse{}, "200", "Calculation completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "PLAN_NOT_FOUND", Message: "Unknown plan"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "Preview rate limit exceeded"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/billing/current - Price current period usage
		endpoint.New(
			endpoint.GET,
			"/billing/current",
			endpoint.WithTags("Billing"),
			endpoint.WithSummary("Price the current billing period"),
			endpoint.WithDescription("Prices the calling tenant's recorded usage for the current billing period"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(BillingCalculationResponse{}, "200", "Calculation completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "PLAN_NOT_FOUND", Message: "Unknown plan"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// Usage endpoints

		// GET /v1/usage - Usage summary
		endpoint.New(
			endpoint.GET,
			"/usage",
			endpoint.WithTags("Usage"),
			endpoint.WithSummary("Get usage summary"),
			endpoint.WithDescription("Returns the tenant's usage against plan quotas for the current or a given period"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("period", parameter.Query, parameter.WithDescription("Billing period (YYYY-MM, default: current)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UsageSummaryResponse{}, "200", "Usage retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/usage/events - Ingest counter event
		endpoint.New(
			endpoint.POST,
			"/usage/events",
			endpoint.WithTags("Usage"),
			endpoint.WithSummary("Record a counter event"),
			endpoint.WithDescription("Increments a counter metric (api_calls, sms_sent) on today's usage row"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(UsageEventRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UsageEventResponse{}, "202", "Event recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INVALID_METRIC", Message: "Metric is not a counter"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/usage/snapshots - Ingest gauge snapshot
		endpoint.New(
			endpoint.POST,
			"/usage/snapshots",
			endpoint.WithTags("Usage"),
			endpoint.WithSummary("Record a gauge snapshot"),
			endpoint.WithDescription("Records current gauge readings (active students, storage). Repeated snapshots for the same day keep the high-water mark."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(UsageSnapshotRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UsageSnapshotResponse{}, "202", "Snapshot recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// Admin report endpoints

		// GET /v1/admin/reports/executions
		endpoint.New(
			endpoint.GET,
			"/admin/reports/executions",
			endpoint.WithTags("Admin Reports"),
			endpoint.WithSummary("Rule execution report"),
			endpoint.WithDescription("Aggregates the tenant's rule executions over a period, broken down by action type and bucketed on a timeline"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("start_date", parameter.Query, parameter.WithDescription("Start date (YYYY-MM-DD)")),
				parameter.StrParam("end_date", parameter.Query, parameter.WithDescription("End date (YYYY-MM-DD)")),
				parameter.StrParam("interval", parameter.Query, parameter.WithDescription("Aggregation interval: hour, day, week, month (default: day)")),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of timeline points (default: 100, max: 1000)")),
				parameter.IntParam("offset", parameter.Query, parameter.WithDescription("Offset for timeline pagination (default: 0)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ExecutionsReportResponse{}, "200", "Report generated successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid date parameters"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/admin/reports/adjustments
		endpoint.New(
			endpoint.GET,
			"/admin/reports/adjustments",
			endpoint.WithTags("Admin Reports"),
			endpoint.WithSummary("Invoice adjustment report"),
			endpoint.WithDescription("Aggregates the tenant's invoice adjustments over a period, broken down by kind and bucketed on a timeline"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("start_date", parameter.Query, parameter.WithDescription("Start date (YYYY-MM-DD)")),
				parameter.StrParam("end_date", parameter.Query, parameter.WithDescription("End date (YYYY-MM-DD)")),
				parameter.StrParam("interval", parameter.Query, parameter.WithDescription("Aggregation interval: hour, day, week, month (default: day)")),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of timeline points (default: 100, max: 1000)")),
				parameter.IntParam("offset", parameter.Query, parameter.WithDescription("Offset for timeline pagination (default: 0)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AdjustmentsReportResponse{}, "200", "Report generated successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid date parameters"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// Webhook admin endpoints

		// GET /v1/admin/webhooks
		endpoint.New(
			endpoint.GET,
			"/admin/webhooks",
			endpoint.WithTags("Admin Webhooks"),
			endpoint.WithSummary("List configured webhooks"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhooksListResponse{}, "200", "Webhooks listed successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/admin/webhooks
		endpoint.New(
			endpoint.POST,
			"/admin/webhooks",
			endpoint.WithTags("Admin Webhooks"),
			endpoint.WithSummary("Register a webhook"),
			endpoint.WithDescription("Registers an HTTPS endpoint for event delivery. The generated signing secret is returned once, on creation."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CreateWebhookRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhookResponse{}, "201", "Webhook created successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /v1/admin/webhooks/:id
		endpoint.New(
			endpoint.DELETE,
			"/admin/webhooks/{id}",
			endpoint.WithTags("Admin Webhooks"),
			endpoint.WithSummary("Delete a webhook"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Webhook ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Webhook deleted successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "NOT_FOUND", Message: "Webhook not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/admin/api-keys
		endpoint.New(
			endpoint.GET,
			"/admin/api-keys",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("List the tenant's API keys"),
			endpoint.WithDescription("Lists the tenant's API keys without their secrets, plus the tenant's public key"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(APIKeysListResponse{}, "200", "Keys listed successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// Super admin endpoints

		// GET /v1/super/tenants
		endpoint.New(
			endpoint.GET,
			"/super/tenants",
			endpoint.WithTags("Super Admin"),
			endpoint.WithSummary("List all tenants with billing aggregates"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum tenants to return (default: 50, max: 100)")),
				parameter.IntParam("offset", parameter.Query, parameter.WithDescription("Offset for pagination (default: 0)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ListTenantsResponse{}, "200", "Tenants listed successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing JWT"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/super/tenants/:id/billing
		endpoint.New(
			endpoint.GET,
			"/super/tenants/{id}/billing",
			endpoint.WithTags("Super Admin"),
			endpoint.WithSummary("Get one tenant's billing summary"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Tenant ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TenantBillingResponse{}, "200", "Summary retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid tenant ID"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing JWT"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// POST /v1/super/tenants/:id/plan
		endpoint.New(
			endpoint.POST,
			"/super/tenants/{id}/plan",
			endpoint.WithTags("Super Admin"),
			endpoint.WithSummary("Move a tenant to another plan"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Tenant ID")),
			),
			endpoint.WithBody(UpdatePlanRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UpdatePlanResponse{}, "200", "Plan updated successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing JWT"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "TENANT_NOT_FOUND", Message: "Tenant not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "PLAN_NOT_FOUND", Message: "Unknown plan"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/super/system/health
		endpoint.New(
			endpoint.GET,
			"/super/system/health",
			endpoint.WithTags("Super Admin"),
			endpoint.WithSummary("System health"),
			endpoint.WithDescription("Reports database and background worker health. Returns 503 when the system is unhealthy."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SystemHealthResponse{}, "200", "System is healthy or degraded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing JWT"}, "401", "Unauthorized"),
				response.New(SystemHealthResponse{}, "503", "System is unhealthy"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/super/system/metrics
		endpoint.New(
			endpoint.GET,
			"/super/system/metrics",
			endpoint.WithTags("Super Admin"),
			endpoint.WithSummary("System runtime metrics"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SystemMetricsResponse{}, "200", "Metrics retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing JWT"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
