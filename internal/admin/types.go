package admin

import "time"

// MetricsParams holds query parameters for report endpoints
type MetricsParams struct {
	StartDate time.Time
	EndDate   time.Time
	Interval  string // hour, day, week, month
	Limit     int
	Offset    int
}

// MetricsResponse is the standard response wrapper for report endpoints
type MetricsResponse struct {
	Data       interface{}     `json:"data"`
	Meta       ResponseMeta    `json:"meta"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// ResponseMeta contains metadata about the report response
type ResponseMeta struct {
	TenantID    string    `json:"tenant_id"`
	Period      Period    `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Period represents a time period
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PaginationMeta contains pagination information
type PaginationMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ExecutionsMetrics contains rule execution statistics for a tenant
type ExecutionsMetrics struct {
	TotalExecutions int64                `json:"total_executions"`
	ByAction        map[string]int64     `json:"by_action"`
	Timeline        []ExecutionsTimeline `json:"timeline"`
}

// ExecutionsTimeline represents a timeline entry for execution metrics
type ExecutionsTimeline struct {
	Period     string `json:"period"`
	Executions int64  `json:"executions"`
}

// AdjustmentsMetrics contains invoice adjustment statistics for a tenant
type AdjustmentsMetrics struct {
	TotalAdjustments int64                 `json:"total_adjustments"`
	NetAmount        float64               `json:"net_amount"`
	ByKind           map[string]float64    `json:"by_kind"`
	Timeline         []AdjustmentsTimeline `json:"timeline"`
}

// AdjustmentsTimeline represents a timeline entry for adjustment metrics
type AdjustmentsTimeline struct {
	Period string  `json:"period"`
	Count  int64   `json:"count"`
	Total  float64 `json:"total"`
}

// Super Admin Types

// TenantWithBilling represents a tenant with a billing summary
type TenantWithBilling struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Plan      string               `json:"plan"`
	IsActive  bool                 `json:"is_active"`
	CreatedAt string               `json:"created_at"`
	Billing   TenantBillingSummary `json:"billing"`
}

// TenantBillingSummary contains aggregated billing figures for a tenant
type TenantBillingSummary struct {
	RuleExecutions int64   `json:"rule_executions"`
	AdjustmentsNet float64 `json:"adjustments_net"`
	ActiveWebhooks int64   `json:"active_webhooks"`
}

// SystemHealth represents system-wide health status
type SystemHealth struct {
	Status   string         `json:"status"`
	Database ServiceHealth  `json:"database"`
	Workers  []WorkerHealth `json:"workers"`
	Uptime   string         `json:"uptime"`
	Version  string         `json:"version"`
}

// ServiceHealth represents health of a single service
type ServiceHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency"`
	Message string `json:"message,omitempty"`
}

// WorkerHealth represents health of a background worker
type WorkerHealth struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemMetrics contains system-wide metrics
type SystemMetrics struct {
	Memory        MemoryMetrics `json:"memory"`
	Goroutines    int           `json:"goroutines"`
	DBConnections DBConnMetrics `json:"db_connections"`
}

// MemoryMetrics contains Go runtime memory metrics
type MemoryMetrics struct {
	Alloc      uint64 `json:"alloc_bytes"`
	TotalAlloc uint64 `json:"total_alloc_bytes"`
	Sys        uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
}

// DBConnMetrics contains database connection pool metrics
type DBConnMetrics struct {
	TotalConns int32 `json:"total_conns"`
	IdleConns  int32 `json:"idle_conns"`
	MaxConns   int32 `json:"max_conns"`
}

// UpdatePlanRequest represents a request to move a tenant to another plan
type UpdatePlanRequest struct {
	Plan string `json:"plan"`
}
