package usage

import (
	"time"

	"github.com/google/uuid"
)

// Metered resource names. These are the metric names rules reference.
const (
	MetricStudents = "active_students"
	MetricStorage  = "storage"
	MetricAPICalls = "api_calls"
	MetricSMS      = "sms_sent"
)

type Plan struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	MonthlyPrice   float64   `json:"monthly_price"`
	QuotaStudents  int       `json:"quota_students"`
	QuotaStorageGB float64   `json:"quota_storage_gb"`
	QuotaAPICalls  int       `json:"quota_api_calls"`
	QuotaSMS       int       `json:"quota_sms"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UsageRecord is one day of metered usage for a tenant. Students and storage
// are gauges (the day's high-water mark); api calls and sms are counters.
type UsageRecord struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	Date           time.Time `json:"date"`
	ActiveStudents int       `json:"active_students"`
	StorageGB      float64   `json:"storage_gb"`
	APICalls       int       `json:"api_calls"`
	SMSSent        int       `json:"sms_sent"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UsageAlert struct {
	Type       string  `json:"type"`
	Metric     string  `json:"metric"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

type UsageSummary struct {
	Period   string       `json:"period"`
	Plan     Plan         `json:"plan"`
	Students UsageDetail  `json:"active_students"`
	Storage  UsageDetail  `json:"storage"`
	APICalls UsageDetail  `json:"api_calls"`
	SMS      UsageDetail  `json:"sms_sent"`
	Alerts   []UsageAlert `json:"alerts,omitempty"`
}

type UsageDetail struct {
	Used       float64 `json:"used"`
	Quota      float64 `json:"quota"`
	Percentage float64 `json:"percentage"`
	Overage    float64 `json:"overage"`
}
