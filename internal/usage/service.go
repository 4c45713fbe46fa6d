package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/domain"
	"github.com/classforge/classforge/internal/webhook"
	"github.com/classforge/classforge/internal/ws"
)

const (
	EventQuotaWarning  = "quota.warning"
	EventQuotaCritical = "quota.critical"
	EventQuotaExceeded = "quota.exceeded"

	cacheKeyUsage = "usage:%s:%s"
)

type CacheService interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type WebhookService interface {
	GetWebhooksByEvent(ctx context.Context, tenantID uuid.UUID, eventType string) ([]*webhook.Webhook, error)
	Send(ctx context.Context, webhook *webhook.Webhook, event webhook.EventPayload) error
}

// DashboardNotifier mirrors quota alerts onto connected dashboard sessions.
// Optional; a nil notifier means webhooks are the only alert channel.
type DashboardNotifier interface {
	BroadcastToTenant(tenantID uuid.UUID, eventType ws.EventType, data interface{})
}

type Service struct {
	repo           *Repository
	webhookService WebhookService
	cache          CacheService
	dashboard      DashboardNotifier
}

func NewService(repo *Repository, webhookService WebhookService, cache CacheService, dashboard DashboardNotifier) *Service {
	return &Service{
		repo:           repo,
		webhookService: webhookService,
		cache:          cache,
		dashboard:      dashboard,
	}
}

// CurrentMetrics returns the current billing period's usage as the metric
// snapshot the billing engine evaluates rules against.
func (s *Service) CurrentMetrics(ctx context.Context, tenantID uuid.UUID) ([]billing.UsageMetric, error) {
	now := time.Now().UTC()
	period := now.Format("2006-01")
	startDate, endDate := periodBounds(now)

	record, err := s.repo.AggregatePeriod(ctx, tenantID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: current metrics: %w", tenantID, err)
	}

	return metricsFromRecord(record, period), nil
}

// BaseAmount resolves a plan's monthly price. Satisfies the engine's price
// table dependency.
func (s *Service) BaseAmount(ctx context.Context, planID string) (float64, error) {
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		return 0, err
	}
	return plan.MonthlyPrice, nil
}

func (s *Service) GetCurrentUsage(ctx context.Context, tenantID uuid.UUID, planID string) (*UsageSummary, error) {
	now := time.Now().UTC()
	period := now.Format("2006-01")

	cacheKey := fmt.Sprintf(cacheKeyUsage, tenantID, period)
	var cached UsageSummary
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	startDate, endDate := periodBounds(now)

	return s.getUsageForPeriod(ctx, tenantID, planID, period, startDate, endDate)
}

func (s *Service) GetUsageForPeriod(ctx context.Context, tenantID uuid.UUID, planID, period string) (*UsageSummary, error) {
	parsedTime, err := time.Parse("2006-01", period)
	if err != nil {
		return nil, domain.ErrInvalidPeriod.WithError(err)
	}

	startDate, endDate := periodBounds(parsedTime)

	return s.getUsageForPeriod(ctx, tenantID, planID, period, startDate, endDate)
}

func (s *Service) getUsageForPeriod(ctx context.Context, tenantID uuid.UUID, planID, period string, startDate, endDate time.Time) (*UsageSummary, error) {
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: get plan: %w", tenantID, err)
	}

	record, err := s.repo.AggregatePeriod(ctx, tenantID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: aggregate usage: %w", tenantID, err)
	}

	summary := s.calculateSummary(plan, record, period)

	cacheKey := fmt.Sprintf(cacheKeyUsage, tenantID, period)
	_ = s.cache.Set(ctx, cacheKey, summary, 5*time.Minute)

	return summary, nil
}

func (s *Service) calculateSummary(plan *Plan, record *UsageRecord, period string) *UsageSummary {
	summary := &UsageSummary{
		Period:   period,
		Plan:     *plan,
		Students: newDetail(float64(record.ActiveStudents), float64(plan.QuotaStudents)),
		Storage:  newDetail(record.StorageGB, plan.QuotaStorageGB),
		APICalls: newDetail(float64(record.APICalls), float64(plan.QuotaAPICalls)),
		SMS:      newDetail(float64(record.SMSSent), float64(plan.QuotaSMS)),
	}

	summary.Alerts = s.generateAlerts(summary)

	return summary
}

// RecordEvent ingests one counter increment into today's usage row. Only
// counter metrics (api_calls, sms_sent) are accepted.
func (s *Service) RecordEvent(ctx context.Context, tenantID uuid.UUID, metric string, amount int) error {
	return s.repo.IncrementDaily(ctx, tenantID, time.Now().UTC(), metric, amount)
}

// RecordSnapshot ingests current gauge readings for today's usage row.
func (s *Service) RecordSnapshot(ctx context.Context, tenantID uuid.UUID, activeStudents int, storageGB float64) error {
	return s.repo.RecordSnapshot(ctx, tenantID, time.Now().UTC(), activeStudents, storageGB)
}

// CheckQuota recomputes the tenant's summary and pushes quota alerts to its
// webhook subscriptions and connected dashboards. Called from the quota worker.
func (s *Service) CheckQuota(ctx context.Context, tenantID uuid.UUID, planID string) error {
	summary, err := s.GetCurrentUsage(ctx, tenantID, planID)
	if err != nil {
		return fmt.Errorf("tenant %s: check quota: %w", tenantID, err)
	}

	for _, alert := range summary.Alerts {
		if err := s.sendAlert(ctx, tenantID, alert, summary); err != nil {
			return fmt.Errorf("tenant %s: send alert: %w", tenantID, err)
		}
	}

	return nil
}

func (s *Service) sendAlert(ctx context.Context, tenantID uuid.UUID, alert UsageAlert, summary *UsageSummary) error {
	if s.dashboard != nil {
		s.dashboard.BroadcastToTenant(tenantID, ws.EventQuotaAlert, map[string]interface{}{
			"alert":   alert,
			"summary": summary,
		})
	}

	webhooks, err := s.webhookService.GetWebhooksByEvent(ctx, tenantID, alert.Type)
	if err != nil {
		return fmt.Errorf("get webhooks: %w", err)
	}

	for _, wh := range webhooks {
		event := webhook.EventPayload{
			Type:      alert.Type,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"alert":   alert,
				"summary": summary,
			},
		}

		if err := s.webhookService.Send(ctx, wh, event); err != nil {
			return fmt.Errorf("send webhook: %w", err)
		}
	}

	return nil
}

func (s *Service) generateAlerts(summary *UsageSummary) []UsageAlert {
	var alerts []UsageAlert

	checkAndAddAlert := func(detail UsageDetail, metric, label string) {
		if detail.Quota <= 0 {
			return
		}

		if detail.Percentage >= 100 {
			alerts = append(alerts, UsageAlert{
				Type:       EventQuotaExceeded,
				Metric:     metric,
				Percentage: detail.Percentage,
				Message:    fmt.Sprintf("%s quota exceeded: %d%% used (%.0f/%.0f)", label, int(detail.Percentage), detail.Used, detail.Quota),
			})
		} else if detail.Percentage >= 90 {
			alerts = append(alerts, UsageAlert{
				Type:       EventQuotaCritical,
				Metric:     metric,
				Percentage: detail.Percentage,
				Message:    fmt.Sprintf("%s quota critical: %d%% used (%.0f/%.0f)", label, int(detail.Percentage), detail.Used, detail.Quota),
			})
		} else if detail.Percentage >= 80 {
			alerts = append(alerts, UsageAlert{
				Type:       EventQuotaWarning,
				Metric:     metric,
				Percentage: detail.Percentage,
				Message:    fmt.Sprintf("%s quota warning: %d%% used (%.0f/%.0f)", label, int(detail.Percentage), detail.Used, detail.Quota),
			})
		}
	}

	checkAndAddAlert(summary.Students, MetricStudents, "Active students")
	checkAndAddAlert(summary.Storage, MetricStorage, "Storage")
	checkAndAddAlert(summary.APICalls, MetricAPICalls, "API calls")
	checkAndAddAlert(summary.SMS, MetricSMS, "SMS")

	return alerts
}

func metricsFromRecord(record *UsageRecord, period string) []billing.UsageMetric {
	return []billing.UsageMetric{
		{Name: MetricStudents, Value: float64(record.ActiveStudents), Unit: "students", Period: period},
		{Name: MetricStorage, Value: record.StorageGB, Unit: "GB", Period: period},
		{Name: MetricAPICalls, Value: float64(record.APICalls), Unit: "calls", Period: period},
		{Name: MetricSMS, Value: float64(record.SMSSent), Unit: "messages", Period: period},
	}
}

func newDetail(used, quota float64) UsageDetail {
	return UsageDetail{
		Used:       used,
		Quota:      quota,
		Percentage: calculatePercentage(used, quota),
		Overage:    calculateOverage(used, quota),
	}
}

func periodBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

func calculatePercentage(used, quota float64) float64 {
	if quota <= 0 {
		return 0
	}
	return used / quota * 100
}

func calculateOverage(used, quota float64) float64 {
	if quota <= 0 {
		return 0
	}
	overage := used - quota
	if overage < 0 {
		return 0
	}
	return overage
}
