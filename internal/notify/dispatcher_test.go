package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/domain"
	"github.com/classforge/classforge/internal/webhook"
)

type mockTenantGetter struct {
	tenant *domain.Tenant
	err    error
}

func (m *mockTenantGetter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return m.tenant, m.err
}

type mockMailer struct {
	sent []string
	body string
	err  error
}

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	m.body = body
	return nil
}

type mockWebhookSender struct {
	hooks   []*webhook.Webhook
	sent    []webhook.EventPayload
	sendErr error
}

func (m *mockWebhookSender) GetWebhooksByEvent(ctx context.Context, tenantID uuid.UUID, eventType string) ([]*webhook.Webhook, error) {
	return m.hooks, nil
}

func (m *mockWebhookSender) Send(ctx context.Context, wh *webhook.Webhook, event webhook.EventPayload) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, event)
	return nil
}

func testDispatcher(tenant *domain.Tenant, mailer *mockMailer, hooks *mockWebhookSender) *Dispatcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(&mockTenantGetter{tenant: tenant}, mailer, hooks, logger)
}

func notificationRule() *billing.BillingRule {
	return &billing.BillingRule{
		ID:          uuid.New(),
		Name:        "quota warning",
		Description: "Storage is approaching the plan limit.",
		Type:        billing.RuleTypeUsage,
		Action:      billing.RuleAction{Type: billing.ActionSendNotification},
	}
}

func TestDispatcher_Notify_AllChannels(t *testing.T) {
	tenant := &domain.Tenant{
		ID:   uuid.New(),
		Name: "Springfield High",
		Plan: domain.PlanProfessional,
		Settings: map[string]interface{}{
			"billing_email": "bursar@springfield.edu",
		},
	}
	mailer := &mockMailer{}
	hooks := &mockWebhookSender{hooks: []*webhook.Webhook{
		{ID: uuid.New(), TenantID: tenant.ID, URL: "https://example.com/hook", Enabled: true},
	}}

	d := testDispatcher(tenant, mailer, hooks)
	require.NoError(t, d.Notify(context.Background(), tenant.ID, notificationRule(), billing.Context{"storage_gb": 95.0}))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "bursar@springfield.edu", mailer.sent[0])
	assert.True(t, strings.Contains(mailer.body, "quota warning"))

	require.Len(t, hooks.sent, 1)
	assert.Equal(t, EventRuleTriggered, hooks.sent[0].Type)
	assert.Equal(t, tenant.ID, hooks.sent[0].TenantID)
}

func TestDispatcher_Notify_NoBillingEmail(t *testing.T) {
	tenant := &domain.Tenant{ID: uuid.New(), Name: "No Email School", Plan: domain.PlanBasic}
	mailer := &mockMailer{}
	hooks := &mockWebhookSender{}

	d := testDispatcher(tenant, mailer, hooks)
	require.NoError(t, d.Notify(context.Background(), tenant.ID, notificationRule(), nil))

	assert.Empty(t, mailer.sent)
}

func TestDispatcher_Notify_EmailFailureDoesNotBlockWebhooks(t *testing.T) {
	tenant := &domain.Tenant{
		ID:   uuid.New(),
		Name: "Springfield High",
		Plan: domain.PlanProfessional,
		Settings: map[string]interface{}{
			"billing_email": "bursar@springfield.edu",
		},
	}
	mailer := &mockMailer{err: errors.New("ses unavailable")}
	hooks := &mockWebhookSender{hooks: []*webhook.Webhook{
		{ID: uuid.New(), TenantID: tenant.ID, URL: "https://example.com/hook", Enabled: true},
	}}

	d := testDispatcher(tenant, mailer, hooks)
	err := d.Notify(context.Background(), tenant.ID, notificationRule(), nil)

	require.Error(t, err)
	assert.Len(t, hooks.sent, 1)
}

func TestDispatcher_Notify_TenantLookupFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := NewDispatcher(&mockTenantGetter{err: domain.ErrTenantNotFound}, &mockMailer{}, &mockWebhookSender{}, logger)

	err := d.Notify(context.Background(), uuid.New(), notificationRule(), nil)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}
