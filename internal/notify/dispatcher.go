// Package notify delivers send_notification rule actions through a tenant's
// configured channels: the billing contact email and webhook subscriptions.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/billing"
	"github.com/classforge/classforge/internal/domain"
	"github.com/classforge/classforge/internal/webhook"
)

const EventRuleTriggered = "billing.rule_triggered"

type TenantGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
}

type WebhookSender interface {
	GetWebhooksByEvent(ctx context.Context, tenantID uuid.UUID, eventType string) ([]*webhook.Webhook, error)
	Send(ctx context.Context, webhook *webhook.Webhook, event webhook.EventPayload) error
}

// Dispatcher satisfies the engine's notifier dependency. Channels are tried
// independently; a failure on one does not stop the others.
type Dispatcher struct {
	tenants  TenantGetter
	mailer   Mailer
	webhooks WebhookSender
	logger   *slog.Logger
}

func NewDispatcher(tenants TenantGetter, mailer Mailer, webhooks WebhookSender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		tenants:  tenants,
		mailer:   mailer,
		webhooks: webhooks,
		logger:   logger,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, tenantID uuid.UUID, rule *billing.BillingRule, evalCtx billing.Context) error {
	tenant, err := d.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("notify tenant %s: %w", tenantID, err)
	}

	var errs []error

	if err := d.sendEmail(ctx, tenant, rule); err != nil {
		d.logger.Warn("email notification failed",
			"tenant_id", tenantID,
			"rule_id", rule.ID,
			"error", err,
		)
		errs = append(errs, err)
	}

	if err := d.sendWebhooks(ctx, tenant, rule, evalCtx); err != nil {
		d.logger.Warn("webhook notification failed",
			"tenant_id", tenantID,
			"rule_id", rule.ID,
			"error", err,
		)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) sendEmail(ctx context.Context, tenant *domain.Tenant, rule *billing.BillingRule) error {
	settings := tenant.GetSettings()
	if settings.BillingEmail == "" {
		d.logger.Debug("tenant has no billing email, skipping email channel",
			"tenant_id", tenant.ID,
		)
		return nil
	}

	subject := fmt.Sprintf("[Classforge] Billing notice for %s", tenant.Name)
	body := buildEmailBody(tenant, rule)

	return d.mailer.SendEmail(ctx, settings.BillingEmail, subject, body)
}

func (d *Dispatcher) sendWebhooks(ctx context.Context, tenant *domain.Tenant, rule *billing.BillingRule, evalCtx billing.Context) error {
	hooks, err := d.webhooks.GetWebhooksByEvent(ctx, tenant.ID, EventRuleTriggered)
	if err != nil {
		return fmt.Errorf("get webhooks: %w", err)
	}

	event := webhook.EventPayload{
		Type:      EventRuleTriggered,
		TenantID:  tenant.ID,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"rule_id":   rule.ID,
			"rule_name": rule.Name,
			"rule_type": rule.Type,
			"context":   map[string]any(evalCtx),
		},
	}

	var errs []error
	for _, hook := range hooks {
		if err := d.webhooks.Send(ctx, hook, event); err != nil {
			errs = append(errs, fmt.Errorf("webhook %s: %w", hook.ID, err))
		}
	}

	return errors.Join(errs...)
}

func buildEmailBody(tenant *domain.Tenant, rule *billing.BillingRule) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", tenant.Name)
	fmt.Fprintf(&b, "The billing rule %q was triggered for your account.\n", rule.Name)
	if rule.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", rule.Description)
	}
	b.WriteString("\nYou can review your current usage and billing details in the Classforge dashboard.\n")

	return b.String()
}
