package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Billing
	DefaultCurrency string `envconfig:"DEFAULT_CURRENCY" default:"USD"`

	// Security
	APIKeySecret   string `envconfig:"API_KEY_SECRET" required:"true"`
	AdminJWTSecret string `envconfig:"ADMIN_JWT_SECRET" default:""`

	// Email notifications (AWS SES)
	AWSRegion string `envconfig:"AWS_REGION" default:"us-east-1"`
	EmailFrom string `envconfig:"EMAIL_FROM" default:"billing@classforge.io"`

	// Workers
	WebhookRetryInterval  time.Duration `envconfig:"WEBHOOK_RETRY_INTERVAL" default:"30s"`
	QuotaCheckInterval    time.Duration `envconfig:"QUOTA_CHECK_INTERVAL" default:"5m"`
	ScheduledRuleInterval time.Duration `envconfig:"SCHEDULED_RULE_INTERVAL" default:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
