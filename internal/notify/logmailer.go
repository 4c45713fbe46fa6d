package notify

import (
	"context"
	"log/slog"
)

// LogMailer writes outgoing emails to the log instead of delivering them.
// Used in development when SES is not configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendEmail(_ context.Context, to, subject, _ string) error {
	m.logger.Info("email suppressed (log mailer)",
		"to", to,
		"subject", subject,
	)
	return nil
}
