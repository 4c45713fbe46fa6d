package report

import (
	"context"
	"log/slog"
	"time"
)

// Retention prunes old rule execution records on a schedule so history
// queries stay bounded.
type Retention struct {
	repo     *Repository
	logger   *slog.Logger
	keep     time.Duration
	interval time.Duration
	done     chan struct{}
}

// NewRetention creates a retention worker. Records older than keep are
// deleted on each pass.
func NewRetention(repo *Repository, logger *slog.Logger, keep, interval time.Duration) *Retention {
	if keep == 0 {
		keep = 90 * 24 * time.Hour
	}
	if interval == 0 {
		interval = 1 * time.Hour
	}

	return &Retention{
		repo:     repo,
		logger:   logger,
		keep:     keep,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the retention worker
func (r *Retention) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("retention worker started", "interval", r.interval, "keep", r.keep)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("retention worker stopped")
			return
		case <-r.done:
			r.logger.Info("retention worker stopped")
			return
		case <-ticker.C:
			r.prune(ctx)
		}
	}
}

// Stop gracefully shuts down the worker
func (r *Retention) Stop() {
	close(r.done)
}

func (r *Retention) prune(ctx context.Context) {
	deleted, err := r.repo.DeleteOldExecutions(ctx, r.keep)
	if err != nil {
		r.logger.Error("failed to delete old executions", "error", err)
		return
	}
	if deleted > 0 {
		r.logger.Info("deleted old executions", "count", deleted)
	}
}
