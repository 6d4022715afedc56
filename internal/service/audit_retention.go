package service

import (
	"context"
	"log/slog"
	"time"
)

// AuditPruner deletes audit records older than a cutoff
type AuditPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRetentionWorker periodically deletes comparison audits past retention
type AuditRetentionWorker struct {
	pruner    AuditPruner
	logger    *slog.Logger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewAuditRetentionWorker creates a new retention worker
func NewAuditRetentionWorker(pruner AuditPruner, logger *slog.Logger, retention, interval time.Duration) *AuditRetentionWorker {
	return &AuditRetentionWorker{
		pruner:    pruner,
		logger:    logger,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Run prunes once immediately, then on every tick until ctx is done
func (w *AuditRetentionWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("audit retention worker started",
		"retention", w.retention,
		"interval", w.interval,
	)

	w.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit retention worker stopped")
			return
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

func (w *AuditRetentionWorker) prune(ctx context.Context) {
	cutoff := w.now().Add(-w.retention)

	deleted, err := w.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("failed to prune comparison audits", "error", err)
		}
		return
	}

	w.logger.Debug("comparison audits pruned",
		"deleted", deleted,
		"cutoff", cutoff,
	)
}
