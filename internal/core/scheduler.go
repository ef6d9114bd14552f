package core

// scheduler.go runs periodic maintenance:
//  1. Drop editing sessions idle past their TTL
//  2. Purge audit entries older than the retention period
//
// The job is long-running and stops when its context is cancelled. Failures
// are logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// MaintenanceConfig holds configuration for the maintenance job.
type MaintenanceConfig struct {
	Interval       time.Duration // How often to run (default: 1m)
	AuditRetention time.Duration // Audit entries older than this are purged; 0 keeps them
}

// StartMaintenance runs the maintenance job every Interval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartMaintenance(ctx context.Context, cfg MaintenanceConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	slog.Info("maintenance started",
		"interval", cfg.Interval,
		"audit_retention", cfg.AuditRetention,
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("maintenance stopped")
			return
		case <-ticker.C:
			s.runMaintenance(ctx, cfg)
		}
	}
}

// runMaintenance performs one reap + purge cycle.
func (s *Service) runMaintenance(ctx context.Context, cfg MaintenanceConfig) {
	if n := s.ReapExpired(); n > 0 {
		slog.Info("expired sessions dropped", "sessions", n, "remaining", s.SessionCount())
	}

	if cfg.AuditRetention <= 0 {
		return
	}
	start := time.Now()
	purged, err := s.store.PurgeAudit(ctx, s.now().Add(-cfg.AuditRetention))
	if err != nil {
		slog.Error("audit purge failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged old audit entries",
			"entries_purged", purged,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
