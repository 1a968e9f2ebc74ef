package orchestrator

import (
	"context"
	"log/slog"
	"time"
)

// reportInterval is the fixed progress-summary cadence (spec §4.1:
// "Emits progress summary on a fixed 30-second interval").
const reportInterval = 30 * time.Second

// ProgressReporter periodically logs a throughput summary while an
// Orchestrator run is in flight.
type ProgressReporter struct {
	metrics  *Metrics
	interval time.Duration
}

// NewProgressReporter binds a ProgressReporter to metrics.
func NewProgressReporter(metrics *Metrics) *ProgressReporter {
	return &ProgressReporter{metrics: metrics, interval: reportInterval}
}

// Run blocks, logging a summary every interval, until ctx is done.
func (r *ProgressReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := r.metrics.snapshot()
			slog.Info("ingest: progress",
				"processed", s.processed,
				"succeeded", s.succeeded,
				"failed", s.failed,
				"skipped", s.skipped,
				"active_workers", s.active,
			)
		}
	}
}
