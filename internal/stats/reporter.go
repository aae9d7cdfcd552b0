package stats

import (
	"context"
	"time"

	"iconograph/internal/logging"
)

// Reporter logs a top-10 popularity report at a fixed cadence. It reads the
// tracker snapshot only; it never mutates state.
type Reporter struct {
	tracker  *Tracker
	interval time.Duration
}

// NewReporter creates a reporter. An interval of zero or less defaults to
// one day.
func NewReporter(tracker *Tracker, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Reporter{tracker: tracker, interval: interval}
}

// Run emits reports until the context is cancelled.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Report()
		}
	}
}

// Report logs the current top queries.
func (r *Reporter) Report() {
	top := r.tracker.TopQueries(10)
	snap := r.tracker.Snapshot()

	logging.Stats("analytics report: %d total interactions, %d distinct queries",
		snap.TotalInteractions, len(snap.PopularQueries))
	for i, qc := range top {
		logging.Stats("  %2d. %q (%d)", i+1, qc.Query, qc.Count)
	}
}
