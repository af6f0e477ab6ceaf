package core

// sweeper.go evicts expired uploads in the background.
//
// The sweeper is long-running and stops when its context is cancelled. A
// sweep never fails; it only logs what it removed.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often expired uploads are evicted.
const DefaultSweepInterval = 5 * time.Minute

// StartSweeper evicts expired uploads every interval until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("upload sweeper started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("upload sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one eviction pass.
func (s *Service) sweep() int {
	start := time.Now()
	removed := s.store.Sweep()
	s.observer.SetStoredFiles(s.store.Len())

	if removed > 0 {
		slog.Info("expired uploads evicted",
			"removed", removed,
			"remaining", s.store.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		slog.Debug("sweep found nothing to evict")
	}
	return removed
}
