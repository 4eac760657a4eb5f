package server

import (
	"context"
	"errors"
	"time"
)

const sweepTimeout = 30 * time.Second

// runSweeper demotes stale nodes on a fixed period until ctx is canceled.
// A failed pass is logged and skipped; the loop itself never exits on error.
func (s *Server) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			demoted, err := s.SweepOnce(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("liveness sweep failed", "err", err)
				continue
			}
			if demoted > 0 {
				s.log.Info("stale nodes marked down", "count", demoted)
			}
		}
	}
}

// SweepOnce runs a single demotion pass: every node silent for longer than
// the staleness window (or never heard from) and not already down is set to
// down in one atomic statement. If another sweep is still in flight the pass
// is skipped rather than stacked. Exposed so tests and operators can trigger
// a sweep synchronously instead of waiting on the timer.
func (s *Server) SweepOnce(ctx context.Context) (int64, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer s.sweeping.Store(false)

	sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.cfg.StalenessWindow)
	return s.store.MarkStaleDown(sweepCtx, cutoff)
}
