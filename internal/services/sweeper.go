package services

import (
	"context"
	"time"

	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// ExpirySweeper drives the lifecycle expiry sweep on a fixed interval. Runs
// are serialized per process; cross-process overlap is safe because every
// transition the sweep makes is individually guarded.
type ExpirySweeper struct {
	log       *logger.Logger
	lifecycle LifecycleService
	interval  time.Duration
}

func NewExpirySweeper(log *logger.Logger, lifecycle LifecycleService, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpirySweeper{
		log:       log.With("service", "ExpirySweeper"),
		lifecycle: lifecycle,
		interval:  interval,
	}
}

func (s *ExpirySweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				s.log.Info("Expiry sweeper stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	start := time.Now()
	n, err := s.lifecycle.ExpireSweep(ctx)
	if err != nil {
		s.log.Error("Expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("Expiry sweep finished", "transitioned", n, "took", time.Since(start).String())
	}
}
