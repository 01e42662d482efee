package jobs

import (
	"context"
	"log"
	"time"

	"devhub/internal/services"
)

// Sweeper closes competitions whose voting window has ended.
type Sweeper interface {
	AutoCloseExpired(ctx context.Context) (services.SweepResult, error)
}

// AutoCloser runs the sweep on a fixed interval.
type AutoCloser struct {
	sweeper  Sweeper
	interval time.Duration
}

func NewAutoCloser(sweeper Sweeper, interval time.Duration) *AutoCloser {
	return &AutoCloser{sweeper: sweeper, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (a *AutoCloser) Run(ctx context.Context) {
	if a.interval <= 0 {
		return
	}
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and logs its outcome.
func (a *AutoCloser) RunOnce(ctx context.Context) services.SweepResult {
	result, err := a.sweeper.AutoCloseExpired(ctx)
	if err != nil {
		log.Printf("auto-close sweep failed: %v", err)
		return result
	}
	if len(result.Closed) > 0 || len(result.Failed) > 0 {
		log.Printf("auto-close sweep: closed=%v failed=%d", result.Closed, len(result.Failed))
	}
	return result
}
