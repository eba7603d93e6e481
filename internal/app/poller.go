package app

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/cinefind/internal/counter"
	"github.com/five82/cinefind/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
	refreshTimeout      = 5 * time.Second
)

// Poller refreshes the trending list into a store.
type Poller struct {
	Store    *state.Store
	Source   counter.Trender
	Interval time.Duration
	Limit    int
	Logger   *log.Logger
}

// Start launches a background goroutine that refreshes the store until ctx is
// done. Failures slow the cadence down exponentially. It returns immediately;
// the returned channel closes once the goroutine has exited.
func (p Poller) Start(ctx context.Context) <-chan struct{} {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			p.refresh(ctx)
			wait := calculateBackoff(p.Store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
	return done
}

func (p Poller) refresh(ctx context.Context) {
	rctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	entries, err := p.Source.Trending(rctx, p.Limit)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.Store.Update(nil, err)
		if p.Logger != nil {
			p.Logger.Warn("trending refresh failed", "err", err)
		}
		return
	}
	p.Store.Update(entries, nil)
}

// calculateBackoff doubles interval for every consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	wait := interval
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
