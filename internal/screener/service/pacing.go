package service

import (
	"context"
	"math/rand/v2"
	"time"

	"golang-stock-screener/internal/screener/config"
)

const minPacingDelay = time.Second

// Pacer spaces out provider requests.
type Pacer interface {
	// Wait sleeps for a random duration between one second and the configured
	// maximum and returns the duration slept. It returns early with ctx.Err()
	// when ctx is done.
	Wait(ctx context.Context) (time.Duration, error)
}

type randomPacer struct {
	enabled bool
	max     time.Duration
	random  func() float64
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewPacer(cfg config.Pacing) Pacer {
	return &randomPacer{
		enabled: cfg.Enabled,
		max:     time.Duration(cfg.MaxSeconds * float64(time.Second)),
		random:  rand.Float64,
		sleep:   sleepContext,
	}
}

func (p *randomPacer) Wait(ctx context.Context) (time.Duration, error) {
	if !p.enabled {
		return 0, nil
	}
	d := p.delay()
	return d, p.sleep(ctx, d)
}

// delay is uniform in [minPacingDelay, max].
func (p *randomPacer) delay() time.Duration {
	if p.max <= minPacingDelay {
		return minPacingDelay
	}
	return minPacingDelay + time.Duration(p.random()*float64(p.max-minPacingDelay))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
