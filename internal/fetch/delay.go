package fetch

import (
	"context"
	"time"
)

// Delay is the polite wait applied before every network call:
// Base plus a uniform jitter in [0, Jitter*Base).
type Delay struct {
	Base   time.Duration
	Jitter float64
}

// NewDelay returns a Delay with the standard 50% jitter.
func NewDelay(base time.Duration) Delay {
	return Delay{Base: base, Jitter: 0.5}
}

// Next returns the next wait duration.
func (d Delay) Next(rnd Random) time.Duration {
	if d.Base <= 0 {
		return 0
	}
	if rnd == nil {
		rnd = DefaultRandom
	}
	return d.Base + time.Duration(rnd.Float64()*d.Jitter*float64(d.Base))
}

// Wait blocks for the next wait duration or until ctx is done.
func (d Delay) Wait(ctx context.Context, rnd Random) error {
	return Sleep(ctx, d.Next(rnd))
}

// Sleep waits for dur, returning ctx.Err() if the context ends first.
func Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
