package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"
)

// Waiter blocks between requests. The orchestrator depends on this interface
// so tests can count invocations without sleeping.
type Waiter interface {
	// Wait blocks for the courtesy delay and returns how long it waited.
	// It returns early, with the time actually waited, when ctx ends.
	Wait(ctx context.Context) time.Duration
}

// Delay is a fixed courtesy delay, optionally jittered.
//
// With jitter the delay is drawn uniformly from [0.5*Base, 1.5*Base], so the
// average request rate matches the fixed delay while the request spacing
// looks less mechanical.
type Delay struct {
	// Base is the nominal delay. Zero or negative disables waiting.
	Base time.Duration

	// Jitter enables uniform randomization around Base.
	Jitter bool

	// rand returns a value in [0, 1). Nil uses math/rand/v2.
	rand func() float64
}

// NewDelay creates a Delay.
func NewDelay(base time.Duration, jitter bool) *Delay {
	return &Delay{Base: base, Jitter: jitter}
}

// Next returns the duration the next Wait will block for.
func (d *Delay) Next() time.Duration {
	if d.Base <= 0 {
		return 0
	}
	if !d.Jitter {
		return d.Base
	}
	r := rand.Float64
	if d.rand != nil {
		r = d.rand
	}
	factor := 0.5 + r()
	return time.Duration(float64(d.Base) * factor)
}

// Wait implements Waiter.
func (d *Delay) Wait(ctx context.Context) time.Duration {
	wait := d.Next()
	if wait <= 0 {
		return 0
	}

	start := time.Now()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return time.Since(start)
	case <-timer.C:
		return wait
	}
}

// Counter is a Waiter that never sleeps and counts calls.
type Counter struct {
	Calls int
}

// Wait implements Waiter.
func (c *Counter) Wait(context.Context) time.Duration {
	c.Calls++
	return 0
}
