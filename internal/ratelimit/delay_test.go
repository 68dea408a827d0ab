package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDelayNext(t *testing.T) {
	t.Parallel()

	t.Run("fixed delay", func(t *testing.T) {
		t.Parallel()
		d := NewDelay(time.Second, false)
		if got := d.Next(); got != time.Second {
			t.Errorf("expected 1s, got %v", got)
		}
	})

	t.Run("zero disables waiting", func(t *testing.T) {
		t.Parallel()
		d := NewDelay(0, true)
		if got := d.Next(); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("jitter bounds", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			r    float64
			want time.Duration
		}{
			{0, 500 * time.Millisecond},
			{0.5, time.Second},
			{0.75, 1250 * time.Millisecond},
		}
		for _, tt := range tests {
			d := &Delay{Base: time.Second, Jitter: true, rand: func() float64 { return tt.r }}
			if got := d.Next(); got != tt.want {
				t.Errorf("r=%v: expected %v, got %v", tt.r, tt.want, got)
			}
		}
	})

	t.Run("jitter stays in range", func(t *testing.T) {
		t.Parallel()
		d := NewDelay(time.Second, true)
		for i := 0; i < 1000; i++ {
			got := d.Next()
			if got < 500*time.Millisecond || got >= 1500*time.Millisecond {
				t.Fatalf("delay %v outside [0.5s, 1.5s)", got)
			}
		}
	})
}

func TestDelayWait(t *testing.T) {
	t.Parallel()

	t.Run("waits for the delay", func(t *testing.T) {
		t.Parallel()
		d := NewDelay(20*time.Millisecond, false)
		start := time.Now()
		waited := d.Wait(context.Background())
		if time.Since(start) < 20*time.Millisecond {
			t.Errorf("returned too early after %v", time.Since(start))
		}
		if waited != 20*time.Millisecond {
			t.Errorf("expected reported wait 20ms, got %v", waited)
		}
	})

	t.Run("returns on cancellation", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d := NewDelay(time.Hour, false)
		start := time.Now()
		d.Wait(ctx)
		if time.Since(start) > time.Second {
			t.Error("expected Wait to return promptly on a cancelled context")
		}
	})
}

func TestCounter(t *testing.T) {
	t.Parallel()

	var c Counter
	var w Waiter = &c
	w.Wait(context.Background())
	w.Wait(context.Background())
	if c.Calls != 2 {
		t.Errorf("expected 2 calls, got %d", c.Calls)
	}
}
