package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the minimum spacing between generation attempts.
const DefaultInterval = 2 * time.Second

// Limiter spaces out calls so that each attempt starts at least interval after
// the previous attempt finished. Attempts are serialized.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	clock    clockwork.Clock
	last     time.Time
}

// New creates a limiter. A nil clock uses the real clock.
func New(interval time.Duration, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{interval: interval, clock: clock}
}

// Do waits out the remainder of the interval, then runs fn. The last-call
// timestamp is recorded after fn returns, whether or not it failed.
// If ctx ends while waiting, fn is not run and the context error is returned.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.interval - l.clock.Since(l.last); wait > 0 {
			select {
			case <-l.clock.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	err := fn()
	l.last = l.clock.Now()
	return err
}

// LastCall returns when the most recent attempt finished, or the zero time.
func (l *Limiter) LastCall() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
