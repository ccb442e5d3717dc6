// Package timectrl provides the clock abstraction that drives the lifecycle
// engine's stage delays. Components depend on Clock rather than the time
// package directly so tests can run progressions without real waiting.
package timectrl

import (
	"context"
	"sync"
	"time"
)

// Clock is the time source used by components that wait between stages.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep blocks for d or until ctx is cancelled, returning ctx.Err()
	// in the cancelled case.
	Sleep(ctx context.Context, d time.Duration) error
}

// System returns a Clock backed by wall-clock time.
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Instant returns a Clock whose Sleep returns immediately while still
// honouring context cancellation. It advances an internal time by each
// requested duration so elapsed-time assertions remain meaningful.
func Instant(start time.Time) *InstantClock {
	return &InstantClock{now: start}
}

// InstantClock is a non-blocking Clock for tests. It is safe for use by
// concurrent progressions.
type InstantClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *InstantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *InstantClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d > 0 {
		c.mu.Lock()
		c.now = c.now.Add(d)
		c.mu.Unlock()
	}
	return nil
}
