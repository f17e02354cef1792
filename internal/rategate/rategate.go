// Package rategate enforces a fixed minimum delay between consecutive
// calls of one serial request sequence, keeping the aggregate call rate
// under the API ceiling. It is deliberately not a token bucket: sequences
// are strictly serial, one outstanding request at a time.
package rategate

import (
	"context"
	"sync"
	"time"
)

// Gate delays every call after the first by at least the configured
// interval. Reset starts a new sequence whose first call passes
// immediately.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// New creates a gate with the given minimum inter-request interval.
func New(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Wait blocks until at least the interval has passed since the previous
// request in the sequence, or the context is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	var wait time.Duration
	if !g.last.IsZero() {
		wait = g.interval - time.Since(g.last)
	}
	g.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	g.mu.Lock()
	g.last = time.Now()
	g.mu.Unlock()
	return nil
}

// Reset starts a new sequence: the next Wait returns without delay.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.last = time.Time{}
	g.mu.Unlock()
}
