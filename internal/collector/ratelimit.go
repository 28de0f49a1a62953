package collector

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum spacing between outbound requests per
// provider. Each provider has its own gate, so two targets hitting two
// different providers never block each other.
type RateLimiter struct {
	interval time.Duration

	mu    sync.Mutex
	gates map[string]*providerGate
}

type providerGate struct {
	mu          sync.Mutex
	lastGranted time.Time
}

func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		gates:    make(map[string]*providerGate),
	}
}

func (l *RateLimiter) gate(providerID string) *providerGate {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.gates[providerID]
	if !ok {
		g = &providerGate{}
		l.gates[providerID] = g
	}
	return g
}

// Acquire blocks until the minimum inter-request interval for the provider
// has elapsed since its last granted acquisition. The gate lock is held for
// the duration of the wait, which serializes concurrent requesters for the
// same provider first-come-first-served.
func (l *RateLimiter) Acquire(ctx context.Context, providerID string) error {
	g := l.gate(providerID)

	g.mu.Lock()
	defer g.mu.Unlock()

	if wait := l.interval - time.Since(g.lastGranted); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	g.lastGranted = time.Now()
	return nil
}
