// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces requests to one source by a minimum interval. Each
// adapter owns exactly one limiter constructed at startup; there is no
// process-wide limiter state. Concurrency in the pipeline is across
// sources, never within one source's request stream.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateLimiter returns a limiter enforcing the given minimum spacing.
// A non-positive interval disables waiting.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Wait blocks until the minimum interval since the previous request has
// elapsed, then records the new request time. It returns early with
// ctx.Err() if the context is cancelled while waiting. Holding the lock
// for the whole wait is intentional: it serializes concurrent callers
// into one spaced request stream.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.interval > 0 && !l.last.IsZero() {
		sleep := l.interval - time.Since(l.last)
		if sleep > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
		}
	}

	l.last = time.Now()
	return nil
}
