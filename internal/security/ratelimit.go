// Package security holds the write-path rate limiter: a fixed-window counter
// keyed by client id (actor email + network address), consulted before the
// save endpoint touches any backend.
package security

import (
	"context"
	"math"
	"sync"
	"time"
)

// CheckResult reports a rate-limit decision. RetryAfter is in seconds and
// only set when the request is denied.
type CheckResult struct {
	Allowed    bool   `json:"isAllowed"`
	Reason     string `json:"reason,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

type windowEntry struct {
	count     int
	lastReset time.Time
}

// RateLimiter is process-wide state with an explicit lifecycle: constructed
// at startup, swept by a background tick, resettable for tests.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Check counts one request against clientID's current window. Expired
// windows reset lazily on access; a denied request does not consume a slot.
func (rl *RateLimiter) Check(clientID string, maxRequests int, window time.Duration) CheckResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	existing, ok := rl.entries[clientID]
	if !ok || now.Sub(existing.lastReset) > window {
		rl.entries[clientID] = &windowEntry{count: 1, lastReset: now}
		return CheckResult{Allowed: true}
	}

	if existing.count >= maxRequests {
		remaining := window - now.Sub(existing.lastReset)
		return CheckResult{
			Allowed:    false,
			Reason:     "Rate limit exceeded",
			RetryAfter: int(math.Ceil(remaining.Seconds())),
		}
	}

	existing.count++
	return CheckResult{Allowed: true}
}

// StartSweeper drops entries untouched for five minutes, once a minute, to
// bound memory growth. Stops when ctx is cancelled.
func (rl *RateLimiter) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.sweep()
			}
		}
	}()
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-5 * time.Minute)
	for clientID, entry := range rl.entries {
		if entry.lastReset.Before(cutoff) {
			delete(rl.entries, clientID)
		}
	}
}

// Reset clears all windows. Test hook.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = make(map[string]*windowEntry)
}
