package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(start time.Time) (*RateLimiter, *time.Time) {
	clock := start
	rl := NewRateLimiter()
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestCheckDeniesAboveLimit(t *testing.T) {
	rl, _ := newTestLimiter(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		result := rl.Check("admin@example.com-1.2.3.4", 5, 10*time.Minute)
		require.True(t, result.Allowed, "request %d", i+1)
	}

	denied := rl.Check("admin@example.com-1.2.3.4", 5, 10*time.Minute)
	assert.False(t, denied.Allowed)
	assert.Equal(t, "Rate limit exceeded", denied.Reason)
	assert.Positive(t, denied.RetryAfter)
	assert.LessOrEqual(t, denied.RetryAfter, 600)
}

func TestCheckDenialDoesNotConsumeSlot(t *testing.T) {
	rl, clock := newTestLimiter(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		rl.Check("k", 5, 10*time.Minute)
	}
	for i := 0; i < 3; i++ {
		assert.False(t, rl.Check("k", 5, 10*time.Minute).Allowed)
	}

	// Window elapses: the next request opens a fresh window.
	*clock = clock.Add(10*time.Minute + time.Second)
	assert.True(t, rl.Check("k", 5, 10*time.Minute).Allowed)
}

func TestCheckRetryAfterShrinks(t *testing.T) {
	rl, clock := newTestLimiter(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		rl.Check("k", 5, 10*time.Minute)
	}

	first := rl.Check("k", 5, 10*time.Minute)
	*clock = clock.Add(4 * time.Minute)
	later := rl.Check("k", 5, 10*time.Minute)

	require.False(t, first.Allowed)
	require.False(t, later.Allowed)
	assert.Greater(t, first.RetryAfter, later.RetryAfter)
}

func TestCheckIsolatesClients(t *testing.T) {
	rl, _ := newTestLimiter(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		rl.Check("a@x.com-1.1.1.1", 5, 10*time.Minute)
	}
	assert.False(t, rl.Check("a@x.com-1.1.1.1", 5, 10*time.Minute).Allowed)
	assert.True(t, rl.Check("a@x.com-2.2.2.2", 5, 10*time.Minute).Allowed)
}

func TestSweepDropsIdleEntries(t *testing.T) {
	rl, clock := newTestLimiter(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	rl.Check("stale", 5, 10*time.Minute)
	*clock = clock.Add(4 * time.Minute)
	rl.Check("fresh", 5, 10*time.Minute)

	*clock = clock.Add(2 * time.Minute)
	rl.sweep()

	rl.mu.Lock()
	_, staleKept := rl.entries["stale"]
	_, freshKept := rl.entries["fresh"]
	rl.mu.Unlock()

	assert.False(t, staleKept)
	assert.True(t, freshKept)
}

func TestReset(t *testing.T) {
	rl, _ := newTestLimiter(time.Now())
	for i := 0; i < 5; i++ {
		rl.Check("k", 5, 10*time.Minute)
	}
	require.False(t, rl.Check("k", 5, 10*time.Minute).Allowed)

	rl.Reset()
	assert.True(t, rl.Check("k", 5, 10*time.Minute).Allowed)
}
