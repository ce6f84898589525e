package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsBurstThenRefills(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newRateLimiter(3, time.Minute, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "attempt %d", i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(20 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newRateLimiter(1, time.Minute, func() time.Time { return now })

	l.Allow("10.0.0.1")
	now = now.Add(2 * time.Minute)
	l.evict(now)

	assert.Empty(t, l.visitors)
}

func TestRateLimiterNeverExceedsVisitorCap(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newRateLimiter(1, time.Minute, func() time.Time { return now })
	l.maxVisitors = 2

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		assert.True(t, l.Allow(ip), ip)
		assert.LessOrEqual(t, len(l.visitors), 2)
		now = now.Add(time.Second)
	}

	assert.NotContains(t, l.visitors, "10.0.0.1")
	assert.NotContains(t, l.visitors, "10.0.0.2")
	assert.Contains(t, l.visitors, "10.0.0.3")
	assert.Contains(t, l.visitors, "10.0.0.4")
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, "20", retryAfter(time.Minute, 3))
	assert.Equal(t, "1", retryAfter(time.Second, 10))
}
