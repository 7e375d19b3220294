package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter_EvictsIdleEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(1, 5)
	l.now = func() time.Time { return now }
	require.Equal(t, time.Minute, l.idle)

	first := l.get("10.0.0.1")
	l.get("10.0.0.2")
	require.Len(t, l.limiters, 2)

	now = now.Add(30 * time.Second)
	require.Same(t, first, l.get("10.0.0.1"))

	now = now.Add(40 * time.Second)
	l.get("10.0.0.3")
	require.Len(t, l.limiters, 2)
	require.Contains(t, l.limiters, "10.0.0.1")
	require.NotContains(t, l.limiters, "10.0.0.2")
}

func TestRefillTime(t *testing.T) {
	require.Equal(t, time.Minute, refillTime(10, 5))
	require.Equal(t, 200*time.Second, refillTime(0.5, 100))
	require.Equal(t, 24*time.Hour, refillTime(1e-9, 1))
}
