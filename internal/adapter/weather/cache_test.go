package weather

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coatcheck/coatcheck-service/internal/domain"
	"github.com/coatcheck/coatcheck-service/internal/observability"
)

// --- mock for cache tests ---

type countingProvider struct {
	calls int
	cond  domain.Conditions
	err   error
}

func (m *countingProvider) Current(_ context.Context, _, _ float64) (domain.Conditions, error) {
	m.calls++
	return m.cond, m.err
}

func newFrozenCache(inner domain.WeatherProvider, ttl time.Duration, clock clockwork.Clock) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newTTLCache(10, ttl, clock),
		metrics: observability.NewMetricsForTesting(),
	}
}

// --- CachedProvider tests ---

func TestCachedProvider_Hit(t *testing.T) {
	inner := &countingProvider{cond: domain.Conditions{Location: "London", FeelsLike: 11}}
	cached := newFrozenCache(inner, 5*time.Minute, clockwork.NewFakeClock())

	r1, err := cached.Current(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, "London", r1.Location)

	r2, err := cached.Current(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, "London", r2.Location)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedProvider_KeyRoundsToTwoDecimals(t *testing.T) {
	inner := &countingProvider{cond: domain.Conditions{Location: "London"}}
	cached := newFrozenCache(inner, 5*time.Minute, clockwork.NewFakeClock())

	_, err := cached.Current(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)

	// A point a street away shares the rounded key.
	_, err = cached.Current(context.Background(), 51.5091, -0.1262)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedProvider_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingProvider{cond: domain.Conditions{Location: "London"}}
	cached := newFrozenCache(inner, 5*time.Minute, clock)

	_, err := cached.Current(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)

	_, err = cached.Current(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entry triggers a fresh lookup")
}

func TestCachedProvider_ErrorNotCached(t *testing.T) {
	inner := &countingProvider{err: assert.AnError}
	cached := newFrozenCache(inner, 5*time.Minute, clockwork.NewFakeClock())

	_, err := cached.Current(context.Background(), 51.5074, -0.1278)
	require.Error(t, err)

	inner.err = nil
	inner.cond = domain.Conditions{Location: "London"}
	cond, err := cached.Current(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, "London", cond.Location)
	assert.Equal(t, 2, inner.calls)
}

// --- ttlCache eviction ---

func TestTTLCache_EvictsLeastRecentlyUsed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTTLCache(2, time.Hour, clock)

	c.put("a", domain.Conditions{Location: "A"})
	c.put("b", domain.Conditions{Location: "B"})

	// Touch "a" so "b" is the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", domain.Conditions{Location: "C"})

	_, ok = c.get("b")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}
