package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/coatcheck/coatcheck-service/internal/domain"
	"github.com/coatcheck/coatcheck-service/internal/observability"
)

// CachedProvider wraps a WeatherProvider with an in-memory TTL+LRU cache.
// Keys round coordinates to 2 decimals (~1 km), so requests within the same
// neighborhood reuse one upstream lookup until the entry expires.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *ttlCache
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a weather provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newTTLCache(maxEntries, ttl, clockwork.NewRealClock()),
		metrics: metrics,
	}
}

func (c *CachedProvider) Current(ctx context.Context, lat, lon float64) (domain.Conditions, error) {
	key := fmt.Sprintf("%.2f,%.2f", lat, lon)
	if cond, ok := c.cache.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return cond, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	cond, err := c.inner.Current(ctx, lat, lon)
	if err != nil {
		return cond, err
	}
	c.cache.put(key, cond)
	return cond, nil
}

// ttlCache is a thread-safe LRU cache whose entries also expire after a
// fixed TTL, since weather goes stale regardless of access pattern.
type ttlCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key     string
	value   domain.Conditions
	expires time.Time
	prev    *entry
	next    *entry
}

func newTTLCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *ttlCache {
	return &ttlCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *ttlCache) get(key string) (domain.Conditions, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Conditions{}, false
	}
	if c.clock.Now().After(e.expires) {
		c.removeEntry(e)
		return domain.Conditions{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *ttlCache) put(key string, value domain.Conditions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *ttlCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *ttlCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ttlCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *ttlCache) removeEntry(e *entry) {
	delete(c.entries, e.key)
	c.unlink(e)
}

func (c *ttlCache) evictTail() {
	if c.tail == nil {
		return
	}
	c.removeEntry(c.tail)
}
