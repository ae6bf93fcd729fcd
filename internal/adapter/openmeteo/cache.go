package openmeteo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

// CachedProvider wraps a GriddedForecastProvider with an in-memory LRU cache
// whose entries expire after ttl.
type CachedProvider struct {
	inner   domain.GriddedForecastProvider
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a gridded provider.
func NewCachedProvider(inner domain.GriddedForecastProvider, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
	}
}

func (c *CachedProvider) HourlyForecast(ctx context.Context, at domain.Geo, loc *time.Location, days int) (*domain.HourlySeries, error) {
	key := cacheKey(at, loc, days)
	now := c.clock.Now()
	if series, ok := c.cache.get(key, now); ok {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return series, nil
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	series, err := c.inner.HourlyForecast(ctx, at, loc, days)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, series, now.Add(c.ttl))
	return series, nil
}

func cacheKey(at domain.Geo, loc *time.Location, days int) string {
	zone := "UTC"
	if loc != nil {
		zone = loc.String()
	}
	return fmt.Sprintf("%.4f,%.4f|%s|%d", at.Lat, at.Lon, zone, days)
}

// lruCache is a simple thread-safe LRU cache for hourly series.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     *domain.HourlySeries
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string, now time.Time) (*domain.HourlySeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !now.Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *domain.HourlySeries, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
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

func (c *lruCache) remove(e *entry) {
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

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
