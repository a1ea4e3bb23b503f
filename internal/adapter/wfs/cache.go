package wfs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/datatales/dwd-warnings-service/internal/domain"
	"github.com/datatales/dwd-warnings-service/internal/observability"
)

// CachedSource wraps a WarningSource with a TTL- and capacity-bounded
// in-memory cache keyed by the exact query parameters. Concurrent requests
// with the same key may both miss and both fetch; the later write simply
// overwrites the entry with the same content.
type CachedSource struct {
	inner   domain.WarningSource
	cache   *featureCache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedSource creates a cache decorator around a warning source. The
// clock is injected so tests can advance time deterministically.
func NewCachedSource(inner domain.WarningSource, ttl time.Duration, capacity int, clk clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newFeatureCache(ttl, capacity, clk),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchWarnings returns the cached collection for an identical query within
// the TTL, otherwise fetches upstream and stores the result. Fetch errors are
// never cached.
func (c *CachedSource) FetchWarnings(ctx context.Context, q domain.WarningQuery) (*domain.FeatureCollection, error) {
	key := cacheKey(q)
	if fc, ok := c.cache.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		c.logger.Debug("feature cache hit", "key", key)
		return fc, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	fc, err := c.inner.FetchWarnings(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, fc)
	return fc, nil
}

// cacheKey renders the composite exact-match key. The bbox is rounded to six
// fractional digits so float noise does not split otherwise identical
// queries. No spatial containment or overlap matching.
func cacheKey(q domain.WarningQuery) string {
	return fmt.Sprintf("%s|%s|%d", q.TypeName, q.BBox.String(), q.MaxFeatures)
}

// featureCache is a mutex-guarded TTL cache with oldest-first capacity
// eviction. Housekeeping runs at the start of every access and cannot fail
// the caller: eviction builds a fresh map and swaps it in, so no reader ever
// observes a partially-evicted state.
type featureCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
	clock    clockwork.Clock
}

type cacheEntry struct {
	storedAt time.Time
	data     *domain.FeatureCollection
}

func newFeatureCache(ttl time.Duration, capacity int, clk clockwork.Clock) *featureCache {
	return &featureCache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		clock:    clk,
	}
}

func (c *featureCache) get(key string) (*domain.FeatureCollection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireLocked()
	c.trimLocked()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	// expireLocked drops strictly-older entries; re-check so an entry exactly
	// at the TTL boundary still counts as fresh.
	if c.clock.Now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.data, true
}

func (c *featureCache) put(key string, fc *domain.FeatureCollection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireLocked()
	c.entries[key] = cacheEntry{storedAt: c.clock.Now(), data: fc}
	c.trimLocked()
}

// expireLocked drops entries older than the TTL. Callers hold mu.
func (c *featureCache) expireLocked() {
	now := c.clock.Now()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
}

// trimLocked keeps only the newest-stored entries up to capacity, replacing
// the map atomically. Callers hold mu.
func (c *featureCache) trimLocked() {
	if len(c.entries) <= c.capacity {
		return
	}

	type keyed struct {
		key   string
		entry cacheEntry
	}
	items := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		items = append(items, keyed{key: k, entry: e})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].entry.storedAt.After(items[j].entry.storedAt)
	})

	fresh := make(map[string]cacheEntry, c.capacity)
	for _, it := range items[:c.capacity] {
		fresh[it.key] = it.entry
	}
	c.entries = fresh
}

// len reports the current entry count, for tests.
func (c *featureCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
