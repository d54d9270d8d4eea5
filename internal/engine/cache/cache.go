// Package cache provides a capacity-bounded FIFO result cache for search
// queries, with an optional Redis second level guarded by a circuit breaker.
// Entries are retained for a fixed window and checked lazily on read;
// eviction on insert removes the oldest entry by insertion order regardless
// of recency of access.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/web8-labs/ultrasearch/internal/engine/query"
	"github.com/web8-labs/ultrasearch/pkg/metrics"
	rediswrap "github.com/web8-labs/ultrasearch/pkg/redis"
	"github.com/web8-labs/ultrasearch/pkg/resilience"
)

// Stats summarizes cache occupancy and accumulated hits.
type Stats struct {
	Entries   int   `json:"entries"`
	Capacity  int   `json:"capacity"`
	TotalHits int64 `json:"totalHits"`
}

type entry struct {
	result   *query.Result
	storedAt time.Time
	hits     int64
}

// ResultCache caches search results keyed by the normalized query shape.
type ResultCache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	order    []string
	capacity int
	ttl      time.Duration

	redis   *rediswrap.Client
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger

	now func() time.Time
}

// New creates a ResultCache with the given capacity and retention window.
// redisClient may be nil, in which case only the in-process level is used;
// m may be nil to disable instrumentation.
func New(capacity int, ttl time.Duration, redisClient *rediswrap.Client, m *metrics.Metrics) *ResultCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &ResultCache{
		entries:  make(map[string]*entry),
		order:    make([]string, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		redis:    redisClient,
		metrics:  m,
		logger:   slog.Default().With("component", "result-cache"),
		now:      time.Now,
	}
	if redisClient != nil {
		c.breaker = resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{})
	}
	return c
}

// Key derives a deterministic cache key from the query shape. Two queries
// that normalize identically share a key; filter slices are sorted so their
// order does not matter.
func Key(q query.Query) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(q.Query)))
	b.WriteByte('|')
	b.WriteString(string(q.Type))
	b.WriteByte('|')
	fmt.Fprintf(&b, "%t|%s|%d", q.Fuzzy, q.SortBy, q.Limit)
	if f := q.Filters; f != nil {
		if f.DateRange != nil {
			fmt.Fprintf(&b, "|d:%d-%d", f.DateRange.From.Unix(), f.DateRange.To.Unix())
		}
		if f.SizeRange != nil {
			fmt.Fprintf(&b, "|s:%d-%d", f.SizeRange.Min, f.SizeRange.Max)
		}
		if len(f.Languages) > 0 {
			langs := append([]string(nil), f.Languages...)
			sort.Strings(langs)
			b.WriteString("|l:" + strings.Join(langs, ","))
		}
		if len(f.Tags) > 0 {
			tags := append([]string(nil), f.Tags...)
			sort.Strings(tags)
			b.WriteString("|t:" + strings.Join(tags, ","))
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return "search:" + hex.EncodeToString(sum[:])
}

// Get returns the cached result for key if present and within the retention
// window. Expired entries are removed on access.
func (c *ResultCache) Get(ctx context.Context, key string) (*query.Result, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		if c.now().Sub(e.storedAt) > c.ttl {
			c.removeLocked(key)
			c.mu.Unlock()
			c.recordMiss()
			return nil, false
		}
		e.hits++
		result := e.result
		c.mu.Unlock()
		c.recordHit()
		return result, true
	}
	c.mu.Unlock()

	if result, ok := c.getRedis(ctx, key); ok {
		c.recordHit()
		return result, true
	}
	c.recordMiss()
	return nil, false
}

// Set stores a result under key. When the cache is at capacity and the key
// is new, the oldest entry by insertion order is evicted first. Overwriting
// an existing key keeps its original position in the eviction order.
func (c *ResultCache) Set(ctx context.Context, key string, result *query.Result) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.result = result
		e.storedAt = c.now()
		c.mu.Unlock()
	} else {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.removeLocked(oldest)
			if c.metrics != nil {
				c.metrics.CacheEvictionsTotal.Inc()
			}
		}
		c.entries[key] = &entry{result: result, storedAt: c.now()}
		c.order = append(c.order, key)
		c.mu.Unlock()
	}

	c.setRedis(ctx, key, result)
}

// GetOrCompute returns the cached result for q, computing and storing it on
// a miss. Concurrent misses for the same key are collapsed to a single
// compute call. The bool return reports whether the result came from cache.
func (c *ResultCache) GetOrCompute(ctx context.Context, q query.Query, compute func(context.Context) (*query.Result, error)) (*query.Result, bool, error) {
	key := Key(q)
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		result, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*query.Result), shared, nil
}

// Invalidate drops all cached entries. Called after index mutations so stale
// results are never served.
func (c *ResultCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.order = c.order[:0]
	c.mu.Unlock()

	if c.redis != nil {
		if _, err := c.redis.FlushByPattern(ctx, "search:*"); err != nil {
			c.logger.Warn("redis invalidation failed", "error", err)
		}
	}
}

// Stats reports current occupancy and the total hit count across live
// entries.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var hits int64
	for _, e := range c.entries {
		hits += e.hits
	}
	return Stats{
		Entries:   len(c.entries),
		Capacity:  c.capacity,
		TotalHits: hits,
	}
}

func (c *ResultCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *ResultCache) recordHit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *ResultCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func (c *ResultCache) getRedis(ctx context.Context, key string) (*query.Result, bool) {
	if c.redis == nil {
		return nil, false
	}
	var result *query.Result
	err := c.breaker.Execute(func() error {
		raw, err := c.redis.Get(ctx, key)
		if err != nil {
			return err
		}
		var r query.Result
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return err
		}
		result = &r
		return nil
	})
	if err != nil {
		if !rediswrap.IsNilError(err) && !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Warn("redis get failed", "error", err)
		}
		return nil, false
	}
	return result, true
}

func (c *ResultCache) setRedis(ctx context.Context, key string, result *query.Result) {
	if c.redis == nil {
		return
	}
	err := c.breaker.Execute(func() error {
		raw, err := json.Marshal(result)
		if err != nil {
			return err
		}
		return c.redis.Set(ctx, key, raw, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Warn("redis set failed", "error", err)
	}
}
