package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/web8-labs/ultrasearch/internal/engine/query"
)

func testResult(q string, total int) *query.Result {
	return &query.Result{Query: q, TotalResults: total, Results: []query.ScoredDocument{}}
}

// fixedClock lets tests advance cache time deterministically.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(capacity int, ttl time.Duration) (*ResultCache, *fixedClock) {
	c := New(capacity, ttl, nil, nil)
	clock := &fixedClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clock.now
	return c, clock
}

func TestGetSetRoundTrip(t *testing.T) {
	c, _ := newTestCache(10, 5*time.Minute)
	ctx := context.Background()

	key := Key(query.Query{Query: "golang"})
	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, key, testResult("golang", 3))
	got, ok := c.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got.TotalResults != 3 {
		t.Errorf("TotalResults = %d, want 3", got.TotalResults)
	}
}

func TestRetentionWindowExpiry(t *testing.T) {
	c, clock := newTestCache(10, 5*time.Minute)
	ctx := context.Background()

	key := Key(query.Query{Query: "golang"})
	c.Set(ctx, key, testResult("golang", 1))

	clock.advance(4 * time.Minute)
	if _, ok := c.Get(ctx, key); !ok {
		t.Error("entry expired before the retention window")
	}

	clock.advance(2 * time.Minute)
	if _, ok := c.Get(ctx, key); ok {
		t.Error("entry served after the retention window")
	}

	// The expired entry is removed, freeing its capacity slot.
	if stats := c.Stats(); stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0 after lazy expiry", stats.Entries)
	}
}

func TestFIFOEviction(t *testing.T) {
	c, _ := newTestCache(3, 5*time.Minute)
	ctx := context.Background()

	keys := make([]string, 4)
	for i := range keys {
		keys[i] = Key(query.Query{Query: fmt.Sprintf("query-%d", i)})
	}

	c.Set(ctx, keys[0], testResult("query-0", 0))
	c.Set(ctx, keys[1], testResult("query-1", 0))
	c.Set(ctx, keys[2], testResult("query-2", 0))

	// Accessing the oldest entry does not protect it: eviction is FIFO,
	// not LRU.
	if _, ok := c.Get(ctx, keys[0]); !ok {
		t.Fatal("expected hit for oldest entry")
	}

	c.Set(ctx, keys[3], testResult("query-3", 0))

	if _, ok := c.Get(ctx, keys[0]); ok {
		t.Error("oldest entry should have been evicted")
	}
	for _, k := range keys[1:] {
		if _, ok := c.Get(ctx, k); !ok {
			t.Errorf("entry %s unexpectedly evicted", k)
		}
	}
}

func TestOverwriteKeepsEvictionPosition(t *testing.T) {
	c, _ := newTestCache(2, 5*time.Minute)
	ctx := context.Background()

	k1 := Key(query.Query{Query: "first"})
	k2 := Key(query.Query{Query: "second"})
	k3 := Key(query.Query{Query: "third"})

	c.Set(ctx, k1, testResult("first", 1))
	c.Set(ctx, k2, testResult("second", 1))
	// Overwriting k1 must not move it to the back of the FIFO order.
	c.Set(ctx, k1, testResult("first", 2))

	c.Set(ctx, k3, testResult("third", 1))
	if _, ok := c.Get(ctx, k1); ok {
		t.Error("overwritten entry kept its position and should be evicted first")
	}
	if _, ok := c.Get(ctx, k2); !ok {
		t.Error("second entry should survive")
	}
}

func TestHitCounting(t *testing.T) {
	c, _ := newTestCache(10, 5*time.Minute)
	ctx := context.Background()

	key := Key(query.Query{Query: "golang"})
	c.Set(ctx, key, testResult("golang", 1))

	if stats := c.Stats(); stats.TotalHits != 0 {
		t.Errorf("TotalHits = %d before any read, want 0", stats.TotalHits)
	}

	c.Get(ctx, key)
	c.Get(ctx, key)
	if stats := c.Stats(); stats.TotalHits != 2 {
		t.Errorf("TotalHits = %d, want 2", stats.TotalHits)
	}
}

func TestKeyNormalization(t *testing.T) {
	base := query.Query{Query: "Golang Patterns", Limit: 10}

	if Key(base) != Key(query.Query{Query: "  golang patterns  ", Limit: 10}) {
		t.Error("case and whitespace should not change the key")
	}
	if Key(base) == Key(query.Query{Query: "golang patterns", Limit: 20}) {
		t.Error("limit must be part of the key")
	}
	if Key(base) == Key(query.Query{Query: "golang patterns", Limit: 10, Fuzzy: true}) {
		t.Error("fuzzy flag must be part of the key")
	}

	// Filter slice order does not matter.
	a := query.Query{Query: "q", Filters: &query.Filters{Tags: []string{"x", "y"}}}
	b := query.Query{Query: "q", Filters: &query.Filters{Tags: []string{"y", "x"}}}
	if Key(a) != Key(b) {
		t.Error("tag order should not change the key")
	}
}

func TestGetOrCompute(t *testing.T) {
	c, _ := newTestCache(10, 5*time.Minute)
	ctx := context.Background()
	q := query.Query{Query: "golang"}

	calls := 0
	compute := func(ctx context.Context) (*query.Result, error) {
		calls++
		return testResult("golang", 7), nil
	}

	result, cached, err := c.GetOrCompute(ctx, q, compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if cached {
		t.Error("first call should not be served from cache")
	}
	if result.TotalResults != 7 {
		t.Errorf("TotalResults = %d, want 7", result.TotalResults)
	}

	_, cached, err = c.GetOrCompute(ctx, q, compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if !cached {
		t.Error("second call should hit the cache")
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestGetOrComputeError(t *testing.T) {
	c, _ := newTestCache(10, 5*time.Minute)
	ctx := context.Background()
	q := query.Query{Query: "failing"}

	wantErr := errors.New("engine exploded")
	_, _, err := c.GetOrCompute(ctx, q, func(ctx context.Context) (*query.Result, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}

	// Failures are not cached.
	if _, ok := c.Get(ctx, Key(q)); ok {
		t.Error("failed compute should not populate the cache")
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(10, 5*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.Set(ctx, Key(query.Query{Query: fmt.Sprintf("q%d", i)}), testResult("q", 1))
	}
	c.Invalidate(ctx)

	if stats := c.Stats(); stats.Entries != 0 {
		t.Errorf("Entries = %d after Invalidate, want 0", stats.Entries)
	}
}
