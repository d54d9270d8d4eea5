package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/web8-labs/ultrasearch/pkg/config"
)

func newTestAggregator() *Aggregator {
	cfg := config.KafkaConfig{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "test-group",
	}
	return NewAggregator(cfg, "test-analytics")
}

func searchEvent(query string, hits int, latencyMs int64, cacheHit bool) SearchEvent {
	return SearchEvent{
		Type:      EventSearch,
		Query:     query,
		TotalHits: hits,
		Returned:  hits,
		LatencyMs: latencyMs,
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
	}
}

func TestStatsRollup(t *testing.T) {
	a := newTestAggregator()

	a.recordSearchEvent(searchEvent("golang", 3, 10, false))
	a.recordSearchEvent(searchEvent("golang", 3, 20, true))
	a.recordSearchEvent(searchEvent("redis", 0, 30, false))
	a.recordIndexEvent(IndexEvent{Type: EventIndexDoc, DocumentID: "d1"})

	stats := a.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.TotalDocsIndexed != 1 {
		t.Errorf("TotalDocsIndexed = %d, want 1", stats.TotalDocsIndexed)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if stats.AvgLatencyMs != 20 {
		t.Errorf("AvgLatencyMs = %v, want 20", stats.AvgLatencyMs)
	}

	if len(stats.TopQueries) != 2 || stats.TopQueries[0].Query != "golang" || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries = %+v, want golang first with count 2", stats.TopQueries)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "redis" {
		t.Errorf("ZeroResultQueries = %+v, want [redis]", stats.ZeroResultQueries)
	}
}

func TestLatencySamplesBounded(t *testing.T) {
	a := newTestAggregator()

	// Fill the window with slow samples, then push it out with fast ones.
	for i := 0; i < latencyWindow; i++ {
		a.recordSearchEvent(searchEvent("warmup", 1, 1000, false))
	}
	for i := 0; i < latencyWindow; i++ {
		a.recordSearchEvent(searchEvent("steady", 1, 5, false))
	}

	a.mu.RLock()
	n := len(a.latencies)
	a.mu.RUnlock()
	if n != latencyWindow {
		t.Fatalf("latency buffer holds %d samples, want %d", n, latencyWindow)
	}

	// Percentiles reflect only the most recent window.
	stats := a.Stats()
	if stats.P99LatencyMs != 5 {
		t.Errorf("P99LatencyMs = %d, want 5 after old samples rotated out", stats.P99LatencyMs)
	}
	if stats.AvgLatencyMs != 5 {
		t.Errorf("AvgLatencyMs = %v, want 5", stats.AvgLatencyMs)
	}
	if stats.TotalSearches != int64(2*latencyWindow) {
		t.Errorf("TotalSearches = %d, want %d", stats.TotalSearches, 2*latencyWindow)
	}
}

func TestTopNOrdering(t *testing.T) {
	counts := map[string]int64{}
	for i := 0; i < 15; i++ {
		counts[fmt.Sprintf("query-%02d", i)] = int64(i % 3)
	}
	counts["frequent"] = 100

	top := topN(counts, 10)
	if len(top) != 10 {
		t.Fatalf("len(topN) = %d, want 10", len(top))
	}
	if top[0].Query != "frequent" {
		t.Errorf("top[0] = %+v, want frequent", top[0])
	}
	for i := 1; i < len(top); i++ {
		prev, cur := top[i-1], top[i]
		if cur.Count > prev.Count {
			t.Fatalf("topN not sorted by count: %+v before %+v", prev, cur)
		}
		if cur.Count == prev.Count && cur.Query < prev.Query {
			t.Fatalf("topN ties not sorted by query: %+v before %+v", prev, cur)
		}
	}
}
