// Package benchmark contains Go benchmarks for the tokenizer, index store,
// and search pipeline, measuring throughput and allocation behaviour.
package benchmark

import (
	"fmt"
	"testing"
	"time"

	"github.com/web8-labs/ultrasearch/internal/engine/index"
	"github.com/web8-labs/ultrasearch/internal/engine/tokenizer"
)

func benchDoc(i int) index.Document {
	return index.Document{
		ID:      fmt.Sprintf("doc-%d", i),
		Title:   "benchmark title",
		Content: "this is a benchmark document with several terms for measuring the indexing performance of the store",
		Type:    index.TypeDocument,
		Metadata: index.Metadata{
			Size:         1024,
			LastModified: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

// BenchmarkStoreAdd measures per-document insert throughput into the
// in-memory inverted index.
func BenchmarkStoreAdd(b *testing.B) {
	store := index.NewStore(tokenizer.NewDefault(), 3)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Add(benchDoc(i))
	}
}

// BenchmarkStorePostings measures single-term posting lookup over 10 000
// documents.
func BenchmarkStorePostings(b *testing.B) {
	store := index.NewStore(tokenizer.NewDefault(), 3)
	for i := 0; i < 10000; i++ {
		store.Add(benchDoc(i))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		postings := store.Postings("benchmark")
		_ = postings
	}
}

// BenchmarkStorePostingsParallel measures concurrent read throughput.
func BenchmarkStorePostingsParallel(b *testing.B) {
	store := index.NewStore(tokenizer.NewDefault(), 3)
	for i := 0; i < 10000; i++ {
		store.Add(benchDoc(i))
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			postings := store.Postings("benchmark")
			_ = postings
		}
	})
}

// BenchmarkFuzzyCandidates measures n-gram candidate selection cost as the
// corpus grows.
func BenchmarkFuzzyCandidates(b *testing.B) {
	sizes := []int{100, 1000, 5000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			store := index.NewStore(tokenizer.NewDefault(), 3)
			for i := 0; i < size; i++ {
				store.Add(benchDoc(i))
			}
			grams := []string{"ben", "enc", "nch", "chm", "hma", "mar", "ark"}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				candidates := store.FuzzyCandidates(grams, 0.6)
				_ = candidates
			}
		})
	}
}

// BenchmarkExport measures the cost of producing a full index snapshot.
func BenchmarkExport(b *testing.B) {
	store := index.NewStore(tokenizer.NewDefault(), 3)
	for i := 0; i < 5000; i++ {
		store.Add(benchDoc(i))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, err := store.Export()
		if err != nil {
			b.Fatal(err)
		}
		_ = data
	}
}
