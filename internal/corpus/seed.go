package corpus

import (
	"time"

	"github.com/web8-labs/ultrasearch/internal/engine/index"
)

// SeedDocuments returns the built-in starter corpus, indexed when no
// external document source is configured.
func SeedDocuments() []index.Document {
	return []index.Document{
		{
			ID:      "doc-1",
			Title:   "AGI Analytics Platform Guide",
			Content: "Complete guide to using AGI Analytics for data analysis, machine learning, and neural forecasting.",
			URL:     "/docs/agi-analytics",
			Type:    index.TypeDocument,
			Metadata: index.Metadata{
				Size:         2048,
				LastModified: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Language:     "english",
				Tags:         []string{"analytics", "agi", "machine-learning"},
			},
		},
		{
			ID:      "doc-2",
			Title:   "TypeScript Best Practices",
			Content: "Advanced TypeScript patterns, interfaces, and professional development practices for scalable applications.",
			URL:     "/docs/typescript",
			Type:    index.TypeCode,
			Metadata: index.Metadata{
				Size:         1536,
				LastModified: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
				Language:     "typescript",
				Tags:         []string{"typescript", "javascript", "programming"},
			},
		},
		{
			ID:      "doc-3",
			Title:   "AGI Eco Environmental Monitoring",
			Content: "Climate intelligence, carbon footprint tracking, and renewable energy optimization using AGI Eco.",
			URL:     "/docs/agi-eco",
			Type:    index.TypeDocument,
			Metadata: index.Metadata{
				Size:         1792,
				LastModified: time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
				Language:     "english",
				Tags:         []string{"environment", "climate", "sustainability"},
			},
		},
		{
			ID:      "api-1",
			Title:   "Analytics API Endpoints",
			Content: "REST API documentation for AGI Analytics including correlation analysis, trend detection, and anomaly detection.",
			URL:     "/api/agi-analytics",
			Type:    index.TypeAPI,
			Metadata: index.Metadata{
				Size:         3072,
				LastModified: time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
				Language:     "json",
				Tags:         []string{"api", "analytics", "endpoints"},
			},
		},
	}
}

// Seed indexes the built-in corpus into store and returns the count.
func Seed(store *index.Store) int {
	docs := SeedDocuments()
	for _, doc := range docs {
		store.Add(doc)
	}
	return len(docs)
}
