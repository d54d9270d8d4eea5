package analytics

import "time"

type EventType string

const (
	EventSearch   EventType = "search"
	EventIndexDoc EventType = "index_document"
)

// SearchEvent describes one executed query for the analytics stream.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Fuzzy     bool      `json:"fuzzy"`
	SortBy    string    `json:"sort_by"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// IndexEvent describes one document (re-)indexed into the engine.
type IndexEvent struct {
	Type       EventType `json:"type"`
	DocumentID string    `json:"document_id"`
	DocType    string    `json:"doc_type"`
	TokenCount int       `json:"token_count"`
	SizeBytes  int64     `json:"size_bytes"`
	Timestamp  time.Time `json:"timestamp"`
}
