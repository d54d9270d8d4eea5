package query

import (
	"time"

	"github.com/web8-labs/ultrasearch/internal/engine/index"
)

// SortOrder selects how ranked results are ordered.
type SortOrder string

const (
	SortRelevance    SortOrder = "relevance"
	SortDate         SortOrder = "date"
	SortSize         SortOrder = "size"
	SortAlphabetical SortOrder = "alphabetical"
)

// Valid reports whether s is a known sort order.
func (s SortOrder) Valid() bool {
	switch s {
	case SortRelevance, SortDate, SortSize, SortAlphabetical:
		return true
	}
	return false
}

// DateRange bounds a document's lastModified timestamp, inclusive on both
// ends.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SizeRange bounds a document's byte size, inclusive on both ends.
type SizeRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Filters are the structural constraints applied to candidates before
// scoring. Nil fields are not applied.
type Filters struct {
	DateRange *DateRange `json:"dateRange,omitempty"`
	SizeRange *SizeRange `json:"sizeRange,omitempty"`
	Languages []string   `json:"language,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
}

// Query is one search request. Type empty means all types; Limit zero means
// the engine default.
type Query struct {
	Query   string        `json:"query"`
	Type    index.DocType `json:"type,omitempty"`
	Limit   int           `json:"limit,omitempty"`
	Fuzzy   bool          `json:"fuzzy,omitempty"`
	SortBy  SortOrder     `json:"sortBy,omitempty"`
	Filters *Filters      `json:"filters,omitempty"`
}

// ScoredDocument is a document annotated with its relevance score.
type ScoredDocument struct {
	index.Document
	Score float64 `json:"score"`
}

// Result is the ranked answer to one query, plus telemetry metadata.
type Result struct {
	Query        string           `json:"query"`
	TotalResults int              `json:"totalResults"`
	SearchTimeMs float64          `json:"searchTime"`
	Results      []ScoredDocument `json:"results"`
}

// Statistics is the observability snapshot of the index.
type Statistics struct {
	TotalDocuments int                   `json:"totalDocuments"`
	TotalWords     int                   `json:"totalWords"`
	IndexSize      int                   `json:"indexSize"`
	LastIndexed    time.Time             `json:"lastIndexed"`
	DocumentTypes  map[index.DocType]int `json:"documentTypes"`
	TopTerms       []index.TermCount     `json:"topTerms"`
}

// Operator combines the per-query results of a multi-query search.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)
