// Package query orchestrates search execution: query tokenization, candidate
// gathering from the inverted and n-gram indices, structural filtering,
// TF-IDF scoring, sorting, and pagination. It also serves prefix suggestions
// and index statistics.
package query

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/web8-labs/ultrasearch/internal/engine/index"
	"github.com/web8-labs/ultrasearch/internal/engine/ngram"
	"github.com/web8-labs/ultrasearch/internal/engine/scorer"
)

// Config controls query execution limits and fuzzy matching.
type Config struct {
	FuzzyThreshold  float64
	DefaultLimit    int
	MaxResults      int
	SuggestionLimit int
	TopTermCount    int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold:  0.6,
		DefaultLimit:    10,
		MaxResults:      100,
		SuggestionLimit: 5,
		TopTermCount:    10,
	}
}

// Engine executes queries against an index store.
type Engine struct {
	store  *index.Store
	cfg    Config
	logger *slog.Logger
}

// New creates an Engine over the given store, filling config defaults for
// zero values.
func New(store *index.Store, cfg Config) *Engine {
	defaults := DefaultConfig()
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = defaults.FuzzyThreshold
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaults.MaxResults
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = defaults.SuggestionLimit
	}
	if cfg.TopTermCount <= 0 {
		cfg.TopTermCount = defaults.TopTermCount
	}
	return &Engine{
		store:  store,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-engine"),
	}
}

// Store returns the engine's index store.
func (e *Engine) Store() *index.Store {
	return e.store
}

// Search runs one query and returns ranked, scored documents. An empty or
// whitespace-only query string yields an empty result, never an error.
// Search never mutates index state.
func (e *Engine) Search(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	result := &Result{
		Query:   q.Query,
		Results: []ScoredDocument{},
	}
	if strings.TrimSpace(q.Query) == "" {
		return result, nil
	}

	terms := e.store.Tokenizer().Tokenize(q.Query)

	candidates := make(map[string]struct{})
	for _, term := range terms {
		for _, id := range e.store.Postings(term) {
			candidates[id] = struct{}{}
		}
	}

	if q.Fuzzy {
		queryGrams := ngram.Generate(q.Query, e.store.GramSize())
		for _, id := range e.store.FuzzyCandidates(queryGrams, e.cfg.FuzzyThreshold) {
			candidates[id] = struct{}{}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := make([]ScoredDocument, 0, len(candidates))
	for id := range candidates {
		doc, ok := e.store.Get(id)
		if !ok {
			continue
		}
		if !matchesFilters(doc, q) {
			continue
		}
		scored = append(scored, ScoredDocument{
			Document: doc,
			Score:    scorer.Score(terms, id, e.store),
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortResults(scored, q.SortBy)

	limit := q.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxResults {
		limit = e.cfg.MaxResults
	}
	result.TotalResults = len(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	result.Results = scored
	result.SearchTimeMs = float64(time.Since(start).Microseconds()) / 1000.0

	e.logger.Debug("query executed",
		"query", q.Query,
		"terms", terms,
		"fuzzy", q.Fuzzy,
		"candidates", len(candidates),
		"matched", result.TotalResults,
		"returned", len(result.Results),
	)
	return result, nil
}

// MultiSearch runs several queries and combines them: AND keeps documents
// matched by every query, OR unions results and sums scores for documents
// matched more than once.
func (e *Engine) MultiSearch(ctx context.Context, queries []string, op Operator) ([]ScoredDocument, error) {
	if len(queries) == 0 {
		return []ScoredDocument{}, nil
	}

	if op == OperatorAnd {
		result, err := e.Search(ctx, Query{Query: queries[0]})
		if err != nil {
			return nil, err
		}
		combined := result.Results
		for _, q := range queries[1:] {
			next, err := e.Search(ctx, Query{Query: q})
			if err != nil {
				return nil, err
			}
			keep := make(map[string]struct{}, len(next.Results))
			for _, r := range next.Results {
				keep[r.ID] = struct{}{}
			}
			filtered := combined[:0]
			for _, r := range combined {
				if _, ok := keep[r.ID]; ok {
					filtered = append(filtered, r)
				}
			}
			combined = filtered
		}
		return combined, nil
	}

	merged := make(map[string]ScoredDocument)
	for _, q := range queries {
		result, err := e.Search(ctx, Query{Query: q})
		if err != nil {
			return nil, err
		}
		for _, r := range result.Results {
			if existing, ok := merged[r.ID]; ok {
				existing.Score += r.Score
				merged[r.ID] = existing
			} else {
				merged[r.ID] = r
			}
		}
	}
	out := make([]ScoredDocument, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sortResults(out, SortRelevance)
	return out, nil
}

// Suggest returns up to limit index terms with the given prefix, drawn from
// inverted-index keys and tokenized title words. Prefixes shorter than two
// characters yield nothing. Results are deduplicated and sorted.
func (e *Engine) Suggest(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) < 2 {
		return []string{}
	}
	if limit <= 0 {
		limit = e.cfg.SuggestionLimit
	}
	terms := e.store.SuggestTerms(prefix)
	sort.Strings(terms)
	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

// Stats returns the observability snapshot of the index.
func (e *Engine) Stats() Statistics {
	stats := e.store.Stats()
	return Statistics{
		TotalDocuments: stats.TotalDocuments,
		TotalWords:     stats.TotalWords,
		IndexSize:      e.store.IndexSize(),
		LastIndexed:    stats.LastIndexed,
		DocumentTypes:  e.store.TypeCounts(),
		TopTerms:       e.store.TopTerms(e.cfg.TopTermCount),
	}
}

// matchesFilters applies the structural filter chain in order, failing fast:
// type, date range, size range, language allow-list, tags allow-list.
func matchesFilters(doc index.Document, q Query) bool {
	if q.Type != "" && doc.Type != q.Type {
		return false
	}
	f := q.Filters
	if f == nil {
		return true
	}
	if f.DateRange != nil {
		mod := doc.Metadata.LastModified
		if mod.Before(f.DateRange.From) || mod.After(f.DateRange.To) {
			return false
		}
	}
	if f.SizeRange != nil {
		if doc.Metadata.Size < f.SizeRange.Min || doc.Metadata.Size > f.SizeRange.Max {
			return false
		}
	}
	// Documents without a language pass the language filter.
	if len(f.Languages) > 0 && doc.Metadata.Language != "" {
		if !contains(f.Languages, doc.Metadata.Language) {
			return false
		}
	}
	if len(f.Tags) > 0 {
		matched := false
		for _, tag := range doc.Metadata.Tags {
			if contains(f.Tags, tag) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// sortResults orders scored documents by the requested sort order. The sort
// is stable with a document-ID tie-break so results are deterministic.
func sortResults(docs []ScoredDocument, order SortOrder) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		switch order {
		case SortDate:
			if !a.Metadata.LastModified.Equal(b.Metadata.LastModified) {
				return a.Metadata.LastModified.After(b.Metadata.LastModified)
			}
		case SortSize:
			if a.Metadata.Size != b.Metadata.Size {
				return a.Metadata.Size > b.Metadata.Size
			}
		case SortAlphabetical:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		default:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		}
		return a.ID < b.ID
	})
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
