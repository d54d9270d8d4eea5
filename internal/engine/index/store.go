// Package index holds the in-memory corpus: the document table, the inverted
// index, the n-gram index, and corpus-level statistics. All three structures
// are guarded by a single RWMutex so that every document insert is atomic
// with respect to readers.
package index

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/web8-labs/ultrasearch/internal/engine/ngram"
	"github.com/web8-labs/ultrasearch/internal/engine/tokenizer"
)

// Store is the in-memory search index. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	tok      *tokenizer.Tokenizer
	gramSize int
	logger   *slog.Logger

	docs     map[string]Document
	inverted map[string]map[string]struct{}
	grams    map[string]map[string]struct{}

	// Per-document derived state, kept so that re-indexing an ID can
	// retract its previous postings and so that scoring does not have to
	// re-tokenize on every query.
	docTermCounts map[string]map[string]int
	docTokenTotal map[string]int
	titleTerms    map[string]map[string]struct{}
	docGrams      map[string][]string

	stats Stats
	now   func() time.Time
}

// NewStore creates an empty Store using the given tokenizer and n-gram size.
func NewStore(tok *tokenizer.Tokenizer, gramSize int) *Store {
	if tok == nil {
		tok = tokenizer.NewDefault()
	}
	if gramSize < 1 {
		gramSize = ngram.DefaultSize
	}
	return &Store{
		tok:           tok,
		gramSize:      gramSize,
		logger:        slog.Default().With("component", "index-store"),
		docs:          make(map[string]Document),
		inverted:      make(map[string]map[string]struct{}),
		grams:         make(map[string]map[string]struct{}),
		docTermCounts: make(map[string]map[string]int),
		docTokenTotal: make(map[string]int),
		titleTerms:    make(map[string]map[string]struct{}),
		docGrams:      make(map[string][]string),
		now:           time.Now,
	}
}

// Tokenizer returns the tokenizer the store indexes with. Queries must
// tokenize through the same instance to stay aligned with the term space.
func (s *Store) Tokenizer() *tokenizer.Tokenizer {
	return s.tok
}

// GramSize returns the configured n-gram length.
func (s *Store) GramSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gramSize
}

// Add indexes a document. The document table, inverted index, and n-gram
// index are updated under one write lock, so readers never observe a
// partially indexed document. Re-indexing an existing ID first retracts the
// postings contributed by the previous version.
func (s *Store) Add(doc Document) {
	fullText := doc.Title + " " + doc.Content
	tokens := s.tok.Tokenize(fullText)
	titleTokens := s.tok.Tokenize(doc.Title)

	termCounts := make(map[string]int, len(tokens))
	for _, term := range tokens {
		termCounts[term]++
	}
	titleSet := make(map[string]struct{}, len(titleTokens))
	for _, term := range titleTokens {
		titleSet[term] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grams := ngram.Generate(fullText, s.gramSize)

	if _, exists := s.docs[doc.ID]; exists {
		s.retractLocked(doc.ID)
	} else {
		s.stats.TotalDocuments++
	}

	s.docs[doc.ID] = doc
	for term := range termCounts {
		set, ok := s.inverted[term]
		if !ok {
			set = make(map[string]struct{})
			s.inverted[term] = set
		}
		set[doc.ID] = struct{}{}
	}
	gramSeen := make(map[string]struct{}, len(grams))
	for _, g := range grams {
		if _, dup := gramSeen[g]; dup {
			continue
		}
		gramSeen[g] = struct{}{}
		set, ok := s.grams[g]
		if !ok {
			set = make(map[string]struct{})
			s.grams[g] = set
		}
		set[doc.ID] = struct{}{}
	}
	uniqueGrams := make([]string, 0, len(gramSeen))
	for g := range gramSeen {
		uniqueGrams = append(uniqueGrams, g)
	}

	s.docTermCounts[doc.ID] = termCounts
	s.docTokenTotal[doc.ID] = len(tokens)
	s.titleTerms[doc.ID] = titleSet
	s.docGrams[doc.ID] = uniqueGrams

	s.stats.TotalWords += len(tokens)
	s.stats.LastIndexed = s.now()

	s.logger.Debug("document indexed",
		"doc_id", doc.ID,
		"token_count", len(tokens),
		"ngram_count", len(uniqueGrams),
	)
}

// retractLocked removes every posting the given document previously
// contributed. Callers must hold the write lock.
func (s *Store) retractLocked(docID string) {
	for term := range s.docTermCounts[docID] {
		if set, ok := s.inverted[term]; ok {
			delete(set, docID)
			if len(set) == 0 {
				delete(s.inverted, term)
			}
		}
	}
	for _, g := range s.docGrams[docID] {
		if set, ok := s.grams[g]; ok {
			delete(set, docID)
			if len(set) == 0 {
				delete(s.grams, g)
			}
		}
	}
	s.stats.TotalWords -= s.docTokenTotal[docID]
	delete(s.docTermCounts, docID)
	delete(s.docTokenTotal, docID)
	delete(s.titleTerms, docID)
	delete(s.docGrams, docID)
}

// Get returns the document stored under id.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Postings returns the sorted document IDs containing term.
func (s *Store) Postings(term string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.inverted[term]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DocFreq returns the posting-set size for term.
func (s *Store) DocFreq(term string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inverted[term])
}

// TermStats returns how often term occurs in the document and the document's
// total token count. Both are zero for unknown documents.
func (s *Store) TermStats(term, docID string) (occurrences, docTokens int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docTermCounts[docID][term], s.docTokenTotal[docID]
}

// TitleHasTerm reports whether term appears among the tokenized terms of the
// document's title.
func (s *Store) TitleHasTerm(docID, term string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.titleTerms[docID][term]
	return ok
}

// TotalDocuments returns the corpus document count.
func (s *Store) TotalDocuments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.TotalDocuments
}

// Stats returns a copy of the corpus statistics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// FuzzyCandidates tallies n-gram overlap between the query grams and every
// indexed document, and returns the IDs whose overlap ratio
// (matches / max(1, len(queryGrams))) meets the threshold. Duplicate query
// grams are tallied per occurrence.
func (s *Store) FuzzyCandidates(queryGrams []string, threshold float64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overlap := make(map[string]int)
	for _, g := range queryGrams {
		for id := range s.grams[g] {
			overlap[id]++
		}
	}
	denom := len(queryGrams)
	if denom < 1 {
		denom = 1
	}
	ids := make([]string, 0, len(overlap))
	for id, count := range overlap {
		if float64(count)/float64(denom) >= threshold {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SuggestTerms returns every distinct term with the given prefix, drawn from
// the inverted-index keys and from the tokenized title terms of all
// documents. Results are unsorted; callers cap and order them.
func (s *Store) SuggestTerms(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for term := range s.inverted {
		if hasPrefix(term, prefix) {
			seen[term] = struct{}{}
		}
	}
	for _, terms := range s.titleTerms {
		for term := range terms {
			if hasPrefix(term, prefix) {
				seen[term] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for term := range seen {
		out = append(out, term)
	}
	return out
}

// TypeCounts returns the number of indexed documents per document type.
func (s *Store) TypeCounts() map[DocType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[DocType]int)
	for _, doc := range s.docs {
		counts[doc.Type]++
	}
	return counts
}

// TopTerms returns the n terms with the largest posting sets, descending,
// ties broken by term.
func (s *Store) TopTerms(n int) []TermCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]TermCount, 0, len(s.inverted))
	for term, set := range s.inverted {
		all = append(all, TermCount{Term: term, Count: len(set)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Term < all[j].Term
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// IndexSize returns the number of documents in the document table.
func (s *Store) IndexSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// TermCountTotal returns the number of distinct terms in the inverted index.
func (s *Store) TermCountTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inverted)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
