package index

import (
	"encoding/json"
	"fmt"
	"sort"

	apperrors "github.com/web8-labs/ultrasearch/pkg/errors"
)

// postingEntry is one serialized posting set: an index key (term or n-gram)
// and the sorted document IDs under it.
type postingEntry struct {
	Key    string   `json:"key"`
	DocIDs []string `json:"docIds"`
}

// snapshot is the serialized form of the whole index. It is the only
// persistence mechanism; the format is guaranteed to round-trip within the
// same implementation version, nothing more.
type snapshot struct {
	Metadata      Stats          `json:"metadata"`
	NgramSize     int            `json:"ngramSize"`
	Documents     []Document     `json:"documents"`
	InvertedIndex []postingEntry `json:"invertedIndex"`
	Ngrams        []postingEntry `json:"ngrams"`
}

// Export serializes the index (documents, inverted index, n-gram index,
// metadata) to JSON. Keys and posting IDs are sorted so the output is
// deterministic for a given corpus.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		Metadata:      s.stats,
		NgramSize:     s.gramSize,
		Documents:     make([]Document, 0, len(s.docs)),
		InvertedIndex: exportPostings(s.inverted),
		Ngrams:        exportPostings(s.grams),
	}
	for _, doc := range s.docs {
		snap.Documents = append(snap.Documents, doc)
	}
	sort.Slice(snap.Documents, func(i, j int) bool {
		return snap.Documents[i].ID < snap.Documents[j].ID
	})

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling index snapshot: %w", err)
	}
	return data, nil
}

// Import replaces the index contents with a previously exported snapshot.
// The import is all-or-nothing: every structure is staged and validated
// before the live index is touched, so a corrupt payload leaves the existing
// index unchanged.
func (s *Store) Import(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return apperrors.Newf(apperrors.ErrImportCorrupt, 400, "parsing snapshot: %v", err)
	}

	docs := make(map[string]Document, len(snap.Documents))
	for _, doc := range snap.Documents {
		if doc.ID == "" {
			return apperrors.New(apperrors.ErrImportCorrupt, 400, "snapshot contains a document without an id")
		}
		docs[doc.ID] = doc
	}

	inverted, err := importPostings(snap.InvertedIndex, docs)
	if err != nil {
		return err
	}
	grams, err := importPostings(snap.Ngrams, docs)
	if err != nil {
		return err
	}

	// Derived per-document state is rebuilt from the stored documents;
	// tokenization is deterministic, so scoring after import matches the
	// exporting index exactly.
	docTermCounts := make(map[string]map[string]int, len(docs))
	docTokenTotal := make(map[string]int, len(docs))
	titleTerms := make(map[string]map[string]struct{}, len(docs))
	docGrams := make(map[string][]string, len(docs))
	for id, doc := range docs {
		tokens := s.tok.Tokenize(doc.Title + " " + doc.Content)
		counts := make(map[string]int, len(tokens))
		for _, term := range tokens {
			counts[term]++
		}
		docTermCounts[id] = counts
		docTokenTotal[id] = len(tokens)

		titleSet := make(map[string]struct{})
		for _, term := range s.tok.Tokenize(doc.Title) {
			titleSet[term] = struct{}{}
		}
		titleTerms[id] = titleSet
	}
	for g, set := range grams {
		for id := range set {
			docGrams[id] = append(docGrams[id], g)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
	s.inverted = inverted
	s.grams = grams
	s.docTermCounts = docTermCounts
	s.docTokenTotal = docTokenTotal
	s.titleTerms = titleTerms
	s.docGrams = docGrams
	s.stats = snap.Metadata
	if snap.NgramSize > 0 {
		s.gramSize = snap.NgramSize
	}
	s.logger.Info("index imported",
		"documents", len(docs),
		"terms", len(inverted),
		"ngrams", len(grams),
	)
	return nil
}

func exportPostings(m map[string]map[string]struct{}) []postingEntry {
	entries := make([]postingEntry, 0, len(m))
	for key, set := range m {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		entries = append(entries, postingEntry{Key: key, DocIDs: ids})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

func importPostings(entries []postingEntry, docs map[string]Document) (map[string]map[string]struct{}, error) {
	m := make(map[string]map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Key == "" {
			return nil, apperrors.New(apperrors.ErrImportCorrupt, 400, "snapshot contains an empty index key")
		}
		set := make(map[string]struct{}, len(entry.DocIDs))
		for _, id := range entry.DocIDs {
			if _, known := docs[id]; !known {
				return nil, apperrors.Newf(apperrors.ErrImportCorrupt, 400,
					"posting for %q references unknown document %q", entry.Key, id)
			}
			set[id] = struct{}{}
		}
		m[entry.Key] = set
	}
	return m, nil
}
