// Package scorer computes TF-IDF relevance scores with a title-match boost.
package scorer

import "math"

// titleBoost is the multiplier applied once per query term that matches a
// tokenized title term. Boosts compound when several terms match.
const titleBoost = 1.5

// Source supplies the corpus statistics scoring needs. *index.Store
// satisfies it.
type Source interface {
	// TermStats returns how often term occurs in the document and the
	// document's total token count.
	TermStats(term, docID string) (occurrences, docTokens int)
	// DocFreq returns the posting-set size of term.
	DocFreq(term string) int
	// TotalDocuments returns the corpus document count.
	TotalDocuments() int
	// TitleHasTerm reports whether term appears in the document's
	// tokenized title.
	TitleHasTerm(docID, term string) bool
}

// TFIDF returns the term-frequency/inverse-document-frequency score of a
// single (term, document) pair. Documents with no tokens score 0: term
// frequency would otherwise divide by zero.
func TFIDF(term, docID string, src Source) float64 {
	occurrences, docTokens := src.TermStats(term, docID)
	if docTokens == 0 {
		return 0
	}
	tf := float64(occurrences) / float64(docTokens)
	idf := math.Log(float64(src.TotalDocuments()) / float64(src.DocFreq(term)+1))
	return tf * idf
}

// Score returns the document's aggregate relevance for a multi-term query:
// the sum of per-term TF-IDF scores, multiplied by the title boost once for
// every query term present in the document's title.
func Score(terms []string, docID string, src Source) float64 {
	var score float64
	for _, term := range terms {
		score += TFIDF(term, docID, src)
	}
	for _, term := range terms {
		if src.TitleHasTerm(docID, term) {
			score *= titleBoost
		}
	}
	return score
}
