// Package ngram derives fixed-length character n-grams from text for
// approximate matching. N-grams are generated independently of tokenization:
// whitespace is removed entirely, so grams can span word boundaries, and
// stop words are not excluded.
package ngram

import (
	"strings"
	"unicode"
)

// DefaultSize is the gram length used when none is configured.
const DefaultSize = 3

// Generate lowercases text, strips every non-word rune, and emits all
// contiguous substrings of length n via a sliding window of stride 1.
// It produces max(0, len(clean)-n+1) grams.
func Generate(text string, n int) []string {
	if n < 1 {
		n = DefaultSize
	}
	clean := normalize(text)
	if len(clean) < n {
		return nil
	}
	grams := make([]string, 0, len(clean)-n+1)
	for i := 0; i+n <= len(clean); i++ {
		grams = append(grams, string(clean[i:i+n]))
	}
	return grams
}

// normalize lowercases the text and removes every rune outside the \w class
// (letters, digits, underscore). The window slides over runes, not bytes, so
// multi-byte characters are never split.
func normalize(text string) []rune {
	clean := make([]rune, 0, len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	return clean
}
