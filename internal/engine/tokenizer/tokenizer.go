// Package tokenizer normalises raw text into index terms. It lower-cases
// input, splits on non-word boundaries, drops short tokens and stop-words,
// and applies a suffix-stripping stemmer driven by an ordered rule list.
package tokenizer

import (
	"strings"
	"unicode"
)

// Rule is a single suffix-stripping stemming rule. Rules are applied in
// order; the first rule whose suffix matches wins, and at most one rule is
// applied per token.
type Rule struct {
	Suffix      string
	Replacement string
}

// DefaultRules is the default ordered stemming rule list. A rule only fires
// when removing the suffix leaves a stem longer than len(Suffix)+2, which
// guards short words against over-stemming.
func DefaultRules() []Rule {
	return []Rule{
		{"ing", ""},
		{"ly", ""},
		{"ed", ""},
		{"ies", "y"},
		{"ied", "y"},
		{"s", ""},
		{"es", ""},
		{"er", ""},
		{"est", ""},
	}
}

// DefaultStopWords returns the default English stop-word set.
func DefaultStopWords() []string {
	return []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "up", "about", "into", "through", "during",
		"before", "after", "above", "below", "between", "among", "is", "are",
		"was", "were", "be", "been", "being", "have", "has", "had", "do", "does",
		"did", "will", "would", "could", "should", "may", "might", "can", "shall",
	}
}

// Tokenizer turns free text into a normalised term sequence. It is safe for
// concurrent use once constructed.
type Tokenizer struct {
	rules     []Rule
	stopWords map[string]struct{}
}

// New creates a Tokenizer with the given stemming rules and stop words.
func New(rules []Rule, stopWords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[w] = struct{}{}
	}
	return &Tokenizer{rules: rules, stopWords: stops}
}

// NewDefault creates a Tokenizer with the default rule list and stop words.
func NewDefault() *Tokenizer {
	return New(DefaultRules(), DefaultStopWords())
}

// Tokenize breaks text into stemmed, lowercased terms with stop-words and
// tokens of length <= 2 removed. It is a pure function of its input.
func (t *Tokenizer) Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) <= 2 {
			continue
		}
		if _, isStop := t.stopWords[word]; isStop {
			continue
		}
		terms = append(terms, t.Stem(word))
	}
	return terms
}

// Stem applies the first matching suffix rule to word. The rule only fires
// when the word is longer than len(suffix)+2; otherwise the word is returned
// unchanged.
func (t *Tokenizer) Stem(word string) string {
	for _, rule := range t.rules {
		if strings.HasSuffix(word, rule.Suffix) && len(word) > len(rule.Suffix)+2 {
			return word[:len(word)-len(rule.Suffix)] + rule.Replacement
		}
	}
	return word
}

// isWordRune reports whether r belongs to a token (the \w character class:
// letters, digits, underscore).
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
