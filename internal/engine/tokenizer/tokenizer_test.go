package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tok := NewDefault()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits on punctuation",
			text: "Machine-Learning, Applied!",
			want: []string{"machine", "learn", "appli"},
		},
		{
			name: "drops short tokens",
			text: "go is ok but golang works",
			want: []string{"golang", "work"},
		},
		{
			name: "drops stop words",
			text: "the cat and the hat",
			want: []string{"cat", "hat"},
		},
		{
			name: "keeps digits and underscores",
			text: "http2 proxy my_var value42",
			want: []string{"http2", "proxy", "my_var", "value42"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "only stop words and short tokens",
			text: "is a an to of in",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestStem(t *testing.T) {
	tok := NewDefault()

	tests := []struct {
		word string
		want string
	}{
		{"running", "runn"},
		{"quickly", "quick"},
		{"jumped", "jump"},
		{"documents", "document"},
		{"searcher", "search"},
		{"cats", "cat"},

		// "ies" is ordered before "s", so plural -ies words rewrite to -y.
		{"studies", "study"},

		// "ed" is ordered before "ied", so -ied words lose only the "ed".
		{"applied", "appli"},

		// The guard requires len(word) > len(suffix)+2.
		{"king", "king"},
		{"sing", "sing"},
		{"red", "red"},
		{"fly", "fly"},
		{"gas", "gas"},

		// No matching suffix.
		{"golang", "golang"},
		{"index", "index"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := tok.Stem(tt.word); got != tt.want {
				t.Errorf("Stem(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestStemAppliesAtMostOneRule(t *testing.T) {
	tok := NewDefault()
	// One pass only: "meetings" loses the trailing "s" and nothing more.
	if got := tok.Stem("meetings"); got != "meeting" {
		t.Errorf("Stem(meetings) = %q, want meeting", got)
	}
}

func TestCustomRules(t *testing.T) {
	tok := New([]Rule{{Suffix: "ization", Replacement: "ize"}}, nil)
	if got := tok.Stem("tokenization"); got != "tokenize" {
		t.Errorf("Stem(tokenization) = %q, want tokenize", got)
	}
	// No stop words configured: everything over 2 runes survives.
	got := tok.Tokenize("the optimization")
	want := []string{"the", "optimize"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}
