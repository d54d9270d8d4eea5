package ngram

import (
	"reflect"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want []string
	}{
		{
			name: "simple word",
			text: "hello",
			n:    3,
			want: []string{"hel", "ell", "llo"},
		},
		{
			name: "spans word boundaries",
			text: "go run",
			n:    3,
			want: []string{"gor", "oru", "run"},
		},
		{
			name: "lowercases and strips punctuation",
			text: "Go-Run!",
			n:    3,
			want: []string{"gor", "oru", "run"},
		},
		{
			name: "keeps underscore and digits",
			text: "a_1b",
			n:    2,
			want: []string{"a_", "_1", "1b"},
		},
		{
			name: "shorter than n",
			text: "ab",
			n:    3,
			want: nil,
		},
		{
			name: "exactly n",
			text: "abc",
			n:    3,
			want: []string{"abc"},
		},
		{
			name: "empty",
			text: "",
			n:    3,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.text, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Generate(%q, %d) = %v, want %v", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestGenerateCount(t *testing.T) {
	// len(clean)-n+1 grams for a clean string of word runes.
	got := Generate("abcdefgh", 3)
	if len(got) != 6 {
		t.Fatalf("expected 6 grams, got %d: %v", len(got), got)
	}
}

func TestGenerateInvalidSizeFallsBack(t *testing.T) {
	got := Generate("hello", 0)
	want := []string{"hel", "ell", "llo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate with n=0 = %v, want default size grams %v", got, want)
	}
}

func TestGenerateMultibyte(t *testing.T) {
	// The window slides over runes, so multi-byte characters stay intact.
	got := Generate("héllo", 3)
	want := []string{"hél", "éll", "llo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate(héllo) = %v, want %v", got, want)
	}
}
