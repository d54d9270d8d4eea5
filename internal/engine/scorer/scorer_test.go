package scorer

import (
	"math"
	"testing"
)

// fakeSource is a hand-built corpus for exercising the scoring math without
// a real index.
type fakeSource struct {
	termStats  map[string]map[string][2]int // term -> docID -> {occurrences, docTokens}
	docFreq    map[string]int
	totalDocs  int
	titleTerms map[string]map[string]bool
}

func (f *fakeSource) TermStats(term, docID string) (int, int) {
	s := f.termStats[term][docID]
	return s[0], s[1]
}

func (f *fakeSource) DocFreq(term string) int { return f.docFreq[term] }

func (f *fakeSource) TotalDocuments() int { return f.totalDocs }

func (f *fakeSource) TitleHasTerm(docID, term string) bool {
	return f.titleTerms[docID][term]
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTFIDF(t *testing.T) {
	src := &fakeSource{
		termStats: map[string]map[string][2]int{
			"golang": {
				"d1": {2, 10}, // tf = 0.2
				"d2": {1, 10}, // tf = 0.1
			},
			"rare": {
				"d1": {1, 10},
			},
		},
		docFreq:   map[string]int{"golang": 2, "rare": 1},
		totalDocs: 10,
	}

	// tf * ln(totalDocs / (df+1))
	want := 0.2 * math.Log(10.0/3.0)
	if got := TFIDF("golang", "d1", src); !almostEqual(got, want) {
		t.Errorf("TFIDF(golang, d1) = %v, want %v", got, want)
	}

	// Higher tf scores higher for the same term.
	if TFIDF("golang", "d1", src) <= TFIDF("golang", "d2", src) {
		t.Error("higher term frequency should score higher")
	}

	// Rarer terms carry more weight at equal tf.
	rare := TFIDF("rare", "d1", src)
	common := TFIDF("golang", "d2", src)
	if rare <= common {
		t.Errorf("rare term %v should outscore common term %v", rare, common)
	}
}

func TestTFIDFZeroTokenDocument(t *testing.T) {
	src := &fakeSource{
		termStats: map[string]map[string][2]int{"x": {"empty": {0, 0}}},
		docFreq:   map[string]int{"x": 1},
		totalDocs: 5,
	}
	if got := TFIDF("x", "empty", src); got != 0 {
		t.Errorf("TFIDF on empty document = %v, want 0", got)
	}
}

func TestTFIDFTermAbsentFromDocument(t *testing.T) {
	src := &fakeSource{
		termStats: map[string]map[string][2]int{
			"present": {"d1": {1, 5}},
			"absent":  {"d1": {0, 5}},
		},
		docFreq:   map[string]int{"present": 1},
		totalDocs: 3,
	}
	// Zero occurrences: tf = 0, so the score is 0 regardless of idf.
	if got := TFIDF("absent", "d1", src); got != 0 {
		t.Errorf("TFIDF(absent) = %v, want 0", got)
	}
}

func TestTFIDFGrowsWithUnrelatedCorpus(t *testing.T) {
	src := &fakeSource{
		termStats: map[string]map[string][2]int{
			"zephyr": {"d1": {1, 10}},
		},
		docFreq:   map[string]int{"zephyr": 1},
		totalDocs: 3,
	}

	// Adding documents that never contain the term raises totalDocs while
	// df stays fixed, so the idf component and the score strictly increase.
	prev := TFIDF("zephyr", "d1", src)
	for _, total := range []int{10, 100, 1000} {
		src.totalDocs = total
		got := TFIDF("zephyr", "d1", src)
		if got <= prev {
			t.Errorf("score %v at totalDocs=%d not greater than %v", got, total, prev)
		}
		prev = got
	}
}

func TestScoreTitleBoostCompounds(t *testing.T) {
	src := &fakeSource{
		termStats: map[string]map[string][2]int{
			"alpha": {"d1": {1, 10}},
			"beta":  {"d1": {1, 10}},
		},
		docFreq:   map[string]int{"alpha": 1, "beta": 1},
		totalDocs: 10,
		titleTerms: map[string]map[string]bool{
			"d1": {"alpha": true, "beta": true},
		},
	}

	base := TFIDF("alpha", "d1", src) + TFIDF("beta", "d1", src)

	// Both query terms match the title: boost applies twice.
	got := Score([]string{"alpha", "beta"}, "d1", src)
	want := base * 1.5 * 1.5
	if !almostEqual(got, want) {
		t.Errorf("Score = %v, want %v (compounded boost)", got, want)
	}

	// Only one matching term: boost applies once to the whole sum.
	src.titleTerms["d1"]["beta"] = false
	got = Score([]string{"alpha", "beta"}, "d1", src)
	want = base * 1.5
	if !almostEqual(got, want) {
		t.Errorf("Score = %v, want %v (single boost)", got, want)
	}

	// No matching terms: plain sum.
	src.titleTerms["d1"]["alpha"] = false
	got = Score([]string{"alpha", "beta"}, "d1", src)
	if !almostEqual(got, base) {
		t.Errorf("Score = %v, want %v (no boost)", got, base)
	}
}

func TestScoreEmptyTerms(t *testing.T) {
	src := &fakeSource{totalDocs: 1}
	if got := Score(nil, "d1", src); got != 0 {
		t.Errorf("Score(nil) = %v, want 0", got)
	}
}
