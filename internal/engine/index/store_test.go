package index

import (
	"reflect"
	"testing"
	"time"

	"github.com/web8-labs/ultrasearch/internal/engine/tokenizer"
)

func newTestStore() *Store {
	return NewStore(tokenizer.NewDefault(), 3)
}

func testDoc(id, title, content string) Document {
	return Document{
		ID:      id,
		Title:   title,
		Content: content,
		URL:     "/docs/" + id,
		Type:    TypeDocument,
		Metadata: Metadata{
			Size:         100,
			LastModified: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestAddAndGet(t *testing.T) {
	s := newTestStore()
	doc := testDoc("d1", "Golang Tutorial", "concurrency with channels")
	s.Add(doc)

	got, ok := s.Get("d1")
	if !ok {
		t.Fatal("expected document d1 to be stored")
	}
	if got.Title != doc.Title {
		t.Errorf("got title %q, want %q", got.Title, doc.Title)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("expected lookup of unknown id to fail")
	}
}

func TestPostings(t *testing.T) {
	s := newTestStore()
	s.Add(testDoc("d2", "Python Basics", "python syntax"))
	s.Add(testDoc("d1", "Python Advanced", "python generators"))

	got := s.Postings("python")
	want := []string{"d1", "d2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Postings(python) = %v, want %v", got, want)
	}
	if s.DocFreq("python") != 2 {
		t.Errorf("DocFreq(python) = %d, want 2", s.DocFreq("python"))
	}
	if got := s.Postings("rust"); got != nil {
		t.Errorf("Postings(rust) = %v, want nil", got)
	}
}

func TestTermStatsAndTitleTerms(t *testing.T) {
	s := newTestStore()
	s.Add(testDoc("d1", "Golang Guide", "golang concurrency golang channels"))

	occ, total := s.TermStats("golang", "d1")
	if occ != 3 {
		t.Errorf("occurrences = %d, want 3", occ)
	}
	// golang guide golang concurrency golang channels -> 6 surviving tokens
	if total != 6 {
		t.Errorf("docTokens = %d, want 6", total)
	}

	if !s.TitleHasTerm("d1", "golang") {
		t.Error("expected golang to be a title term")
	}
	if s.TitleHasTerm("d1", "concurrency") {
		t.Error("concurrency only appears in the content")
	}
}

func TestStatsTracksInserts(t *testing.T) {
	s := newTestStore()
	s.Add(testDoc("d1", "First Title", "alpha beta gamma"))
	s.Add(testDoc("d2", "Second Title", "delta epsilon"))

	stats := s.Stats()
	if stats.TotalDocuments != 2 {
		t.Errorf("TotalDocuments = %d, want 2", stats.TotalDocuments)
	}
	if stats.TotalWords == 0 {
		t.Error("TotalWords should be positive after indexing")
	}
	if stats.LastIndexed.IsZero() {
		t.Error("LastIndexed should be set after indexing")
	}
}

func TestReindexRetractsOldPostings(t *testing.T) {
	s := newTestStore()
	s.Add(testDoc("d1", "Zephyr Mountain", "zephyr wind"))

	wordsAfterFirst := s.Stats().TotalWords

	// Same ID, entirely different text: the old terms must disappear.
	s.Add(testDoc("d1", "Cobalt Ocean", "cobalt reef"))

	if s.Stats().TotalDocuments != 1 {
		t.Errorf("TotalDocuments = %d, want 1 after re-index", s.Stats().TotalDocuments)
	}
	if got := s.Postings("zephyr"); got != nil {
		t.Errorf("stale posting survived re-index: %v", got)
	}
	if got := s.Postings("cobalt"); !reflect.DeepEqual(got, []string{"d1"}) {
		t.Errorf("Postings(cobalt) = %v, want [d1]", got)
	}
	if s.TitleHasTerm("d1", "zephyr") {
		t.Error("stale title term survived re-index")
	}
	// Word counts track the new version, not the sum of both.
	if s.Stats().TotalWords >= wordsAfterFirst*2 {
		t.Errorf("TotalWords = %d, looks double-counted", s.Stats().TotalWords)
	}

	// The n-gram index must also be retracted: fuzzy lookups for the old
	// text find nothing.
	oldGrams := []string{"zep", "eph", "phy"}
	if ids := s.FuzzyCandidates(oldGrams, 0.1); len(ids) != 0 {
		t.Errorf("stale n-grams survived re-index: %v", ids)
	}
}

func TestFuzzyCandidates(t *testing.T) {
	s := newTestStore()
	s.Add(testDoc("d1", "JavaScript", "javascript"))
	s.Add(testDoc("d2", "Cooking", "recipes"))

	// Misspelled query still shares most trigrams with d1.
	queryGrams := []string{"jav", "avs", "vsc", "scr", "cri", "rip", "ipt"}
	got := s.FuzzyCandidates(queryGrams, 0.6)
	if !reflect.DeepEqual(got, []string{"d1"}) {
		t.Errorf("FuzzyCandidates = %v, want [d1]", got)
	}

	// A high threshold filters the same candidate out.
	if got := s.FuzzyCandidates(queryGrams, 0.99); len(got) != 0 {
		t.Errorf("FuzzyCandidates at 0.99 = %v, want none", got)
	}

	// No grams at all.
	if got := s.FuzzyCandidates(nil, 0.6); len(got) != 0 {
		t.Errorf("FuzzyCandidates(nil) = %v, want none", got)
	}
}

func TestSuggestTerms(t *testing.T) {
	s := newTestStore()
	s.Add(testDoc("d1", "Programming Languages", "program design"))
	s.Add(testDoc("d2", "Progress Report", "quarterly numbers"))

	got := s.SuggestTerms("prog")
	set := make(map[string]bool, len(got))
	for _, term := range got {
		set[term] = true
	}
	// "programming" stems to "programm" and "progress" to "progres".
	for _, want := range []string{"programm", "program", "progres"} {
		if !set[want] {
			t.Errorf("SuggestTerms(prog) = %v, missing %q", got, want)
		}
	}
	if set["quarterly"] {
		t.Errorf("SuggestTerms(prog) included non-matching term: %v", got)
	}
}

func TestTypeCountsAndTopTerms(t *testing.T) {
	s := newTestStore()
	d1 := testDoc("d1", "Shared Topic", "alpha")
	d2 := testDoc("d2", "Shared Topic", "beta")
	d2.Type = TypeCode
	d3 := testDoc("d3", "Other Things", "gamma")
	s.Add(d1)
	s.Add(d2)
	s.Add(d3)

	counts := s.TypeCounts()
	if counts[TypeDocument] != 2 || counts[TypeCode] != 1 {
		t.Errorf("TypeCounts = %v", counts)
	}

	top := s.TopTerms(2)
	if len(top) != 2 {
		t.Fatalf("TopTerms(2) returned %d entries", len(top))
	}
	// "shared" and "topic" each appear in two documents and outrank the
	// singletons; ties break alphabetically.
	if top[0].Term != "shar" && top[0].Term != "topic" {
		t.Errorf("unexpected top term %q (count %d)", top[0].Term, top[0].Count)
	}
	if top[0].Count != 2 {
		t.Errorf("top term count = %d, want 2", top[0].Count)
	}
}

func TestGramSizeAndIndexSize(t *testing.T) {
	s := NewStore(tokenizer.NewDefault(), 4)
	if s.GramSize() != 4 {
		t.Errorf("GramSize = %d, want 4", s.GramSize())
	}
	s.Add(testDoc("d1", "Anything", "at all"))
	if s.IndexSize() != 1 {
		t.Errorf("IndexSize = %d, want 1", s.IndexSize())
	}
}
