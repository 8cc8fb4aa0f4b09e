package query

import (
	"testing"

	"mircv/internal/doctable"
	"mircv/internal/lexicon"
	"mircv/internal/postings"
)

type splitTokenizer struct{}

func (splitTokenizer) Tokenize(text string) []string {
	var tokens []string
	start := -1
	for i, r := range text {
		if r == ' ' {
			if start >= 0 {
				tokens = append(tokens, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// buildTinyIndex constructs the S5 scenario: docs {1:"information
// retrieval", 2:"information systems", 3:"retrieval systems"}.
func buildTinyIndex(t *testing.T) (*postings.Index, *lexicon.Lexicon, *doctable.Table) {
	t.Helper()

	idx := postings.New(1000, 2)
	lex := lexicon.New()
	docs := doctable.New()

	docs.Add(1, 2)
	docs.Add(2, 2)
	docs.Add(3, 2)

	if err := idx.AddPostings("information", []uint32{1, 2}, []uint32{1, 1}); err != nil {
		t.Fatalf("AddPostings: %v", err)
	}
	lex.Add("information", 2)

	if err := idx.AddPostings("retrieval", []uint32{1, 3}, []uint32{1, 1}); err != nil {
		t.Fatalf("AddPostings: %v", err)
	}
	lex.Add("retrieval", 2)

	if err := idx.AddPostings("systems", []uint32{2, 3}, []uint32{1, 1}); err != nil {
		t.Fatalf("AddPostings: %v", err)
	}
	lex.Add("systems", 2)

	return idx, lex, docs
}

func TestS5TinyIndexShape(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)

	for _, term := range []string{"information", "retrieval", "systems"} {
		if got := lex.DF(term); got != 2 {
			t.Errorf("DF(%q): got %d, want 2", term, got)
		}
	}
	for _, docID := range []uint32{1, 2, 3} {
		if got := docs.Length(docID); got != 2 {
			t.Errorf("Length(%d): got %d, want 2", docID, got)
		}
	}

	info, _ := idx.DecompressAll("information")
	want := []postings.Posting{{DocID: 1, TF: 1}, {DocID: 2, TF: 1}}
	if len(info) != len(want) || info[0] != want[0] || info[1] != want[1] {
		t.Errorf("information postings: got %v, want %v", info, want)
	}
}

func TestS6ConjunctiveTFIDF(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)
	p := New(idx, lex, docs, splitTokenizer{})

	results, err := p.Query("information retrieval", Conjunctive, TFIDF)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(results), results)
	}
	if results[0].DocID != 1 {
		t.Errorf("got doc %d, want 1", results[0].DocID)
	}
	if results[0].Score <= 0 {
		t.Errorf("expected positive score, got %v", results[0].Score)
	}
}

func TestS7DisjunctiveBM25(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)
	p := New(idx, lex, docs, splitTokenizer{})

	results, err := p.Query("information retrieval", Disjunctive, BM25)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3: %v", len(results), results)
	}
	if results[0].DocID != 1 {
		t.Errorf("expected doc 1 to rank first, got %d", results[0].DocID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not in non-increasing score order at index %d", i)
		}
	}
}

func TestConjunctiveSubsetOfDisjunctive(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)
	p := New(idx, lex, docs, splitTokenizer{})

	conj, err := p.Query("information retrieval", Conjunctive, TFIDF)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	disj, err := p.Query("information retrieval", Disjunctive, TFIDF)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	disjSet := make(map[uint32]bool, len(disj))
	for _, r := range disj {
		disjSet[r.DocID] = true
	}
	for _, r := range conj {
		if !disjSet[r.DocID] {
			t.Errorf("conjunctive doc %d not present in disjunctive results", r.DocID)
		}
	}
}

func TestEmptyQueryReturnsEmptyResults(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)
	p := New(idx, lex, docs, splitTokenizer{})

	results, err := p.Query("   ", Conjunctive, TFIDF)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestUnknownQueryTypeIsInvalidArgument(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)
	p := New(idx, lex, docs, splitTokenizer{})

	_, err := p.Query("information", Type(99), TFIDF)
	if err == nil {
		t.Fatal("expected error for unknown query type")
	}
}

func TestUnknownMethodIsInvalidArgument(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)
	p := New(idx, lex, docs, splitTokenizer{})

	_, err := p.Query("information", Conjunctive, Method(99))
	if err == nil {
		t.Fatal("expected error for unknown scoring method")
	}
}

func TestConjunctiveNoOverlapReturnsEmpty(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)
	p := New(idx, lex, docs, splitTokenizer{})

	results, err := p.Query("information systems retrieval", Conjunctive, TFIDF)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0 (no doc contains all three terms)", len(results))
	}
}

func TestTopKRespectsMaxResults(t *testing.T) {
	idx, lex, docs := buildTinyIndex(t)
	p := New(idx, lex, docs, splitTokenizer{})
	p.MaxResults = 1

	results, err := p.Query("information retrieval", Disjunctive, TFIDF)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}
