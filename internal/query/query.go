// Package query implements the QueryProcessor: turning a raw query string
// into a ranked list of (doc_id, score) results, evaluated either
// conjunctively (AND) or disjunctively (OR) against the inverted index.
package query

import (
	"container/heap"
	"fmt"
	"sort"

	"mircv/internal/docidset"
	"mircv/internal/doctable"
	"mircv/internal/lexicon"
	"mircv/internal/mircverr"
	"mircv/internal/postings"
	"mircv/internal/scorer"
)

// Type selects conjunctive vs disjunctive evaluation.
type Type int

const (
	Conjunctive Type = 1
	Disjunctive Type = 2
)

// Method selects the scoring function.
type Method int

const (
	TFIDF Method = 1
	BM25  Method = 2
)

// Result is one ranked document.
type Result struct {
	DocID uint32
	Score float64
}

// Tokenizer maps raw query text to a sequence of tokens. Implemented by
// *collection.Preprocessor in the CLI, kept as an interface here so the
// query processor doesn't depend on the collection package.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Index is the subset of postings.Index the processor needs: per-term
// posting list lookup.
type Index interface {
	PostingList(term string) (*postings.PostingList, bool)
	DecompressAll(term string) ([]postings.Posting, bool)
}

// Processor answers queries against a built index, lexicon, and document
// table.
type Processor struct {
	Index      Index
	Lexicon    *lexicon.Lexicon
	DocTable   *doctable.Table
	Tokenizer  Tokenizer
	BM25Params scorer.BM25Params
	MaxResults int
}

// New returns a Processor with BM25's standard defaults and MaxResults=10.
func New(idx Index, lex *lexicon.Lexicon, docTable *doctable.Table, tokenizer Tokenizer) *Processor {
	return &Processor{
		Index:      idx,
		Lexicon:    lex,
		DocTable:   docTable,
		Tokenizer:  tokenizer,
		BM25Params: scorer.DefaultBM25Params(),
		MaxResults: 10,
	}
}

// Query evaluates queryText under the given evaluation type and scoring
// method, returning up to MaxResults results sorted by descending score.
// An empty (post-tokenization) query returns an empty, non-nil result
// slice. An unrecognized Type or Method fails with
// mircverr.ErrInvalidArgument.
func (p *Processor) Query(queryText string, qType Type, method Method) ([]Result, error) {
	if qType != Conjunctive && qType != Disjunctive {
		return nil, fmt.Errorf("%w: unknown query type %d", mircverr.ErrInvalidArgument, qType)
	}
	if method != TFIDF && method != BM25 {
		return nil, fmt.Errorf("%w: unknown scoring method %d", mircverr.ErrInvalidArgument, method)
	}

	terms := p.Tokenizer.Tokenize(queryText)
	if len(terms) == 0 {
		return []Result{}, nil
	}

	var candidates map[uint32]float64
	if qType == Conjunctive {
		candidates = p.evaluateConjunctive(terms, method)
	} else {
		candidates = p.evaluateDisjunctive(terms, method)
	}

	return topK(candidates, p.MaxResults), nil
}

// evaluateConjunctive implements AND: sort terms by ascending DF so the
// rarest term bounds the candidate set fastest, intersect sequentially,
// early-exiting once the candidate set is empty.
func (p *Processor) evaluateConjunctive(terms []string, method Method) map[uint32]float64 {
	sortedTerms := make([]string, len(terms))
	copy(sortedTerms, terms)
	sort.Slice(sortedTerms, func(i, j int) bool {
		return p.Lexicon.DF(sortedTerms[i]) < p.Lexicon.DF(sortedTerms[j])
	})

	perTermPostings := make(map[string]map[uint32]uint32, len(sortedTerms))
	var candidates *docidset.Set

	for i, term := range sortedTerms {
		postingsByDoc := p.termPostingMap(term)
		perTermPostings[term] = postingsByDoc

		if i == 0 {
			ids := make([]uint32, 0, len(postingsByDoc))
			for id := range postingsByDoc {
				ids = append(ids, id)
			}
			candidates = docidset.FromSlice(ids)
			if candidates.Cardinality() == 0 {
				return map[uint32]float64{}
			}
			continue
		}

		candidates = candidates.Intersect(docidset.FromSlice(keysOf(postingsByDoc)))
		if candidates.Cardinality() == 0 {
			return map[uint32]float64{}
		}
	}

	scores := make(map[uint32]float64, candidates.Cardinality())
	totalDocs := p.DocTable.Len()
	for _, docID := range candidates.DocIDs() {
		var total float64
		for _, term := range sortedTerms {
			tf := perTermPostings[term][docID]
			total += p.scoreTerm(term, tf, docID, method, totalDocs)
		}
		scores[docID] = total
	}
	return scores
}

// evaluateDisjunctive implements OR: union of doc_ids, summing the score
// contribution of every term that matches each candidate.
func (p *Processor) evaluateDisjunctive(terms []string, method Method) map[uint32]float64 {
	totalDocs := p.DocTable.Len()
	scores := make(map[uint32]float64)

	for _, term := range terms {
		postingsByDoc := p.termPostingMap(term)
		for docID, tf := range postingsByDoc {
			scores[docID] += p.scoreTerm(term, tf, docID, method, totalDocs)
		}
	}
	return scores
}

func (p *Processor) termPostingMap(term string) map[uint32]uint32 {
	ps, ok := p.Index.DecompressAll(term)
	if !ok {
		return map[uint32]uint32{}
	}
	out := make(map[uint32]uint32, len(ps))
	for _, posting := range ps {
		out[posting.DocID] = posting.TF
	}
	return out
}

func (p *Processor) scoreTerm(term string, tf uint32, docID uint32, method Method, totalDocs int) float64 {
	df := p.Lexicon.DF(term)
	if method == TFIDF {
		return scorer.TFIDF(tf, df, totalDocs)
	}
	docLen := p.DocTable.Length(docID)
	return scorer.BM25(tf, df, totalDocs, docLen, p.DocTable.AverageLength(), p.BM25Params)
}

func keysOf(m map[uint32]uint32) []uint32 {
	out := make([]uint32, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// resultHeap is a min-heap of Result ordered by ascending score, used to
// keep only the top MaxResults candidates without sorting the full
// candidate set.
type resultHeap []Result

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(Result)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// topK returns at most k results from candidates, sorted by descending
// score, via a bounded min-heap: once the heap holds k elements, a new
// candidate only enters by evicting the current minimum.
func topK(candidates map[uint32]float64, k int) []Result {
	if k <= 0 {
		k = 1
	}
	h := &resultHeap{}
	heap.Init(h)

	for docID, score := range candidates {
		r := Result{DocID: docID, Score: score}
		if h.Len() < k {
			heap.Push(h, r)
		} else if (*h)[0].Score < r.Score {
			heap.Pop(h)
			heap.Push(h, r)
		}
	}

	out := make([]Result, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Result)
	}
	return out
}
