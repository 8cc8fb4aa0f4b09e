// Package lexicon implements the Lexicon: a persistent map from term to
// document frequency (DF), the count of distinct documents containing that
// term. Keeping DF here rather than inside each posting list keeps
// TF-IDF/BM25's IDF computation O(1).
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// Lexicon maps term to document frequency. The zero value is ready to use.
type Lexicon struct {
	df map[string]int
}

// New returns an empty Lexicon.
func New() *Lexicon {
	return &Lexicon{df: make(map[string]int)}
}

// Add applies an additive upsert: DF(term) += delta.
func (l *Lexicon) Add(term string, delta int) {
	if l.df == nil {
		l.df = make(map[string]int)
	}
	l.df[term] += delta
}

// Get returns the document frequency for term and whether the term is
// present at all.
func (l *Lexicon) Get(term string) (int, bool) {
	df, ok := l.df[term]
	return df, ok
}

// DF returns the document frequency for term, or 0 if the term is missing.
// Missing terms are not an error at this layer: the query processor treats
// an unseen term as contributing an empty posting list.
func (l *Lexicon) DF(term string) int {
	return l.df[term]
}

// Len returns the number of distinct terms.
func (l *Lexicon) Len() int {
	return len(l.df)
}

// AllTerms returns every term currently recorded, in no particular order.
func (l *Lexicon) AllTerms() []string {
	terms := make([]string, 0, len(l.df))
	for term := range l.df {
		terms = append(terms, term)
	}
	return terms
}

// SortedTerms returns every term in ascending lexicographic order, suitable
// for binary-search lookups once the lexicon is read-only.
func (l *Lexicon) SortedTerms() []string {
	terms := l.AllTerms()
	sort.Strings(terms)
	return terms
}

// Write serializes the lexicon to w as one "term df" record per line,
// ordered by ascending term for reproducible output.
func (l *Lexicon) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, term := range l.SortedTerms() {
		if _, err := fmt.Fprintf(bw, "%s %d\n", term, l.df[term]); err != nil {
			return fmt.Errorf("lexicon: write record: %w", err)
		}
	}
	return bw.Flush()
}

// Read replaces the lexicon's contents with records read from r, one
// "term df" pair per line. Terms containing spaces are not supported by
// this format, matching the spec's whitespace-separated line layout.
func (l *Lexicon) Read(r io.Reader) error {
	l.df = make(map[string]int)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var term string
		var df int
		if _, err := fmt.Sscanf(line, "%s %d", &term, &df); err != nil {
			return fmt.Errorf("lexicon: parse line %q: %w", line, err)
		}
		l.df[term] = df
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("lexicon: scan: %w", err)
	}
	return nil
}

// WriteFile writes the lexicon to path, creating or truncating it.
func (l *Lexicon) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lexicon: create %s: %w", path, err)
	}
	defer f.Close()
	return l.Write(f)
}

// ReadFile replaces the lexicon's contents with records read from path.
func (l *Lexicon) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("lexicon: open %s: %w", path, err)
	}
	defer f.Close()
	return l.Read(f)
}
