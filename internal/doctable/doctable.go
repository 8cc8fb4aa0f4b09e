// Package doctable implements the DocumentTable: a persistent map from
// doc_id to document length (term count), used by BM25's length
// normalization.
package doctable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// Table maps doc_id to document length. The zero value is ready to use.
type Table struct {
	lengths map[uint32]int
}

// New returns an empty Table.
func New() *Table {
	return &Table{lengths: make(map[uint32]int)}
}

// Add upserts the length for a doc_id.
func (t *Table) Add(docID uint32, length int) {
	if t.lengths == nil {
		t.lengths = make(map[uint32]int)
	}
	t.lengths[docID] = length
}

// Length returns the length of docID, or 0 if the doc_id is absent. Callers
// must not rely on 0 being a valid length for scoring purposes: an absent
// doc_id and an empty document are indistinguishable through this method.
func (t *Table) Length(docID uint32) int {
	return t.lengths[docID]
}

// Len returns the number of documents recorded.
func (t *Table) Len() int {
	return len(t.lengths)
}

// AverageLength returns the mean document length across all recorded
// documents, or 0 if the table is empty.
func (t *Table) AverageLength() float64 {
	if len(t.lengths) == 0 {
		return 0
	}
	var sum int64
	for _, l := range t.lengths {
		sum += int64(l)
	}
	return float64(sum) / float64(len(t.lengths))
}

// DocEntry pairs a doc_id with its length, yielded by IterAll in ascending
// doc_id order.
type DocEntry struct {
	DocID  uint32
	Length int
}

// IterAll returns every (doc_id, length) pair, ordered by ascending doc_id.
func (t *Table) IterAll() []DocEntry {
	entries := make([]DocEntry, 0, len(t.lengths))
	for id, length := range t.lengths {
		entries = append(entries, DocEntry{DocID: id, Length: length})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].DocID < entries[j].DocID })
	return entries
}

// Write serializes the table to w as one "doc_id length" record per line,
// ordered by ascending doc_id.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, entry := range t.IterAll() {
		if _, err := fmt.Fprintf(bw, "%d %d\n", entry.DocID, entry.Length); err != nil {
			return fmt.Errorf("doctable: write record: %w", err)
		}
	}
	return bw.Flush()
}

// Read replaces the table's contents with records read from r, one
// "doc_id length" pair per line.
func (t *Table) Read(r io.Reader) error {
	t.lengths = make(map[uint32]int)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var docID uint64
		var length int
		if _, err := fmt.Sscanf(line, "%d %d", &docID, &length); err != nil {
			return fmt.Errorf("doctable: parse line %q: %w", line, err)
		}
		t.lengths[uint32(docID)] = length
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("doctable: scan: %w", err)
	}
	return nil
}

// WriteFile writes the table to path, creating or truncating it.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("doctable: create %s: %w", path, err)
	}
	defer f.Close()
	return t.Write(f)
}

// ReadFile replaces the table's contents with records read from path.
func (t *Table) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("doctable: open %s: %w", path, err)
	}
	defer f.Close()
	return t.Read(f)
}
