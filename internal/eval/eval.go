// Package eval parses the qrels (query relevance judgments) format used to
// evaluate ranked results. Only parsing lives here; NDCG computation
// against the judgments is not implemented (see SPEC_FULL.md §6).
package eval

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Judgment is one qrels record: the relevance grade judges assigned to
// doc_id for query_id.
type Judgment struct {
	QueryID   string
	Iteration int
	DocID     uint32
	Relevance int
}

// ParseQrels reads a qrels file from r: whitespace-separated
// "query_id iteration doc_id relevance" records, one per line.
func ParseQrels(r io.Reader) ([]Judgment, error) {
	var judgments []Judgment
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		var j Judgment
		var docID uint32
		if _, err := fmt.Sscanf(line, "%s %d %d %d", &j.QueryID, &j.Iteration, &docID, &j.Relevance); err != nil {
			return nil, fmt.Errorf("eval: parse qrels line %d: %w", lineNo, err)
		}
		j.DocID = docID
		judgments = append(judgments, j)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eval: scan qrels: %w", err)
	}
	return judgments, nil
}

// ParseQrelsFile opens path and parses it as a qrels file.
func ParseQrelsFile(path string) ([]Judgment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eval: open %s: %w", path, err)
	}
	defer f.Close()
	return ParseQrels(f)
}

// ByQuery groups judgments by query_id for convenient per-query lookup
// during whatever relevance computation a caller layers on top.
func ByQuery(judgments []Judgment) map[string][]Judgment {
	grouped := make(map[string][]Judgment)
	for _, j := range judgments {
		grouped[j.QueryID] = append(grouped[j.QueryID], j)
	}
	return grouped
}
