package postings

import (
	"mircv/internal/codec"
	"sort"
)

// PostingList is a navigable, skip-aware iterator over one term's chunked
// postings. It caches the most recently decompressed chunk so repeated
// NextGEQ calls into the same chunk don't pay to decode it twice.
type PostingList struct {
	chunks     []chunk
	skipStride int
	skip       []uint32 // first_id of every skipStride-th chunk

	curChunkIdx int // -1 means nothing decompressed yet
	curDocIDs   []uint32
	curTFs      []uint32
	curPos      int
}

// newPostingList builds a PostingList over chunks, which must already be
// sorted by ascending first doc_id with non-overlapping ranges. The skip
// array is derived from every skipStride-th chunk boundary.
func newPostingList(chunks []chunk, skipStride int) *PostingList {
	if skipStride <= 0 {
		skipStride = DefaultSkipStride
	}
	pl := &PostingList{
		chunks:      chunks,
		skipStride:  skipStride,
		curChunkIdx: -1,
	}
	for i := 0; i < len(chunks); i += skipStride {
		pl.skip = append(pl.skip, chunks[i].first)
	}
	return pl
}

// Reset repositions the iterator to the start of the first chunk.
func (pl *PostingList) Reset() {
	pl.curChunkIdx = -1
	pl.curDocIDs = nil
	pl.curTFs = nil
	pl.curPos = 0
}

// Len returns the number of chunks in the list.
func (pl *PostingList) Len() int {
	return len(pl.chunks)
}

// Skip returns the skip array: the first doc_id of every skipStride-th
// chunk, in ascending order.
func (pl *PostingList) Skip() []uint32 {
	return pl.skip
}

// NextGEQ returns the first posting with doc_id >= target, advancing the
// iterator past it. Returns ok=false once the list is exhausted or target
// exceeds every doc_id in the list. Successive calls with a non-decreasing
// target sequence never move the iterator backward.
func (pl *PostingList) NextGEQ(target uint32) (Posting, bool) {
	if len(pl.chunks) == 0 {
		return Posting{}, false
	}

	idx := sort.Search(len(pl.chunks), func(i int) bool { return pl.chunks[i].last >= target })
	if idx == len(pl.chunks) {
		return Posting{}, false
	}

	if idx != pl.curChunkIdx {
		if err := pl.loadChunk(idx); err != nil {
			return Posting{}, false
		}
	}

	for pl.curPos < len(pl.curDocIDs) {
		if pl.curDocIDs[pl.curPos] >= target {
			p := Posting{DocID: pl.curDocIDs[pl.curPos], TF: pl.curTFs[pl.curPos]}
			pl.curPos++
			return p, true
		}
		pl.curPos++
	}

	// The current chunk is exhausted without finding target; its last_id
	// satisfied the search predicate only because of a stale scan
	// position from a prior call into the same chunk. Descend to the
	// next chunk, whose first posting is then necessarily >= target.
	idx++
	if idx >= len(pl.chunks) {
		return Posting{}, false
	}
	if err := pl.loadChunk(idx); err != nil {
		return Posting{}, false
	}
	if len(pl.curDocIDs) == 0 {
		return Posting{}, false
	}
	p := Posting{DocID: pl.curDocIDs[0], TF: pl.curTFs[0]}
	pl.curPos = 1
	return p, true
}

// All decompresses every chunk and returns the full posting sequence in
// ascending doc_id order. Intended for tests and debugging, not the query
// hot path.
func (pl *PostingList) All() ([]Posting, error) {
	var out []Posting
	for _, c := range pl.chunks {
		docIDs, tfs, err := codec.Decode(c.blob)
		if err != nil {
			return nil, err
		}
		for i := range docIDs {
			out = append(out, Posting{DocID: docIDs[i], TF: tfs[i]})
		}
	}
	return out, nil
}

// Boundaries returns the (first, last) doc_id range of every chunk, in
// order, for tests validating chunk-boundary invariants.
func (pl *PostingList) Boundaries() [][2]uint32 {
	out := make([][2]uint32, len(pl.chunks))
	for i, c := range pl.chunks {
		out[i] = [2]uint32{c.first, c.last}
	}
	return out
}

func (pl *PostingList) loadChunk(idx int) error {
	docIDs, tfs, err := codec.Decode(pl.chunks[idx].blob)
	if err != nil {
		return err
	}
	pl.curChunkIdx = idx
	pl.curDocIDs = docIDs
	pl.curTFs = tfs
	pl.curPos = 0
	return nil
}
