// Package merge implements the Merger: combining partial inverted indexes
// built over disjoint document ranges into a single index, summing term
// frequencies where a term appears in more than one partial for the same
// document (which happens only if partial ranges overlap; normal builder
// usage keeps them disjoint, but the merge algorithm tolerates overlap
// either way since it operates on full posting sequences, not assuming
// uniqueness).
package merge

import (
	"sync"

	"mircv/internal/codec"
	"mircv/internal/postings"
)

func decodeBlob(blob []byte) ([]uint32, []uint32, error) {
	return codec.Decode(blob)
}

func encodeBlob(docIDs, tfs []uint32) ([]byte, error) {
	return codec.Encode(docIDs, tfs)
}

// MergeTwoPostings decompresses two PForDelta blobs, merges their
// (doc_id, tf) sequences in ascending doc_id order, summing tf when the
// same doc_id appears in both, and re-encodes the result as a single blob.
func MergeTwoPostings(blob1, blob2 []byte) ([]byte, error) {
	docs1, tfs1, err := decodeBlob(blob1)
	if err != nil {
		return nil, err
	}
	docs2, tfs2, err := decodeBlob(blob2)
	if err != nil {
		return nil, err
	}

	mergedDocs, mergedTFs := mergePostingArrays(docs1, tfs1, docs2, tfs2)
	return encodeBlob(mergedDocs, mergedTFs)
}

// mergePostingArrays performs the two-pointer merge at the heart of the
// Merger: identical to merging two sorted runs, except matching doc_ids
// have their term frequencies summed rather than one side winning.
func mergePostingArrays(docs1, tfs1, docs2, tfs2 []uint32) ([]uint32, []uint32) {
	mergedDocs := make([]uint32, 0, len(docs1)+len(docs2))
	mergedTFs := make([]uint32, 0, len(docs1)+len(docs2))

	i, j := 0, 0
	for i < len(docs1) && j < len(docs2) {
		switch {
		case docs1[i] < docs2[j]:
			mergedDocs = append(mergedDocs, docs1[i])
			mergedTFs = append(mergedTFs, tfs1[i])
			i++
		case docs1[i] > docs2[j]:
			mergedDocs = append(mergedDocs, docs2[j])
			mergedTFs = append(mergedTFs, tfs2[j])
			j++
		default:
			mergedDocs = append(mergedDocs, docs1[i])
			mergedTFs = append(mergedTFs, tfs1[i]+tfs2[j])
			i++
			j++
		}
	}
	for ; i < len(docs1); i++ {
		mergedDocs = append(mergedDocs, docs1[i])
		mergedTFs = append(mergedTFs, tfs1[i])
	}
	for ; j < len(docs2); j++ {
		mergedDocs = append(mergedDocs, docs2[j])
		mergedTFs = append(mergedTFs, tfs2[j])
	}
	return mergedDocs, mergedTFs
}

// MergeTwoIndexes merges two partial indexes into a freshly built one.
// Every term is fully decompressed and re-chunked under out's
// chunkSize/skipStride: terms present in only one input are re-added as
// they are, terms present in both are first merged posting-by-posting.
func MergeTwoIndexes(a, b *postings.Index, chunkSize, skipStride int) (*postings.Index, error) {
	out := postings.New(chunkSize, skipStride)

	aTerms := make(map[string]bool)
	for _, t := range a.Terms() {
		aTerms[t] = true
	}
	bTerms := make(map[string]bool)
	for _, t := range b.Terms() {
		bTerms[t] = true
	}

	allTerms := make(map[string]bool, len(aTerms)+len(bTerms))
	for t := range aTerms {
		allTerms[t] = true
	}
	for t := range bTerms {
		allTerms[t] = true
	}

	for term := range allTerms {
		inA, inB := aTerms[term], bTerms[term]
		switch {
		case inA && inB:
			postingsA, _ := a.DecompressAll(term)
			postingsB, _ := b.DecompressAll(term)
			docsA, tfsA := splitPostings(postingsA)
			docsB, tfsB := splitPostings(postingsB)
			mergedDocs, mergedTFs := mergePostingArrays(docsA, tfsA, docsB, tfsB)
			if err := out.AddPostings(term, mergedDocs, mergedTFs); err != nil {
				return nil, err
			}
		case inA:
			postingsA, _ := a.DecompressAll(term)
			docsA, tfsA := splitPostings(postingsA)
			if err := out.AddPostings(term, docsA, tfsA); err != nil {
				return nil, err
			}
		case inB:
			postingsB, _ := b.DecompressAll(term)
			docsB, tfsB := splitPostings(postingsB)
			if err := out.AddPostings(term, docsB, tfsB); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// MergeMany merges a list of partial indexes via pairwise tournament
// merging: indexes are paired up and merged concurrently, then the
// resulting (roughly halved) list is paired up again, until one index
// remains. Because posting-sequence merge is associative and commutative
// under TF summation, the tournament's pairing order does not affect the
// final result.
func MergeMany(partials []*postings.Index, chunkSize, skipStride int) (*postings.Index, error) {
	if len(partials) == 0 {
		return postings.New(chunkSize, skipStride), nil
	}
	if len(partials) == 1 {
		return partials[0], nil
	}

	level := partials
	for len(level) > 1 {
		next := make([]*postings.Index, (len(level)+1)/2)
		errs := make([]error, len(next))
		var wg sync.WaitGroup

		for i := 0; i < len(level); i += 2 {
			i := i
			slot := i / 2
			if i+1 == len(level) {
				next[slot] = level[i]
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				merged, err := MergeTwoIndexes(level[i], level[i+1], chunkSize, skipStride)
				if err != nil {
					errs[slot] = err
					return
				}
				next[slot] = merged
			}()
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		level = next
	}

	return level[0], nil
}

func splitPostings(ps []postings.Posting) ([]uint32, []uint32) {
	docs := make([]uint32, len(ps))
	tfs := make([]uint32, len(ps))
	for i, p := range ps {
		docs[i] = p.DocID
		tfs[i] = p.TF
	}
	return docs, tfs
}
