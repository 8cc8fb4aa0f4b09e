package postings

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"mircv/internal/codec"
	"mircv/internal/mircverr"
)

// fileMagic and fileVersion identify the on-disk index format. The source
// system's own binary format had no such header; this repo adds one, per
// spec.md's Open Question on magic/version headers.
const (
	fileMagic   uint32 = 0x4D4B5658 // "MKVX"
	fileVersion uint8  = 1
)

// termEntry holds one term's ordered, non-overlapping chunks.
type termEntry struct {
	chunks []chunk
}

// Index is the in-memory CompressedInvertedIndex: term -> chunked,
// PForDelta-compressed postings. It is also the unit of on-disk
// serialization (Write/Read) per spec.md's index file format.
type Index struct {
	terms      map[string]*termEntry
	chunkSize  int
	skipStride int
}

// New returns an empty Index. chunkSize is the target postings per chunk
// (C); skipStride is the skip-array stride (k). Zero or negative values
// fall back to DefaultChunkSize/DefaultSkipStride.
func New(chunkSize, skipStride int) *Index {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if skipStride <= 0 {
		skipStride = DefaultSkipStride
	}
	return &Index{
		terms:      make(map[string]*termEntry),
		chunkSize:  chunkSize,
		skipStride: skipStride,
	}
}

// AddPostings splits (docIDs, tfs) into chunkSize-sized groups, compresses
// each with the PForDelta codec, and appends them to term's chunk list.
// docIDs must be strictly ascending within the call; ranges added across
// separate calls for the same term must be disjoint from previously added
// ranges (the Merger, not this layer, is responsible for summing overlapping
// TFs across partial indexes).
func (idx *Index) AddPostings(term string, docIDs []uint32, tfs []uint32) error {
	if len(docIDs) != len(tfs) {
		return fmt.Errorf("%w: docIDs has %d entries, tfs has %d", mircverr.ErrInvalidArgument, len(docIDs), len(tfs))
	}
	if len(docIDs) == 0 {
		return nil
	}

	entry, ok := idx.terms[term]
	if !ok {
		entry = &termEntry{}
		idx.terms[term] = entry
	}

	for start := 0; start < len(docIDs); start += idx.chunkSize {
		end := start + idx.chunkSize
		if end > len(docIDs) {
			end = len(docIDs)
		}
		group := docIDs[start:end]
		blob, err := codec.Encode(group, tfs[start:end])
		if err != nil {
			return err
		}
		entry.chunks = append(entry.chunks, chunk{
			first: group[0],
			last:  group[len(group)-1],
			blob:  blob,
		})
	}

	if len(entry.chunks) > 1 && entry.chunks[len(entry.chunks)-1].first < entry.chunks[len(entry.chunks)-2].first {
		sort.Slice(entry.chunks, func(i, j int) bool { return entry.chunks[i].first < entry.chunks[j].first })
	}

	return nil
}

// Terms returns every term with at least one posting, in no particular
// order.
func (idx *Index) Terms() []string {
	terms := make([]string, 0, len(idx.terms))
	for t := range idx.terms {
		terms = append(terms, t)
	}
	return terms
}

// PostingList returns a fresh navigable iterator for term, or ok=false if
// the term has no postings.
func (idx *Index) PostingList(term string) (*PostingList, bool) {
	entry, ok := idx.terms[term]
	if !ok {
		return nil, false
	}
	return newPostingList(entry.chunks, idx.skipStride), true
}

// DecompressAll decodes every chunk of term and returns the full posting
// sequence. Test/debug path: decodes the whole list eagerly.
func (idx *Index) DecompressAll(term string) ([]Posting, bool) {
	pl, ok := idx.PostingList(term)
	if !ok {
		return nil, false
	}
	postings, err := pl.All()
	if err != nil {
		return nil, false
	}
	return postings, true
}

// addChunks appends pre-built chunks for term verbatim, without a
// decompress-recompress round trip, and re-sorts the term's chunks by
// first doc_id. The merge package does not call it: it goes through
// DecompressAll and AddPostings.
func (idx *Index) addChunks(term string, chunks []chunk) {
	entry, ok := idx.terms[term]
	if !ok {
		entry = &termEntry{}
		idx.terms[term] = entry
	}
	entry.chunks = append(entry.chunks, chunks...)
	sort.Slice(entry.chunks, func(i, j int) bool { return entry.chunks[i].first < entry.chunks[j].first })
}

// rawChunks returns a term's chunk list as stored, or ok=false if the term
// is absent.
func (idx *Index) rawChunks(term string) ([]chunk, bool) {
	entry, ok := idx.terms[term]
	if !ok {
		return nil, false
	}
	return entry.chunks, true
}

// Write serializes the index to w: a 4-byte magic, a 1-byte version, then
// one record per term (term_len, term bytes, n_chunks, boundaries, then
// compressed chunk payloads), all integers little-endian.
func (idx *Index) Write(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, fileMagic); err != nil {
		return fmt.Errorf("postings: write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, fileVersion); err != nil {
		return fmt.Errorf("postings: write version: %w", err)
	}

	terms := idx.Terms()
	sort.Strings(terms)

	for _, term := range terms {
		entry := idx.terms[term]
		if err := writeTermRecord(w, term, entry.chunks); err != nil {
			return err
		}
	}
	return nil
}

func writeTermRecord(w io.Writer, term string, chunks []chunk) error {
	termBytes := []byte(term)
	if len(termBytes) > 0xFFFF {
		return fmt.Errorf("%w: term %q exceeds u16 length", mircverr.ErrInvalidArgument, term)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(termBytes))); err != nil {
		return fmt.Errorf("postings: write term_len: %w", err)
	}
	if _, err := w.Write(termBytes); err != nil {
		return fmt.Errorf("postings: write term: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(chunks))); err != nil {
		return fmt.Errorf("postings: write n_chunks: %w", err)
	}
	for _, c := range chunks {
		if err := binary.Write(w, binary.LittleEndian, c.first); err != nil {
			return fmt.Errorf("postings: write first_doc_id: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, c.last); err != nil {
			return fmt.Errorf("postings: write last_doc_id: %w", err)
		}
	}
	for _, c := range chunks {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(c.blob))); err != nil {
			return fmt.Errorf("postings: write chunk_len: %w", err)
		}
		if _, err := w.Write(c.blob); err != nil {
			return fmt.Errorf("postings: write chunk_bytes: %w", err)
		}
	}
	return nil
}

// Read replaces the index's contents with the index file read from r.
// Framing violations (out-of-range lengths, truncated records) fail with
// mircverr.ErrCorruptIndexFile.
func (idx *Index) Read(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("postings: read: %w", err)
	}
	return idx.readFromBuffer(data)
}

func (idx *Index) readFromBuffer(data []byte) error {
	br := &byteReader{buf: data}

	magic, err := br.uint32()
	if err != nil || magic != fileMagic {
		return fmt.Errorf("%w: bad magic", mircverr.ErrCorruptIndexFile)
	}
	version, err := br.uint8()
	if err != nil || version != fileVersion {
		return fmt.Errorf("%w: unsupported version", mircverr.ErrCorruptIndexFile)
	}

	idx.terms = make(map[string]*termEntry)
	for !br.eof() {
		term, chunks, err := readTermRecord(br)
		if err != nil {
			return err
		}
		idx.terms[term] = &termEntry{chunks: chunks}
	}
	return nil
}

func readTermRecord(br *byteReader) (string, []chunk, error) {
	termLen, err := br.uint16()
	if err != nil {
		return "", nil, fmt.Errorf("%w: term_len: %v", mircverr.ErrCorruptIndexFile, err)
	}
	termBytes, err := br.bytes(int(termLen))
	if err != nil {
		return "", nil, fmt.Errorf("%w: term bytes: %v", mircverr.ErrCorruptIndexFile, err)
	}
	nChunks, err := br.uint32()
	if err != nil {
		return "", nil, fmt.Errorf("%w: n_chunks: %v", mircverr.ErrCorruptIndexFile, err)
	}

	chunks := make([]chunk, nChunks)
	for i := range chunks {
		first, err := br.uint32()
		if err != nil {
			return "", nil, fmt.Errorf("%w: first_doc_id: %v", mircverr.ErrCorruptIndexFile, err)
		}
		last, err := br.uint32()
		if err != nil {
			return "", nil, fmt.Errorf("%w: last_doc_id: %v", mircverr.ErrCorruptIndexFile, err)
		}
		chunks[i].first = first
		chunks[i].last = last
	}
	for i := range chunks {
		chunkLen, err := br.uint32()
		if err != nil {
			return "", nil, fmt.Errorf("%w: chunk_len: %v", mircverr.ErrCorruptIndexFile, err)
		}
		blob, err := br.bytes(int(chunkLen))
		if err != nil {
			return "", nil, fmt.Errorf("%w: chunk_bytes: %v", mircverr.ErrCorruptIndexFile, err)
		}
		chunks[i].blob = blob
	}
	return string(termBytes), chunks, nil
}

// WriteFile writes the index to path, creating or truncating it.
func (idx *Index) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("postings: create %s: %w", path, err)
	}
	defer f.Close()
	return idx.Write(f)
}

// ReadFile replaces the index's contents with the index file at path.
func (idx *Index) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("postings: open %s: %w", path, err)
	}
	defer f.Close()
	return idx.Read(f)
}

// byteReader is a small bounds-checked cursor over an in-memory buffer,
// used to validate index-file framing precisely (term_len out of bounds,
// chunk_len past the remaining file) rather than relying on io.Reader
// short-read semantics alone.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) eof() bool { return r.pos >= len(r.buf) }

func (r *byteReader) uint8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) uint16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *byteReader) uint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}
