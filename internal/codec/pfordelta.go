// Package codec implements PForDelta encoding of aligned (doc_id, tf) posting
// arrays into a single opaque byte blob.
//
// # Format
//
// A blob is:
//
//	[W: u8][deltas, n values packed as W-byte big-endian][tfs, n values packed as W-byte big-endian]
//
// doc_ids are delta-encoded (deltas[0] is the first doc_id itself, deltas[i]
// is the gap to the previous doc_id for i>=1); tfs are stored raw. Both
// streams share one byte width W, chosen as the smallest number of bytes
// that fits the largest delta or the largest tf, whichever is wider. There
// is no global dictionary: W is local to the blob.
package codec

import (
	"fmt"
	"mircv/internal/mircverr"
)

// Encode packs docIDs (strictly ascending, unique) and tfs (positive, same
// length as docIDs) into a PForDelta blob. Encoding an empty pair of slices
// yields an empty blob. Mismatched lengths are rejected with
// mircverr.ErrInvalidArgument.
func Encode(docIDs []uint32, tfs []uint32) ([]byte, error) {
	if len(docIDs) != len(tfs) {
		return nil, fmt.Errorf("%w: docIDs has %d entries, tfs has %d", mircverr.ErrInvalidArgument, len(docIDs), len(tfs))
	}
	n := len(docIDs)
	if n == 0 {
		return nil, nil
	}

	deltas := make([]uint32, n)
	deltas[0] = docIDs[0]
	var maxDelta uint32 = deltas[0]
	var maxTF uint32
	for i := 1; i < n; i++ {
		deltas[i] = docIDs[i] - docIDs[i-1]
		if deltas[i] > maxDelta {
			maxDelta = deltas[i]
		}
	}
	for _, tf := range tfs {
		if tf > maxTF {
			maxTF = tf
		}
	}

	w := byteWidth(maxDelta, maxTF)

	blob := make([]byte, 1+2*w*n)
	blob[0] = byte(w)
	packAll(blob[1:1+w*n], deltas, w)
	packAll(blob[1+w*n:], tfs, w)
	return blob, nil
}

// Decode unpacks a PForDelta blob produced by Encode back into its original
// (doc_ids, tfs) pair. An empty blob decodes to a pair of empty slices.
// Any malformed blob (odd leftover length, length not a multiple of 2*W)
// fails with mircverr.ErrCorruptBlob.
func Decode(blob []byte) ([]uint32, []uint32, error) {
	if len(blob) == 0 {
		return []uint32{}, []uint32{}, nil
	}

	w := int(blob[0])
	if w == 0 {
		return nil, nil, fmt.Errorf("%w: zero byte width", mircverr.ErrCorruptBlob)
	}

	rest := blob[1:]
	if len(rest)%(2*w) != 0 {
		return nil, nil, fmt.Errorf("%w: %d remaining bytes is not a multiple of 2*%d", mircverr.ErrCorruptBlob, len(rest), w)
	}
	n := len(rest) / (2 * w)

	deltas := unpackAll(rest[:w*n], w, n)
	tfs := unpackAll(rest[w*n:], w, n)

	docIDs := make([]uint32, n)
	var running uint32
	for i, d := range deltas {
		running += d
		docIDs[i] = running
	}
	return docIDs, tfs, nil
}

// byteWidth returns the minimum number of bytes (at least 1) needed to hold
// the larger of maxDelta and maxTF.
func byteWidth(maxDelta, maxTF uint32) int {
	maxVal := maxDelta
	if maxTF > maxVal {
		maxVal = maxTF
	}
	w := 1
	for maxVal > (1<<(8*uint(w)))-1 {
		w++
		if w >= 4 {
			break
		}
	}
	return w
}

// packAll writes each of values[i] into dst[i*w:(i+1)*w] as w-byte
// big-endian.
func packAll(dst []byte, values []uint32, w int) {
	for i, v := range values {
		put(dst[i*w:(i+1)*w], v, w)
	}
}

func unpackAll(src []byte, w, n int) []uint32 {
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = get(src[i*w:(i+1)*w], w)
	}
	return out
}

func put(dst []byte, v uint32, w int) {
	for i := 0; i < w; i++ {
		shift := uint(8 * (w - 1 - i))
		dst[i] = byte(v >> shift)
	}
}

func get(src []byte, w int) uint32 {
	var v uint32
	for i := 0; i < w; i++ {
		v = v<<8 | uint32(src[i])
	}
	return v
}
