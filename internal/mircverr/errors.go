// Package mircverr defines the sentinel error kinds surfaced by the retrieval
// core, per the error handling design: callers distinguish kinds with
// errors.Is, not by matching message strings.
package mircverr

import "errors"

var (
	// ErrInvalidArgument flags a bad query type/scoring method or mismatched
	// encode inputs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorruptBlob flags a PForDelta blob with inconsistent lengths or an
	// unexpected end of stream.
	ErrCorruptBlob = errors.New("corrupt blob")

	// ErrCorruptIndexFile flags a violated term/chunk framing invariant
	// (term_len out of bounds, chunk_len past the remaining file, bad magic).
	ErrCorruptIndexFile = errors.New("corrupt index file")

	// ErrOutOfMemory flags that the memory profiler concluded no safe chunk
	// size exists.
	ErrOutOfMemory = errors.New("no safe chunk size fits in available memory")
)
