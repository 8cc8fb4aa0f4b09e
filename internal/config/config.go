// Package config defines the explicit Config passed into the builder and
// CLIs. Knobs that the original kept as a module-level global (notably
// RESOURCES_PATH) are plain struct fields here, threaded through
// explicitly rather than hidden behind a singleton.
package config

import "mircv/internal/scorer"

// Config collects every tunable the build and query pipelines need.
type Config struct {
	// ResourcesPath is the directory the builder writes
	// index.bin/lexicon.txt/doctable.txt into, and the CLIs read them
	// back from.
	ResourcesPath string

	// CollectionPath is the TSV (optionally .gz) collection to index.
	CollectionPath string

	// ChunkSize is the target postings per on-disk chunk (C). Zero
	// falls back to postings.DefaultChunkSize. The document-batch size of
	// the build is chosen separately (see StaticChunkSize).
	ChunkSize int

	// SkipStride is the posting-list skip-array stride (k).
	SkipStride int

	// StaticChunkSize, when > 0, bypasses the memory profiler entirely
	// and uses this many documents per build chunk, matching the CLI's
	// --static-chunk-size override.
	StaticChunkSize int

	// MaxChunkSize is the memory profiler's hard cap on its estimate.
	MaxChunkSize int

	// Stem enables Porter2 stemming during tokenization.
	Stem bool

	// RemoveStopwords enables stopword filtering during tokenization.
	RemoveStopwords bool

	// BM25Params holds the k1/b constants used for BM25 scoring.
	BM25Params scorer.BM25Params

	// MaxResults bounds how many ranked results a query returns.
	MaxResults int
}

// Default returns a Config with every documented spec default applied:
// C=1000, k=2, hard memory cap 10^6, BM25 k1=1.5/b=0.75, MaxResults=10.
func Default() Config {
	return Config{
		ResourcesPath:   "resources",
		ChunkSize:       1000,
		SkipStride:      2,
		MaxChunkSize:    1_000_000,
		BM25Params:      scorer.DefaultBM25Params(),
		MaxResults:      10,
	}
}
