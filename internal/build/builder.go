// Package build implements the IndexBuilder: the bounded-memory pipeline
// that turns a streamed text collection into a persisted
// {CompressedInvertedIndex, Lexicon, DocumentTable} triple. It profiles
// memory from a representative sample, then repeatedly pulls a chunk of
// documents, re-checking the 80% guardrail against current available
// memory before every pull and shrinking the chunk size if it no longer
// fits, builds a partial in-memory index, spills it to disk, and finally
// merges every partial into the final index.
package build

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"mircv/internal/collection"
	"mircv/internal/doctable"
	"mircv/internal/lexicon"
	"mircv/internal/memprofile"
	"mircv/internal/merge"
	"mircv/internal/mircverr"
	"mircv/internal/postings"
)

// Tokenizer maps a document's raw text to normalized tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Options configures one build run.
type Options struct {
	CollectionPath  string
	ResourcesPath   string
	ChunkSize       int
	SkipStride      int
	StaticChunkSize int // 0 means "use the memory profiler"
	MaxChunkSize    int
	Tokenizer       Tokenizer
	Logger          *zap.Logger
}

// Result reports where the build's output files were written.
type Result struct {
	IndexPath    string
	LexiconPath  string
	DocTablePath string
	TotalDocs    int
}

const (
	indexFileName    = "index.bin"
	lexiconFileName  = "lexicon.txt"
	docTableFileName = "doctable.txt"
)

// Run executes the full build pipeline against opts.CollectionPath,
// writing its output under opts.ResourcesPath.
func Run(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(opts.ResourcesPath, 0o755); err != nil {
		return nil, fmt.Errorf("build: create resources dir: %w", err)
	}

	chunkSize, profiler, err := determineChunkSize(opts, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("chunk size determined", zap.Int("chunk_size", chunkSize))

	rc, err := collection.Open(opts.CollectionPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader, err := collection.NewReader(rc)
	if err != nil {
		return nil, err
	}

	docTable := doctable.New()
	lex := lexicon.New()

	var partials []*postings.Index
	var partialPaths []string
	totalDocs := 0
	chunkNum := 0

	for {
		if profiler != nil {
			safe, err := profiler.Reestimate(chunkSize)
			if err != nil {
				return nil, err
			}
			if safe != chunkSize {
				logger.Warn("shrinking chunk size: available memory guardrail",
					zap.Int("from", chunkSize), zap.Int("to", safe))
				chunkSize = safe
			}
		}

		docs, err := reader.ReadN(chunkSize)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			break
		}

		partial, err := buildPartial(docs, opts.Tokenizer, docTable, lex, opts.ChunkSize, opts.SkipStride)
		if err != nil {
			return nil, err
		}
		totalDocs += len(docs)

		partialPath := filepath.Join(opts.ResourcesPath, fmt.Sprintf("partial_%d.bin", chunkNum))
		if err := partial.WriteFile(partialPath); err != nil {
			return nil, err
		}
		logger.Info("spilled partial index", zap.Int("chunk", chunkNum), zap.Int("docs", len(docs)))

		reloaded := postings.New(opts.ChunkSize, opts.SkipStride)
		if err := reloaded.ReadFile(partialPath); err != nil {
			return nil, err
		}
		partials = append(partials, reloaded)
		partialPaths = append(partialPaths, partialPath)
		chunkNum++
	}

	logger.Info("merging partials", zap.Int("count", len(partials)))
	finalIndex, err := merge.MergeMany(partials, opts.ChunkSize, opts.SkipStride)
	if err != nil {
		return nil, err
	}

	result := &Result{
		IndexPath:    filepath.Join(opts.ResourcesPath, indexFileName),
		LexiconPath:  filepath.Join(opts.ResourcesPath, lexiconFileName),
		DocTablePath: filepath.Join(opts.ResourcesPath, docTableFileName),
		TotalDocs:    totalDocs,
	}

	if err := finalIndex.WriteFile(result.IndexPath); err != nil {
		return nil, err
	}
	if err := lex.WriteFile(result.LexiconPath); err != nil {
		return nil, err
	}
	if err := docTable.WriteFile(result.DocTablePath); err != nil {
		return nil, err
	}

	for _, p := range partialPaths {
		if err := os.Remove(p); err != nil {
			logger.Warn("failed to remove partial", zap.String("path", p), zap.Error(err))
		}
	}

	logger.Info("build complete", zap.Int("total_docs", totalDocs))
	return result, nil
}

// buildPartial tokenizes each document, accumulates per-term TF maps,
// updates the shared lexicon and document table, and compresses the
// result into a fresh partial index.
func buildPartial(docs []collection.Document, tokenizer Tokenizer, docTable *doctable.Table, lex *lexicon.Lexicon, chunkSize, skipStride int) (*postings.Index, error) {
	termDocs := make(map[string][]uint32)
	termTFs := make(map[string][]uint32)

	for _, doc := range docs {
		tokens := tokenizer.Tokenize(doc.Text)
		docTable.Add(doc.DocID, len(tokens))

		tf := make(map[string]uint32)
		for _, tok := range tokens {
			tf[tok]++
		}
		for term, count := range tf {
			lex.Add(term, 1)
			termDocs[term] = append(termDocs[term], doc.DocID)
			termTFs[term] = append(termTFs[term], count)
		}
	}

	partial := postings.New(chunkSize, skipStride)
	for term, docIDs := range termDocs {
		if err := partial.AddPostings(term, docIDs, termTFs[term]); err != nil {
			return nil, err
		}
	}
	return partial, nil
}

// determineChunkSize resolves the document-batch size for the streaming
// pass: a static override if given, otherwise the memory profiler's
// estimate from a representative sample. The sample size itself comes
// from a total-docs probe feeding memprofile.SampleSize(total), i.e.
// N = min(10_000, total), not a fixed-size pull. The returned Profiler is
// nil when the static override is used, signaling the streaming loop to
// skip re-checking the guardrail on every pull.
func determineChunkSize(opts Options, logger *zap.Logger) (int, *memprofile.Profiler, error) {
	if opts.StaticChunkSize > 0 {
		return opts.StaticChunkSize, nil, nil
	}

	total, err := collection.CountDocs(opts.CollectionPath)
	if err != nil {
		return 0, nil, err
	}
	if total == 0 {
		return 0, nil, fmt.Errorf("%w: empty collection", mircverr.ErrInvalidArgument)
	}

	rc, err := collection.Open(opts.CollectionPath)
	if err != nil {
		return 0, nil, err
	}
	defer rc.Close()

	reader, err := collection.NewReader(rc)
	if err != nil {
		return 0, nil, err
	}

	sample, err := reader.ReadN(memprofile.SampleSize(total))
	if err != nil {
		return 0, nil, err
	}
	if len(sample) == 0 {
		return 0, nil, fmt.Errorf("%w: empty collection", mircverr.ErrInvalidArgument)
	}

	var sampleBytes int64
	for _, doc := range sample {
		sampleBytes += int64(len(doc.Text))
	}

	profiler := memprofile.New(opts.MaxChunkSize)
	chunkSize, err := profiler.Estimate(sampleBytes, len(sample))
	if err != nil {
		logger.Error("memory profiling failed", zap.Error(err))
		return 0, nil, err
	}
	return chunkSize, profiler, nil
}
