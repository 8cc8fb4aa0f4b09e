// Command build-full-index runs the full collection-to-index build
// pipeline: profile memory, stream the collection in chunks, spill
// partial indexes, merge them, and persist the final
// {InvertedIndex, Lexicon, DocumentTable} triple.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mircv/internal/build"
	"mircv/internal/collection"
	"mircv/internal/config"
)

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "build_full_index",
		Short: "Build a compressed inverted index from a TSV collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("build-full-index: init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			tokenizer := collection.NewPreprocessor()
			tokenizer.Stem = cfg.Stem
			tokenizer.RemoveStopwords = cfg.RemoveStopwords

			result, err := build.Run(build.Options{
				CollectionPath:  cfg.CollectionPath,
				ResourcesPath:   cfg.ResourcesPath,
				ChunkSize:       cfg.ChunkSize,
				SkipStride:      cfg.SkipStride,
				StaticChunkSize: cfg.StaticChunkSize,
				MaxChunkSize:    cfg.MaxChunkSize,
				Tokenizer:       tokenizer,
				Logger:          logger,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Indexed %d documents into %s\n", result.TotalDocs, cfg.ResourcesPath)
			return nil
		},
	}

	root.Flags().IntVar(&cfg.StaticChunkSize, "static-chunk-size", cfg.StaticChunkSize, "bypass the memory profiler and use this many documents per build chunk")
	root.Flags().StringVar(&cfg.CollectionPath, "collection", "collection.tsv.gz", "path or URL of the TSV collection to index")
	root.Flags().StringVar(&cfg.ResourcesPath, "resources", cfg.ResourcesPath, "directory to write the index, lexicon, and document table into")
	root.Flags().IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "target postings per compressed chunk")
	root.Flags().IntVar(&cfg.SkipStride, "skip-stride", cfg.SkipStride, "chunks between posting-list skip entries")
	root.Flags().BoolVar(&cfg.Stem, "stem", cfg.Stem, "enable Porter2 stemming during tokenization")
	root.Flags().BoolVar(&cfg.RemoveStopwords, "remove-stopwords", cfg.RemoveStopwords, "enable stopword filtering during tokenization")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
