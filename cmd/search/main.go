// Command search runs an interactive query loop against a built index:
// it asks for a query string, an evaluation type, and a scoring method,
// then prints ranked doc_id/score pairs.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mircv/internal/collection"
	"mircv/internal/config"
	"mircv/internal/doctable"
	"mircv/internal/lexicon"
	"mircv/internal/postings"
	"mircv/internal/query"
)

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "search",
		Short: "Interactively query a built index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cfg)
		},
	}
	root.Flags().StringVar(&cfg.ResourcesPath, "resources", cfg.ResourcesPath, "directory containing index.bin, lexicon.txt, doctable.txt")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSearch(cfg config.Config) error {
	idx := postings.New(cfg.ChunkSize, cfg.SkipStride)
	if err := idx.ReadFile(cfg.ResourcesPath + "/index.bin"); err != nil {
		return fmt.Errorf("search: load index: %w", err)
	}
	lex := lexicon.New()
	if err := lex.ReadFile(cfg.ResourcesPath + "/lexicon.txt"); err != nil {
		return fmt.Errorf("search: load lexicon: %w", err)
	}
	docTable := doctable.New()
	if err := docTable.ReadFile(cfg.ResourcesPath + "/doctable.txt"); err != nil {
		return fmt.Errorf("search: load document table: %w", err)
	}

	tokenizer := collection.NewPreprocessor()
	processor := query.New(idx, lex, docTable, tokenizer)
	processor.BM25Params = cfg.BM25Params
	processor.MaxResults = cfg.MaxResults

	bold := color.New(color.Bold)
	reader := bufio.NewReader(os.Stdin)

	for {
		bold.Print("query> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		qType, err := promptInt(reader, bold, "evaluation type [1=conjunctive, 2=disjunctive]: ")
		if err != nil {
			return err
		}
		method, err := promptInt(reader, bold, "scoring method [1=tfidf, 2=bm25]: ")
		if err != nil {
			return err
		}

		results, err := processor.Query(line, query.Type(qType), query.Method(method))
		if err != nil {
			color.Red("error: %v", err)
			continue
		}
		if len(results) == 0 {
			fmt.Println("(no results)")
			continue
		}
		for _, r := range results {
			fmt.Printf("%d %f\n", r.DocID, r.Score)
		}
	}
}

func promptInt(reader *bufio.Reader, bold *color.Color, prompt string) (int, error) {
	bold.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(line))
}
