// Command gen-collection writes a synthetic TSV test-fixture collection
// (header "index\ttext", random documents drawn from a fixed vocabulary)
// for exercising the build pipeline without a real corpus on hand.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
)

const (
	defaultOutputFile = "collection.tsv"
	defaultNumDocs    = 1000
	wordsPerDoc       = 8
)

var vocabulary = []string{
	"jedi", "force", "skywalker", "sith", "lightsaber", "empire", "rebellion", "droid",
	"blaster", "starship", "yoda", "clone", "trooper", "battle", "padawan", "hologram",
	"bounty", "hunter", "coruscant", "tatooine", "deathstar", "vader", "han", "chewbacca",
	"leia", "luke", "anakin", "grievous", "obiwan", "naboo", "geonosis",
	"kamino", "mustafar", "dagobah", "endor", "hoth", "alderaan", "kashyyyk", "lando",
	"carbonite", "lightspeed", "hyperdrive", "holocron", "starfighter", "speeder", "cantina",
	"protocol", "gungan", "wookiee",
}

func generateDocument() string {
	words := make([]string, wordsPerDoc)
	for i := range words {
		words[i] = vocabulary[rand.Intn(len(vocabulary))]
	}
	line := ""
	for i, w := range words {
		if i > 0 {
			line += " "
		}
		line += w
	}
	return line
}

func main() {
	path := flag.String("path", defaultOutputFile, "output TSV file path")
	numDocs := flag.Int("num-docs", defaultNumDocs, "number of synthetic documents to generate")
	flag.Parse()

	if err := writeCollection(*path, *numDocs); err != nil {
		fmt.Fprintf(os.Stderr, "gen-collection: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d documents to %s\n", *numDocs, *path)
}

func writeCollection(path string, numDocs int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(w, "index\ttext"); err != nil {
		return err
	}
	for docID := 1; docID <= numDocs; docID++ {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", docID, generateDocument()); err != nil {
			return err
		}
	}
	return w.Flush()
}
