package collection

import (
	"bytes"
	"compress/gzip"
	"os"
	"strings"
	"testing"
)

func TestReaderSkipsHeaderAndParses(t *testing.T) {
	data := "index\ttext\n1\tinformation retrieval\n2\tinformation systems\n"
	r, err := NewReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	doc, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next: doc=%v ok=%v err=%v", doc, ok, err)
	}
	if doc.DocID != 1 || doc.Text != "information retrieval" {
		t.Errorf("got %+v", doc)
	}

	doc, ok, err = r.Next()
	if err != nil || !ok {
		t.Fatalf("Next: doc=%v ok=%v err=%v", doc, ok, err)
	}
	if doc.DocID != 2 {
		t.Errorf("got %+v", doc)
	}

	_, ok, err = r.Next()
	if err != nil || ok {
		t.Fatalf("expected exhaustion, got ok=%v err=%v", ok, err)
	}
}

func TestReaderRejectsBadHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("wrong\theader\n"))
	if err == nil {
		t.Fatal("expected error for bad header")
	}
}

func TestReaderSkipsMalformedLines(t *testing.T) {
	data := "index\ttext\nnot-a-number\tbad row\n3\tretrieval systems\n"
	r, err := NewReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	doc, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next: %v %v %v", doc, ok, err)
	}
	if doc.DocID != 3 {
		t.Errorf("expected to skip malformed row, got %+v", doc)
	}
}

func TestReadN(t *testing.T) {
	data := "index\ttext\n1\ta\n2\tb\n3\tc\n"
	r, err := NewReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	docs, err := r.ReadN(2)
	if err != nil {
		t.Fatalf("ReadN: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
}

func TestCountDocs(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/collection.tsv"
	data := "index\ttext\n1\ta\nnot-a-number\tbad row\n2\tb\n3\tc\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	total, err := CountDocs(path)
	if err != nil {
		t.Fatalf("CountDocs: %v", err)
	}
	if total != 3 {
		t.Errorf("got %d, want 3 (malformed row skipped)", total)
	}
}

func TestOpenLocalGzip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/collection.tsv.gz"

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte("index\ttext\n1\tinformation retrieval\n")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	r, err := NewReader(rc)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	doc, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next: %v %v %v", doc, ok, err)
	}
	if doc.DocID != 1 {
		t.Errorf("got %+v", doc)
	}
}

func TestPreprocessorTokenize(t *testing.T) {
	p := NewPreprocessor()
	got := p.Tokenize("Information Retrieval, Systems!")
	want := []string{"information", "retrieval", "systems"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d: got %q, want %q", i, got[i], w)
		}
	}
}

func TestPreprocessorStopwords(t *testing.T) {
	p := NewPreprocessor()
	p.RemoveStopwords = true
	got := p.Tokenize("the information and the retrieval")
	want := []string{"information", "retrieval"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d: got %q, want %q", i, got[i], w)
		}
	}
}

func TestPreprocessorStemming(t *testing.T) {
	p := NewPreprocessor()
	p.Stem = true
	got := p.Tokenize("retrieval systems")
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
}
