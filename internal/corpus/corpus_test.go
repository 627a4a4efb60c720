// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// writeDoc creates a file (and its parents) under root with placeholder content.
func writeDoc(t *testing.T, root string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectMissingRoot(t *testing.T) {
	_, err := Collect(filepath.Join(t.TempDir(), "no-such-dir"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCollectRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "corpus")
	if err := os.WriteFile(root, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Collect(root)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-directory root, got %v", err)
	}
}

func TestCollectEmptyCorpus(t *testing.T) {
	docs, err := Collect(t.TempDir())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func TestCollectRecognizedFormats(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "a.pdf")
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "b.docx")
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "c.htm")
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "d.html")
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "e.PDF")

	docs, err := Collect(root)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("expected 5 documents, got %d", len(docs))
	}

	wantFormats := map[string]types.Format{
		"a.pdf":  types.FormatPDF,
		"b.docx": types.FormatDocx,
		"c.htm":  types.FormatHTML,
		"d.html": types.FormatHTML,
		"e.PDF":  types.FormatPDF,
	}
	for _, d := range docs {
		if want := wantFormats[d.Name]; d.Format != want {
			t.Errorf("%s: format = %q, want %q", d.Name, d.Format, want)
		}
		if d.Journal != "Acta" || d.Year != 2017 || d.MonthRange != "JAN-FEB" {
			t.Errorf("%s: provenance = %q/%d/%q", d.Name, d.Journal, d.Year, d.MonthRange)
		}
		if !filepath.IsAbs(d.Path) {
			t.Errorf("%s: path %q is not absolute", d.Name, d.Path)
		}
	}
}

func TestCollectSkipsOutOfContractFiles(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "keep.pdf")
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "notes.txt")            // extension
	writeDoc(t, root, "Acta", "stray.pdf")                               // too shallow
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "extra", "deep.pdf")    // too deep
	writeDoc(t, root, "Acta", "seventeen", "Jan-Feb", "badyear.pdf")     // non-integer year
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", ".hidden")              // dotfile

	docs, err := Collect(root)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d: %+v", len(docs), docs)
	}
	if docs[0].Name != "keep.pdf" {
		t.Fatalf("kept wrong document: %s", docs[0].Name)
	}
}

func TestCollectSortsDeterministically(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "Zoo", "2016", "Mar-Apr", "z.pdf")
	writeDoc(t, root, "Acta", "2018", "Jan-Feb", "b.pdf")
	writeDoc(t, root, "Acta", "2017", "Mar-Apr", "a.pdf")
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "b.pdf")
	writeDoc(t, root, "Acta", "2017", "Jan-Feb", "a.pdf")

	docs, err := Collect(root)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var got []string
	for _, d := range docs {
		got = append(got, d.Journal+"/"+d.Name)
	}
	want := []string{"Acta/a.pdf", "Acta/b.pdf", "Acta/a.pdf", "Acta/b.pdf", "Zoo/z.pdf"}
	if len(got) != len(want) {
		t.Fatalf("got %d documents, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %s, want %s (full order %v)", i, got[i], want[i], got)
		}
	}

	// Years sort numerically within a journal.
	if docs[0].Year != 2017 || docs[3].Year != 2018 {
		t.Fatalf("year order wrong: %d then %d", docs[0].Year, docs[3].Year)
	}
}
