// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

func sampleSuccess(path string) types.SuccessRecord {
	abstract := "We describe a general-purpose engine."
	start, end := "2017-01-01", "2017-02-28"
	return types.SuccessRecord{
		Authors:         []string{"Ada Lovelace", "Charles Babbage"},
		Title:           "On the Analytical Engine",
		Abstract:        &abstract,
		PublicationDate: "2017-01-15",
		SourcePath:      path,
		Journal:         "Acta Veterinaria Scandinavica",
		Year:            2017,
		MonthRange:      "JAN-FEB",
		PeriodStart:     &start,
		PeriodEnd:       &end,
	}
}

func sampleFailure(path string) types.FailureRecord {
	return types.FailureRecord{
		SourcePath:  path,
		Journal:     "Acta Veterinaria Scandinavica",
		Year:        2017,
		MonthRange:  "JAN-FEB",
		ErrorKind:   types.KindCorruptPDF,
		ErrorDetail: "reading document: unexpected EOF",
		Timestamp:   "2026-08-22T10:00:00Z",
	}
}

func TestAppendAndReadBack(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.AppendSuccess(sampleSuccess("/corpus/a.pdf")); err != nil {
		t.Fatalf("AppendSuccess: %v", err)
	}
	if err := s.AppendSuccess(sampleSuccess("/corpus/b.docx")); err != nil {
		t.Fatalf("AppendSuccess: %v", err)
	}
	if err := s.AppendFailure(sampleFailure("/corpus/c.html")); err != nil {
		t.Fatalf("AppendFailure: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	successes, err := ReadSuccesses(filepath.Join(dir, SuccessFile))
	if err != nil {
		t.Fatalf("ReadSuccesses: %v", err)
	}
	if len(successes) != 2 {
		t.Fatalf("got %d success records, want 2", len(successes))
	}
	got := successes[0]
	if got.Title != "On the Analytical Engine" || len(got.Authors) != 2 {
		t.Errorf("record did not round-trip: %+v", got)
	}
	if got.Abstract == nil || *got.Abstract == "" {
		t.Error("abstract lost in round-trip")
	}
	if got.PeriodStart == nil || *got.PeriodStart != "2017-01-01" {
		t.Errorf("period start lost in round-trip: %v", got.PeriodStart)
	}

	failures, err := ReadFailures(filepath.Join(dir, FailureFile))
	if err != nil {
		t.Fatalf("ReadFailures: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failure records, want 1", len(failures))
	}
	if failures[0].ErrorKind != types.KindCorruptPDF {
		t.Errorf("ErrorKind = %q, want %q", failures[0].ErrorKind, types.KindCorruptPDF)
	}
}

func TestNullFieldsStayExplicit(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec := sampleSuccess("/corpus/no-abstract.pdf")
	rec.Abstract = nil
	rec.PeriodStart = nil
	rec.PeriodEnd = nil
	if err := s.AppendSuccess(rec); err != nil {
		t.Fatalf("AppendSuccess: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// An absent abstract is written as an explicit null, never as "".
	data, err := os.ReadFile(filepath.Join(dir, SuccessFile))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, `"abstract":null`) {
		t.Errorf("line missing explicit null abstract: %s", line)
	}
	if strings.Contains(line, `"abstract":""`) {
		t.Errorf("absent abstract written as empty string: %s", line)
	}

	back, err := ReadSuccesses(filepath.Join(dir, SuccessFile))
	if err != nil {
		t.Fatalf("ReadSuccesses: %v", err)
	}
	if back[0].Abstract != nil {
		t.Errorf("Abstract = %v, want nil", *back[0].Abstract)
	}
}

func TestReopenAppendsWithoutRewriting(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		s, err := Open(dir)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		if err := s.AppendSuccess(sampleSuccess("/corpus/a.pdf")); err != nil {
			t.Fatalf("AppendSuccess #%d: %v", i+1, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}

	records, err := ReadSuccesses(filepath.Join(dir, SuccessFile))
	if err != nil {
		t.Fatalf("ReadSuccesses: %v", err)
	}
	// Two identical appends stay two lines; the sink never deduplicates.
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := sampleSuccess(fmt.Sprintf("/corpus/doc-%02d.pdf", i))
			if err := s.AppendSuccess(rec); err != nil {
				t.Errorf("AppendSuccess %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	records, err := ReadSuccesses(filepath.Join(dir, SuccessFile))
	if err != nil {
		t.Fatalf("ReadSuccesses: %v", err)
	}
	if len(records) != n {
		t.Fatalf("got %d records, want %d", len(records), n)
	}
	seen := make(map[string]bool)
	for _, rec := range records {
		seen[rec.SourcePath] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct source paths, want %d (lines interleaved?)", len(seen), n)
	}
}

func TestReadMissingFileIsEmptyStream(t *testing.T) {
	records, err := ReadSuccesses(filepath.Join(t.TempDir(), SuccessFile))
	if err != nil {
		t.Fatalf("ReadSuccesses: %v", err)
	}
	if records != nil {
		t.Errorf("got %d records, want none", len(records))
	}
}

func TestReadSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FailureFile)

	content := `{"source_path":"/a.pdf","journal":"Acta","year":2017,"month_range":"JAN-FEB","error_kind":"CorruptPDF","error_detail":"bad xref","timestamp":"2026-08-22T10:00:00Z"}

{"source_path":"/b.pdf","journal":"Acta","year":2017,"month_range":"JAN-FEB","error_kind":"RateLimit","error_detail":"model endpoint returned 429","timestamp":"2026-08-22T10:01:00Z"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := ReadFailures(path)
	if err != nil {
		t.Fatalf("ReadFailures: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].ErrorKind != types.KindRateLimit {
		t.Errorf("ErrorKind = %q, want %q", records[1].ErrorKind, types.KindRateLimit)
	}
}

func TestReadReportsCorruptLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SuccessFile)
	if err := os.WriteFile(path, []byte("{\"title\": \"ok\"}\nnot json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadSuccesses(path)
	if err == nil {
		t.Fatal("expected error for corrupt line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want the offending line number", err)
	}
}
