// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink appends pipeline outcomes to partitioned JSONL streams.
// Implements: prd004-results (R1, R3, R4);
//
//	docs/ARCHITECTURE § Result Streams.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// Stream file names under the output directory.
const (
	SuccessFile = "documents_success.jsonl"
	FailureFile = "documents_failed.jsonl"
)

// Sink appends success and failure records to their JSONL streams. Each
// record is written as one line and flushed to disk before the append
// returns, so a crash loses at most the record being written (R4.2).
// Appends never rewrite or deduplicate history: re-running the pipeline
// adds new lines (R4.1).
type Sink struct {
	mu      sync.Mutex
	success *os.File
	failure *os.File
}

// Open creates dir if needed and opens both streams for appending.
func Open(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	success, err := os.OpenFile(filepath.Join(dir, SuccessFile), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening success stream: %w", err)
	}
	failure, err := os.OpenFile(filepath.Join(dir, FailureFile), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		success.Close()
		return nil, fmt.Errorf("opening failure stream: %w", err)
	}

	return &Sink{success: success, failure: failure}, nil
}

// Close releases both stream files.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errSuccess := s.success.Close()
	errFailure := s.failure.Close()
	if errSuccess != nil {
		return errSuccess
	}
	return errFailure
}

// AppendSuccess writes one record to the success stream (R1.1).
func (s *Sink) AppendSuccess(rec types.SuccessRecord) error {
	return s.append(s.success, rec)
}

// AppendFailure writes one record to the failure stream (R1.2).
func (s *Sink) AppendFailure(rec types.FailureRecord) error {
	return s.append(s.failure, rec)
}

// append marshals rec and writes line plus newline in a single call under
// the lock, keeping concurrent workers from interleaving partial lines
// (R3.2), then syncs the file.
func (s *Sink) append(f *os.File, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	line := append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing stream: %w", err)
	}
	return nil
}

// ReadSuccesses parses a success stream back into records, skipping blank
// lines. A missing file is an empty stream, not an error.
func ReadSuccesses(path string) ([]types.SuccessRecord, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var records []types.SuccessRecord
	for i, line := range lines {
		var rec types.SuccessRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parsing success record on line %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadFailures parses a failure stream back into records, skipping blank
// lines. A missing file is an empty stream, not an error.
func ReadFailures(path string) ([]types.FailureRecord, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var records []types.FailureRecord
	for i, line := range lines {
		var rec types.FailureRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parsing failure record on line %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// readLines returns the non-blank lines of the file at path.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading stream %s: %w", path, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
