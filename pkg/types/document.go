// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the corpus-harvest pipeline.
// Implements: prd001-collection (Document);
//
//	prd002-text-extraction (ExtractedText);
//	prd003-metadata-extraction (Metadata);
//	prd004-results (SuccessRecord, FailureRecord, ErrorKind);
//	prd005-pipeline (Status).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Format identifies the source file format of a corpus document.
// Per prd001-collection R1.2.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatHTML Format = "html"
)

// FormatForExtension maps a lowercased file extension (with leading dot)
// to its Format. The second return is false for extensions outside the
// corpus contract; callers skip those files.
func FormatForExtension(ext string) (Format, bool) {
	switch ext {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDocx, true
	case ".htm", ".html":
		return FormatHTML, true
	}
	return "", false
}

// Document identifies one source file discovered in the corpus. All fields
// derive from the file's position under the corpus root and never change
// after collection. Per prd001-collection R2.1-R2.4.
type Document struct {
	// Path is the path to the source file, as discovered under the corpus root.
	Path string `json:"path" yaml:"path"`

	// Format is the detected document format.
	Format Format `json:"format" yaml:"format"`

	// Journal is the journal name, taken from the first directory level.
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year, taken from the second directory level.
	Year int `json:"year" yaml:"year"`

	// MonthRange is the issue month-range label from the third directory
	// level, uppercased (e.g. "JAN-FEB").
	MonthRange string `json:"month_range" yaml:"month_range"`

	// Name is the base filename of the document.
	Name string `json:"name" yaml:"name"`
}

// ExtractedText is the plain-text content of one document. It exists only
// within a single pipeline iteration and is never persisted.
// Per prd002-text-extraction R1.1.
type ExtractedText struct {
	// Doc is the source document the text came from.
	Doc Document

	// Text is the normalized plain text. Empty text is valid: rejecting
	// empty input is the extraction client's responsibility.
	Text string
}

// Status tracks a document through the per-document state machine.
// Per prd005-pipeline R1.1: Pending → TextExtracted → MetadataExtracted →
// Recorded on success, or any state → Failed → Recorded.
type Status string

const (
	StatusPending           Status = "pending"
	StatusTextExtracted     Status = "text_extracted"
	StatusMetadataExtracted Status = "metadata_extracted"
	StatusFailed            Status = "failed"
	StatusRecorded          Status = "recorded"
)
