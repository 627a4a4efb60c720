// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert normalizes corpus documents into plain text with
// format-specific extractors.
// Implements: prd002-text-extraction (R1-R4);
//
//	docs/ARCHITECTURE § Text Extraction.
package convert

import (
	"fmt"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// ExtractionError classifies a text-extraction failure by document format.
type ExtractionError struct {
	// Kind is KindCorruptPDF, KindCorruptDocx, or KindMalformedHTML.
	Kind types.ErrorKind

	// Path is the document that failed.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting text from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrorKind returns the enumerated failure classification.
func (e *ExtractionError) ErrorKind() types.ErrorKind { return e.Kind }

// Extractor produces plain text from one document format. Each format
// (PDF, DOCX, HTML) implements this interface.
type Extractor interface {
	// Extract reads the file at path and returns its plain text. Empty
	// text is valid output; rejecting it is the caller's concern.
	Extract(path string) (string, error)
}

// forFormat returns the extractor and failure kind for a format.
func forFormat(format types.Format) (Extractor, types.ErrorKind, error) {
	switch format {
	case types.FormatPDF:
		return PDF{}, types.KindCorruptPDF, nil
	case types.FormatDocx:
		return Docx{}, types.KindCorruptDocx, nil
	case types.FormatHTML:
		return HTML{}, types.KindMalformedHTML, nil
	}
	return nil, "", fmt.Errorf("no extractor for format %q", format)
}

// Extract dispatches the document to the extractor for its format. Failures
// come back as *ExtractionError carrying the format's corruption kind.
// Extraction is deterministic: the same file bytes always produce the same
// text.
func Extract(doc types.Document) (types.ExtractedText, error) {
	ex, kind, err := forFormat(doc.Format)
	if err != nil {
		return types.ExtractedText{}, err
	}

	text, err := ex.Extract(doc.Path)
	if err != nil {
		return types.ExtractedText{}, &ExtractionError{Kind: kind, Path: doc.Path, Err: err}
	}
	return types.ExtractedText{Doc: doc, Text: text}, nil
}
