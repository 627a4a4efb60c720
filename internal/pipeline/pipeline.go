// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives each corpus document through text extraction,
// metadata extraction, and recording.
// Implements: prd005-pipeline (R1-R5);
//
//	docs/ARCHITECTURE § Pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// TextExtractor converts one document to plain text.
type TextExtractor interface {
	Extract(doc types.Document) (types.ExtractedText, error)
}

// TextFunc adapts a conversion function to TextExtractor.
type TextFunc func(types.Document) (types.ExtractedText, error)

// Extract implements TextExtractor.
func (f TextFunc) Extract(doc types.Document) (types.ExtractedText, error) { return f(doc) }

// MetadataExtractor recovers document metadata and issue periods through
// the model backend.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, text string, doc types.Document) (types.Metadata, error)
	ExtractPeriod(ctx context.Context, doc types.Document) (types.Period, error)
}

// Recorder appends outcome records to the result streams.
type Recorder interface {
	AppendSuccess(types.SuccessRecord) error
	AppendFailure(types.FailureRecord) error
}

// Deps wires the pipeline's collaborators. Log may be nil; it falls back
// to slog.Default().
type Deps struct {
	Text     TextExtractor
	Metadata MetadataExtractor
	Records  Recorder
	Log      *slog.Logger
}

// Outcome is one document's terminal result within a run. Status is
// StatusRecorded for documents appended to the success stream and
// StatusFailed otherwise.
type Outcome struct {
	Doc         types.Document
	Status      types.Status
	ErrorKind   types.ErrorKind
	ErrorDetail string
}

// Summary holds counts from one pipeline run plus the per-document
// outcomes in collection order. Per prd005-pipeline R4.1.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// HasFailures reports whether any document failed (R4.2).
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// kinder is satisfied by stage errors that carry a failure classification.
type kinder interface {
	error
	ErrorKind() types.ErrorKind
}

// classify maps a stage error to its record kind. Errors without a kind
// fall back to TransientNetwork so a later run may retry them.
func classify(err error) types.ErrorKind {
	var k kinder
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return types.KindTransientNetwork
}

// lockedWriter serializes status lines from concurrent workers. Each line
// is formatted before the single Write call, so lines never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// Run processes every document and writes per-document status lines plus a
// final summary count to w. A failure in one document never prevents the
// next from being attempted (R2.1); every admitted document lands in
// exactly one result stream (R1.2). Cancelling ctx stops admitting new
// documents, lets in-flight ones finish and record, and returns ctx.Err()
// alongside the summary of what completed (R5.1, R5.2).
func Run(ctx context.Context, docs []types.Document, deps Deps, cfg types.RunConfig, w io.Writer) (Summary, error) {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	out := &lockedWriter{w: w}
	outcomes := make([]Outcome, len(docs))

	// SetLimit(1) is the strict sequential baseline; larger limits run a
	// bounded pool. Stage order inside one document stays sequential
	// either way (R3.1-R3.3).
	var g errgroup.Group
	g.SetLimit(workers)

	admitted := 0
	for i, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		admitted++
		g.Go(func() error {
			outcomes[i] = processDocument(ctx, doc, deps, out)
			return nil
		})
	}
	// Workers report through outcomes, never through the group error.
	_ = g.Wait()

	summary := Summary{Outcomes: outcomes[:admitted]}
	for _, o := range summary.Outcomes {
		summary.Processed++
		if o.Status == types.StatusRecorded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	fmt.Fprintf(out, "\nprocessed: %d, succeeded: %d, failed: %d\n",
		summary.Processed, summary.Succeeded, summary.Failed)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processDocument walks one document through the stage machine and appends
// its record. The returned Outcome mirrors what was appended.
func processDocument(ctx context.Context, doc types.Document, deps Deps, w io.Writer) Outcome {
	label := docLabel(doc)
	fmt.Fprintf(w, "processing %s\n", label)
	deps.Log.Debug("document admitted", "document", label, "status", types.StatusPending)

	// Once admitted, a document finishes even if the run is cancelled;
	// model calls stay bounded by the backend's own client timeout (R5.1).
	ctx = context.WithoutCancel(ctx)

	text, err := deps.Text.Extract(doc)
	if err != nil {
		return recordFailure(doc, err, deps, w)
	}
	deps.Log.Debug("text extracted",
		"document", label, "status", types.StatusTextExtracted, "bytes", len(text.Text))

	meta, err := deps.Metadata.ExtractMetadata(ctx, text.Text, doc)
	if err != nil {
		return recordFailure(doc, err, deps, w)
	}
	deps.Log.Debug("metadata extracted",
		"document", label, "status", types.StatusMetadataExtracted, "title", meta.Title)

	rec := types.SuccessRecord{
		Authors:         meta.Authors,
		Title:           meta.Title,
		Abstract:        meta.Abstract,
		PublicationDate: meta.PublicationDate,
		SourcePath:      doc.Path,
		Journal:         doc.Journal,
		Year:            doc.Year,
		MonthRange:      doc.MonthRange,
	}

	// Issue period derivation is advisory: a failure leaves the bounds
	// null and never fails the document.
	if period, err := deps.Metadata.ExtractPeriod(ctx, doc); err == nil {
		rec.PeriodStart = &period.Start
		rec.PeriodEnd = &period.End
	} else {
		deps.Log.Warn("issue period derivation failed", "document", label, "error", err)
	}

	if err := deps.Records.AppendSuccess(rec); err != nil {
		fmt.Fprintf(w, "failed  %s: record write error: %v\n", label, err)
		return Outcome{
			Doc:         doc,
			Status:      types.StatusFailed,
			ErrorDetail: fmt.Sprintf("record write error: %v", err),
		}
	}

	fmt.Fprintf(w, "extracted %s\n", label)
	deps.Log.Debug("document recorded", "document", label, "status", types.StatusRecorded)
	return Outcome{Doc: doc, Status: types.StatusRecorded}
}

// recordFailure converts a stage error into a failure-stream record. Stage
// errors stop at this boundary; they never propagate past one document
// (R2.1).
func recordFailure(doc types.Document, cause error, deps Deps, w io.Writer) Outcome {
	label := docLabel(doc)
	kind := classify(cause)
	deps.Log.Debug("document failed",
		"document", label, "status", types.StatusFailed, "kind", kind)

	rec := types.FailureRecord{
		SourcePath:  doc.Path,
		Journal:     doc.Journal,
		Year:        doc.Year,
		MonthRange:  doc.MonthRange,
		ErrorKind:   kind,
		ErrorDetail: cause.Error(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := deps.Records.AppendFailure(rec); err != nil {
		fmt.Fprintf(w, "failed  %s: record write error: %v\n", label, err)
		return Outcome{
			Doc:         doc,
			Status:      types.StatusFailed,
			ErrorKind:   kind,
			ErrorDetail: fmt.Sprintf("record write error: %v", err),
		}
	}

	fmt.Fprintf(w, "failed  %s: %v\n", label, cause)
	return Outcome{
		Doc:         doc,
		Status:      types.StatusFailed,
		ErrorKind:   kind,
		ErrorDetail: cause.Error(),
	}
}

// docLabel names a document in status output by its corpus position.
func docLabel(doc types.Document) string {
	return fmt.Sprintf("%s/%d/%s/%s", doc.Journal, doc.Year, doc.MonthRange, doc.Name)
}
