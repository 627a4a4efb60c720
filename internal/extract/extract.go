// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers bibliographic metadata from converted document
// text through schema-constrained model calls.
// Implements: prd003-metadata-extraction (R1-R5);
//
//	docs/ARCHITECTURE § Metadata Extraction.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// Error is a classified extraction failure. Kind routes the owning
// document to the failure stream. Per prd004-results R2.2.
type Error struct {
	// Kind is the failure classification.
	Kind types.ErrorKind

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// ErrorKind returns the failure classification for record routing.
func (e *Error) ErrorKind() types.ErrorKind { return e.Kind }

// Backend abstracts the chat-completion API so tests can supply a mock.
// Per Strategy pattern (prd003-metadata-extraction R2.1).
type Backend interface {
	// Name identifies the backend in logs and status output.
	Name() string

	// Complete sends one prompt and returns the model's raw message
	// content. Failures carry an *Error when the backend can classify
	// them.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client runs the progressive extraction loop against a Backend.
type Client struct {
	backend Backend
	cfg     types.ExtractionConfig
	log     *slog.Logger
}

// NewClient returns a Client for the given backend. A nil log falls back
// to slog.Default().
func NewClient(backend Backend, cfg types.ExtractionConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{backend: backend, cfg: cfg, log: log}
}

// partial accumulates field values across chunk steps. A field is filled
// the first time a step returns it; later steps never overwrite it.
type partial struct {
	Authors         []string `json:"authors"`
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract"`
	PublicationDate string   `json:"publication_date"`
}

// missing lists the fields a later step still needs to provide.
func (p *partial) missing() []string {
	var fields []string
	if len(p.Authors) == 0 {
		fields = append(fields, fieldAuthors)
	}
	if p.Title == "" {
		fields = append(fields, fieldTitle)
	}
	if p.Abstract == "" {
		fields = append(fields, fieldAbstract)
	}
	if p.PublicationDate == "" {
		fields = append(fields, fieldPublicationDate)
	}
	return fields
}

// merge copies step values into unfilled fields.
func (p *partial) merge(step partial) {
	if len(p.Authors) == 0 {
		p.Authors = step.Authors
	}
	if p.Title == "" {
		p.Title = step.Title
	}
	if p.Abstract == "" {
		p.Abstract = step.Abstract
	}
	if p.PublicationDate == "" {
		p.PublicationDate = step.PublicationDate
	}
}

// ExtractMetadata recovers authors, title, abstract, and publication date
// from converted document text. Prompts grow cumulatively by word count,
// each step requests only the fields still missing, and the loop stops as
// soon as every field is found (R3.1-R3.4). Truncation always lands on a
// word boundary; the hard input budget is ChunkStep*MaxChunks words.
func (c *Client) ExtractMetadata(ctx context.Context, text string, doc types.Document) (types.Metadata, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return types.Metadata{}, &Error{
			Kind: types.KindEmptyInput,
			Err:  fmt.Errorf("no text extracted from %s", doc.Name),
		}
	}

	chunkStep := c.cfg.ChunkStep
	if chunkStep <= 0 {
		chunkStep = 300
	}
	maxChunks := c.cfg.MaxChunks
	if maxChunks <= 0 {
		maxChunks = 20
	}

	var found partial
	for step := 1; step <= maxChunks; step++ {
		missing := found.missing()
		if len(missing) == 0 {
			break
		}

		end := min(chunkStep*step, len(words))
		chunk := strings.Join(words[:end], " ")

		prompt, err := renderMetadataPrompt(chunk, missing)
		if err != nil {
			return types.Metadata{}, fmt.Errorf("rendering prompt: %w", err)
		}

		content, err := c.call(ctx, prompt)
		if err != nil {
			return types.Metadata{}, fmt.Errorf("extracting %s: %w", strings.Join(missing, ", "), err)
		}

		// A response that fails the step schema is not an error: the next
		// step retries the missing fields against a larger chunk (R3.3).
		if err := validateJSON(metadataSchema(missing), []byte(content)); err != nil {
			c.log.Warn("chunk response failed schema check",
				"document", doc.Name, "step", step, "error", err)
			continue
		}

		var stepResult partial
		if err := json.Unmarshal([]byte(content), &stepResult); err != nil {
			c.log.Warn("chunk response not decodable",
				"document", doc.Name, "step", step, "error", err)
			continue
		}
		found.merge(stepResult)
	}

	// Abstract is the one optional field: absence after the final step is
	// recorded as null, not a failure (R1.3).
	var unmet []string
	for _, f := range found.missing() {
		if f != fieldAbstract {
			unmet = append(unmet, f)
		}
	}
	if len(unmet) > 0 {
		return types.Metadata{}, &Error{
			Kind: types.KindSchemaValidation,
			Err:  fmt.Errorf("missing required fields after %d chunks: %s", maxChunks, strings.Join(unmet, ", ")),
		}
	}

	if _, err := time.Parse("2006-01-02", found.PublicationDate); err != nil {
		return types.Metadata{}, &Error{
			Kind: types.KindSchemaValidation,
			Err:  fmt.Errorf("publication date %q is not a calendar date", found.PublicationDate),
		}
	}

	meta := types.Metadata{
		Authors:         found.Authors,
		Title:           found.Title,
		PublicationDate: found.PublicationDate,
	}
	if found.Abstract != "" {
		meta.Abstract = &found.Abstract
	}
	return meta, nil
}

// ExtractPeriod derives calendar bounds for the issue a document was
// published in. The model receives the document's year and month-range as
// JSON and returns day-resolution bounds (R4.1, R4.2). Callers treat
// failures as advisory; the period never decides a document's outcome.
func (c *Client) ExtractPeriod(ctx context.Context, doc types.Document) (types.Period, error) {
	input, err := json.Marshal(struct {
		Year       int    `json:"year"`
		MonthRange string `json:"month_range"`
	}{Year: doc.Year, MonthRange: doc.MonthRange})
	if err != nil {
		return types.Period{}, fmt.Errorf("marshaling period input: %w", err)
	}

	prompt, err := renderPeriodPrompt(string(input))
	if err != nil {
		return types.Period{}, fmt.Errorf("rendering prompt: %w", err)
	}

	content, err := c.call(ctx, prompt)
	if err != nil {
		return types.Period{}, fmt.Errorf("deriving issue period: %w", err)
	}

	if err := validateJSON(periodSchema(), []byte(content)); err != nil {
		return types.Period{}, &Error{
			Kind: types.KindSchemaValidation,
			Err:  fmt.Errorf("period response: %w", err),
		}
	}

	var p types.Period
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return types.Period{}, &Error{
			Kind: types.KindSchemaValidation,
			Err:  fmt.Errorf("decoding period response: %w", err),
		}
	}
	for _, bound := range []string{p.Start, p.End} {
		if _, err := time.Parse("2006-01-02", bound); err != nil {
			return types.Period{}, &Error{
				Kind: types.KindSchemaValidation,
				Err:  fmt.Errorf("period bound %q is not a calendar date", bound),
			}
		}
	}
	return p, nil
}

// backoffBase controls the base duration for exponential backoff between
// retryable calls. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// call sends one prompt through the backend, retrying kinds that mark a
// transient condition with exponential backoff up to MaxAttempts, counting
// the first try (R2.3, R2.4). Non-retryable kinds surface immediately.
func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	maxAttempts := c.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.log.Warn("retrying model call",
				"backend", c.backend.Name(), "attempt", attempt, "error", lastErr)
			backoff := time.Duration(math.Pow(2, float64(attempt-2))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		content, err := c.backend.Complete(ctx, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err

		var xerr *Error
		if !errors.As(err, &xerr) || !xerr.Kind.Retryable() {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
