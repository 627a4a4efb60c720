// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ErrorKind is the enumerated failure classification written to the
// failure stream. Per prd004-results R2.2 the wire strings are stable;
// downstream tooling matches on them.
type ErrorKind string

const (
	// Text-extraction failures, one per format.
	KindCorruptPDF    ErrorKind = "CorruptPDF"
	KindCorruptDocx   ErrorKind = "CorruptDocx"
	KindMalformedHTML ErrorKind = "MalformedHTML"

	// KindEmptyInput marks a document whose extracted text was empty or
	// whitespace-only.
	KindEmptyInput ErrorKind = "EmptyInputError"

	// Model-invocation failures.
	KindTransientNetwork ErrorKind = "TransientNetwork"
	KindRateLimit        ErrorKind = "RateLimit"
	KindAuth             ErrorKind = "Auth"
	KindInvalidRequest   ErrorKind = "InvalidRequest"

	// KindSchemaValidation marks a model response that could not be coerced
	// into the metadata schema.
	KindSchemaValidation ErrorKind = "SchemaValidationError"
)

// Retryable reports whether a failure of this kind may succeed on a later
// identical call. Only rate limits and transient network faults qualify;
// auth, invalid-request, and schema failures are terminal.
// Per prd003-metadata-extraction R3.2.
func (k ErrorKind) Retryable() bool {
	return k == KindTransientNetwork || k == KindRateLimit
}

// SuccessRecord is one line of the success stream: validated metadata plus
// provenance. Per prd004-results R1.1-R1.3.
type SuccessRecord struct {
	// Authors lists the document authors in order.
	Authors []string `json:"authors" yaml:"authors"`

	// Title is the extracted title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the extracted abstract; null when the document has none.
	Abstract *string `json:"abstract" yaml:"abstract"`

	// PublicationDate is the extracted publication date, YYYY-MM-DD.
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// SourcePath is the corpus path of the source document.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Journal is the journal name from the corpus layout.
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year from the corpus layout.
	Year int `json:"year" yaml:"year"`

	// MonthRange is the issue month-range label from the corpus layout.
	MonthRange string `json:"month_range" yaml:"month_range"`

	// PeriodStart is the first day of the issue period; null when period
	// derivation was skipped or failed.
	PeriodStart *string `json:"period_start" yaml:"period_start"`

	// PeriodEnd is the last day of the issue period; null when period
	// derivation was skipped or failed.
	PeriodEnd *string `json:"period_end" yaml:"period_end"`
}

// FailureRecord is one line of the failure stream. Per prd004-results R2.1-R2.3.
type FailureRecord struct {
	// SourcePath is the corpus path of the failed document.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Journal is the journal name from the corpus layout.
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year from the corpus layout.
	Year int `json:"year" yaml:"year"`

	// MonthRange is the issue month-range label from the corpus layout.
	MonthRange string `json:"month_range" yaml:"month_range"`

	// ErrorKind is the enumerated failure classification.
	ErrorKind ErrorKind `json:"error_kind" yaml:"error_kind"`

	// ErrorDetail is the human-readable failure description.
	ErrorDetail string `json:"error_detail" yaml:"error_detail"`

	// Timestamp is the ISO-8601 time the failure was recorded.
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}
