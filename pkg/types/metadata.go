// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Metadata holds the bibliographic fields returned by a schema-constrained
// model call. Once validated, required fields are non-empty; optional
// fields are nil when absent, never empty-string placeholders.
// Per prd003-metadata-extraction R2.1-R2.4.
type Metadata struct {
	// Authors lists the document authors in the order they appear.
	Authors []string `json:"authors" yaml:"authors"`

	// Title is the document title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the document abstract, or nil when the document has none.
	Abstract *string `json:"abstract" yaml:"abstract"`

	// PublicationDate is the publication date in YYYY-MM-DD form.
	PublicationDate string `json:"publication_date" yaml:"publication_date"`
}

// Period holds the issue date range derived from a document's month-range
// label: the first day of the starting month through the last day of the
// ending month. Per prd003-metadata-extraction R4.1-R4.3.
type Period struct {
	// Start is the first day of the starting month, YYYY-MM-DD.
	Start string `json:"start_date" yaml:"start_date"`

	// End is the last day of the ending month, YYYY-MM-DD.
	End string `json:"end_date" yaml:"end_date"`
}
