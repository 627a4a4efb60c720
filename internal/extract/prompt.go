// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// metadataPromptTmpl is the prompt sent for each cumulative chunk. The
// field list narrows as earlier steps fill in results. Per
// prd003-metadata-extraction R3.2.
var metadataPromptTmpl = template.Must(template.New("metadata").Parse(`You are a bibliographic metadata extraction system. Below is text extracted from an academic document. The text may be cut off mid-document.

<document>
{{.Chunk}}
</document>

Extract the following fields:
{{.Fields}}

Respond with a JSON object containing only the keys: {{.Keys}}. Omit the key for any field the text does not contain. Never output null. Do not include any text outside the JSON object.
`))

// fieldHints describes each metadata field in the prompt's field list.
var fieldHints = map[string]string{
	fieldAuthors:         "every author's full name, in printed order, as an array of strings",
	fieldTitle:           "the document title, exactly as printed",
	fieldAbstract:        "the abstract text, verbatim",
	fieldPublicationDate: "the publication date in YYYY-MM-DD form; use the first day of the month when only a month is printed",
}

// renderMetadataPrompt builds the chunk prompt narrowed to the still-missing
// fields.
func renderMetadataPrompt(chunk string, missing []string) (string, error) {
	lines := make([]string, len(missing))
	for i, f := range missing {
		lines[i] = fmt.Sprintf("- %s: %s", f, fieldHints[f])
	}

	var buf bytes.Buffer
	err := metadataPromptTmpl.Execute(&buf, struct {
		Chunk  string
		Fields string
		Keys   string
	}{
		Chunk:  chunk,
		Fields: strings.Join(lines, "\n"),
		Keys:   strings.Join(missing, ", "),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// periodPromptTmpl is the prompt for the issue-period call. Its input is
// provenance JSON rather than document text. Per prd003-metadata-extraction
// R4.1.
var periodPromptTmpl = template.Must(template.New("period").Parse(`You are a publication calendar assistant. The JSON below locates a journal issue in its publication calendar:

<document>
{{.Input}}
</document>

Derive the issue period:
- start_date: the first day of the starting month, in YYYY-MM-DD form
- end_date: the last day of the ending month, in YYYY-MM-DD form

If the range names a single month, both dates fall in that month.

Respond with a JSON object containing the keys start_date and end_date. Do not include any text outside the JSON object.

Example response:
{"start_date": "2017-01-01", "end_date": "2017-02-28"}
`))

// renderPeriodPrompt builds the issue-period prompt around provenance JSON.
func renderPeriodPrompt(input string) (string, error) {
	var buf bytes.Buffer
	if err := periodPromptTmpl.Execute(&buf, struct{ Input string }{Input: input}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
