// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSON keys requested from the model, one per metadata field.
const (
	fieldAuthors         = "authors"
	fieldTitle           = "title"
	fieldAbstract        = "abstract"
	fieldPublicationDate = "publication_date"
)

// metadataSchema builds the JSON-Schema constraint for one chunk step,
// narrowed to the fields still missing. No field is required: a chunk may
// legitimately not contain the abstract yet. Per prd003-metadata-extraction
// R1.2.
func metadataSchema(fields []string) map[string]any {
	props := map[string]any{}
	for _, f := range fields {
		switch f {
		case fieldAuthors:
			props[fieldAuthors] = map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string", "minLength": 1},
			}
		case fieldTitle:
			props[fieldTitle] = map[string]any{"type": "string", "minLength": 1}
		case fieldAbstract:
			props[fieldAbstract] = map[string]any{"type": "string", "minLength": 1}
		case fieldPublicationDate:
			props[fieldPublicationDate] = dateProp()
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// periodSchema is the constraint for the issue-period call (R4.2).
func periodSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"start_date": dateProp(),
			"end_date":   dateProp(),
		},
		"required": []string{"start_date", "end_date"},
	}
}

// dateProp constrains a value to the shape of an ISO-8601 calendar date.
// Calendar validity (month and day ranges) is checked separately with
// time.Parse.
func dateProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
}

// validateJSON checks data against schemaMap independently of Go's type
// system, so a structurally wrong response is caught before any field is
// merged (R1.2).
func validateJSON(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("adding schema resource: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
