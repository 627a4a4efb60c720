// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the full run history to path as YAML, most recent
// run first, each run with its per-document outcomes (R3.2).
func (l *Ledger) ExportYAML(ctx context.Context, path string) error {
	runs, err := l.exportRuns(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the full run history to path as indented JSON, most
// recent run first, each run with its per-document outcomes (R3.3).
func (l *Ledger) ExportJSON(ctx context.Context, path string) error {
	runs, err := l.exportRuns(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (l *Ledger) exportRuns(ctx context.Context) ([]Run, error) {
	runs, err := l.ListRuns(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	for i := range runs {
		docs, err := l.runDocuments(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Documents = docs
	}

	return runs, nil
}
