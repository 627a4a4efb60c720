// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus discovers documents under the journal corpus layout.
// Implements: prd001-collection (R1-R3);
//
//	docs/ARCHITECTURE § Collection.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// ErrNotFound reports a missing corpus root. It aborts the run; every
// other irregularity under the root is a skipped file, never an error.
var ErrNotFound = errors.New("corpus root not found")

// Collect walks the corpus root and returns one Document per recognized
// file. A file is recognized when its extension is .pdf, .docx, .htm, or
// .html (case-insensitive) and it sits exactly at
// {root}/{journal}/{year}/{month-range}/{file} with an integer year
// directory. Everything else is silently skipped. The month-range label is
// uppercased. Results are sorted by (journal, year, month-range, name) so
// re-runs traverse the corpus in a stable order.
func Collect(root string) ([]types.Document, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving corpus root %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, fmt.Errorf("reading corpus root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, root)
	}

	var docs []types.Document
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if d.IsDir() {
			return nil
		}

		format, ok := types.FormatForExtension(strings.ToLower(filepath.Ext(path)))
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) != 4 {
			return nil
		}

		year, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil
		}

		docs = append(docs, types.Document{
			Path:       path,
			Format:     format,
			Journal:    parts[0],
			Year:       year,
			MonthRange: strings.ToUpper(parts[2]),
			Name:       parts[3],
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking corpus root %s: %w", root, walkErr)
	}

	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if a.Journal != b.Journal {
			return a.Journal < b.Journal
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.MonthRange != b.MonthRange {
			return a.MonthRange < b.MonthRange
		}
		return a.Name < b.Name
	})

	return docs, nil
}
