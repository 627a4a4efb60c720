// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records completed pipeline runs in a SQLite database.
// Implements: prd007-run-ledger (R1-R3);
//
//	docs/ARCHITECTURE § Run Ledger.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

const dbFile = "ledger.db"

// Run is one recorded pipeline invocation. Documents holds the
// per-document outcomes in collection order.
type Run struct {
	ID         string            `json:"id" yaml:"id"`
	CorpusRoot string            `json:"corpus_root" yaml:"corpus_root"`
	Model      string            `json:"model" yaml:"model"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time         `json:"finished_at" yaml:"finished_at"`
	Processed  int               `json:"processed" yaml:"processed"`
	Succeeded  int               `json:"succeeded" yaml:"succeeded"`
	Failed     int               `json:"failed" yaml:"failed"`
	Documents  []DocumentOutcome `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// DocumentOutcome is one document's terminal state within a run. Status is
// the pipeline's terminal status string; ErrorKind and ErrorDetail are
// empty for recorded documents.
type DocumentOutcome struct {
	SourcePath  string          `json:"source_path" yaml:"source_path"`
	Journal     string          `json:"journal" yaml:"journal"`
	Year        int             `json:"year" yaml:"year"`
	Status      types.Status    `json:"status" yaml:"status"`
	ErrorKind   types.ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorDetail string          `json:"error_detail,omitempty" yaml:"error_detail,omitempty"`
}

// Ledger manages the run history SQLite database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at dir/ledger.db, creating
// the schema if it does not exist (R1.1, R1.2).
func Open(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			corpus_root TEXT NOT NULL,
			model TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			processed INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			source_path TEXT NOT NULL,
			journal TEXT,
			year INTEGER,
			status TEXT NOT NULL,
			error_kind TEXT,
			error_detail TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_documents_run_id ON run_documents(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// RecordRun inserts a run and its per-document outcomes in one
// transaction (R2.1, R2.2). A missing run ID is assigned here. Cancelled
// runs are recorded like any other; their counts cover what completed.
func (l *Ledger) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, corpus_root, model, started_at, finished_at, processed, succeeded, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CorpusRoot, run.Model,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Processed, run.Succeeded, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_documents (run_id, source_path, journal, year, status, error_kind, error_detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range run.Documents {
		_, err := stmt.ExecContext(ctx,
			run.ID, doc.SourcePath, doc.Journal, doc.Year,
			string(doc.Status), string(doc.ErrorKind), doc.ErrorDetail,
		)
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", doc.SourcePath, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns up to limit runs, most recent first, without their
// per-document outcomes (R3.1). Non-positive limits fall back to 20.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, corpus_root, model, started_at, finished_at, processed, succeeded, failed
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var startedAt, finishedAt string
	if err := rows.Scan(
		&run.ID, &run.CorpusRoot, &run.Model, &startedAt, &finishedAt,
		&run.Processed, &run.Succeeded, &run.Failed,
	); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return Run{}, fmt.Errorf("parsing started_at for run %s: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
		return Run{}, fmt.Errorf("parsing finished_at for run %s: %w", run.ID, err)
	}

	return run, nil
}

// runDocuments returns a run's per-document outcomes in insertion order.
func (l *Ledger) runDocuments(ctx context.Context, runID string) ([]DocumentOutcome, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT source_path, journal, year, status, error_kind, error_detail
		 FROM run_documents WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying documents for run %s: %w", runID, err)
	}
	defer rows.Close()

	var docs []DocumentOutcome
	for rows.Next() {
		var doc DocumentOutcome
		var status, kind string
		if err := rows.Scan(
			&doc.SourcePath, &doc.Journal, &doc.Year, &status, &kind, &doc.ErrorDetail,
		); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Status = types.Status(status)
		doc.ErrorKind = types.ErrorKind(kind)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}
