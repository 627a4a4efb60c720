// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpus-harvest/internal/convert"
	"github.com/pdiddy/corpus-harvest/internal/corpus"
	"github.com/pdiddy/corpus-harvest/internal/extract"
	"github.com/pdiddy/corpus-harvest/internal/ledger"
	"github.com/pdiddy/corpus-harvest/internal/pipeline"
	"github.com/pdiddy/corpus-harvest/internal/sink"
	"github.com/pdiddy/corpus-harvest/pkg/types"
)

func init() {
	rootCmd.Flags().String("corpus", "", "corpus root directory ({root}/{journal}/{year}/{month-range}/)")
	rootCmd.Flags().String("model", "", "model identifier (e.g. gpt-4o, llama3.2)")
	rootCmd.Flags().String("base-url", "", "model API base URL (e.g. http://localhost:11434/v1)")
	rootCmd.Flags().Int("workers", 0, "documents processed concurrently (1 = sequential)")
	rootCmd.Flags().Duration("timeout", 0, "per-call model timeout")
	rootCmd.Flags().Int("chunk-step", 0, "words added per prompting step")
	rootCmd.Flags().Int("max-chunks", 0, "maximum prompting steps per document")
	rootCmd.Flags().Int("max-attempts", 0, "attempts per model call, counting the first")
	rootCmd.Flags().Bool("no-ledger", false, "skip recording the run in the SQLite ledger")
}

// applyFlags overlays explicitly set flags on the resolved configuration.
func applyFlags(cmd *cobra.Command, cfg *types.Config) {
	flags := cmd.Flags()
	if flags.Changed("corpus") {
		cfg.Corpus.Root, _ = flags.GetString("corpus")
	}
	if flags.Changed("output") {
		cfg.Output.Dir, _ = flags.GetString("output")
	}
	if flags.Changed("model") {
		cfg.Extraction.Model, _ = flags.GetString("model")
	}
	if flags.Changed("base-url") {
		cfg.Extraction.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("workers") {
		cfg.Run.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("timeout") {
		cfg.Extraction.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("chunk-step") {
		cfg.Extraction.ChunkStep, _ = flags.GetInt("chunk-step")
	}
	if flags.Changed("max-chunks") {
		cfg.Extraction.MaxChunks, _ = flags.GetInt("max-chunks")
	}
	if flags.Changed("max-attempts") {
		cfg.Extraction.MaxAttempts, _ = flags.GetInt("max-attempts")
	}
	if noLedger, _ := flags.GetBool("no-ledger"); noLedger {
		cfg.Output.Ledger = false
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg := configFromViper()
	applyFlags(cmd, &cfg)
	log := newLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := corpus.Collect(cfg.Corpus.Root)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "collected %d documents under %s\n", len(docs), cfg.Corpus.Root)

	snk, err := sink.Open(cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer snk.Close()

	backend := extract.NewOpenAIBackend(cfg.Extraction.ModelConfig)
	client := extract.NewClient(backend, cfg.Extraction, log)

	deps := pipeline.Deps{
		Text:     pipeline.TextFunc(convert.Extract),
		Metadata: client,
		Records:  snk,
		Log:      log,
	}

	started := time.Now().UTC()
	summary, runErr := pipeline.Run(ctx, docs, deps, cfg.Run, os.Stdout)

	if cfg.Output.Ledger {
		if err := recordRun(cfg, summary, started); err != nil {
			fmt.Fprintf(os.Stderr, "warning: run ledger update failed: %v\n", err)
		}
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "run interrupted; partial results recorded")
		return runErr
	}
	return nil
}

// recordRun writes the finished run to the ledger. It uses a fresh
// context so cancelled runs are still recorded.
func recordRun(cfg types.Config, summary pipeline.Summary, started time.Time) error {
	l, err := ledger.Open(cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer l.Close()

	run := ledger.Run{
		ID:         uuid.NewString(),
		CorpusRoot: cfg.Corpus.Root,
		Model:      cfg.Extraction.Model,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Processed:  summary.Processed,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed,
		Documents:  make([]ledger.DocumentOutcome, len(summary.Outcomes)),
	}
	for i, o := range summary.Outcomes {
		run.Documents[i] = ledger.DocumentOutcome{
			SourcePath:  o.Doc.Path,
			Journal:     o.Doc.Journal,
			Year:        o.Doc.Year,
			Status:      o.Status,
			ErrorKind:   o.ErrorKind,
			ErrorDetail: o.ErrorDetail,
		}
	}

	return l.RecordRun(context.Background(), run)
}

// outputDir resolves the output directory for subcommands.
func outputDir(cmd *cobra.Command) string {
	if cmd.Flags().Changed("output") {
		dir, _ := cmd.Flags().GetString("output")
		return dir
	}
	return viper.GetString("output.dir")
}
