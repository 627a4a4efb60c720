package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-harvest/internal/report"
	"github.com/pdiddy/corpus-harvest/internal/sink"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a spreadsheet from the result streams",
	Long: `Report reads documents_success.jsonl and documents_failed.jsonl from the
output directory and writes documents_combined.xlsx with one sheet per
stream. Missing streams produce empty sheets.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	dir := outputDir(cmd)
	out := filepath.Join(dir, report.CombinedFile)

	b := report.NewBuilder(newLogger(cmd))
	if err := b.Build(
		filepath.Join(dir, sink.SuccessFile),
		filepath.Join(dir, sink.FailureFile),
		out,
	); err != nil {
		return err
	}

	fmt.Println("Report written to", out)
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
