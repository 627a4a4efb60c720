// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-harvest/internal/ledger"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List or export recorded pipeline runs",
	Long: `Runs reads the SQLite run ledger under the output directory and prints
run history, most recent first. Use --export to dump the full history,
including per-document outcomes, to YAML or JSON.`,
	RunE: runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	dir := outputDir(cmd)
	l, err := ledger.Open(dir)
	if err != nil {
		return err
	}
	defer l.Close()

	format, _ := cmd.Flags().GetString("export")
	switch format {
	case "":
	case "yaml":
		path := filepath.Join(dir, "runs.yaml")
		if err := l.ExportYAML(context.Background(), path); err != nil {
			return err
		}
		fmt.Println("Exported to", path)
		return nil
	case "json":
		path := filepath.Join(dir, "runs.json")
		if err := l.ExportJSON(context.Background(), path); err != nil {
			return err
		}
		fmt.Println("Exported to", path)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := l.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-12s  %9s  %9s  %6s\n",
		"ID", "Started", "Model", "Processed", "Succeeded", "Failed")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-12s  %9d  %9d  %6d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Model,
			r.Processed, r.Succeeded, r.Failed)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsCmd.Flags().String("export", "", "export run history: yaml or json")

	rootCmd.AddCommand(runsCmd)
}
