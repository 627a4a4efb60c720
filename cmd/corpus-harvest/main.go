// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the corpus-harvest CLI.
// Implements: prd001-collection, prd002-text-extraction,
//             prd003-metadata-extraction, prd004-results, prd005-pipeline,
//             prd006-reporting, prd007-run-ledger (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpus-harvest/internal/secrets"
	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the corpus-harvest CLI. Running it with
// no subcommand processes the whole corpus.
var rootCmd = &cobra.Command{
	Use:   "corpus-harvest",
	Short: "Extract bibliographic metadata from a scanned journal corpus",
	Long: `corpus-harvest walks a journal corpus laid out as
{root}/{journal}/{year}/{month-range}/{file}, converts each PDF, DOCX, or
HTML document to plain text, recovers bibliographic metadata through
schema-constrained model calls, and appends one JSON line per document to
the success or failure stream.

The bare command runs the pipeline end to end. Use the report subcommand
to build a spreadsheet from existing streams and the runs subcommand to
inspect recorded runs.`,
	Args: cobra.NoArgs,
	RunE: runRoot,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./corpus-harvest.yaml or ~/.config/corpus-harvest/config.yaml)")
	rootCmd.PersistentFlags().String("output", "", "output directory for streams, ledger, and reports")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("corpus-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "corpus-harvest"))
		}
	}

	viper.SetEnvPrefix("CORPUS_HARVEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Conventional OpenAI variables work alongside the prefixed forms.
	viper.BindEnv("extraction.api_key", "CORPUS_HARVEST_EXTRACTION_API_KEY", "OPENAI_API_KEY")
	viper.BindEnv("extraction.base_url", "CORPUS_HARVEST_EXTRACTION_BASE_URL", "OPENAI_BASE_URL")

	setViperDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setViperDefaults() {
	d := types.DefaultConfig()
	viper.SetDefault("corpus.root", d.Corpus.Root)
	viper.SetDefault("extraction.model", d.Extraction.Model)
	viper.SetDefault("extraction.temperature", d.Extraction.Temperature)
	viper.SetDefault("extraction.timeout", d.Extraction.Timeout)
	viper.SetDefault("extraction.max_attempts", d.Extraction.MaxAttempts)
	viper.SetDefault("extraction.chunk_step", d.Extraction.ChunkStep)
	viper.SetDefault("extraction.max_chunks", d.Extraction.MaxChunks)
	viper.SetDefault("run.workers", d.Run.Workers)
	viper.SetDefault("output.dir", d.Output.Dir)
	viper.SetDefault("output.ledger", d.Output.Ledger)
	// extraction.base_url and extraction.api_key take no viper default:
	// unset values fall through to .secrets/ and the backend default.
}

// configFromViper assembles the effective configuration from viper
// (defaults, config file, environment) and the secrets directory.
func configFromViper() types.Config {
	var cfg types.Config
	cfg.Corpus.Root = viper.GetString("corpus.root")
	cfg.Extraction.Model = viper.GetString("extraction.model")
	cfg.Extraction.Temperature = viper.GetFloat64("extraction.temperature")
	cfg.Extraction.Timeout = viper.GetDuration("extraction.timeout")
	cfg.Extraction.MaxAttempts = viper.GetInt("extraction.max_attempts")
	cfg.Extraction.ChunkStep = viper.GetInt("extraction.chunk_step")
	cfg.Extraction.MaxChunks = viper.GetInt("extraction.max_chunks")
	cfg.Run.Workers = viper.GetInt("run.workers")
	cfg.Output.Dir = viper.GetString("output.dir")
	cfg.Output.Ledger = viper.GetBool("output.ledger")

	cfg.Extraction.APIKey = secretDefault("openai-api-key", viper.GetString("extraction.api_key"))
	cfg.Extraction.BaseURL = secretDefault("openai-base-url", viper.GetString("extraction.base_url"))
	if cfg.Extraction.BaseURL == "" {
		cfg.Extraction.BaseURL = types.DefaultConfig().Extraction.BaseURL
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
