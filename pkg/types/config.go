// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CorpusConfig holds settings for corpus discovery.
// Per prd001-collection R3.1.
type CorpusConfig struct {
	// Root is the corpus root directory, laid out as
	// {root}/{journal}/{year}/{month-range}/{file}.
	Root string `json:"root" yaml:"root"`
}

// ModelConfig holds shared settings for schema-constrained model calls.
// The base URL and API key select between a hosted endpoint and a local
// one exposing the same chat/completions dialect; swapping them is pure
// configuration. Per prd003-metadata-extraction R5.1-R5.4.
type ModelConfig struct {
	// BaseURL is the API base, e.g. "https://api.openai.com/v1" or
	// "http://localhost:11434/v1".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier (e.g. "gpt-4o", "llama3.2").
	Model string `json:"model" yaml:"model"`

	// APIKey is the bearer credential for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature; zero is omitted from requests.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// Timeout bounds each model invocation (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxAttempts is the per-call attempt ceiling for retryable failures,
	// counting the first try (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// ExtractionConfig holds settings for the metadata-extraction stage.
// Per prd003-metadata-extraction R5.5-R5.7.
type ExtractionConfig struct {
	ModelConfig `yaml:",inline"`

	// ChunkStep is the cumulative chunk growth per prompting step, in
	// whitespace-delimited words (default 300).
	ChunkStep int `json:"chunk_step" yaml:"chunk_step"`

	// MaxChunks is the maximum number of prompting steps; the hard input
	// budget is ChunkStep*MaxChunks words (default 20).
	MaxChunks int `json:"max_chunks" yaml:"max_chunks"`
}

// RunConfig holds settings for the pipeline run itself.
// Per prd005-pipeline R3.1-R3.3.
type RunConfig struct {
	// Workers is the number of documents processed concurrently. One is
	// the strict sequential baseline.
	Workers int `json:"workers" yaml:"workers"`
}

// OutputConfig holds settings for result persistence.
// Per prd004-results R3.1, prd007-run-ledger R1.2.
type OutputConfig struct {
	// Dir is the directory for the success/failure streams, the run
	// ledger, and generated reports.
	Dir string `json:"dir" yaml:"dir"`

	// Ledger controls whether completed runs are recorded in the SQLite
	// run ledger under Dir.
	Ledger bool `json:"ledger" yaml:"ledger"`
}

// Config groups all stage configurations for the pipeline.
type Config struct {
	Corpus     CorpusConfig     `json:"corpus" yaml:"corpus"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Run        RunConfig        `json:"run" yaml:"run"`
	Output     OutputConfig     `json:"output" yaml:"output"`
}

// DefaultConfig returns the configuration used when no file, environment,
// or flag overrides are present.
func DefaultConfig() Config {
	return Config{
		Corpus: CorpusConfig{
			Root: "data/journals",
		},
		Extraction: ExtractionConfig{
			ModelConfig: ModelConfig{
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4o",
				Timeout:     60 * time.Second,
				MaxAttempts: 3,
			},
			ChunkStep: 300,
			MaxChunks: 20,
		},
		Run: RunConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Dir:    "output",
			Ledger: true,
		},
	}
}
