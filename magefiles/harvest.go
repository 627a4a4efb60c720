package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Harvest groups corpus-processing convenience targets.
type Harvest mg.Namespace

// Run builds the CLI and runs the full pipeline over the configured corpus.
// See prd005-pipeline for full requirements.
func (Harvest) Run() error {
	mg.Deps(Build)
	fmt.Println("[harvest] Running the metadata extraction pipeline.")
	cmd := exec.Command(filepath.Join(binDir, binName))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", binName, err)
	}
	return nil
}
