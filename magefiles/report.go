package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Report groups reporting convenience targets.
type Report mg.Namespace

// Build compiles the CLI and generates the combined XLSX report from the
// result streams.
// See prd006-reporting for full requirements.
func (Report) Build() error {
	mg.Deps(Build)
	fmt.Println("[report] Building the combined spreadsheet from the result streams.")
	cmd := exec.Command(filepath.Join(binDir, binName), "report")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s report: %w", binName, err)
	}
	return nil
}
