package internal

import (
	"os"
	"os/exec"
	"testing"
)

// TestGolangciLintCompliance runs golangci-lint over the module. It is
// skipped when golangci-lint is not installed or in -short mode.
func TestGolangciLintCompliance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping golangci-lint in short mode")
	}
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		t.Skip("golangci-lint not found in PATH, skipping test")
	}

	// A per-test build cache keeps the run working in read-only sandboxes
	cmd := exec.Command("golangci-lint", "run", "--allow-parallel-runners", "./...")
	cmd.Dir = projectRoot(t)
	cmd.Env = append(os.Environ(), "GOCACHE="+t.TempDir())

	if output, err := cmd.CombinedOutput(); err != nil {
		t.Errorf("golangci-lint found issues:\n%s\nRun 'golangci-lint run' to see all issues.", output)
	}
}
