package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thruflo/sortviz/internal/config"
)

// SetupTestDir creates a temp directory holding .sortviz/config.yaml with
// unpaced runs and warn-level logging. mutate, if non-nil, adjusts the
// config before it is written. Returns the directory.
func SetupTestDir(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Array.Length = 10
	cfg.Pacing.StepDelay = 0
	cfg.Pacing.MergeDelay = 0
	cfg.Log.Level = "warn"
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, config.SaveConfig(dir, &cfg))
	return dir
}

// FindProjectRoot walks up from the working directory to the directory
// containing go.mod.
func FindProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (directory containing go.mod)")
		}
		dir = parent
	}
}
