package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowddynamics/crowddynamics/sim"
	"github.com/crowddynamics/crowddynamics/sim/storage"
)

func TestRunRequiresExactlyOneSource(t *testing.T) {
	resetRunFlags()
	_, err := execute("run", "--log", "warn")
	assert.Error(t, err, "neither --config nor --preset")

	resetRunFlags()
	cfgFile := writeConfig(t, minimalConfigYAML)
	_, err = execute("run", "--config", cfgFile, "--preset", "outdoor", "--log", "warn")
	assert.Error(t, err, "both --config and --preset")
}

func TestRunUnknownPreset(t *testing.T) {
	resetRunFlags()
	_, err := execute("run", "--preset", "stadium", "--log", "warn")
	assert.Error(t, err)
}

func TestRunPresetRecordsOutput(t *testing.T) {
	resetRunFlags()
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	stream := filepath.Join(dir, "frames.jsonl.sz")

	_, err := execute("run",
		"--preset", "outdoor",
		"--agents", "6",
		"--seed", "7",
		"--max-time", "2",
		"--database", db,
		"--trajectories", stream,
		"--snapshot-interval", "0.5",
		"--log", "warn",
	)
	require.NoError(t, err)

	frames, err := storage.ReadStream(stream)
	require.NoError(t, err)
	require.NotEmpty(t, frames)
	assert.Len(t, frames[0].IDs, 6)

	store, err := storage.Open(db)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "outdoor", runs[0].Name)
	assert.Equal(t, int64(7), runs[0].Seed)

	stored, err := store.Frames(runs[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored)
}

func TestBuildRunConfigOverrides(t *testing.T) {
	resetRunFlags()
	cfgFile := writeConfig(t, minimalConfigYAML)
	require.NoError(t, runCmd.Flags().Set("config", cfgFile))
	require.NoError(t, runCmd.Flags().Set("seed", "99"))
	require.NoError(t, runCmd.Flags().Set("max-time", "3.5"))

	cfg, err := buildRunConfig(runCmd)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 3.5, cfg.MaxTime)
	assert.Equal(t, "room", cfg.Scenario, "file value survives unrelated overrides")
}

func TestRunNameFallsBackToCustom(t *testing.T) {
	cfg := sim.DefaultConfig()
	assert.Equal(t, "custom", runName(cfg))
	cfg.Scenario = "hallway"
	assert.Equal(t, "hallway", runName(cfg))
}

const minimalConfigYAML = `
scenario: room
seed: 5
max_time: 10
agents:
  - body: adult
    count: 4
`

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}
