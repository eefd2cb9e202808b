package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"comedy-pipeline/config"
	"comedy-pipeline/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A failed stage must surface as a returned error, with the store closed
// and the run state saved on the way out.
func TestRunPipelineFailureReturnsError(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("TEAMS_WEBHOOK_URL", "")

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Database = filepath.Join(dir, "test.db")
	cfg.Paths.Output = filepath.Join(dir, "output")
	cfg.Paths.Logs = filepath.Join(dir, "logs")

	err := runPipeline(cfg, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scout")

	// The run state must have been written despite the failure.
	runs, readErr := os.ReadDir(cfg.Paths.Output)
	require.NoError(t, readErr)
	require.Len(t, runs, 1)

	data, readErr := os.ReadFile(filepath.Join(cfg.Paths.Output, runs[0].Name(), "pipeline_state.json"))
	require.NoError(t, readErr)

	var state types.PipelineState
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Contains(t, state.Error, "scout")
	assert.NotEmpty(t, state.CompletedAt)
}
