package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Addr)
	assert.Equal(t, 7890, cfg.Port)
	assert.Equal(t, "evaluation_score", cfg.SaveDir)
	assert.False(t, cfg.AllowCustomSaveDir)
	assert.Equal(t, []string{"ID", "id", "prompt_id"}, cfg.Columns.ID)
	assert.Equal(t, []string{"input", "Input", "question", "prompt"}, cfg.Columns.Input)
	assert.Equal(t, []string{"output", "Output", "response", "answer", "content"}, cfg.Columns.Output)
	assert.Equal(t, []string{"score", "Score", "mark", "Mark"}, cfg.Columns.Score)
	assert.Equal(t, "scores", cfg.Mirror.Prefix)
	assert.False(t, cfg.Mirror.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCORESHEET_PORT", "9001")
	t.Setenv("SCORESHEET_SAVE_DIR", "/tmp/scores")
	t.Setenv("SCORESHEET_ID_ALIASES", "row_id,key")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_BUCKET", "reviews")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, "/tmp/scores", cfg.SaveDir)
	assert.Equal(t, []string{"row_id", "key"}, cfg.Columns.ID)
	assert.True(t, cfg.Mirror.Enabled())
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("SCORESHEET_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestLoadWrapsParseErrors(t *testing.T) {
	t.Setenv("SCORESHEET_PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestBaseURL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:7890", cfg.BaseURL())
	assert.Equal(t, "0.0.0.0:7890", cfg.ListenAddr())

	cfg.PublicURL = "https://scores.example.com"
	assert.Equal(t, "https://scores.example.com", cfg.BaseURL())
}
