package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local", c.UserID)
	assert.Equal(t, 1, c.FreeUploadLimit)
	assert.Equal(t, 90, c.PremiumDays)
	assert.Equal(t, 50, c.SampleRows)
	assert.Equal(t, 20, c.SuggestSampleRows)
	assert.Equal(t, "openrouter", c.AIProvider)
	assert.Equal(t, filepath.Join(home, ".tabloom"), c.DataDir)
	assert.Equal(t, filepath.Join(home, ".tabloom", "etl_processed_data.json"), c.SnapshotPath())
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("user_id: alice\nsample_rows: 10\nai_provider: gemini\n"), 0o644))
	t.Setenv("TABLOOM_SAMPLE_ROWS", "25")
	t.Setenv("GEMINI_API_KEY", "gk")

	c, err := Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.UserID)
	assert.Equal(t, 25, c.SampleRows)
	assert.Equal(t, "gk", c.ProviderKey())
}

func TestSaveAndSet(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c, err := Load("")
	require.NoError(t, err)

	require.NoError(t, c.Set("free_upload_limit", "3"))
	require.NoError(t, c.Set("user_id", "007"))
	require.NoError(t, c.Set("temperature", "0.2"))
	assert.Error(t, c.Set("nope", "1"))
	assert.Error(t, c.Set("max_tokens", "many"))
	assert.Equal(t, 3, c.FreeUploadLimit)
	assert.Equal(t, "007", c.UserID)

	require.NoError(t, Save(c, cfg))
	back, err := Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, back.FreeUploadLimit)
	assert.Equal(t, "007", back.UserID)
	assert.InDelta(t, 0.2, back.Temperature, 1e-9)
}

func TestAbsolutePathsAreKept(t *testing.T) {
	c := &Global{DataDir: "/data", SnapshotFile: "/tmp/slot.json", AccountsFile: "acc.json"}
	assert.Equal(t, "/tmp/slot.json", c.SnapshotPath())
	assert.Equal(t, filepath.Join("/data", "acc.json"), c.AccountsPath())
}
