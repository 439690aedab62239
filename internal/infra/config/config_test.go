package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sdk", cfg.ImageGen.Backend)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.ImageGen.Model)
	assert.Equal(t, 20, cfg.Studio.HistoryCapacity)
	assert.Equal(t, "Pulmao-Livre", cfg.Export.Brand)
	assert.Equal(t, "none", cfg.Storage.Type)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  addr: ":9090"
image_gen:
  backend: rest
  model: custom-model
storage:
  type: s3
  s3:
    bucket: covers
    path_style: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("GEMINI_MODEL", "env-model")
	t.Setenv("S3_REGION", "sa-east-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "rest", cfg.ImageGen.Backend)
	assert.Equal(t, "env-model", cfg.ImageGen.Model)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "covers", cfg.Storage.S3.Bucket)
	assert.Equal(t, "sa-east-1", cfg.Storage.S3.Region)
	assert.True(t, cfg.Storage.S3.PathStyle)
	// untouched defaults survive a partial file
	assert.Equal(t, 2, cfg.HTTPClient.MaxRetries)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestKeySource_ResolvedAtCallTime(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	source := ImageGenConfig{APIKey: "from-file"}.KeySource()
	assert.Equal(t, "from-file", source())

	t.Setenv("GEMINI_API_KEY", "from-env")
	assert.Equal(t, "from-env", source())
}
