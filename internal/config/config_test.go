package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "cn-rainier-data-lake", cfg.Bucket)
	assert.Equal(t, "uploads/", cfg.UploadPrefix)
	assert.Equal(t, "openai", cfg.DefaultModel)
}

func TestLoadFileThenEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\nbucket: from-file\n"), 0o600))

	t.Setenv("PARTNER_BUCKET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "from-env", cfg.Bucket, "env must win over file")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
