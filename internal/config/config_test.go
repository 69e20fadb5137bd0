package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-tools/volscan/internal/config"
)

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Workers)
	assert.Nil(t, cfg.Defaults.ForceDirectoryScan)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "volscan")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
[defaults]
workers = 16
top_n = 50
force_directory_scan = true
tui = true
log_file = "/tmp/volscan.log"
json_log = false
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.Workers)
	assert.Equal(t, 16, *cfg.Defaults.Workers)

	require.NotNil(t, cfg.Defaults.TopN)
	assert.Equal(t, 50, *cfg.Defaults.TopN)

	require.NotNil(t, cfg.Defaults.ForceDirectoryScan)
	assert.True(t, *cfg.Defaults.ForceDirectoryScan)

	require.NotNil(t, cfg.Defaults.LogFile)
	assert.Equal(t, "/tmp/volscan.log", *cfg.Defaults.LogFile)

	require.NotNil(t, cfg.Defaults.JSONLog)
	assert.False(t, *cfg.Defaults.JSONLog)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "volscan")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("invalid [[["), 0o644))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/volscan/config.toml", config.Path())
}
