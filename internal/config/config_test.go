package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 10, c.Load.Threads)
	assert.Equal(t, "tag", c.Load.GroupBy)
	assert.True(t, c.History.Enabled)
	assert.Equal(t, "127.0.0.1:8080", c.Server.Addr())
	assert.NotEmpty(t, c.HAR.IgnoreExtensions)
	require.NoError(t, c.Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Load, cfg.Load)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadplan.yaml")
	yaml := "load:\n  threads: 50\n  group_by: path\nserver:\n  port: 9000\nhistory:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Load.Threads)
	assert.Equal(t, "path", cfg.Load.GroupBy)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.History.Enabled)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.Load.RampUpSeconds)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Server.Port = 0
	c.History.DBPath = ""
	c.Load.Threads = 0

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "history.db_path")
	assert.Contains(t, err.Error(), "threads")

	c.History.Enabled = false
	c.Server.Port = 80
	c.Load.Threads = 1
	assert.NoError(t, c.Validate())
}
