package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverTestCfg struct {
	Addr     string `mapstructure:"addr"`
	MaxConns int    `mapstructure:"maxConns"`
}

func (c *serverTestCfg) GetName() string { return "server" }

func (c *serverTestCfg) Validate() error {
	if c.Addr == "" {
		return os.ErrInvalid
	}
	return nil
}

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "server.yaml", "addr: \":7777\"\nmaxConns: 128\n")

	cm := NewConfigManager()
	cm.SetBasePath(dir)
	defer cm.Close()

	cfg := &serverTestCfg{}
	require.NoError(t, cm.LoadConfig("server", cfg))
	assert.Equal(t, ":7777", cfg.Addr)
	assert.Equal(t, 128, cfg.MaxConns)

	got, err := cm.GetConfig("server")
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestLoadConfigValidateFailure(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "server.yaml", "maxConns: 5\n")

	cm := NewConfigManager()
	cm.SetBasePath(dir)
	defer cm.Close()

	require.Error(t, cm.LoadConfig("server", &serverTestCfg{}))
}

func TestLoadConfigMissingFile(t *testing.T) {
	cm := NewConfigManager()
	cm.SetBasePath(t.TempDir())
	defer cm.Close()

	require.Error(t, cm.LoadConfig("server", &serverTestCfg{}))
	_, err := cm.GetConfig("server")
	assert.Error(t, err)
}

func TestEnvironmentOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "production"), 0o755))
	writeConfigFile(t, dir, "server.yaml", "addr: \":7777\"\n")
	writeConfigFile(t, filepath.Join(dir, "production"), "server.yaml", "addr: \":9999\"\n")

	cm := NewConfigManager()
	cm.SetBasePath(dir)
	cm.SetEnvironment("production")
	defer cm.Close()

	cfg := &serverTestCfg{}
	require.NoError(t, cm.LoadConfig("server", cfg))
	// Base path is searched first; the overlay only serves configs the
	// base directory does not have.
	assert.Equal(t, ":7777", cfg.Addr)
}
