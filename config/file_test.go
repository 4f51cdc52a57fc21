package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: point HOME at a temp dir and optionally write a config file
func withHome(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	if content != "" {
		dir := filepath.Join(tmpDir, ".roadside")
		require.NoError(t, os.MkdirAll(dir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	}
	return tmpDir
}

func TestLoadConfigFile_NoFile(t *testing.T) {
	withHome(t, "")

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	assert.Nil(t, cfg, "Should return nil when config file doesn't exist")
}

func TestLoadConfigFile_ValidConfig(t *testing.T) {
	withHome(t, `http:
  timeout: "10s"
  user_agent: "custom/1.0"
  cooldown: "2s"
site:
  endpoint: "http://localhost:8080/map.php"
  homepage: "http://localhost:8080/"
  marker_func: "addPin"
cache:
  dsn: "/tmp/roadside.db"
  max_age: "7d"
metrics:
  textfile: "/var/lib/node_exporter/roadside.prom"
`)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "10s", cfg.HTTP.Timeout)
	assert.Equal(t, "custom/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, "2s", cfg.HTTP.Cooldown)
	assert.Equal(t, "http://localhost:8080/map.php", cfg.Site.Endpoint)
	assert.Equal(t, "addPin", cfg.Site.MarkerFunc)
	assert.Equal(t, "/tmp/roadside.db", cfg.Cache.DSN)
	assert.Equal(t, "7d", cfg.Cache.MaxAge)
	assert.Equal(t, "/var/lib/node_exporter/roadside.prom", cfg.Metrics.Textfile)
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	withHome(t, `http:
  - this is invalid yaml because http should be an object not a list
`)

	cfg, err := LoadConfigFile()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfigFile_PartialConfig(t *testing.T) {
	withHome(t, `cache:
  dsn: "cache.db"
`)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "cache.db", cfg.Cache.DSN)
	assert.Equal(t, "", cfg.HTTP.Timeout, "Unspecified timeout should be empty string")
	assert.Equal(t, "", cfg.Site.Endpoint, "Unspecified endpoint should be empty string")
}

func TestLoadConfigFileFrom_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics:\n  textfile: out.prom\n"), 0o600))

	cfg, err := LoadConfigFileFrom(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "out.prom", cfg.Metrics.Textfile)
}
