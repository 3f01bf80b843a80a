package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  timeout: 3s
loader:
  limit: 50
  scroll_offset: 4
storage:
  backend: sqlite
  path: /tmp/pokedex-test
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "https://pokeapi.co/api/v2", cfg.API.BaseURL)
	assert.Equal(t, 50, cfg.Loader.Limit)
	assert.Equal(t, 4, cfg.Loader.ScrollOffset)
	assert.Equal(t, 100*time.Millisecond, cfg.Loader.RecheckDelay)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/pokedex-test", cfg.Storage.Path)
	assert.Equal(t, "pokemon-favorites", cfg.Storage.FavoritesKey)
	assert.True(t, cfg.Cache.Pages)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: bolt\n"), 0644))

	t.Setenv("POKEDEX_STORAGE_BACKEND", "memory")
	t.Setenv("POKEDEX_LOADER_LIMIT", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 7, cfg.Loader.Limit)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := DefaultConfig()
	want.Loader.Limit = 33
	want.Storage.Backend = "file"
	want.Storage.Watch = true
	want.UI.ShowIDs = false

	require.NoError(t, WriteConfig(want, path))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "pokedex"), expandHome("~/pokedex"))
	assert.Equal(t, "/var/lib/pokedex", expandHome("/var/lib/pokedex"))
}

func TestSetupLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pokedex.log")

	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)
	logger.Debug("hello", "page", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"page":1`)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "INFO", parseLogLevel("bogus").String())
}
