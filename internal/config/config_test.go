package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateXDG(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	return base
}

func TestManagerLoad(t *testing.T) {
	t.Run("first load writes default config and schema", func(t *testing.T) {
		base := isolateXDG(t)

		m, err := NewManager()
		require.NoError(t, err)
		require.NoError(t, m.Load())

		assert.FileExists(t, filepath.Join(base, "config", "sw3do", "config.toml"))
		assert.FileExists(t, filepath.Join(base, "config", "sw3do", "config.schema.json"))

		cfg := m.Get()
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.True(t, cfg.Filtering.Enabled)
		assert.Equal(t, 24, cfg.Filtering.UpdateIntervalHours)
		require.Len(t, cfg.Filtering.FilterLists, 2)
		assert.Equal(t, "easylist", cfg.Filtering.FilterLists[0].Name)
		assert.Equal(t, "easyprivacy", cfg.Filtering.FilterLists[1].Name)
		assert.NotEmpty(t, cfg.Database.Path, "the database path is derived when unset")
		assert.NotEmpty(t, cfg.Filtering.CacheDir, "the cache dir is derived when unset")
	})

	t.Run("existing config file is honored", func(t *testing.T) {
		base := isolateXDG(t)
		configDir := filepath.Join(base, "config", "sw3do")
		require.NoError(t, os.MkdirAll(configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`
[logging]
level = "debug"
format = "json"

[filtering]
enabled = false
update_interval_hours = 6

[[filtering.custom_rules]]
pattern = "annoying-widget"
kind = "block"
domains = ["news.example"]
resources = ["script"]
`), 0o644))

		m, err := NewManager()
		require.NoError(t, err)
		require.NoError(t, m.Load())

		cfg := m.Get()
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.False(t, cfg.Filtering.Enabled)
		assert.Equal(t, 6, cfg.Filtering.UpdateIntervalHours)

		require.Len(t, cfg.Filtering.CustomRules, 1)
		rule := cfg.Filtering.CustomRules[0]
		assert.Equal(t, "annoying-widget", rule.Pattern)
		assert.Equal(t, "block", rule.Kind)
		assert.Equal(t, []string{"news.example"}, rule.Domains)
		assert.Equal(t, []string{"script"}, rule.Resources)
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		base := isolateXDG(t)
		configDir := filepath.Join(base, "config", "sw3do")
		require.NoError(t, os.MkdirAll(configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`
[logging]
level = "shouty"
`), 0o644))

		m, err := NewManager()
		require.NoError(t, err)

		err = m.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logging.level")
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		isolateXDG(t)
		t.Setenv("SW3DO_LOG_LEVEL", "warn")

		m, err := NewManager()
		require.NoError(t, err)
		require.NoError(t, m.Load())

		assert.Equal(t, "warn", m.Get().Logging.Level)
	})
}
