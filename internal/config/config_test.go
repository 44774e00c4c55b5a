// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "markdown", cfg.Export.Format)
	assert.True(t, cfg.Export.Timestamp)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce())
}

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1"

[export]
format = "json"
output_dir = "/tmp/exports"

[providers.chatgpt]
token = "tok-123"
base_url = "https://example.com/api"

[watch]
debounce_ms = 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Export.Format)
	assert.Equal(t, "/tmp/exports", cfg.Export.OutputDir)
	assert.Equal(t, "tok-123", cfg.Providers.ChatGPT.Token)
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce())

	// Unset fields are filled from defaults.
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, 200, cfg.Archive.MaxEntries)
}

func TestLoadFromPathJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"export": {"format": "html"}, "ui": {"theme": "light"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "html", cfg.Export.Format)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestLoadFixesInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`version = "1"`), 0644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad format", func(c *Config) { c.Export.Format = "pdf" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"bad base url", func(c *Config) { c.Providers.ChatGPT.BaseURL = "not a url" }},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CHATEXPORT_FORMAT", "json")
	t.Setenv("CHATEXPORT_CHATGPT_TOKEN", "env-token")
	t.Setenv("CHATEXPORT_NO_ARCHIVE", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "json", cfg.Export.Format)
	assert.Equal(t, "env-token", cfg.Providers.ChatGPT.Token)
	assert.False(t, cfg.Archive.Enabled)
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Export.Format = "html"
	cfg.Providers.Copilot.Token = "secret"
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "html", loaded.Export.Format)
	assert.Equal(t, "secret", loaded.Providers.Copilot.Token)
}

func TestGlobalSingleton(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	custom := Default()
	custom.Export.Format = "json"
	SetGlobal(custom)

	assert.Same(t, custom, Global())
}
