// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatexport.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.chatexport/config.toml
//   - ~/.chatexport/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatexport/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatexport configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Export configuration
	Export ExportConfig `toml:"export" json:"export"`

	// Provider credentials and endpoints
	Providers ProvidersConfig `toml:"providers" json:"providers"`

	// Archive configuration
	Archive ArchiveConfig `toml:"archive" json:"archive"`

	// Watch configuration
	Watch WatchConfig `toml:"watch" json:"watch"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// ExportConfig controls default export behavior.
type ExportConfig struct {
	// OutputDir is where exported files land. Default: ~/Downloads,
	// falling back to the working directory.
	OutputDir string `toml:"output_dir" json:"output_dir"`
	// Format is the default export format: "markdown", "json", or "html".
	Format string `toml:"format" json:"format"`
	// Timestamp appends a timestamp to exported filenames.
	Timestamp bool `toml:"timestamp" json:"timestamp"`
	// IncludeMetadata emits YAML frontmatter in Markdown exports.
	IncludeMetadata bool `toml:"include_metadata" json:"include_metadata"`
	// OpenAfterExport opens the exported file with the system handler.
	OpenAfterExport bool `toml:"open_after_export" json:"open_after_export"`
}

// ProvidersConfig holds per-provider credentials and endpoints.
type ProvidersConfig struct {
	ChatGPT ProviderConfig `toml:"chatgpt" json:"chatgpt"`
	Copilot ProviderConfig `toml:"copilot" json:"copilot"`
}

// ProviderConfig is one provider's connection settings.
type ProviderConfig struct {
	// Token is the session bearer token. Prefer the environment variables
	// CHATEXPORT_CHATGPT_TOKEN / CHATEXPORT_COPILOT_TOKEN over storing it
	// in the config file.
	Token string `toml:"token" json:"token"`
	// BaseURL overrides the default backend endpoint.
	BaseURL string `toml:"base_url" json:"base_url"`
}

// ArchiveConfig controls the local conversation archive.
type ArchiveConfig struct {
	// Enabled archives every fetched conversation before export.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Dir overrides the archive location (default ~/.chatexport/archive).
	Dir string `toml:"dir" json:"dir"`
	// MaxEntries limits archived conversations (0 = unlimited).
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// WatchConfig controls the saved-page watch command.
type WatchConfig struct {
	// Dir is the directory watched for saved conversation pages.
	Dir string `toml:"dir" json:"dir"`
	// DebounceMs is the quiet period after a file event before the page is
	// parsed, in milliseconds. Browsers write saved pages in bursts.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is "dark" or "light"; used by HTML export and preview.
	Theme string `toml:"theme" json:"theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	outputDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		outputDir = filepath.Join(home, "Downloads")
	}

	return &Config{
		Version: "1",
		Export: ExportConfig{
			OutputDir: outputDir,
			Format:    "markdown",
			Timestamp: true,
		},
		Archive: ArchiveConfig{
			Enabled:    true,
			MaxEntries: 200,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the chatexport configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatexport"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to protect
// session tokens.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finalize(cfg)
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finalize(cfg)
		}
	}

	return finalize(cfg)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finalize(cfg)
}

// finalize applies overrides, defaults, and validation in load order.
func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems; warn and continue.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = defaults.Export.OutputDir
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = defaults.Export.Format
	}
	if cfg.Archive.MaxEntries == 0 {
		cfg.Archive.MaxEntries = defaults.Archive.MaxEntries
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = defaults.Watch.DebounceMs
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# chatexport configuration file")
	fmt.Fprintln(file, "# Generated by chatexport - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Export.Format {
	case "markdown", "md", "json", "html", "htm":
	default:
		return ValidationError{Field: "export.format",
			Message: fmt.Sprintf("unknown format %q (want markdown, json, or html)", c.Export.Format)}
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return ValidationError{Field: "ui.theme",
			Message: fmt.Sprintf("unknown theme %q (want dark or light)", c.UI.Theme)}
	}

	for _, pc := range []struct {
		field string
		cfg   ProviderConfig
	}{
		{"providers.chatgpt.base_url", c.Providers.ChatGPT},
		{"providers.copilot.base_url", c.Providers.Copilot},
	} {
		if pc.cfg.BaseURL == "" {
			continue
		}
		u, err := url.Parse(pc.cfg.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return ValidationError{Field: pc.field,
				Message: fmt.Sprintf("invalid URL %q", pc.cfg.BaseURL)}
		}
	}

	if c.Watch.DebounceMs < 0 {
		return ValidationError{Field: "watch.debounce_ms", Message: "must not be negative"}
	}
	if c.Archive.MaxEntries < 0 {
		return ValidationError{Field: "archive.max_entries", Message: "must not be negative"}
	}

	return nil
}

// WatchDebounce returns the watch debounce as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies CHATEXPORT_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATEXPORT_OUTPUT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("CHATEXPORT_FORMAT"); v != "" {
		c.Export.Format = v
	}
	if v := os.Getenv("CHATEXPORT_CHATGPT_TOKEN"); v != "" {
		c.Providers.ChatGPT.Token = v
	}
	if v := os.Getenv("CHATEXPORT_COPILOT_TOKEN"); v != "" {
		c.Providers.Copilot.Token = v
	}
	if v := os.Getenv("CHATEXPORT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("CHATEXPORT_NO_ARCHIVE"); v != "" {
		c.Archive.Enabled = !(v == "1" || strings.ToLower(v) == "true")
	}
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	// Mark the once as spent so Global does not overwrite this instance.
	globalConfigOnce.Do(func() {})
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
