// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages the TOML configuration file at ~/.rei/config.toml.
//
// Configuration resolution order: file values, then environment
// overrides, then built-in defaults for anything left unset.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/util"
)

// =============================================================================
// CONFIGURATION TYPES
// =============================================================================

// Config is the top-level configuration.
type Config struct {
	// Version is the config schema version.
	Version string `toml:"version" json:"version"`

	// DefaultModel is the model assigned to new sessions.
	DefaultModel string `toml:"default_model" json:"default_model"`

	API  APIConfig  `toml:"api" json:"api"`
	Chat ChatConfig `toml:"chat" json:"chat"`
	UI   UIConfig   `toml:"ui" json:"ui"`
}

// APIConfig contains OpenRouter connection settings.
type APIConfig struct {
	// Key is the OpenRouter API key. Prefer the OPENROUTER_API_KEY
	// environment variable or the encrypted keystore over storing it here.
	Key string `toml:"key" json:"key"`
	// BaseURL overrides the API endpoint.
	BaseURL string `toml:"base_url" json:"base_url"`
	// SiteURL is sent as the HTTP-Referer attribution header.
	SiteURL string `toml:"site_url" json:"site_url"`
	// SiteName is sent as the X-Title attribution header.
	SiteName string `toml:"site_name" json:"site_name"`
}

// ChatConfig contains conversation behavior settings.
type ChatConfig struct {
	// DeepThinking enables low-temperature, long-form responses.
	DeepThinking bool `toml:"deep_thinking" json:"deep_thinking"`
	// Creative enables the creative persona clause.
	Creative bool `toml:"creative" json:"creative"`
	// MaxSessions caps how many sessions are kept on disk.
	MaxSessions int `toml:"max_sessions" json:"max_sessions"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto".
	Theme string `toml:"theme" json:"theme"`
	// ShowStats displays per-response timing and token stats.
	ShowStats bool `toml:"show_stats" json:"show_stats"`
	// CompactMode tightens the transcript layout.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with the built-in default values.
func Default() *Config {
	return &Config{
		Version:      "1.0.0",
		DefaultModel: model.DefaultModelID,

		API: APIConfig{
			BaseURL:  "https://openrouter.ai/api/v1",
			SiteURL:  "https://jeranaias.dev",
			SiteName: "Portfolio AI Assistant",
		},

		Chat: ChatConfig{
			DeepThinking: false,
			Creative:     false,
			MaxSessions:  50,
		},

		UI: UIConfig{
			Theme:       "dark",
			ShowStats:   true,
			CompactMode: false,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the rei configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rei"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists. The directory also
// holds the keystore, so it is owner-only.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens config file permissions to 0600.
// SECURITY: The file may carry an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", info.Mode().Perm(), err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default path, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and validates configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file: %w", err)
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to a TOML file atomically with
// owner-only permissions.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// fillDefaults fills any unset values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.DefaultModel == "" {
		c.DefaultModel = defaults.DefaultModel
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.SiteURL == "" {
		c.API.SiteURL = defaults.API.SiteURL
	}
	if c.API.SiteName == "" {
		c.API.SiteName = defaults.API.SiteName
	}
	if c.Chat.MaxSessions == 0 {
		c.Chat.MaxSessions = defaults.Chat.MaxSessions
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.API.Key = key
	}
	if m := os.Getenv("REI_MODEL"); m != "" {
		c.DefaultModel = m
	}
	if theme := os.Getenv("REI_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if base := os.Getenv("REI_BASE_URL"); base != "" {
		c.API.BaseURL = base
	}
	if deep := os.Getenv("REI_DEEP_THINKING"); deep != "" {
		c.Chat.DeepThinking = deep == "1" || strings.EqualFold(deep, "true")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("invalid theme %q (want dark, light, or auto)", c.UI.Theme)
	}

	if c.DefaultModel == "" {
		return fmt.Errorf("default_model must not be empty")
	}
	if c.Chat.MaxSessions < 1 || c.Chat.MaxSessions > 500 {
		return fmt.Errorf("max_sessions %d out of range [1, 500]", c.Chat.MaxSessions)
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api base_url %q is not an http(s) URL", c.API.BaseURL)
	}
	return nil
}

// =============================================================================
// KEY/VALUE ACCESS (for `rei config set`)
// =============================================================================

// Set updates a single dotted-key setting from its string form and
// validates the result.
func (c *Config) Set(key, value string) error {
	switch key {
	case "default_model":
		c.DefaultModel = value
	case "api.base_url":
		c.API.BaseURL = value
	case "api.site_url":
		c.API.SiteURL = value
	case "api.site_name":
		c.API.SiteName = value
	case "ui.theme":
		c.UI.Theme = value
	case "ui.show_stats":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.show_stats: %w", err)
		}
		c.UI.ShowStats = b
	case "ui.compact_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.compact_mode: %w", err)
		}
		c.UI.CompactMode = b
	case "chat.deep_thinking":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("chat.deep_thinking: %w", err)
		}
		c.Chat.DeepThinking = b
	case "chat.creative":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("chat.creative: %w", err)
		}
		c.Chat.Creative = b
	case "chat.max_sessions":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("chat.max_sessions: %w", err)
		}
		c.Chat.MaxSessions = n
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}

// Keys lists the settable dotted keys.
func Keys() []string {
	return []string{
		"default_model",
		"api.base_url",
		"api.site_url",
		"api.site_name",
		"ui.theme",
		"ui.show_stats",
		"ui.compact_mode",
		"chat.deep_thinking",
		"chat.creative",
		"chat.max_sessions",
	}
}
