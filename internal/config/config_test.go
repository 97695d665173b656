// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/rei-tui/internal/model"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.DefaultModel != model.DefaultModelID {
		t.Errorf("DefaultModel = %q, want catalog default", cfg.DefaultModel)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.UI.Theme)
	}
	if cfg.Chat.MaxSessions != 50 {
		t.Errorf("MaxSessions = %d, want 50", cfg.Chat.MaxSessions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultModel = "qwen/qwen3-14b:free"
	cfg.UI.Theme = "light"
	cfg.Chat.DeepThinking = true
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.DefaultModel != "qwen/qwen3-14b:free" {
		t.Errorf("DefaultModel = %q", loaded.DefaultModel)
	}
	if loaded.UI.Theme != "light" || !loaded.Chat.DeepThinking {
		t.Error("round trip lost values")
	}
}

func TestPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[ui]\ntheme = \"auto\"\n"
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Theme = %q, want auto", cfg.UI.Theme)
	}
	if cfg.DefaultModel != model.DefaultModelID {
		t.Error("unset default_model should fall back to the catalog default")
	}
	if cfg.API.BaseURL == "" || cfg.Chat.MaxSessions != 50 {
		t.Error("unset sections should be filled with defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-env-key")
	t.Setenv("REI_MODEL", "env/model:free")
	t.Setenv("REI_THEME", "light")
	t.Setenv("REI_DEEP_THINKING", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.Key != "sk-or-env-key" {
		t.Errorf("API.Key = %q", cfg.API.Key)
	}
	if cfg.DefaultModel != "env/model:free" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.UI.Theme != "light" || !cfg.Chat.DeepThinking {
		t.Error("env overrides not applied")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"empty model", func(c *Config) { c.DefaultModel = "" }},
		{"zero sessions", func(c *Config) { c.Chat.MaxSessions = 0 }},
		{"huge sessions", func(c *Config) { c.Chat.MaxSessions = 9999 }},
		{"bad base url", func(c *Config) { c.API.BaseURL = "ftp://example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestInsecurePermissionsFixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions not tightened: %o", info.Mode().Perm())
	}
}

func TestSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("ui.theme", "light"); err != nil {
		t.Errorf("Set ui.theme: %v", err)
	}
	if cfg.UI.Theme != "light" {
		t.Error("ui.theme not applied")
	}

	if err := cfg.Set("chat.max_sessions", "25"); err != nil {
		t.Errorf("Set chat.max_sessions: %v", err)
	}
	if cfg.Chat.MaxSessions != 25 {
		t.Error("chat.max_sessions not applied")
	}

	if err := cfg.Set("chat.deep_thinking", "true"); err != nil {
		t.Errorf("Set chat.deep_thinking: %v", err)
	}

	if err := cfg.Set("ui.theme", "bogus"); err == nil {
		t.Error("Set with invalid value should fail validation")
	}
	if err := cfg.Set("nope.such.key", "x"); err == nil {
		t.Error("Set with unknown key should fail")
	}
	if err := cfg.Set("chat.max_sessions", "lots"); err == nil {
		t.Error("Set with non-numeric value should fail")
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTo(Default(), path); err != nil {
		t.Fatal(err)
	}

	changes := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) {
		changes <- cfg
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	updated := Default()
	updated.UI.Theme = "light"
	if err := SaveTo(updated, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changes:
		if cfg.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q, want light", cfg.UI.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never delivered the reload")
	}
}

func TestWatcherIgnoresInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTo(Default(), path); err != nil {
		t.Fatal(err)
	}

	changes := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) {
		changes <- cfg
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// Broken TOML must not reach the callback.
	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changes:
		t.Error("invalid config should not be delivered")
	case <-time.After(600 * time.Millisecond):
	}
}
