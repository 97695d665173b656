// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared wiring for CLI commands.
//
// Every subcommand that talks to sessions or the API builds the same
// stack: config, session store, OpenRouter client, engine, and the
// optional message archive. App assembles it once.
package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/rei-tui/internal/config"
	"github.com/jeranaias/rei-tui/internal/engine"
	"github.com/jeranaias/rei-tui/internal/history"
	"github.com/jeranaias/rei-tui/internal/openrouter"
	"github.com/jeranaias/rei-tui/internal/session"
	"github.com/jeranaias/rei-tui/internal/storage"
)

// App bundles the wired components a command needs.
type App struct {
	Config  *config.Config
	Store   *session.Store
	Client  *openrouter.Client
	Engine  *engine.Engine
	Archive *history.Archive // nil when the archive could not be opened

	// KeySource records where the API key came from: "env", "config",
	// "keystore", or "" when no key was found.
	KeySource string
}

// NewApp wires the full command stack. The archive is best-effort: a
// failure to open it disables search and recording but not chat.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapError(err, "failed to load configuration")
	}

	key, source := resolveAPIKey(cfg)

	client := openrouter.NewClient(key).
		WithSite(cfg.API.SiteURL, cfg.API.SiteName)
	if cfg.API.BaseURL != "" {
		client = client.WithBaseURL(cfg.API.BaseURL)
	}

	backend, err := storage.NewSessionStore()
	if err != nil {
		return nil, WrapError(err, "failed to open session storage")
	}
	recent, err := storage.NewRecentStore()
	if err != nil {
		return nil, WrapError(err, "failed to open recent history")
	}

	store, err := session.NewStore(backend, recent)
	if err != nil {
		return nil, WrapError(err, "failed to load sessions")
	}
	store.SetDefaultModelID(cfg.DefaultModel)

	app := &App{
		Config:    cfg,
		Store:     store,
		Client:    client,
		Engine:    engine.New(client),
		KeySource: source,
	}

	if path, err := history.DefaultPath(); err == nil {
		if archive, err := history.Open(path); err == nil {
			app.Archive = archive
			store.SetArchiver(archive)
		}
	}

	return app, nil
}

// Close releases the archive handle.
func (a *App) Close() {
	if a.Archive != nil {
		a.Archive.Close()
	}
}

// RequireKey returns an error when no API key is configured.
func (a *App) RequireKey() error {
	if !a.Client.IsConfigured() {
		return fmt.Errorf("no API key configured. Set OPENROUTER_API_KEY or run: rei auth set")
	}
	return nil
}

// resolveAPIKey finds the API key. Resolution order: environment,
// config file, encrypted keystore. config.Load already applied env
// overrides, so a populated cfg.API.Key covers the first two.
func resolveAPIKey(cfg *config.Config) (key, source string) {
	if cfg.API.Key != "" {
		if os.Getenv("OPENROUTER_API_KEY") == cfg.API.Key {
			return cfg.API.Key, "env"
		}
		return cfg.API.Key, "config"
	}

	ks, err := storage.NewKeystore()
	if err != nil {
		return "", ""
	}
	if k, err := ks.Get(); err == nil && k != "" {
		return k, "keystore"
	}
	return "", ""
}
