// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides on-disk persistence for chat sessions.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jeranaias/rei-tui/internal/util"
)

// MaxRecentTranscripts is how many flattened transcripts are retained.
const MaxRecentTranscripts = 10

// RecentStore keeps flattened transcripts of the most recent exchanges,
// newest first, in a single JSON file. This is the lightweight history
// surfaced by the /history command.
type RecentStore struct {
	// Path is the JSON file location. Default: ~/.rei/recent.json
	Path string
}

// NewRecentStore creates a store at the default location.
func NewRecentStore() (*RecentStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &RecentStore{Path: filepath.Join(homeDir, ".rei", "recent.json")}, nil
}

// NewRecentStoreWithPath creates a store at a custom location.
func NewRecentStoreWithPath(path string) *RecentStore {
	return &RecentStore{Path: path}
}

// Load returns the stored transcripts, newest first.
// A missing or unreadable file yields an empty history.
func (r *RecentStore) Load() []string {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil
	}
	var transcripts []string
	if err := json.Unmarshal(data, &transcripts); err != nil {
		return nil
	}
	return transcripts
}

// Push prepends a transcript and trims the history to
// MaxRecentTranscripts entries.
func (r *RecentStore) Push(transcript string) error {
	existing := r.Load()
	if len(existing) > MaxRecentTranscripts-1 {
		existing = existing[:MaxRecentTranscripts-1]
	}
	updated := append([]string{transcript}, existing...)

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(r.Path, data, 0644)
}

// Clear removes the stored history.
func (r *RecentStore) Clear() error {
	err := os.Remove(r.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
