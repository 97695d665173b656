// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides on-disk persistence for chat sessions.
//
// Sessions live under ~/.rei/sessions/ as one JSON file each, written
// atomically (temp file + fsync + rename). The active-session pointer is
// a plain file next to them. Corrupt session files are skipped on load
// rather than failing the whole history.
//
// The package also holds two sidecars:
//
//   - RecentStore: flattened transcripts of the last exchanges
//     (~/.rei/recent.json)
//   - Keystore: the OpenRouter API key encrypted at rest
//     (~/.rei/key.enc)
//
// # Usage
//
//	store, err := storage.NewSessionStore()
//	if err != nil {
//	    return err
//	}
//	sessions, _ := store.LoadAll()
package storage
