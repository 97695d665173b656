// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the set of named chat sessions and the active
// session pointer.
//
// The Store is the single source of truth for which sessions exist and
// which one is active. Sessions are kept most recently created first;
// every mutation persists through the storage layer before returning.
//
// Semantics worth noting:
//
//   - Create names sessions "Chat N" and marks the new session active.
//   - Switch and Rename are no-ops for unknown IDs; Rename also rejects
//     blank names.
//   - Delete of the active session clears the active pointer without
//     promoting another session.
//   - Sync is last-write-wins by session ID.
package session
