// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides on-disk persistence for chat sessions.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/util"
)

// activeFile holds the ID of the active session inside the base directory.
const activeFile = "active"

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore persists sessions as one JSON file per session.
type SessionStore struct {
	// BaseDir is the directory for storing sessions.
	// Default: ~/.rei/sessions/
	BaseDir string

	// MaxSessions limits stored sessions (0 = unlimited). When exceeded,
	// the least recently updated sessions are pruned on save.
	MaxSessions int
}

// NewSessionStore creates a store rooted at the default directory.
func NewSessionStore() (*SessionStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewSessionStoreWithDir(filepath.Join(homeDir, ".rei", "sessions"))
}

// NewSessionStoreWithDir creates a store with a custom directory.
func NewSessionStoreWithDir(baseDir string) (*SessionStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &SessionStore{
		BaseDir:     baseDir,
		MaxSessions: 50,
	}, nil
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save persists a session.
func (s *SessionStore) Save(sess *model.ChatSession) error {
	if sess.ID == "" {
		return &SessionError{Message: "cannot save session with empty id"}
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.filePath(sess.ID), data, 0644); err != nil {
		return err
	}

	if s.MaxSessions > 0 {
		s.enforceLimit()
	}
	return nil
}

// Load retrieves a session by ID.
func (s *SessionStore) Load(id string) (*model.ChatSession, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var sess model.ChatSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return &sess, nil
}

// LoadAll returns every readable session, most recently updated first.
// Files that fail to parse or fail validation are skipped: one corrupt
// entry never takes the rest of the history down with it.
func (s *SessionStore) LoadAll() ([]*model.ChatSession, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []*model.ChatSession
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		sess, err := s.Load(id)
		if err != nil {
			continue // Skip corrupted files
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// List returns metadata for every readable session, most recent first.
func (s *SessionStore) List() ([]model.SessionMeta, error) {
	sessions, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	metas := make([]model.SessionMeta, 0, len(sessions))
	for _, sess := range sessions {
		metas = append(metas, sess.Meta())
	}
	return metas, nil
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved sessions and the active pointer.
func (s *SessionStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	os.Remove(filepath.Join(s.BaseDir, activeFile))
	return nil
}

// =============================================================================
// ACTIVE SESSION POINTER
// =============================================================================

// SaveActiveID persists the active session pointer. An empty ID records
// that no session is active.
func (s *SessionStore) SaveActiveID(id string) error {
	return util.AtomicWriteFile(filepath.Join(s.BaseDir, activeFile), []byte(id), 0644)
}

// LoadActiveID returns the persisted active session pointer, "" when none
// was recorded. The caller is responsible for checking the ID still
// resolves to a stored session.
func (s *SessionStore) LoadActiveID() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, activeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// enforceLimit removes the least recently updated sessions over the cap.
func (s *SessionStore) enforceLimit() {
	sessions, err := s.LoadAll()
	if err != nil || len(sessions) <= s.MaxSessions {
		return
	}
	// LoadAll sorts most recent first; everything past the cap goes.
	for _, sess := range sessions[s.MaxSessions:] {
		s.Delete(sess.ID)
	}
}

// filePath returns the file path for a session ID.
func (s *SessionStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session doesn't exist on disk.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &SessionError{Message: "session not found"}

// SessionError represents a storage-related session error.
type SessionError struct {
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
