// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the set of named chat sessions and the active
// session pointer.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/storage"
	"github.com/jeranaias/rei-tui/internal/util"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// Archiver receives finalized messages for long-term search. Archive
// failures never block session operations.
type Archiver interface {
	Record(sess *model.ChatSession) error
	DeleteSession(id string) error
}

// Store holds every known session, most recently created first, plus the
// pointer to the active one. All operations are safe for concurrent use
// and every mutation is persisted immediately.
type Store struct {
	mu sync.Mutex

	sessions []*model.ChatSession
	activeID string

	backend *storage.SessionStore
	recent  *storage.RecentStore
	archive Archiver

	defaultModelID string
}

// NewStore creates a store backed by the given persistence layers and
// loads existing sessions from disk. A persisted active pointer that no
// longer resolves to a stored session is cleared rather than kept stale.
func NewStore(backend *storage.SessionStore, recent *storage.RecentStore) (*Store, error) {
	s := &Store{
		backend:        backend,
		recent:         recent,
		defaultModelID: model.DefaultModelID,
	}

	sessions, err := backend.LoadAll()
	if err != nil {
		return nil, err
	}
	s.sessions = sessions

	activeID, err := backend.LoadActiveID()
	if err != nil {
		return nil, err
	}
	if activeID != "" {
		if s.findLocked(activeID) == nil {
			// Stale pointer from a pruned or corrupt session.
			activeID = ""
			backend.SaveActiveID("")
		}
	}
	s.activeID = activeID

	return s, nil
}

// SetArchiver attaches a long-term message archive.
func (s *Store) SetArchiver(a Archiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = a
}

// SetDefaultModelID overrides the model assigned to new sessions.
func (s *Store) SetDefaultModelID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		s.defaultModelID = id
	}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Create makes a new session named "Chat N", inserts it at the head of
// the list, marks it active, and persists it.
func (s *Store) Create() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := "Chat " + util.IntToString(len(s.sessions)+1)
	sess := model.NewChatSession(name, s.defaultModelID)

	s.sessions = append([]*model.ChatSession{sess}, s.sessions...)
	s.activeID = sess.ID

	s.backend.Save(sess)
	s.backend.SaveActiveID(sess.ID)

	return sess
}

// Switch makes the session with the given ID active. Unknown IDs are a
// no-op: the current active session stays selected.
func (s *Store) Switch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return false
	}
	s.activeID = id
	s.backend.SaveActiveID(id)
	return true
}

// Delete removes the session with the given ID. If it was active, the
// active pointer is cleared; no other session is promoted implicitly.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	s.backend.Delete(id)
	if s.archive != nil {
		s.archive.DeleteSession(id)
	}

	if s.activeID == id {
		s.activeID = ""
		s.backend.SaveActiveID("")
	}
	return true
}

// Rename changes a session's display name. Blank or whitespace-only
// names are rejected as a no-op, as are unknown IDs.
func (s *Store) Rename(id, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(id)
	if sess == nil {
		return false
	}
	sess.Name = name
	// Renaming counts as activity: pruning and load ordering key on
	// UpdatedAt, so a renamed session must not look stale.
	sess.UpdatedAt = time.Now()
	s.backend.Save(sess)
	return true
}

// Sync replaces the stored copy of a session with the given one
// (last-write-wins by ID) and persists it. Unknown IDs are inserted at
// the head. The session's transcript is also pushed to the recent
// history sidecar.
func (s *Store) Sync(sess *model.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, existing := range s.sessions {
		if existing.ID == sess.ID {
			s.sessions[i] = sess
			replaced = true
			break
		}
	}
	if !replaced {
		s.sessions = append([]*model.ChatSession{sess}, s.sessions...)
	}

	s.backend.Save(sess)

	if s.recent != nil && !sess.IsEmpty() {
		s.recent.Push(sess.Transcript())
	}
	if s.archive != nil {
		s.archive.Record(sess)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Active returns the active session, or nil when none is selected.
func (s *Store) Active() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return nil
	}
	return s.findLocked(s.activeID)
}

// ActiveID returns the active session ID, "" when none.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Get returns the session with the given ID, or nil.
func (s *Store) Get(id string) *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

// List returns the sessions in list order (most recently created first).
// The returned slice is a copy; the sessions themselves are shared.
func (s *Store) List() []*model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RecentTranscripts returns the flattened recent-history entries.
func (s *Store) RecentTranscripts() []string {
	if s.recent == nil {
		return nil
	}
	return s.recent.Load()
}

// findLocked returns the session with the given ID. Caller holds s.mu.
func (s *Store) findLocked(id string) *model.ChatSession {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}
