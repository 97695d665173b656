// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	backend, err := storage.NewSessionStoreWithDir(filepath.Join(dir, "sessions"))
	if err != nil {
		t.Fatalf("NewSessionStoreWithDir failed: %v", err)
	}
	recent := storage.NewRecentStoreWithPath(filepath.Join(dir, "recent.json"))
	store, err := NewStore(backend, recent)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestCreateNamesAndActivates(t *testing.T) {
	store := newTestStore(t)

	first := store.Create()
	if first.Name != "Chat 1" {
		t.Errorf("first session name = %q, want %q", first.Name, "Chat 1")
	}
	if store.ActiveID() != first.ID {
		t.Error("new session should become active")
	}

	second := store.Create()
	if second.Name != "Chat 2" {
		t.Errorf("second session name = %q, want %q", second.Name, "Chat 2")
	}

	// Head insert: newest first.
	list := store.List()
	if len(list) != 2 || list[0].ID != second.ID {
		t.Error("sessions should be listed newest first")
	}
	if first.ModelID != model.DefaultModelID {
		t.Errorf("ModelID = %q, want default", first.ModelID)
	}
}

func TestSwitchUnknownIsNoOp(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()

	if store.Switch("sess_nope") {
		t.Error("Switch to unknown ID should fail")
	}
	if store.ActiveID() != sess.ID {
		t.Error("active session should be unchanged after failed switch")
	}
}

func TestSwitch(t *testing.T) {
	store := newTestStore(t)
	first := store.Create()
	store.Create()

	if !store.Switch(first.ID) {
		t.Fatal("Switch to known ID should succeed")
	}
	if store.ActiveID() != first.ID {
		t.Error("active ID not updated")
	}
}

func TestDeleteActiveClearsPointer(t *testing.T) {
	store := newTestStore(t)
	store.Create()
	active := store.Create()

	if !store.Delete(active.ID) {
		t.Fatal("Delete should succeed")
	}
	if store.ActiveID() != "" {
		t.Error("deleting the active session must clear the pointer")
	}
	if store.Active() != nil {
		t.Error("Active() should be nil after deleting the active session")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestDeleteInactiveKeepsPointer(t *testing.T) {
	store := newTestStore(t)
	other := store.Create()
	active := store.Create()

	store.Delete(other.ID)
	if store.ActiveID() != active.ID {
		t.Error("deleting a non-active session must not touch the pointer")
	}
}

func TestRename(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()
	before := store.Get(sess.ID).UpdatedAt
	time.Sleep(time.Millisecond)

	if !store.Rename(sess.ID, "Debugging notes") {
		t.Fatal("Rename should succeed")
	}
	if store.Get(sess.ID).Name != "Debugging notes" {
		t.Error("name not updated")
	}
	if !store.Get(sess.ID).UpdatedAt.After(before) {
		t.Error("rename should refresh UpdatedAt")
	}

	if store.Rename(sess.ID, "   ") {
		t.Error("Rename with whitespace-only name should be rejected")
	}
	if store.Get(sess.ID).Name != "Debugging notes" {
		t.Error("blank rename must leave the name unchanged")
	}
	if store.Rename("sess_nope", "X") {
		t.Error("Rename of unknown ID should fail")
	}
}

func TestSyncLastWriteWins(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()

	updated := sess.Clone()
	updated.AddUserMessage("hello", nil)
	store.Sync(updated)

	got := store.Get(sess.ID)
	if got.MessageCount() != 1 {
		t.Fatalf("MessageCount = %d, want 1", got.MessageCount())
	}

	// A second writer with the same ID fully replaces the first.
	competing := sess.Clone()
	competing.AddUserMessage("other", nil)
	competing.AddUserMessage("branch", nil)
	store.Sync(competing)

	got = store.Get(sess.ID)
	if got.MessageCount() != 2 {
		t.Errorf("MessageCount = %d, want 2 (last write wins)", got.MessageCount())
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1 (no duplicate by ID)", store.Len())
	}
}

func TestSyncPushesRecentTranscript(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create()
	sess.AddUserMessage("hi", nil)
	store.Sync(sess)

	recents := store.RecentTranscripts()
	if len(recents) == 0 {
		t.Fatal("Sync should record a recent transcript")
	}
	if recents[0] != "user: hi" {
		t.Errorf("transcript = %q, want %q", recents[0], "user: hi")
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewSessionStoreWithDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(backend, nil)
	if err != nil {
		t.Fatal(err)
	}
	sess := store.Create()
	sess.AddUserMessage("persist me", nil)
	store.Sync(sess)

	reopened, err := NewStore(backend, nil)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("Len after reopen = %d, want 1", reopened.Len())
	}
	if reopened.ActiveID() != sess.ID {
		t.Error("active pointer should survive reopen")
	}
	if reopened.Active().Messages[0].Content != "persist me" {
		t.Error("message content lost across reopen")
	}
}

type fakeArchiver struct {
	recorded []string
	deleted  []string
}

func (f *fakeArchiver) Record(sess *model.ChatSession) error {
	f.recorded = append(f.recorded, sess.ID)
	return nil
}

func (f *fakeArchiver) DeleteSession(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestArchiverHooks(t *testing.T) {
	store := newTestStore(t)
	arch := &fakeArchiver{}
	store.SetArchiver(arch)

	sess := store.Create()
	sess.AddUserMessage("archive me", nil)
	store.Sync(sess)
	store.Delete(sess.ID)

	if len(arch.recorded) != 1 || arch.recorded[0] != sess.ID {
		t.Errorf("Sync should record to the archive, got %v", arch.recorded)
	}
	if len(arch.deleted) != 1 || arch.deleted[0] != sess.ID {
		t.Errorf("Delete should purge the archive, got %v", arch.deleted)
	}
}

func TestStaleActivePointerCleared(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewSessionStoreWithDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	// Pointer references a session that was never stored.
	if err := backend.SaveActiveID("sess_ghost"); err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(backend, nil)
	if err != nil {
		t.Fatal(err)
	}
	if store.ActiveID() != "" {
		t.Error("stale active pointer should be cleared on load")
	}

	persisted, _ := backend.LoadActiveID()
	if persisted != "" {
		t.Error("cleared pointer should be persisted")
	}
}
