// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rei-tui/internal/engine"
	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/openrouter"
	"github.com/jeranaias/rei-tui/internal/session"
	"github.com/jeranaias/rei-tui/internal/storage"
	"github.com/jeranaias/rei-tui/internal/ui/styles"
)

// fakeStreamer emits scripted deltas for each exchange.
type fakeStreamer struct {
	deltas []string
}

func (f *fakeStreamer) ChatStream(ctx context.Context, req openrouter.ChatRequest, cb openrouter.StreamCallback) error {
	for _, d := range f.deltas {
		var c openrouter.StreamChunk
		raw := fmt.Sprintf(`{"choices": [{"delta": {"content": %q}, "finish_reason": ""}]}`, d)
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return err
		}
		cb(c)
	}
	return nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()

	backend, err := storage.NewSessionStoreWithDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	recent := storage.NewRecentStoreWithPath(filepath.Join(dir, "recent.json"))
	store, err := session.NewStore(backend, recent)
	if err != nil {
		t.Fatal(err)
	}

	eng := engine.New(&fakeStreamer{deltas: []string{"hello ", "there"}})

	m := New(styles.NewTheme(), store, eng, nil)
	m.width = 100
	m.height = 30
	return m
}

// runCmd executes a command and returns the message it produces.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestHelpCommandAddsNotice(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.handleCommand("/help")
	m = updated.(Model)

	sess := m.store.Active()
	if sess == nil {
		t.Fatal("help should create a session for the notice")
	}
	last := sess.LastMessage()
	if last == nil || last.Role != model.RoleSystem {
		t.Fatal("help should append a system message")
	}
	if !strings.Contains(last.Content, "/export") {
		t.Error("help text should list commands")
	}
}

func TestNewCommandCreatesSession(t *testing.T) {
	m := newTestModel(t)
	before := m.store.Len()

	updated, _ := m.handleCommand("/new")
	m = updated.(Model)

	if m.store.Len() != before+1 {
		t.Errorf("sessions = %d, want %d", m.store.Len(), before+1)
	}
}

func TestModelCommandSwitchesModel(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()

	updated, _ := m.handleCommand("/model QwQ 32B")
	m = updated.(Model)

	sess := m.store.Active()
	if sess.ModelID != "qwen/qwq-32b:free" {
		t.Errorf("ModelID = %q", sess.ModelID)
	}
}

func TestModelCommandRejectsUnknown(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()
	original := m.store.Active().ModelID

	updated, cmd := m.handleCommand("/model totally-made-up")
	m = updated.(Model)

	if m.store.Active().ModelID != original {
		t.Error("unknown model should not change the session")
	}
	msg := runCmd(t, cmd)
	status, ok := msg.(StatusMsg)
	if !ok || !strings.Contains(status.Text, "Unknown model") {
		t.Errorf("status = %#v", msg)
	}
}

func TestDeepCommandToggles(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.handleCommand("/deep")
	m = updated.(Model)
	if !m.deepThinking {
		t.Error("first /deep should enable deep thinking")
	}

	updated, _ = m.handleCommand("/deep")
	m = updated.(Model)
	if m.deepThinking {
		t.Error("second /deep should disable deep thinking")
	}
}

func TestUnknownCommand(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.handleCommand("/frobnicate")
	msg := runCmd(t, cmd)
	status, ok := msg.(StatusMsg)
	if !ok || !strings.Contains(status.Text, "Unknown command") {
		t.Errorf("status = %#v", msg)
	}
}

func TestRenameCommand(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()

	updated, _ := m.handleCommand("/rename Go questions")
	m = updated.(Model)

	if m.store.Active().Name != "Go questions" {
		t.Errorf("Name = %q", m.store.Active().Name)
	}
}

func TestDeleteCommandClearsActive(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()

	updated, _ := m.handleCommand("/delete")
	m = updated.(Model)

	if m.store.Active() != nil {
		t.Error("delete should clear the active session")
	}
}

func TestSwitchCommandByIndex(t *testing.T) {
	m := newTestModel(t)
	first := m.store.Create()
	m.store.Create() // newest is head of the list and active

	// Index 2 is the older session.
	updated, _ := m.handleCommand("/switch 2")
	m = updated.(Model)

	if m.store.ActiveID() != first.ID {
		t.Error("switch by index should activate the older session")
	}
}

func TestStartSubmitSnapshotsAndStreams(t *testing.T) {
	m := newTestModel(t)

	updated, cmd := m.startSubmit("what does REI stand for?", nil)
	m = updated.(Model)

	if m.state != StateStreaming {
		t.Error("submit should enter streaming state")
	}
	if m.pendingUser == nil || m.pendingUser.Content != "what does REI stand for?" {
		t.Error("pending user turn missing")
	}
	if cmd == nil {
		t.Fatal("submit should produce a command")
	}
}

func TestRegenerateWithoutHistory(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()

	updated, cmd := m.startRegenerate()
	m = updated.(Model)

	if m.state == StateStreaming {
		t.Error("nothing to regenerate, should stay ready")
	}
	msg := runCmd(t, cmd)
	if status, ok := msg.(StatusMsg); !ok || !strings.Contains(status.Text, "Nothing to regenerate") {
		t.Errorf("status = %#v", msg)
	}
}

func TestEditCommandPrimesInput(t *testing.T) {
	m := newTestModel(t)
	sess := m.store.Create()
	sess.AddUserMessage("what does REI stand for?", nil)

	updated, _ := m.handleCommand("/edit 1")
	m = updated.(Model)

	if m.state != StateReady {
		t.Error("bare /edit should not start an exchange")
	}
	if m.input.Value() != "what does REI stand for?" {
		t.Errorf("input = %q, want the original message", m.input.Value())
	}
	if m.editIndex != 0 {
		t.Errorf("editIndex = %d, want 0", m.editIndex)
	}

	// Enter resubmits the revised text as an edit of the staged message.
	m.input.SetValue("what does REI mean?")
	updated, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.state != StateStreaming {
		t.Error("enter should resubmit the edit")
	}
	if m.editIndex != -1 {
		t.Error("editIndex should reset after resubmission")
	}
	if cmd == nil {
		t.Fatal("edit resubmission should produce a command")
	}
}

func TestEditPrimingCanceledByEsc(t *testing.T) {
	m := newTestModel(t)
	sess := m.store.Create()
	sess.AddUserMessage("first draft", nil)

	updated, _ := m.handleCommand("/edit 1")
	m = updated.(Model)

	updated, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.editIndex != -1 {
		t.Error("esc should discard the staged edit")
	}
	if m.input.Value() != "" {
		t.Error("esc should clear the primed input")
	}
}

func TestEditCommandImmediateWithText(t *testing.T) {
	m := newTestModel(t)
	sess := m.store.Create()
	sess.AddUserMessage("old question", nil)

	updated, cmd := m.handleCommand("/edit 1 new question")
	m = updated.(Model)

	if m.state != StateStreaming {
		t.Error("/edit with replacement text should resubmit immediately")
	}
	if cmd == nil {
		t.Fatal("edit should produce a command")
	}
}

func TestExchangeDoneResetsState(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()
	m.state = StateStreaming
	m.streamText = "partial"
	m.baseTranscript = "old"

	updated, _ := m.handleExchangeDone(ExchangeDoneMsg{})
	m = updated.(Model)

	if m.state != StateReady {
		t.Error("done should return to ready")
	}
	if m.streamText != "" || m.baseTranscript != "" {
		t.Error("streaming display state should be cleared")
	}
}

func TestPickerNavigation(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()
	m.store.Create()
	m.state = StatePicker
	m.pickerIndex = 0

	updated, _ := m.handlePickerKey("down")
	m = updated.(Model)
	if m.pickerIndex != 1 {
		t.Errorf("pickerIndex = %d, want 1", m.pickerIndex)
	}

	updated, _ = m.handlePickerKey("down")
	m = updated.(Model)
	if m.pickerIndex != 1 {
		t.Error("pickerIndex should clamp at the end")
	}

	updated, _ = m.handlePickerKey("esc")
	m = updated.(Model)
	if m.state != StateReady {
		t.Error("esc should close the picker")
	}
}
