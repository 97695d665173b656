// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/jeranaias/rei-tui/internal/model"
)

func TestViewBeforeFirstResize(t *testing.T) {
	m := newTestModel(t)
	m.width = 0
	m.height = 0

	if m.View() != "Loading..." {
		t.Error("unsized view should show the loading placeholder")
	}
}

func TestStreamingTranscriptShowsPendingAndPartial(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()
	m.pendingUser = model.NewMessage(model.RoleUser, "tell me about the portfolio")
	m.streamText = "REI is a portfolio assistant"

	out := m.renderStreamingTranscript(80)

	if !strings.Contains(out, "tell me about the portfolio") {
		t.Error("pending user turn missing from streaming transcript")
	}
	if !strings.Contains(out, "portfolio assistant") {
		t.Error("partial reply missing from streaming transcript")
	}
}

func TestPickerListsSessions(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()
	sess := m.store.Active()
	m.store.Rename(sess.ID, "Resume review")
	m.state = StatePicker

	out := m.renderPicker()

	if !strings.Contains(out, "Resume review") {
		t.Error("picker should list the session name")
	}
	if !strings.Contains(out, "Sessions") {
		t.Error("picker should show its title")
	}
}

func TestEmptySessionShowsWelcome(t *testing.T) {
	m := newTestModel(t)
	m.store.Create()
	m.refreshViewport()

	if !strings.Contains(m.viewport.View(), "Portfolio Assistant") {
		t.Error("empty session should render the welcome screen")
	}
}
