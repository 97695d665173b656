// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/ui/components"
)

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	// Emergency exit works in every state.
	if keyStr == "ctrl+q" {
		return m, tea.Quit
	}

	if m.state == StatePicker {
		return m.handlePickerKey(keyStr)
	}

	if m.state == StateError {
		switch keyStr {
		case "esc", "enter", " ":
			m.lastError = nil
			m.state = StateReady
			m.statusBar.SetStatus(components.StatusReady)
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	if m.state == StateStreaming {
		switch keyStr {
		case "esc", "ctrl+c":
			m.cancelStream()
			return m, statusCmd("Canceled")
		case "pgup", "up":
			m.viewport.LineUp(3)
			return m, nil
		case "pgdown", "down":
			m.viewport.LineDown(3)
			return m, nil
		}
		return m, nil
	}

	// Ready state.
	switch keyStr {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.editIndex >= 0 {
			m.editIndex = -1
			m.input.Reset()
			return m, statusCmd("Edit canceled")
		}
		return m, nil

	case "ctrl+n":
		sess := m.store.Create()
		m.syncStatusBar()
		m.refreshTranscript()
		return m, statusCmd("Started " + sess.Name)

	case "ctrl+s":
		if m.store.Len() == 0 {
			return m, statusCmd("No sessions yet")
		}
		m.state = StatePicker
		m.pickerIndex = 0
		m.input.Blur()
		return m, nil

	case "ctrl+r":
		return m.startRegenerate()

	case "ctrl+t":
		m.deepThinking = !m.deepThinking
		m.statusBar.SetDeepThinking(m.deepThinking)
		if m.deepThinking {
			return m, statusCmd("Deep thinking on")
		}
		return m, statusCmd("Deep thinking off")

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil

	case "up":
		m.viewport.LineUp(1)
		return m, nil

	case "down":
		m.viewport.LineDown(1)
		return m, nil

	case "home":
		m.viewport.GotoTop()
		return m, nil

	case "end":
		m.viewport.GotoBottom()
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		if strings.HasPrefix(text, "/") {
			return m.handleCommand(text)
		}
		if m.editIndex >= 0 {
			index := m.editIndex
			m.editIndex = -1
			// Revalidate: the session may have changed since /edit
			// staged the message.
			sess := m.store.Active()
			if sess != nil && index < len(sess.Messages) && sess.Messages[index].Role == model.RoleUser {
				return m.startEdit(index, text)
			}
		}
		return m.startSubmit(text, nil)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// EXCHANGE TRIGGERS
// =============================================================================

func (m Model) startSubmit(text string, images []string) (tea.Model, tea.Cmd) {
	if m.store.Active() == nil {
		m.store.Create()
		m.syncStatusBar()
	}

	m.streamBuf.Reset()
	m.streamText = ""
	m.snapshotTranscript(false, -1)
	m.pendingUser = model.NewMessage(model.RoleUser, text)
	m.pendingUser.Images = images
	m.state = StateStreaming
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, m.submitCmd(text, images)
}

func (m Model) startRegenerate() (tea.Model, tea.Cmd) {
	sess := m.store.Active()
	if sess == nil || sess.LastUserMessage() == nil {
		return m, statusCmd("Nothing to regenerate")
	}

	m.streamBuf.Reset()
	m.streamText = ""
	m.snapshotTranscript(true, -1)
	m.pendingUser = nil
	m.state = StateStreaming
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, m.regenerateCmd()
}

func (m Model) startEdit(index int, text string) (tea.Model, tea.Cmd) {
	m.streamBuf.Reset()
	m.streamText = ""
	m.snapshotTranscript(false, index)
	m.pendingUser = model.NewMessage(model.RoleUser, text)
	m.state = StateStreaming
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, m.editCmd(index, text)
}

// =============================================================================
// SESSION PICKER
// =============================================================================

func (m Model) handlePickerKey(keyStr string) (tea.Model, tea.Cmd) {
	sessions := m.store.List()

	switch keyStr {
	case "esc", "ctrl+s", "q":
		m.state = StateReady
		m.input.Focus()
		return m, textinput.Blink

	case "up", "k":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
		return m, nil

	case "down", "j":
		if m.pickerIndex < len(sessions)-1 {
			m.pickerIndex++
		}
		return m, nil

	case "n":
		sess := m.store.Create()
		m.state = StateReady
		m.syncStatusBar()
		m.refreshTranscript()
		m.input.Focus()
		return m, tea.Batch(textinput.Blink, statusCmd("Started "+sess.Name))

	case "d":
		if m.pickerIndex >= len(sessions) {
			return m, nil
		}
		victim := sessions[m.pickerIndex]
		m.store.Delete(victim.ID)
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
		if m.store.Len() == 0 {
			m.state = StateReady
			m.refreshTranscript()
			m.input.Focus()
			return m, tea.Batch(textinput.Blink, statusCmd("Deleted "+victim.Name))
		}
		return m, statusCmd("Deleted " + victim.Name)

	case "enter":
		if m.pickerIndex >= len(sessions) {
			return m, nil
		}
		target := sessions[m.pickerIndex]
		m.store.Switch(target.ID)
		m.state = StateReady
		m.input.Focus()
		return m, tea.Batch(
			textinput.Blink,
			func() tea.Msg { return SessionSwitchedMsg{ID: target.ID} },
		)
	}

	return m, nil
}

// =============================================================================
// SEARCH RESULTS
// =============================================================================

func (m Model) handleSearchDone(msg SearchDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, statusCmd("Search failed: " + msg.Err.Error())
	}
	if len(msg.Lines) == 0 {
		return m, statusCmd("No matches for \"" + msg.Query + "\"")
	}

	// Results land in the transcript as a system notice so they scroll
	// and persist like any other message.
	sess := m.store.Active()
	if sess == nil {
		sess = m.store.Create()
	}
	note := "Search results for \"" + msg.Query + "\":\n" + strings.Join(msg.Lines, "\n")
	sess.AddMessage(model.NewMessage(model.RoleSystem, note))
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, nil
}
