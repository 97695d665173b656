// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rei-tui/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// ExchangeStartMsg signals that a request has been handed to the engine.
type ExchangeStartMsg struct {
	StartTime time.Time
}

// ExchangeDoneMsg signals that the exchange finished, successfully or not.
// Err carries cancellation too; partial replies are already in the session.
type ExchangeDoneMsg struct {
	Reply *model.Message
	Err   error
}

// StreamTickMsg drives the batched streaming render at a capped frame rate.
type StreamTickMsg struct {
	Time time.Time
}

// streamTickCmd schedules the next streaming render tick (~30fps).
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// StatusMsg shows a transient line in the status area.
type StatusMsg struct {
	Text string
}

// ErrorMsg shows a dismissible error box.
type ErrorMsg struct {
	Title   string
	Message string
}

// ClearStatusMsg clears the transient status line.
type ClearStatusMsg struct{}

// statusCmd emits a transient status message.
func statusCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text}
	}
}

// clearStatusAfter schedules clearing the status line.
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionSwitchedMsg confirms the active session changed.
type SessionSwitchedMsg struct {
	ID string
}

// ExportDoneMsg reports the outcome of a transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// SearchDoneMsg delivers archive search results.
type SearchDoneMsg struct {
	Query string
	Lines []string
	Err   error
}
