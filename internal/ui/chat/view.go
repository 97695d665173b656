// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/ui/components"
	"github.com/jeranaias/rei-tui/internal/ui/styles"
	"github.com/jeranaias/rei-tui/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat view.
// Layout: header + messages viewport + thinking line + input area + status bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.state == StatePicker {
		return m.renderPicker()
	}

	header := m.renderHeader()
	thinking := m.renderThinkingLine()
	input := m.renderInput()
	status := m.statusBar.View()

	baseView := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		m.viewport.View(),
		thinking,
		input,
		status,
	)

	if m.state == StateError && m.lastError != nil {
		return m.overlayCentered(baseView, m.renderErrorBox())
	}

	return baseView
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	sessionStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	title := titleStyle.Render("REI")
	if sess := m.store.Active(); sess != nil {
		title += "  " + sessionStyle.Render(sess.Name)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Background(styles.SurfaceDim).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(styles.Overlay).
		Render(title)
}

// renderThinkingLine shows the spinner while waiting, or the transient
// status message, or nothing.
func (m Model) renderThinkingLine() string {
	line := ""
	if m.state == StateStreaming && m.thinking.Active() {
		line = m.thinking.View()
	} else if m.statusMsg != "" {
		line = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render(m.statusMsg)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(line)
}

func (m Model) renderInput() string {
	inputLine := m.input.View()
	if m.state == StateStreaming {
		inputLine = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render("Streaming... press Esc to cancel")
	}

	return lipgloss.NewStyle().
		Width(m.width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		Render(inputLine)
}

func (m Model) renderErrorBox() string {
	titleStyle := lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	content := titleStyle.Render(m.lastError.Title) + "\n\n" +
		msgStyle.Render(m.lastError.Message) + "\n\n" +
		hintStyle.Render("Press Esc to dismiss")

	boxWidth := minInt(m.width-8, 60)
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Rose).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)
}

// =============================================================================
// SESSION PICKER
// =============================================================================

func (m Model) renderPicker() string {
	sessions := m.store.List()
	activeID := m.store.ActiveID()

	titleStyle := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	itemStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().
		Background(styles.Purple).
		Foreground(styles.TextInverse).
		Bold(true).
		Padding(0, 1)
	metaStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	lines := []string{titleStyle.Render("Sessions"), ""}
	for i, sess := range sessions {
		label := sess.Name
		if sess.ID == activeID {
			label += " *"
		}
		meta := util.IntToString(sess.MessageCount()) + " messages"
		if preview := util.TruncateRunes(sess.Preview(), 40); preview != "" {
			meta += " - " + preview
		}

		if i == m.pickerIndex {
			lines = append(lines, selectedStyle.Render(label))
		} else {
			lines = append(lines, itemStyle.Render(label))
		}
		lines = append(lines, "   "+metaStyle.Render(meta))
	}

	lines = append(lines, "", metaStyle.Render("enter switch - n new - d delete - esc close"))

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 2).
		Width(minInt(m.width-4, 70)).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// VIEWPORT CONTENT
// =============================================================================

// refreshViewport rebuilds the viewport content for the current state.
func (m *Model) refreshViewport() {
	width := maxInt(m.width, 40)

	if m.state == StateStreaming || m.pendingUser != nil {
		m.viewport.SetContent(m.renderStreamingTranscript(width))
		return
	}

	sess := m.store.Active()
	if sess == nil || sess.IsEmpty() {
		m.welcome.SetSize(width, m.viewport.Height)
		m.viewport.SetContent(m.welcome.View())
		return
	}

	ml := components.NewMessageList()
	ml.SetWidth(width)
	ml.SetMessages(sess.Messages)
	if m.cfg != nil {
		ml.ShowStats = m.cfg.UI.ShowStats
	}
	m.viewport.SetContent(ml.View())
}

// renderStreamingTranscript renders the frozen snapshot plus the pending
// user turn and the partial reply.
func (m *Model) renderStreamingTranscript(width int) string {
	parts := []string{}
	if m.baseTranscript != "" {
		parts = append(parts, m.baseTranscript)
	}

	if m.pendingUser != nil {
		bubble := components.NewMessageBubble(m.pendingUser)
		bubble.SetWidth(width)
		parts = append(parts, bubble.View())
	}

	if m.streamText != "" {
		partial := model.NewMessage(model.RoleAssistant, m.streamText)
		bubble := components.NewMessageBubble(partial)
		bubble.SetWidth(width)
		bubble.Streaming = true
		bubble.ShowStats = false
		parts = append(parts, bubble.View())
	}

	return strings.Join(parts, "\n\n")
}

// overlayCentered places an overlay box over dimmed base content.
func (m Model) overlayCentered(base, overlay string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}
