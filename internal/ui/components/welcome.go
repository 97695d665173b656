// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rei-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// Welcome is the splash screen shown before the first message.
type Welcome struct {
	version   string
	modelName string

	width  int
	height int
}

// NewWelcome creates a welcome screen.
func NewWelcome() Welcome {
	return Welcome{
		version:   "dev",
		modelName: "unknown",
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetModelName sets the active model name.
func (w *Welcome) SetModelName(name string) {
	w.modelName = name
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// Init implements tea.Model.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		w.width = size.Width
		w.height = size.Height
	}
	return w, nil
}

// View renders the welcome screen centered in the terminal.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	boxWidth := 54
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	content := w.renderLogo() +
		"\n\n" + w.renderVersion() +
		"\n\n" + w.renderInfo() +
		"\n\n" + w.renderTips()

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 4).
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderLogo renders the ASCII logo.
func (w Welcome) renderLogo() string {
	logoStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	if w.width >= 50 {
		return logoStyle.Render(` ____  _____ ___
|  _ \| ____|_ _|
| |_) |  _|  | |
|  _ <| |___ | |
|_| \_\_____|___|`)
	}

	return logoStyle.Render("REI")
}

// renderVersion renders the version subtitle.
func (w Welcome) renderVersion() string {
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("Portfolio Assistant v" + w.version)
}

// renderInfo renders the active model line.
func (w Welcome) renderInfo() string {
	labelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	valueStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)

	return labelStyle.Render("Model: ") + valueStyle.Render(w.modelName)
}

// renderTips renders the quick start hints.
func (w Welcome) renderTips() string {
	tipStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)

	return lipgloss.JoinVertical(lipgloss.Left,
		tipStyle.Render("Type a message and press Enter"),
		tipStyle.Render("Use /help to see all commands"),
		tipStyle.Render("Press Esc to cancel a reply"),
	)
}
