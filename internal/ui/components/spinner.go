// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rei-tui/internal/ui/styles"
	"github.com/jeranaias/rei-tui/internal/util"
)

// =============================================================================
// SPINNER COMPONENT
// =============================================================================

// asciiFrames render everywhere, including terminals without Unicode fonts.
var asciiFrames = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    time.Second / 10,
}

// Spinner is an animated activity indicator with a message and an
// elapsed-time readout.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	active    bool
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New()
	s.Spinner = asciiFrames
	s.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return &Spinner{
		spinner: s,
		message: message,
	}
}

// Start activates the spinner and returns the tick command that drives
// the animation.
func (s *Spinner) Start() tea.Cmd {
	s.active = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool {
	return s.active
}

// SetMessage updates the spinner message.
func (s *Spinner) SetMessage(message string) {
	s.message = message
}

// Elapsed returns the time since Start.
func (s *Spinner) Elapsed() time.Duration {
	if !s.active {
		return 0
	}
	return time.Since(s.startTime)
}

// Update advances the animation on spinner tick messages.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.active {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner line.
func (s *Spinner) View() string {
	if !s.active {
		return ""
	}

	textStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	timeStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	out := s.spinner.View() + " " + textStyle.Render(s.message+"...")
	if elapsed := s.Elapsed(); elapsed >= time.Second {
		out += " " + timeStyle.Render("("+formatElapsed(elapsed)+")")
	}

	return out
}

// formatElapsed formats a duration as "3s" or "1m 12s".
func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return util.IntToString(secs) + "s"
	}
	return util.IntToString(secs/60) + "m " + util.IntToString(secs%60) + "s"
}

// =============================================================================
// THINKING INDICATOR
// =============================================================================

// ThinkingIndicator is the spinner shown while a reply is pending. The
// message reflects the phase: waiting for the first token vs streaming.
type ThinkingIndicator struct {
	*Spinner
	modelName string
}

// NewThinkingIndicator creates a thinking indicator for the given model.
func NewThinkingIndicator(modelName string) *ThinkingIndicator {
	return &ThinkingIndicator{
		Spinner:   NewSpinner("REI is thinking"),
		modelName: modelName,
	}
}

// SetModelName updates the model named in the indicator.
func (t *ThinkingIndicator) SetModelName(name string) {
	t.modelName = name
}

// MarkStreaming switches the message once the first token has arrived.
func (t *ThinkingIndicator) MarkStreaming() {
	t.SetMessage("REI is responding")
}

// View renders the indicator with the model name appended.
func (t *ThinkingIndicator) View() string {
	base := t.Spinner.View()
	if base == "" || t.modelName == "" {
		return base
	}

	modelStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	return base + " " + modelStyle.Render("via "+t.modelName)
}
