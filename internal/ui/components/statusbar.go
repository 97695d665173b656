// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rei-tui/internal/ui/styles"
)

// =============================================================================
// STATUS TYPES
// =============================================================================

// Status represents the current activity shown in the status bar.
type Status int

const (
	// StatusReady means the engine is idle and input is accepted.
	StatusReady Status = iota
	// StatusThinking means a request is in flight, no token yet.
	StatusThinking
	// StatusStreaming means reply tokens are arriving.
	StatusStreaming
	// StatusError means the last exchange failed.
	StatusError
)

// String returns the status display name.
func (s Status) String() string {
	switch s {
	case StatusThinking:
		return "Thinking"
	case StatusStreaming:
		return "Streaming"
	case StatusError:
		return "Error"
	default:
		return "Ready"
	}
}

// Icon returns an ASCII indicator for the status.
// ACCESSIBILITY: shape cues work without color.
func (s Status) Icon() string {
	switch s {
	case StatusThinking:
		return "(*)"
	case StatusStreaming:
		return ">>>"
	case StatusError:
		return "[X]"
	default:
		return "[OK]"
	}
}

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom bar showing the active model, mode badges,
// session token estimate, and keyboard hints.
type StatusBar struct {
	width int

	status       Status
	modelName    string
	deepThinking bool
	vision       bool
	tokenCount   int
	sessionName  string
}

// NewStatusBar creates a status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{
		width:     80,
		status:    StatusReady,
		modelName: "unknown",
	}
}

// SetWidth updates the bar width.
func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// SetStatus updates the activity status.
func (sb *StatusBar) SetStatus(status Status) {
	sb.status = status
}

// SetModelName updates the displayed model name.
func (sb *StatusBar) SetModelName(name string) {
	sb.modelName = name
}

// SetDeepThinking toggles the DEEP badge.
func (sb *StatusBar) SetDeepThinking(on bool) {
	sb.deepThinking = on
}

// SetVision toggles the VISION badge.
func (sb *StatusBar) SetVision(on bool) {
	sb.vision = on
}

// SetTokenCount updates the session token estimate.
func (sb *StatusBar) SetTokenCount(count int) {
	sb.tokenCount = count
}

// SetSessionName updates the displayed session name.
func (sb *StatusBar) SetSessionName(name string) {
	sb.sessionName = name
}

// View renders the status bar at the current width.
func (sb *StatusBar) View() string {
	if sb.width < 50 {
		return sb.viewNarrow()
	}
	if sb.width < 90 {
		return sb.viewMedium()
	}
	return sb.viewWide()
}

// viewNarrow shows only status and model.
func (sb *StatusBar) viewNarrow() string {
	left := sb.renderStatus() + " " + sb.renderModel()
	return sb.barStyle().Render(left)
}

// viewMedium adds the mode badges and token estimate.
func (sb *StatusBar) viewMedium() string {
	left := sb.renderStatus() + " " + sb.renderModel() + sb.renderBadges()
	right := sb.renderTokens()

	return sb.barStyle().Render(sb.spread(left, right))
}

// viewWide adds the session name and keyboard hints.
func (sb *StatusBar) viewWide() string {
	left := sb.renderStatus() + " " + sb.renderModel() + sb.renderBadges()
	if sb.sessionName != "" {
		sessionStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		left += "  " + sessionStyle.Render(sb.sessionName)
	}

	right := sb.renderTokens() + "  " + sb.renderHints()

	return sb.barStyle().Render(sb.spread(left, right))
}

// barStyle is the full-width background style.
func (sb *StatusBar) barStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(sb.width).
		Padding(0, 1)
}

// spread joins left and right content with padding in between.
func (sb *StatusBar) spread(left, right string) string {
	gap := sb.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (sb *StatusBar) renderStatus() string {
	var color lipgloss.AdaptiveColor
	switch sb.status {
	case StatusThinking, StatusStreaming:
		color = styles.Amber
	case StatusError:
		color = styles.Rose
	default:
		color = styles.Emerald
	}

	statusStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	return statusStyle.Render(sb.status.Icon() + " " + sb.status.String())
}

func (sb *StatusBar) renderModel() string {
	modelStyle := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	return modelStyle.Render(sb.modelName)
}

func (sb *StatusBar) renderBadges() string {
	out := ""
	if sb.deepThinking {
		deepStyle := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
		out += " " + deepStyle.Render("[DEEP]")
	}
	if sb.vision {
		visionStyle := lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
		out += " " + visionStyle.Render("[VISION]")
	}
	return out
}

func (sb *StatusBar) renderTokens() string {
	if sb.tokenCount <= 0 {
		return ""
	}
	tokenStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	return tokenStyle.Render("~" + fmtNumber(sb.tokenCount) + " tok")
}

func (sb *StatusBar) renderHints() string {
	keyStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	hints := []struct{ key, desc string }{
		{"^N", "new"},
		{"^S", "sessions"},
		{"^R", "retry"},
		{"Esc", "cancel"},
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyStyle.Render(h.key) + descStyle.Render(" "+h.desc)
	}
	return strings.Join(parts, "  ")
}
