// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rei-tui/internal/export"
	"github.com/jeranaias/rei-tui/internal/history"
	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/util"
)

// helpText lists the slash commands shown by /help.
const helpText = `Commands:
  /help              Show this help
  /new               Start a new session
  /sessions          Open the session picker
  /switch <name|#>   Switch to a session
  /rename <name>     Rename the active session
  /delete            Delete the active session
  /model <name>      Switch the session model
  /models            List available models
  /deep              Toggle deep thinking mode
  /edit <#> [text]   Edit message #; with no text, loads it for revision
  /export [md|json]  Export the transcript
  /search <query>    Search archived messages
  /quit              Exit

Keys: Ctrl+N new - Ctrl+S sessions - Ctrl+R retry - Ctrl+T deep - Esc cancel`

// SetArchive wires the message archive used by /search.
func (m *Model) SetArchive(a *history.Archive) {
	m.archive = a
}

// =============================================================================
// SLASH COMMAND DISPATCH
// =============================================================================

func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help":
		return m.addNotice(helpText)

	case "/new":
		sess := m.store.Create()
		m.syncStatusBar()
		m.refreshTranscript()
		return m, statusCmd("Started " + sess.Name)

	case "/sessions":
		if m.store.Len() == 0 {
			return m, statusCmd("No sessions yet")
		}
		m.state = StatePicker
		m.pickerIndex = 0
		m.input.Blur()
		return m, nil

	case "/switch":
		return m.commandSwitch(args)

	case "/rename":
		return m.commandRename(args)

	case "/delete":
		return m.commandDelete()

	case "/model":
		return m.commandModel(args)

	case "/models":
		return m.addNotice(formatModelCatalog())

	case "/deep":
		m.deepThinking = !m.deepThinking
		m.statusBar.SetDeepThinking(m.deepThinking)
		if m.deepThinking {
			return m, statusCmd("Deep thinking on")
		}
		return m, statusCmd("Deep thinking off")

	case "/edit":
		return m.commandEdit(args)

	case "/export":
		return m.commandExport(args)

	case "/search":
		return m.commandSearch(args)

	case "/quit", "/exit":
		return m, tea.Quit

	default:
		return m, statusCmd("Unknown command " + cmd + " (try /help)")
	}
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func (m Model) commandSwitch(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, statusCmd("Usage: /switch <name|#>")
	}

	target := strings.Join(args, " ")
	sessions := m.store.List()

	// Accept a 1-based index or a name prefix.
	if n, err := strconv.Atoi(target); err == nil && n >= 1 && n <= len(sessions) {
		m.store.Switch(sessions[n-1].ID)
		return m.afterSwitch(sessions[n-1])
	}
	for _, sess := range sessions {
		if strings.EqualFold(sess.Name, target) || strings.HasPrefix(strings.ToLower(sess.Name), strings.ToLower(target)) {
			m.store.Switch(sess.ID)
			return m.afterSwitch(sess)
		}
	}
	return m, statusCmd("No session matching " + target)
}

func (m Model) afterSwitch(sess *model.ChatSession) (tea.Model, tea.Cmd) {
	m.syncStatusBar()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, statusCmd("Switched to " + sess.Name)
}

func (m Model) commandRename(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, statusCmd("Usage: /rename <name>")
	}
	sess := m.store.Active()
	if sess == nil {
		return m, statusCmd("No active session")
	}
	name := strings.Join(args, " ")
	if !m.store.Rename(sess.ID, name) {
		return m, statusCmd("Rename failed")
	}
	m.syncStatusBar()
	return m, statusCmd("Renamed to " + name)
}

func (m Model) commandDelete() (tea.Model, tea.Cmd) {
	sess := m.store.Active()
	if sess == nil {
		return m, statusCmd("No active session")
	}
	name := sess.Name
	m.store.Delete(sess.ID)
	m.syncStatusBar()
	m.refreshTranscript()
	return m, statusCmd("Deleted " + name)
}

func (m Model) commandModel(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, statusCmd("Usage: /model <name> (see /models)")
	}
	sess := m.store.Active()
	if sess == nil {
		sess = m.store.Create()
	}

	info, ok := model.Lookup(strings.Join(args, " "))
	if !ok {
		return m, statusCmd("Unknown model (see /models)")
	}
	sess.ModelID = info.ID
	m.store.Sync(sess)
	m.syncStatusBar()
	return m, statusCmd("Model set to " + info.Name)
}

func (m Model) commandEdit(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, statusCmd("Usage: /edit <#> [new text]")
	}
	sess := m.store.Active()
	if sess == nil {
		return m, statusCmd("No active session")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(sess.Messages) {
		return m, statusCmd("Message # out of range")
	}
	index := n - 1
	if sess.Messages[index].Role != model.RoleUser {
		return m, statusCmd("Message " + args[0] + " is not yours to edit")
	}

	// Without replacement text, load the message into the input for
	// revision; Enter resubmits, Esc cancels.
	if len(args) == 1 {
		m.editIndex = index
		m.input.SetValue(sess.Messages[index].Content)
		m.input.CursorEnd()
		return m, statusCmd("Editing message " + args[0] + " (Enter to resubmit, Esc to cancel)")
	}

	return m.startEdit(index, strings.Join(args[1:], " "))
}

func (m Model) commandExport(args []string) (tea.Model, tea.Cmd) {
	sess := m.store.Active()
	if sess == nil || sess.IsEmpty() {
		return m, statusCmd("Nothing to export")
	}

	format := "markdown"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	exporter, err := export.ForFormat(format, nil)
	if err != nil {
		return m, statusCmd(err.Error())
	}

	snapshot := sess.Clone()
	return m, func() tea.Msg {
		path, err := export.ExportToFile(snapshot, exporter, export.DefaultOptions())
		return ExportDoneMsg{Path: path, Err: err}
	}
}

func (m Model) commandSearch(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, statusCmd("Usage: /search <query>")
	}
	if m.archive == nil {
		return m, statusCmd("Archive unavailable")
	}

	query := strings.Join(args, " ")
	archive := m.archive
	return m, func() tea.Msg {
		hits, err := archive.Search(query, 10)
		if err != nil {
			return SearchDoneMsg{Query: query, Err: err}
		}
		lines := make([]string, 0, len(hits))
		for _, hit := range hits {
			lines = append(lines, formatHit(hit))
		}
		return SearchDoneMsg{Query: query, Lines: lines}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// addNotice appends a system message to the transcript.
func (m Model) addNotice(text string) (tea.Model, tea.Cmd) {
	sess := m.store.Active()
	if sess == nil {
		sess = m.store.Create()
		m.syncStatusBar()
	}
	sess.AddMessage(model.NewMessage(model.RoleSystem, text))
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, nil
}

// formatModelCatalog lists the catalog grouped by category.
func formatModelCatalog() string {
	var b strings.Builder
	b.WriteString("Available models (all free tier):\n")
	byCat := model.ByCategory()
	for _, cat := range model.Categories() {
		infos, ok := byCat[cat]
		if !ok {
			continue
		}
		b.WriteString("\n" + cat + ":\n")
		for _, info := range infos {
			b.WriteString("  " + util.PadRight(info.Name, 26) + " " + info.Context)
			if info.HasVision {
				b.WriteString("  [vision]")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatHit renders one archive search hit.
func formatHit(hit history.Hit) string {
	preview := hit.Content
	if util.RuneLen(preview) > 80 {
		preview = util.TruncateRunes(preview, 80)
	}
	preview = strings.ReplaceAll(preview, "\n", " ")
	return "[" + hit.SessionName + "] " + hit.Role.DisplayName() + ": " + preview
}
