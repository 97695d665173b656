// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rei-tui/internal/config"
	"github.com/jeranaias/rei-tui/internal/engine"
	"github.com/jeranaias/rei-tui/internal/history"
	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/session"
	"github.com/jeranaias/rei-tui/internal/ui/components"
	"github.com/jeranaias/rei-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	// StateReady accepts input.
	StateReady State = iota
	// StateStreaming means a reply is being received.
	StateStreaming
	// StateError shows a blocking error box.
	StateError
	// StatePicker shows the session picker overlay.
	StatePicker
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State
	theme *styles.Theme

	width  int
	height int

	// Wiring
	store   *session.Store
	eng     *engine.Engine
	cfg     *config.Config
	archive *history.Archive

	// Components
	viewport  viewport.Model
	input     textinput.Model
	statusBar *components.StatusBar
	thinking  *components.ThinkingIndicator
	welcome   components.Welcome

	// Streaming display. The engine mutates the session from its own
	// goroutine during an exchange, so the transcript is snapshotted at
	// submit time and the partial reply renders from the buffer only.
	streamBuf      *StreamingBuffer
	streamText     string
	baseTranscript string
	pendingUser    *model.Message

	// Mode toggles
	deepThinking bool

	// Index of the message loaded into the input by a bare /edit,
	// resubmitted on Enter. -1 when no edit is staged.
	editIndex int

	// Session picker
	pickerIndex int

	// Transient status and errors
	statusMsg string
	lastError *ErrorMsg

	version string
}

// New creates the chat model wired to the session store and engine.
func New(theme *styles.Theme, store *session.Store, eng *engine.Engine, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask REI anything..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sb := components.NewStatusBar()
	modelName := model.DefaultModelID
	if sess := store.Active(); sess != nil {
		modelName = sess.ModelID
	}
	if info, ok := model.Lookup(modelName); ok {
		sb.SetModelName(info.Name)
		sb.SetVision(info.HasVision)
	} else {
		sb.SetModelName(modelName)
	}

	deep := false
	if cfg != nil {
		deep = cfg.Chat.DeepThinking
	}
	sb.SetDeepThinking(deep)

	welcome := components.NewWelcome()
	if info, ok := model.Lookup(modelName); ok {
		welcome.SetModelName(info.Name)
	}

	m := Model{
		state:        StateReady,
		theme:        theme,
		store:        store,
		eng:          eng,
		cfg:          cfg,
		viewport:     vp,
		input:        ti,
		statusBar:    sb,
		thinking:     components.NewThinkingIndicator(""),
		welcome:      welcome,
		streamBuf:    NewStreamingBuffer(),
		deepThinking: deep,
		editIndex:    -1,
		version:      "dev",
	}
	m.refreshTranscript()
	return m
}

// SetVersion sets the version shown on the welcome screen.
func (m *Model) SetVersion(v string) {
	m.version = v
	m.welcome.SetVersion(v)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ExchangeStartMsg:
		m.state = StateStreaming
		m.thinking.SetMessage("REI is thinking")
		m.statusBar.SetStatus(components.StatusThinking)
		return m, tea.Batch(m.thinking.Start(), streamTickCmd())

	case StreamTickMsg:
		return m.handleStreamTick(msg)

	case ExchangeDoneMsg:
		return m.handleExchangeDone(msg)

	case StatusMsg:
		m.statusMsg = msg.Text
		return m, clearStatusAfter(4 * time.Second)

	case ClearStatusMsg:
		m.statusMsg = ""
		return m, nil

	case ErrorMsg:
		m.lastError = &msg
		m.state = StateError
		m.statusBar.SetStatus(components.StatusError)
		return m, nil

	case SessionSwitchedMsg:
		m.refreshTranscript()
		m.syncStatusBar()
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			return m, statusCmd("Export failed: " + msg.Err.Error())
		}
		return m, statusCmd("Exported to " + msg.Path)

	case SearchDoneMsg:
		return m.handleSearchDone(msg)

	default:
		// Spinner ticks and everything else.
		var cmds []tea.Cmd
		if cmd := m.thinking.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.state == StateReady {
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			cmds = append(cmds, inputCmd)
		}
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Layout: header + viewport + thinking line + input area + status bar.
	const (
		headerHeight    = 2
		inputAreaHeight = 3
		statusBarHeight = 1
		thinkingHeight  = 1
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight - thinkingHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = maxInt(m.width, 1)
	m.viewport.Height = viewportHeight

	inputWidth := m.width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.statusBar.SetWidth(m.width)
	m.welcome.SetSize(m.width, m.height)
	if m.theme != nil {
		m.theme.SetSize(m.width, m.height)
	}

	m.refreshViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

// =============================================================================
// STREAMING
// =============================================================================

// submitCmd runs one exchange on the engine. The delta callback feeds the
// streaming buffer; the final message and error come back as one message.
func (m *Model) submitCmd(text string, images []string) tea.Cmd {
	eng := m.eng
	sess := m.store.Active()
	opts := m.exchangeOptions()
	buf := m.streamBuf

	exchange := func() tea.Msg {
		reply, err := eng.Submit(context.Background(), sess, text, images, opts, func(token string) {
			buf.Write(token)
		})
		return ExchangeDoneMsg{Reply: reply, Err: err}
	}
	return tea.Batch(
		func() tea.Msg { return ExchangeStartMsg{StartTime: time.Now()} },
		exchange,
	)
}

// regenerateCmd re-runs the last user turn.
func (m *Model) regenerateCmd() tea.Cmd {
	eng := m.eng
	sess := m.store.Active()
	opts := m.exchangeOptions()
	buf := m.streamBuf

	exchange := func() tea.Msg {
		reply, err := eng.Regenerate(context.Background(), sess, opts, func(token string) {
			buf.Write(token)
		})
		return ExchangeDoneMsg{Reply: reply, Err: err}
	}
	return tea.Batch(
		func() tea.Msg { return ExchangeStartMsg{StartTime: time.Now()} },
		exchange,
	)
}

// editCmd truncates at index and resubmits edited text.
func (m *Model) editCmd(index int, text string) tea.Cmd {
	eng := m.eng
	sess := m.store.Active()
	opts := m.exchangeOptions()
	buf := m.streamBuf

	exchange := func() tea.Msg {
		reply, err := eng.Edit(context.Background(), sess, index, text, opts, func(token string) {
			buf.Write(token)
		})
		return ExchangeDoneMsg{Reply: reply, Err: err}
	}
	return tea.Batch(
		func() tea.Msg { return ExchangeStartMsg{StartTime: time.Now()} },
		exchange,
	)
}

func (m *Model) exchangeOptions() engine.Options {
	opts := engine.Options{DeepThinking: m.deepThinking}
	if m.cfg != nil {
		opts.Creative = m.cfg.Chat.Creative
	}
	return opts
}

func (m Model) handleStreamTick(StreamTickMsg) (tea.Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}

	if content, ok := m.streamBuf.Flush(); ok {
		if m.streamText == "" {
			m.thinking.MarkStreaming()
			m.statusBar.SetStatus(components.StatusStreaming)
		}
		m.streamText += content
		m.refreshViewport()
		m.viewport.GotoBottom()
	}

	return m, streamTickCmd()
}

func (m Model) handleExchangeDone(msg ExchangeDoneMsg) (tea.Model, tea.Cmd) {
	// Render whatever is left in the buffer, then hand display back to
	// the session, which now holds the finalized (or partial) reply.
	if content, ok := m.streamBuf.ForceFlush(); ok {
		m.streamText += content
	}

	m.state = StateReady
	m.thinking.Stop()
	m.streamText = ""
	m.baseTranscript = ""
	m.pendingUser = nil
	m.statusBar.SetStatus(components.StatusReady)

	if sess := m.store.Active(); sess != nil {
		m.store.Sync(sess)
	}
	m.syncStatusBar()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	m.input.Focus()

	var cmds []tea.Cmd
	cmds = append(cmds, textinput.Blink)
	if msg.Err != nil && msg.Err != context.Canceled {
		cmds = append(cmds, statusCmd(engine.FriendlyError(msg.Err)))
	}
	return m, tea.Batch(cmds...)
}

// cancelStream aborts the in-flight exchange. The engine keeps partial
// content in the session.
func (m *Model) cancelStream() {
	m.eng.Cancel()
	m.streamBuf.Reset()
}

// =============================================================================
// TRANSCRIPT RENDERING STATE
// =============================================================================

// refreshTranscript re-renders the viewport from the session. Only valid
// while no exchange is in flight.
func (m *Model) refreshTranscript() {
	m.refreshViewport()
}

// snapshotTranscript freezes the current transcript rendering before an
// exchange starts mutating the session.
func (m *Model) snapshotTranscript(dropLastAssistant bool, upTo int) {
	sess := m.store.Active()
	if sess == nil {
		m.baseTranscript = ""
		return
	}

	msgs := sess.Messages
	if upTo >= 0 && upTo <= len(msgs) {
		msgs = msgs[:upTo]
	}
	if dropLastAssistant && len(msgs) > 0 && msgs[len(msgs)-1].Role == model.RoleAssistant {
		msgs = msgs[:len(msgs)-1]
	}

	ml := components.NewMessageList()
	ml.SetWidth(maxInt(m.width, 40))
	ml.SetMessages(msgs)
	if m.cfg != nil {
		ml.ShowStats = m.cfg.UI.ShowStats
	}
	m.baseTranscript = ml.View()
}

// syncStatusBar refreshes the status bar from the active session.
func (m *Model) syncStatusBar() {
	sess := m.store.Active()
	if sess == nil {
		return
	}
	if info, ok := model.Lookup(sess.ModelID); ok {
		m.statusBar.SetModelName(info.Name)
		m.statusBar.SetVision(info.HasVision)
		m.welcome.SetModelName(info.Name)
	} else {
		m.statusBar.SetModelName(sess.ModelID)
		m.statusBar.SetVision(false)
	}
	m.statusBar.SetSessionName(sess.Name)
	m.statusBar.SetTokenCount(sess.EstimateTokens())
	m.statusBar.SetDeepThinking(m.deepThinking)
}

// =============================================================================
// GETTERS
// =============================================================================

// GetState returns the current view state.
func (m *Model) GetState() State {
	return m.state
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
