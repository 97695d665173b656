// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine drives chat exchanges: it assembles requests from
// session history, streams the assistant reply into the session, and
// falls back to an alternate model once when the selected one is
// unavailable.
package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/openrouter"
)

// =============================================================================
// STATE
// =============================================================================

// State describes what the engine is currently doing.
type State int

const (
	// StateIdle means no exchange is in flight.
	StateIdle State = iota
	// StateSubmitting means a request has been sent, no token yet.
	StateSubmitting
	// StateStreaming means deltas are arriving.
	StateStreaming
)

// String returns a display name for the state.
func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateStreaming:
		return "streaming"
	default:
		return "idle"
	}
}

// ErrBusy is returned when an exchange is already in flight.
var ErrBusy = errors.New("an exchange is already in progress")

// ErrNoUserTurn is returned when regenerate or edit find no user
// message to resubmit.
var ErrNoUserTurn = errors.New("no user message to resubmit")

// =============================================================================
// ENGINE
// =============================================================================

// Streamer is the API client surface the engine needs.
type Streamer interface {
	ChatStream(ctx context.Context, req openrouter.ChatRequest, callback openrouter.StreamCallback) error
}

// DeltaFunc receives each streamed content delta as it is appended to
// the assistant message.
type DeltaFunc func(token string)

// Engine runs one exchange at a time against an OpenRouter-style API.
// At most one assistant message is ever in streaming state; deltas are
// appended from the single streaming goroutine, so appends cannot
// interleave.
type Engine struct {
	mu     sync.Mutex
	client Streamer
	state  State
	cancel context.CancelFunc
}

// New creates an engine over the given client.
func New(client Streamer) *Engine {
	return &Engine{client: client}
}

// State returns the current engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Cancel aborts the in-flight exchange, if any. The partial assistant
// content received so far is kept and finalized.
func (e *Engine) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Submit appends a user turn to the session and streams the assistant
// reply into it. Returns the finalized assistant message; on failure the
// message carries a user-facing error description and the underlying
// error is returned alongside it.
func (e *Engine) Submit(ctx context.Context, sess *model.ChatSession, text string, images []string, opts Options, onDelta DeltaFunc) (*model.Message, error) {
	if e.State() != StateIdle {
		return nil, ErrBusy
	}
	sess.AddUserMessage(text, images)
	return e.exchange(ctx, sess, opts, onDelta)
}

// Regenerate drops the trailing assistant message and resubmits the
// prior user turn.
func (e *Engine) Regenerate(ctx context.Context, sess *model.ChatSession, opts Options, onDelta DeltaFunc) (*model.Message, error) {
	if e.State() != StateIdle {
		return nil, ErrBusy
	}
	sess.DropLastAssistant()
	last := sess.LastMessage()
	if last == nil || last.Role != model.RoleUser {
		return nil, ErrNoUserTurn
	}
	return e.exchange(ctx, sess, opts, onDelta)
}

// Edit replaces the user message at index with new text, discards all
// later history, and resubmits. The original message's attachments are
// kept.
func (e *Engine) Edit(ctx context.Context, sess *model.ChatSession, index int, text string, opts Options, onDelta DeltaFunc) (*model.Message, error) {
	if e.State() != StateIdle {
		return nil, ErrBusy
	}
	if index < 0 || index >= len(sess.Messages) || sess.Messages[index].Role != model.RoleUser {
		return nil, ErrNoUserTurn
	}
	images := sess.Messages[index].Images
	sess.Messages = sess.Messages[:index]
	sess.AddUserMessage(text, images)
	return e.exchange(ctx, sess, opts, onDelta)
}

// =============================================================================
// EXCHANGE
// =============================================================================

// exchange runs one request/stream cycle for the session's trailing
// user turn, including the single fallback retry.
func (e *Engine) exchange(ctx context.Context, sess *model.ChatSession, opts Options, onDelta DeltaFunc) (*model.Message, error) {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.state = StateSubmitting
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	defer func() {
		cancel()
		e.mu.Lock()
		e.state = StateIdle
		e.cancel = nil
		e.mu.Unlock()
	}()

	// Vision auto-switch: an attached image forces a model that can see.
	turn := sess.LastMessage()
	if turn.HasImages() {
		info, ok := model.Lookup(sess.ModelID)
		if !ok || !info.HasVision {
			if vision, ok := model.FirstVision(); ok {
				sess.ModelID = vision.ID
			}
		}
	}

	req := buildRequest(sess, opts)
	asst := sess.AddAssistantMessage()

	err := e.streamInto(ctx, req, asst, onDelta)
	if err != nil && shouldFallback(err) && ctx.Err() == nil {
		if fb, ok := model.Fallback(sess.ModelID); ok {
			// Discard the failed attempt and retry exactly once on the
			// fallback model, annotating the session with the switch.
			sess.DropLastAssistant()
			sess.ModelID = fb.ID
			req.Model = fb.ID
			asst = sess.AddAssistantMessage()
			err = e.streamInto(ctx, req, asst, onDelta)
		}
	}

	if err != nil {
		// Canceled streams keep their partial content; other failures
		// surface a readable description in the transcript.
		if errors.Is(err, context.Canceled) && !asst.IsEmpty() {
			asst.FinalizeStream(nil)
			return asst, nil
		}
		asst.FinalizeStream(nil)
		asst.Content = FriendlyError(err)
		return asst, err
	}

	if asst.IsEmpty() {
		asst.FinalizeStream(nil)
		asst.Content = "Sorry, I couldn't generate a response."
		return asst, nil
	}
	return asst, nil
}

// streamInto streams one completion into the assistant message,
// finalizing it with timing statistics on success.
func (e *Engine) streamInto(ctx context.Context, req openrouter.ChatRequest, asst *model.Message, onDelta DeltaFunc) error {
	stats := model.NewStatistics()
	tokens := 0

	err := e.client.ChatStream(ctx, req, func(chunk openrouter.StreamChunk) {
		content := chunk.GetContent()
		if content == "" {
			return
		}
		tokens++
		stats.RecordFirstToken()
		e.setState(StateStreaming)
		asst.AppendToken(content)
		if onDelta != nil {
			onDelta(content)
		}
	})
	if err != nil {
		return err
	}

	stats.Finalize(tokens)
	asst.FinalizeStream(stats)
	return nil
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}
