// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"errors"
	"strings"
	"time"
)

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds a complete chat exchange with history and metadata.
type ChatSession struct {
	// Identity
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages in arrival order, oldest first.
	Messages []*Message `json:"messages"`

	// ModelID is the model currently selected for this session.
	ModelID string `json:"model_id"`
}

// NewChatSession creates a new session with a generated ID.
func NewChatSession(name, modelID string) *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:        generateID("sess"),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
		ModelID:   modelID,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the session.
func (s *ChatSession) AddMessage(msg *Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// AddUserMessage creates and appends a user message.
func (s *ChatSession) AddUserMessage(content string, images []string) *Message {
	msg := NewUserMessageWithImages(content, images)
	s.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and appends a streaming assistant message.
func (s *ChatSession) AddAssistantMessage() *Message {
	msg := NewAssistantMessage(s.ModelID)
	s.AddMessage(msg)
	return msg
}

// LastMessage returns the most recent message, or nil if empty.
func (s *ChatSession) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// LastUserMessage returns the most recent user message, or nil.
func (s *ChatSession) LastUserMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i]
		}
	}
	return nil
}

// StreamingMessage returns the message currently being streamed, or nil.
// At most one message is ever in streaming state.
func (s *ChatSession) StreamingMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsStreaming {
			return s.Messages[i]
		}
	}
	return nil
}

// IndexOf returns the position of the message with the given ID, or -1.
func (s *ChatSession) IndexOf(id string) int {
	for i, msg := range s.Messages {
		if msg.ID == id {
			return i
		}
	}
	return -1
}

// TruncateAfter removes every message after index i.
// Used when a user message is edited: history past the edit point is
// invalidated and the exchange is resubmitted.
func (s *ChatSession) TruncateAfter(i int) {
	if i < 0 || i >= len(s.Messages)-1 {
		return
	}
	s.Messages = s.Messages[:i+1]
	s.UpdatedAt = time.Now()
}

// DropLastAssistant removes the trailing assistant message, if any.
// Used by regenerate before resubmitting the prior user turn.
func (s *ChatSession) DropLastAssistant() bool {
	last := s.LastMessage()
	if last == nil || last.Role != RoleAssistant {
		return false
	}
	s.Messages = s.Messages[:len(s.Messages)-1]
	s.UpdatedAt = time.Now()
	return true
}

// Window returns the last n messages (all of them when fewer exist).
// The returned slice aliases the session's backing array.
func (s *ChatSession) Window(n int) []*Message {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// MessageCount returns the number of messages.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if there are no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// =============================================================================
// TRANSCRIPT / PREVIEW
// =============================================================================

// Transcript flattens the session into a "role: content" transcript,
// one block per message, blank-line separated.
func (s *ChatSession) Transcript() string {
	var b strings.Builder
	for i, msg := range s.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(msg.Role.String())
		b.WriteString(": ")
		b.WriteString(msg.GetDisplayContent())
	}
	return b.String()
}

// Preview returns a short preview of the session for listing.
func (s *ChatSession) Preview() string {
	if len(s.Messages) == 0 {
		return "Empty session"
	}
	first := s.LastUserMessage()
	if first == nil {
		first = s.Messages[0]
	}
	return first.Preview(80)
}

// EstimateTokens estimates the total token count of the session history.
func (s *ChatSession) EstimateTokens() int {
	total := 0
	for _, msg := range s.Messages {
		total += msg.EstimateTokens() + 4
	}
	return total
}

// =============================================================================
// VALIDATION / CLONING
// =============================================================================

// Validate checks the structural invariants a loaded session must satisfy.
// Sessions failing validation are discarded rather than repaired.
func (s *ChatSession) Validate() error {
	if s.ID == "" {
		return errors.New("session has empty id")
	}
	for _, msg := range s.Messages {
		if msg == nil {
			return errors.New("session contains nil message")
		}
		if msg.ID == "" {
			return errors.New("message has empty id")
		}
		if !msg.Role.Valid() {
			return errors.New("message has invalid role " + string(msg.Role))
		}
	}
	return nil
}

// Clone creates a deep copy of the session.
func (s *ChatSession) Clone() *ChatSession {
	clone := &ChatSession{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		ModelID:   s.ModelID,
		Messages:  make([]*Message, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		clone.Messages[i] = msg.Clone()
	}
	return clone
}

// Meta returns lightweight metadata for listing.
func (s *ChatSession) Meta() SessionMeta {
	return SessionMeta{
		ID:           s.ID,
		Name:         s.Name,
		ModelID:      s.ModelID,
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Preview:      s.Preview(),
	}
}

// SessionMeta holds lightweight metadata for listing.
type SessionMeta struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ModelID      string    `json:"model_id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Preview      string    `json:"preview"`
}
