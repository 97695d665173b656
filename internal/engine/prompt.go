// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"strings"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/openrouter"
)

// =============================================================================
// PROMPT ASSEMBLY
// =============================================================================

// historyWindow is how many prior messages accompany each request.
const historyWindow = 10

const (
	systemPrompt = "You are REI, a helpful AI assistant for a developer portfolio website. " +
		"Your name is REI and you should introduce yourself as such when appropriate. " +
		"Be concise, friendly, and helpful. Focus on answering questions about web " +
		"development, programming, and general assistance."

	deepThinkingClause = "Use deep reasoning and provide comprehensive analysis. " +
		"Think through problems step by step and provide detailed explanations " +
		"with your reasoning process."

	creativeClause = "Be creative and innovative in your responses. " +
		"Think outside the box and provide unique perspectives."

	visionClause = "You can see and analyze images provided by the user. " +
		"Describe what you see and help with any visual questions."
)

// Generation parameters per mode.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
	deepTemperature    = 0.3
	deepMaxTokens      = 4000
)

// Options select the conversation modes for one exchange.
type Options struct {
	DeepThinking bool
	Creative     bool
}

// buildSystemPrompt assembles the persona prompt with mode clauses.
func buildSystemPrompt(opts Options, hasImages bool) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	if opts.DeepThinking {
		b.WriteString(" ")
		b.WriteString(deepThinkingClause)
	}
	if opts.Creative {
		b.WriteString(" ")
		b.WriteString(creativeClause)
	}
	if hasImages {
		b.WriteString(" ")
		b.WriteString(visionClause)
	}
	return b.String()
}

// buildRequest assembles the chat completion request for the session's
// trailing user turn: system prompt, a window of prior history, then the
// user turn itself (multimodal when it carries images and the selected
// model can see them).
func buildRequest(sess *model.ChatSession, opts Options) openrouter.ChatRequest {
	turn := sess.LastMessage()
	prior := sess.Messages[:len(sess.Messages)-1]
	if len(prior) > historyWindow {
		prior = prior[len(prior)-historyWindow:]
	}

	hasVision := false
	if info, ok := model.Lookup(sess.ModelID); ok {
		hasVision = info.HasVision
	}
	withImages := turn.HasImages() && hasVision

	msgs := make([]openrouter.ChatMessage, 0, len(prior)+2)
	msgs = append(msgs, openrouter.NewSystemMessage(buildSystemPrompt(opts, withImages)))
	for _, m := range prior {
		if m.IsEmpty() || m.IsStreaming || !m.Role.Valid() {
			continue
		}
		msgs = append(msgs, openrouter.ChatMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}
	if withImages {
		msgs = append(msgs, openrouter.NewUserImageMessage(turn.Content, turn.Images))
	} else {
		msgs = append(msgs, openrouter.NewUserMessage(turn.Content))
	}

	temperature := defaultTemperature
	maxTokens := defaultMaxTokens
	if opts.DeepThinking {
		temperature = deepTemperature
		maxTokens = deepMaxTokens
	}

	return openrouter.ChatRequest{
		Model:       sess.ModelID,
		Messages:    msgs,
		Stream:      true,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}
