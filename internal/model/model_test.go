// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

func TestMessageStreaming(t *testing.T) {
	msg := NewAssistantMessage(DefaultModelID)
	if !msg.IsStreaming {
		t.Fatal("new assistant message should be streaming")
	}

	msg.AppendToken("Hello")
	msg.AppendToken(", ")
	msg.AppendToken("world")

	if got := msg.GetDisplayContent(); got != "Hello, world" {
		t.Errorf("GetDisplayContent() = %q, want %q", got, "Hello, world")
	}
	if msg.Content != "" {
		t.Errorf("Content should be empty before finalize, got %q", msg.Content)
	}

	stats := NewStatistics()
	stats.RecordFirstToken()
	stats.Finalize(3)
	msg.FinalizeStream(stats)

	if msg.IsStreaming {
		t.Error("message should not be streaming after finalize")
	}
	if msg.Content != "Hello, world" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello, world")
	}
	if msg.TokenCount != 3 {
		t.Errorf("TokenCount = %d, want 3", msg.TokenCount)
	}

	// Appends after finalize are ignored.
	msg.AppendToken("more")
	if msg.Content != "Hello, world" {
		t.Errorf("append after finalize changed content: %q", msg.Content)
	}
}

func TestMessageAppendOrder(t *testing.T) {
	msg := NewAssistantMessage("")
	tokens := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, tok := range tokens {
		msg.AppendToken(tok)
	}
	if got := msg.GetDisplayContent(); got != "abcdefg" {
		t.Errorf("tokens out of order: %q", got)
	}
}

func TestSessionTruncateAfter(t *testing.T) {
	sess := NewChatSession("Chat 1", DefaultModelID)
	sess.AddUserMessage("first", nil)
	a1 := sess.AddAssistantMessage()
	a1.FinalizeStream(nil)
	edited := sess.AddUserMessage("second", nil)
	a2 := sess.AddAssistantMessage()
	a2.FinalizeStream(nil)
	sess.AddUserMessage("third", nil)

	idx := sess.IndexOf(edited.ID)
	if idx != 2 {
		t.Fatalf("IndexOf = %d, want 2", idx)
	}
	sess.TruncateAfter(idx)

	if sess.MessageCount() != 3 {
		t.Errorf("MessageCount = %d, want 3", sess.MessageCount())
	}
	if sess.LastMessage().ID != edited.ID {
		t.Error("edited message should be last after truncation")
	}
}

func TestSessionDropLastAssistant(t *testing.T) {
	sess := NewChatSession("Chat 1", DefaultModelID)
	sess.AddUserMessage("question", nil)
	a := sess.AddAssistantMessage()
	a.FinalizeStream(nil)

	if !sess.DropLastAssistant() {
		t.Fatal("DropLastAssistant should succeed")
	}
	if sess.MessageCount() != 1 {
		t.Errorf("MessageCount = %d, want 1", sess.MessageCount())
	}
	if sess.DropLastAssistant() {
		t.Error("DropLastAssistant should fail when last message is from user")
	}
}

func TestSessionWindow(t *testing.T) {
	sess := NewChatSession("Chat 1", DefaultModelID)
	for i := 0; i < 15; i++ {
		sess.AddUserMessage("msg", nil)
	}
	if got := len(sess.Window(10)); got != 10 {
		t.Errorf("Window(10) len = %d, want 10", got)
	}
	if got := len(sess.Window(20)); got != 15 {
		t.Errorf("Window(20) len = %d, want 15", got)
	}
}

func TestSessionStreamingMessageUnique(t *testing.T) {
	sess := NewChatSession("Chat 1", DefaultModelID)
	sess.AddUserMessage("q1", nil)
	a1 := sess.AddAssistantMessage()
	a1.FinalizeStream(nil)
	sess.AddUserMessage("q2", nil)
	a2 := sess.AddAssistantMessage()

	streaming := 0
	for _, msg := range sess.Messages {
		if msg.IsStreaming {
			streaming++
		}
	}
	if streaming != 1 {
		t.Fatalf("streaming messages = %d, want 1", streaming)
	}
	if sess.StreamingMessage() != a2 {
		t.Error("StreamingMessage should return the in-flight message")
	}
}

func TestSessionValidate(t *testing.T) {
	sess := NewChatSession("Chat 1", DefaultModelID)
	sess.AddUserMessage("hello", nil)
	if err := sess.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	sess.Messages[0].Role = Role("moderator")
	if err := sess.Validate(); err == nil {
		t.Error("Validate should reject unknown roles")
	}

	empty := &ChatSession{}
	if err := empty.Validate(); err == nil {
		t.Error("Validate should reject empty session ID")
	}
}

func TestSessionTranscript(t *testing.T) {
	sess := NewChatSession("Chat 1", DefaultModelID)
	sess.AddUserMessage("hi", nil)
	a := sess.AddAssistantMessage()
	a.AppendToken("hello")
	a.FinalizeStream(nil)

	got := sess.Transcript()
	want := "user: hi\n\nassistant: hello"
	if got != want {
		t.Errorf("Transcript() = %q, want %q", got, want)
	}
}

func TestCatalogLookup(t *testing.T) {
	if _, ok := Lookup(DefaultModelID); !ok {
		t.Error("default model should be in catalog")
	}
	info, ok := Lookup("gemini 2.0 flash")
	if !ok || info.ID != "google/gemini-2.0-flash-exp:free" {
		t.Errorf("Lookup by name = %+v, %v", info, ok)
	}
	if _, ok := Lookup("no-such-model-xyz"); ok {
		t.Error("Lookup should fail for unknown model")
	}
}

func TestFirstVision(t *testing.T) {
	info, ok := FirstVision()
	if !ok {
		t.Fatal("catalog should contain a vision model")
	}
	if info.ID != "google/gemini-2.0-flash-exp:free" {
		t.Errorf("FirstVision = %s, want google/gemini-2.0-flash-exp:free", info.ID)
	}
}

func TestFallback(t *testing.T) {
	info, ok := Fallback("google/gemini-2.0-flash-exp:free")
	if !ok {
		t.Fatal("Fallback should find a substitute")
	}
	if info.ID == "google/gemini-2.0-flash-exp:free" {
		t.Error("Fallback returned the failed model")
	}

	// First catalog entry is the substitute for any other model.
	info, _ = Fallback(DefaultModelID)
	if info.ID != "google/gemini-2.0-flash-exp:free" {
		t.Errorf("Fallback = %s, want first catalog entry", info.ID)
	}
}

func TestStatisticsFormat(t *testing.T) {
	s := &Statistics{}
	s.Finalize(0)
	got := s.Format()
	if !strings.Contains(got, "tokens") || !strings.Contains(got, "TTFT") {
		t.Errorf("Format() = %q, missing fields", got)
	}

	s = &Statistics{
		CompletionTokens: 128,
		TTFT:             234 * time.Millisecond,
		TotalDuration:    2500 * time.Millisecond,
		TokensPerSecond:  51.2,
	}
	want := "2.5s | 128 tokens | 51.2 tok/s | TTFT 234ms"
	if got := s.Format(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	// Sub-second durations render in milliseconds.
	s = &Statistics{CompletionTokens: 10, TotalDuration: 850 * time.Millisecond, TokensPerSecond: 11.8}
	if got := s.Format(); !strings.HasPrefix(got, "850ms") {
		t.Errorf("Format() = %q, want 850ms prefix", got)
	}
}

func TestCloneSnapshotsStreamingMessage(t *testing.T) {
	sess := NewChatSession("clone test", DefaultModelID)
	sess.AddUserMessage("hi", nil)
	streaming := NewAssistantMessage(DefaultModelID)
	streaming.AppendToken("partial ")
	sess.AddMessage(streaming)

	clone := sess.Clone()

	got := clone.Messages[1]
	if got.IsStreaming {
		t.Error("cloned message should be finalized")
	}
	if got.Content != "partial " {
		t.Errorf("clone Content = %q, want the deltas received so far", got.Content)
	}

	// The original keeps streaming independently of the clone.
	streaming.AppendToken("reply")
	if got.Content != "partial " {
		t.Error("clone must not see deltas appended after the copy")
	}
	if streaming.GetDisplayContent() != "partial reply" {
		t.Errorf("original stream = %q", streaming.GetDisplayContent())
	}
}
