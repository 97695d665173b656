// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/time/rate"
)

const testAPIKey = "sk-or-test-abcdefghijklmnopqrstuvwxyz0123456789"

// newTestClient wires a client to the given handler with pacing disabled.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testAPIKey).
		WithBaseURL(server.URL).
		WithRateLimit(rate.Inf, 1)
}

func TestChatSuccess(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "gen-1",
			"model": "test-model",
			"choices": [{
				"message": {"role": "assistant", "content": "hello there"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8}
		}`))
	})

	resp, err := client.Chat(context.Background(), ChatRequest{
		Model:    "test-model",
		Messages: []ChatMessage{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.GetContent() != "hello there" {
		t.Errorf("GetContent = %q, want %q", resp.GetContent(), "hello there")
	}
	if resp.Usage.TotalTokens != 8 {
		t.Errorf("TotalTokens = %d, want 8", resp.Usage.TotalTokens)
	}

	if gotAuth != "Bearer "+testAPIKey {
		t.Errorf("Authorization header = %q", gotAuth)
	}
	if gotReferer == "" {
		t.Error("HTTP-Referer header should be set")
	}
	if gotTitle == "" {
		t.Error("X-Title header should be set")
	}
}

func TestChatNotConfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Chat(context.Background(), ChatRequest{Model: "m"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Chat without key = %v, want ErrNotConfigured", err)
	}
}

func TestChatAuthFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": "invalid_key", "message": "bad key"}}`))
	})

	_, err := client.Chat(context.Background(), ChatRequest{Model: "m"})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Chat = %v, want ErrAuthFailed", err)
	}
}

func TestChatModelNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "No endpoints found for bogus/model"}}`))
	})

	_, err := client.Chat(context.Background(), ChatRequest{Model: "bogus/model"})
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Chat = %v, want ErrModelNotFound", err)
	}
	if !strings.Contains(err.Error(), "No endpoints found") {
		t.Errorf("error should carry the upstream message, got %v", err)
	}
}

func TestChatRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "upstream blew up"}}`))
			return
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "recovered"}, "finish_reason": "stop"}]}`))
	})

	resp, err := client.Chat(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.GetContent() != "recovered" {
		t.Errorf("GetContent = %q, want %q", resp.GetContent(), "recovered")
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestChatRateLimitRetryAfter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "slow down"}}`))
	}).WithMaxRetries(1)

	_, err := client.Chat(context.Background(), ChatRequest{Model: "m"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Chat = %v, want ErrRateLimited", err)
	}

	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatal("error should carry RateLimitError with timing")
	}
	if rlErr.RetryAfter.Seconds() != 7 {
		t.Errorf("RetryAfter = %v, want 7s", rlErr.RetryAfter)
	}
}

func TestChatDoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	client.Chat(context.Background(), ChatRequest{Model: "m"})
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 401)", calls.Load())
	}
}

func TestAPIErrorRetryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusNotFound, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusUnauthorized, false},
		{http.StatusPaymentRequired, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		e := &APIError{Status: tt.status}
		if e.Retryable() != tt.want {
			t.Errorf("Retryable(status=%d) = %v, want %v", tt.status, e.Retryable(), tt.want)
		}
	}
}

func TestMultimodalMessageEncoding(t *testing.T) {
	var body []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"choices": []}`))
	})

	msg := NewUserImageMessage("what is this?", []string{"data:image/png;base64,AAAA"})
	_, err := client.Chat(context.Background(), ChatRequest{
		Model:    "vision-model",
		Messages: []ChatMessage{msg},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	var decoded struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL *struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("request body did not decode: %v", err)
	}
	parts := decoded.Messages[0].Content
	if len(parts) != 2 {
		t.Fatalf("content parts = %d, want 2", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != "what is this?" {
		t.Errorf("first part = %+v, want text part", parts[0])
	}
	if parts[1].Type != "image_url" || parts[1].ImageURL == nil || parts[1].ImageURL.URL != "data:image/png;base64,AAAA" {
		t.Errorf("second part = %+v, want image_url part", parts[1])
	}
}

func TestTextContent(t *testing.T) {
	if got := NewUserMessage("plain").TextContent(); got != "plain" {
		t.Errorf("TextContent = %q, want %q", got, "plain")
	}
	msg := NewUserImageMessage("with image", []string{"https://example.com/a.png"})
	if got := msg.TextContent(); got != "with image" {
		t.Errorf("TextContent = %q, want %q", got, "with image")
	}
}

func TestListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q, want /models", r.URL.Path)
		}
		w.Write([]byte(`{"data": [
			{"id": "a/one:free", "name": "One", "context_length": 8192},
			{"id": "b/two:free", "name": "Two", "context_length": 32768}
		]}`))
	})

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].ID != "a/one:free" || models[1].ContextLength != 32768 {
		t.Errorf("unexpected models: %+v", models)
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"valid key", "sk-or-v1-abcdef0123456789abcdef0123456789", true},
		{"valid with whitespace", "  sk-or-v1-abcdef0123456789abcdef0123456789  ", true},
		{"wrong prefix", "sk-openai-abcdef0123456789abcdef0123456789", false},
		{"too short", "sk-or-abc123", false},
		{"low entropy", "sk-or-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAPIKey(tt.key); got != tt.want {
				t.Errorf("ValidateAPIKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
