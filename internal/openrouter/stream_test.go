// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

// sseHandler writes each payload as an SSE data event, then [DONE].
func sseHandler(payloads ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, p := range payloads {
			fmt.Fprintf(w, "data: %s\n\n", p)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

func deltaChunk(content string) string {
	return fmt.Sprintf(`{"choices": [{"delta": {"content": %q}, "finish_reason": ""}]}`, content)
}

func TestChatStreamDeltas(t *testing.T) {
	client := newTestClient(t, sseHandler(
		deltaChunk("Hello"),
		deltaChunk(", "),
		deltaChunk("world"),
	))

	var got strings.Builder
	err := client.ChatStream(context.Background(), ChatRequest{Model: "m"}, func(chunk StreamChunk) {
		got.WriteString(chunk.GetContent())
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if got.String() != "Hello, world" {
		t.Errorf("accumulated = %q, want %q", got.String(), "Hello, world")
	}
}

func TestChatStreamSkipsMalformedChunks(t *testing.T) {
	client := newTestClient(t, sseHandler(
		deltaChunk("good"),
		`{this is not json`,
		deltaChunk(" chunks"),
	))

	var got strings.Builder
	err := client.ChatStream(context.Background(), ChatRequest{Model: "m"}, func(chunk StreamChunk) {
		got.WriteString(chunk.GetContent())
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if got.String() != "good chunks" {
		t.Errorf("accumulated = %q, want %q (malformed chunk skipped)", got.String(), "good chunks")
	}
}

func TestChatStreamStopsOnFinishReason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "data: %s\n\n", deltaChunk("done"))
		fmt.Fprint(w, "data: {\"choices\": [{\"delta\": {\"content\": \"\"}, \"finish_reason\": \"stop\"}]}\n\n")
		// No [DONE]; the finish reason alone must end the stream.
		flusher.Flush()
	})

	var chunks int
	err := client.ChatStream(context.Background(), ChatRequest{Model: "m"}, func(chunk StreamChunk) {
		chunks++
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if chunks != 2 {
		t.Errorf("callback ran %d times, want 2", chunks)
	}
}

func TestChatStreamErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "No endpoints found"}}`))
	})

	err := client.ChatStream(context.Background(), ChatRequest{Model: "gone"}, func(StreamChunk) {})
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("ChatStream = %v, want ErrModelNotFound", err)
	}
}

func TestChatStreamNotConfigured(t *testing.T) {
	client := NewClient("")
	err := client.ChatStream(context.Background(), ChatRequest{Model: "m"}, func(StreamChunk) {})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ChatStream = %v, want ErrNotConfigured", err)
	}
}

func TestChatStreamCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "data: %s\n\n", deltaChunk("first"))
		flusher.Flush()
		// Cancel while the stream is still open.
		cancel()
		<-r.Context().Done()
	})

	err := client.ChatStream(ctx, ChatRequest{Model: "m"}, func(StreamChunk) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ChatStream = %v, want context.Canceled", err)
	}
}

func TestChatStreamAccumulate(t *testing.T) {
	client := newTestClient(t, sseHandler(
		deltaChunk("full "),
		deltaChunk("response"),
	))

	got, err := client.ChatStreamAccumulate(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("ChatStreamAccumulate failed: %v", err)
	}
	if got != "full response" {
		t.Errorf("content = %q, want %q", got, "full response")
	}
}

func TestSSEReader(t *testing.T) {
	input := ": comment to ignore\n" +
		"event: message\n" +
		"data: first\n\n" +
		"data: second-a\n" +
		"data: second-b\n\n" +
		"data: tail-without-blank-line"

	reader := NewSSEReader(strings.NewReader(input))

	data, err := reader.ReadEvent()
	if err != nil || string(data) != "first" {
		t.Errorf("event 1 = %q, %v; want %q", data, err, "first")
	}

	// Multi-line data joins with newline.
	data, err = reader.ReadEvent()
	if err != nil || string(data) != "second-a\nsecond-b" {
		t.Errorf("event 2 = %q, %v; want joined lines", data, err)
	}

	// Trailing data before EOF is still delivered.
	data, err = reader.ReadEvent()
	if err != nil || string(data) != "tail-without-blank-line" {
		t.Errorf("event 3 = %q, %v", data, err)
	}

	if _, err = reader.ReadEvent(); err != io.EOF {
		t.Errorf("after exhaustion err = %v, want io.EOF", err)
	}
}

func TestStreamErrorPreservesPartial(t *testing.T) {
	underlying := errors.New("connection reset")
	err := &StreamError{Partial: "partial text", Err: underlying}

	if !strings.Contains(err.Error(), "12 chars") {
		t.Errorf("Error() = %q, should report partial length", err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Error("StreamError should unwrap to the underlying error")
	}
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	cb := acc.Callback()

	var chunk StreamChunk
	chunk.Model = "test-model"
	chunk.Choices = []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	}{{}}
	chunk.Choices[0].Delta.Content = "abc"
	cb(chunk)

	chunk.Choices[0].Delta.Content = "def"
	chunk.Choices[0].FinishReason = "stop"
	cb(chunk)

	if acc.GetContent() != "abcdef" {
		t.Errorf("content = %q, want %q", acc.GetContent(), "abcdef")
	}
	if acc.TokenCount != 2 {
		t.Errorf("TokenCount = %d, want 2", acc.TokenCount)
	}
	if !acc.Done || acc.FinishReason != "stop" {
		t.Error("accumulator should record completion")
	}
	if acc.Model != "test-model" {
		t.Errorf("Model = %q", acc.Model)
	}
	if acc.TTFT() <= 0 {
		t.Error("TTFT should be positive once content arrived")
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if parseRetryAfter(resp) != nil {
		t.Error("missing header should return nil")
	}

	resp.Header.Set("Retry-After", "30")
	err := parseRetryAfter(resp)
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) || rlErr.RetryAfter.Seconds() != 30 {
		t.Errorf("parseRetryAfter = %v, want 30s RateLimitError", err)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Error("RateLimitError should match ErrRateLimited")
	}

	resp.Header.Set("Retry-After", "not-a-time")
	if parseRetryAfter(resp) != nil {
		t.Error("unparseable header should return nil")
	}
}
