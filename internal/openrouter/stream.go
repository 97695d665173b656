// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// STREAMING TYPES
// =============================================================================

// MaxChunkSize is the maximum allowed size of a single SSE event (64KB).
const MaxChunkSize = 64 * 1024

// StreamChunk represents a single chunk of a streaming completion.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// GetContent returns the content delta from the first choice.
func (c *StreamChunk) GetContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// IsDone returns true once a finish reason has been sent.
func (c *StreamChunk) IsDone() bool {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason != ""
	}
	return false
}

// FinishReason returns the finish reason, "" while streaming.
func (c *StreamChunk) FinishReason() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason
	}
	return ""
}

// StreamCallback is invoked for each chunk received.
type StreamCallback func(chunk StreamChunk)

// StreamError is an error that occurred mid-stream, preserving any
// partial content received before the failure so callers can keep it.
type StreamError struct {
	Partial string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates an SSE reader over r.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReader(r)}
}

// ReadEvent reads the next SSE event and returns its data payload.
// Returns io.EOF when the stream ends. Events larger than MaxChunkSize
// are rejected.
func (s *SSEReader) ReadEvent() ([]byte, error) {
	var dataLines [][]byte
	var total int

	for {
		line, err := s.reader.ReadBytes('\n')

		// EOF can still return a final unterminated line; parse it
		// before ending the stream.
		line = bytes.TrimRight(line, "\r\n")

		if len(line) == 0 {
			// Blank line terminates the event.
			if err == nil && len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
		} else if bytes.HasPrefix(line, []byte("data:")) {
			data := bytes.TrimSpace(line[5:])
			total += len(data)
			if total > MaxChunkSize {
				return nil, fmt.Errorf("SSE event too large: %d bytes", total)
			}
			dataLines = append(dataLines, data)
		}
		// Other fields (event:, id:, retry:, comments) are ignored.

		if err != nil {
			if err == io.EOF {
				if len(dataLines) > 0 {
					return bytes.Join(dataLines, []byte("\n")), nil
				}
				return nil, io.EOF
			}
			return nil, err
		}
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream performs a streaming chat completion request. The callback
// runs for every content chunk; malformed chunks are skipped. On
// mid-stream failure the returned error is a *StreamError carrying the
// content accumulated so far.
func (c *Client) ChatStream(ctx context.Context, reqBody ChatRequest, callback StreamCallback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	reqBody.Stream = true

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// Streaming lifetime is bounded by ctx, not a client timeout.
	resp, err := c.streamer.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return c.handleErrorResponse(resp, body)
	}

	var accumulated strings.Builder
	wrapped := func(chunk StreamChunk) {
		accumulated.WriteString(chunk.GetContent())
		callback(chunk)
	}

	if err := c.processStream(ctx, resp.Body, wrapped); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &StreamError{Partial: accumulated.String(), Err: err}
	}
	return nil
}

// processStream reads and dispatches the SSE stream until [DONE], a
// finish reason, or EOF.
func (c *Client) processStream(ctx context.Context, body io.Reader, callback StreamCallback) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}

		var chunk StreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks.
			continue
		}

		callback(chunk)

		if chunk.IsDone() {
			return nil
		}
	}
}

// ChatStreamAccumulate streams a completion but returns the full text at
// the end. Partial content is returned alongside the error on failure.
func (c *Client) ChatStreamAccumulate(ctx context.Context, reqBody ChatRequest) (string, error) {
	var accumulated strings.Builder

	err := c.ChatStream(ctx, reqBody, func(chunk StreamChunk) {
		accumulated.WriteString(chunk.GetContent())
	})
	if err != nil {
		var streamErr *StreamError
		if errors.As(err, &streamErr) && streamErr.Partial != "" {
			return streamErr.Partial, err
		}
		return accumulated.String(), err
	}
	return accumulated.String(), nil
}

// =============================================================================
// RATE LIMIT HANDLING
// =============================================================================

// RateLimitError is a rate limit response with retry timing attached.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
	}
	return "rate limited"
}

// Is allows RateLimitError to match ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// parseRetryAfter extracts the Retry-After header from a 429 response.
// Returns nil when the header is absent or unparseable.
func parseRetryAfter(resp *http.Response) error {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return nil
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return &RateLimitError{RetryAfter: time.Duration(seconds) * time.Second}
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		return &RateLimitError{RetryAfter: time.Until(t)}
	}
	return nil
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// Accumulator collects streaming chunks into a complete response and
// tracks timing statistics along the way.
type Accumulator struct {
	Content      strings.Builder
	TokenCount   int
	Model        string
	FinishReason string
	StartTime    time.Time
	FirstTokenAt time.Time
	Done         bool
}

// NewAccumulator creates an accumulator with the clock started.
func NewAccumulator() *Accumulator {
	return &Accumulator{StartTime: time.Now()}
}

// Add processes a chunk.
func (a *Accumulator) Add(chunk StreamChunk) {
	content := chunk.GetContent()
	if content != "" {
		a.TokenCount++
		if a.FirstTokenAt.IsZero() {
			a.FirstTokenAt = time.Now()
		}
		a.Content.WriteString(content)
	}

	if chunk.Model != "" {
		a.Model = chunk.Model
	}
	if chunk.IsDone() {
		a.Done = true
		a.FinishReason = chunk.FinishReason()
	}
}

// GetContent returns the accumulated content.
func (a *Accumulator) GetContent() string {
	return a.Content.String()
}

// TTFT returns the time to first token, zero if none arrived.
func (a *Accumulator) TTFT() time.Duration {
	if a.FirstTokenAt.IsZero() {
		return 0
	}
	return a.FirstTokenAt.Sub(a.StartTime)
}

// Elapsed returns the total time since the accumulator started.
func (a *Accumulator) Elapsed() time.Duration {
	return time.Since(a.StartTime)
}

// Callback returns a StreamCallback feeding this accumulator.
func (a *Accumulator) Callback() StreamCallback {
	return func(chunk StreamChunk) {
		a.Add(chunk)
	}
}
