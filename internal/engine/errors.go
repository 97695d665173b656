// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"

	"github.com/jeranaias/rei-tui/internal/openrouter"
)

// =============================================================================
// FAILURE CLASSIFICATION
// =============================================================================

// shouldFallback reports whether a failed attempt is worth retrying on
// an alternate model. Auth and billing problems follow the key, not the
// model, so switching would not help; cancellation is deliberate.
func shouldFallback(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, openrouter.ErrNotConfigured) ||
		errors.Is(err, openrouter.ErrAuthFailed) ||
		errors.Is(err, openrouter.ErrInsufficientCredits) {
		return false
	}
	if errors.Is(err, openrouter.ErrRateLimited) || errors.Is(err, openrouter.ErrModelNotFound) {
		return true
	}
	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable() || apiErr.Status >= 500
	}
	// Transport-level failures (connection reset, DNS) may be
	// provider-specific, so a different model gets one chance.
	return true
}

// FriendlyError maps a failed exchange to the message shown in the
// transcript.
func FriendlyError(err error) string {
	switch {
	case errors.Is(err, openrouter.ErrNotConfigured):
		return "No API key configured. Run 'rei auth set' to add your OpenRouter API key."
	case errors.Is(err, openrouter.ErrAuthFailed):
		return "Invalid API key. Please check your OpenRouter API key."
	case errors.Is(err, openrouter.ErrModelNotFound):
		return "The selected model is not available. Please try a different model."
	case errors.Is(err, openrouter.ErrRateLimited):
		return "Rate limit exceeded. Please wait a moment and try again."
	case errors.Is(err, openrouter.ErrInsufficientCredits):
		return "Insufficient credits on your OpenRouter account."
	default:
		return "Sorry, I encountered an error processing your request. Please try again."
	}
}
