// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the REI TUI:
// message bubbles, syntax-highlighted code blocks, the thinking spinner,
// the status bar, and the welcome screen.
package components
