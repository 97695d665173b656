// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the rei command-line interface: argument
// parsing, the one-shot ask command, the interactive chat REPL, and the
// session/model/auth/config/export/search subcommands.
//
// The TUI itself lives in internal/ui/chat; this package decides when
// to launch it and handles everything that runs without one.
package cli
