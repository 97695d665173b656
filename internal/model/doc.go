// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat sessions, messages, and the OpenRouter model catalog.
//
// # Key Types
//
//   - ChatSession: Container for a chat exchange with messages and metadata
//   - Message: Single message with role, content, timestamp, and attachments
//   - ModelInfo: Information about a catalog model (ID, context, vision)
//   - Role: Message role enumeration (user, assistant, system)
//
// # Usage
//
// Create a new session:
//
//	sess := model.NewChatSession("Chat 1", model.DefaultModelID)
//	sess.AddUserMessage("Hello!", nil)
//
// Work with the model catalog:
//
//	info, ok := model.Lookup("gemini")
//	if ok {
//	    fmt.Printf("Model: %s (%s)\n", info.Name, info.Context)
//	}
package model
