// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output support for scripting.
//
// Every subcommand that accepts --json emits this envelope so piped
// consumers get a stable shape regardless of the command.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// AskData represents the data returned by the ask command.
type AskData struct {
	Response    string `json:"response"`
	Model       string `json:"model"`
	Tokens      int    `json:"tokens_estimated"`
	DurationMs  int64  `json:"duration_ms"`
	DeepThinking bool  `json:"deep_thinking"`
}

// SessionData represents one session in sessions list output.
type SessionData struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	ModelID   string `json:"model_id"`
	Messages  int    `json:"messages"`
	Preview   string `json:"preview,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// ModelData represents one model in models list output.
type ModelData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Context     string `json:"context"`
	Category    string `json:"category"`
	Vision      bool   `json:"vision"`
	Description string `json:"description,omitempty"`
}

// AuthData represents the data returned by auth status.
type AuthData struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source,omitempty"` // "env", "config", "keystore"
}

// SearchHitData represents one hit in search output.
type SearchHitData struct {
	SessionName string `json:"session_name"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	ModelID     string `json:"model_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ExportData represents the data returned by the export command.
type ExportData struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Session string `json:"session"`
}
