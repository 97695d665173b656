// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/rei-tui/internal/model"
)

func testSession(t *testing.T) *model.ChatSession {
	t.Helper()
	sess := model.NewChatSession("Go questions", model.DefaultModelID)
	sess.AddUserMessage("show me a hello world", nil)

	reply := model.NewMessage(model.RoleAssistant, "Here you go:\n\n```go\npackage main\n\nfunc main() {}\n```")
	reply.ModelID = model.DefaultModelID
	reply.TokenCount = 42
	reply.TotalDuration = 1500 * time.Millisecond
	reply.TTFT = 200 * time.Millisecond
	reply.TokensPerSec = 28.0
	sess.AddMessage(reply)
	return sess
}

func TestMarkdownExport(t *testing.T) {
	sess := testSession(t)

	out, err := NewMarkdownExporter(nil).Export(sess)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	md := string(out)

	for _, want := range []string{
		"title: Go questions",
		"model: " + model.DefaultModelID,
		"# Go questions",
		"### [You]",
		"### [REI]",
		"```go\npackage main",
		"Tokens: 42",
		"TTFT: 200ms",
		"Speed: 28.0 tok/s",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownExportWithoutMetadata(t *testing.T) {
	sess := testSession(t)
	opts := DefaultOptions()
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false

	out, err := NewMarkdownExporter(opts).Export(sess)
	if err != nil {
		t.Fatal(err)
	}
	md := string(out)

	if strings.Contains(md, "Session Information") {
		t.Error("metadata section should be omitted")
	}
	if strings.Contains(md, "<sub>Stats") {
		t.Error("stats should be omitted without metadata")
	}
	if strings.Contains(md, "title:") {
		t.Error("frontmatter should be omitted")
	}
}

func TestMarkdownExportRejectsEmpty(t *testing.T) {
	e := NewMarkdownExporter(nil)
	if _, err := e.Export(nil); err == nil {
		t.Error("nil session should be rejected")
	}
	empty := model.NewChatSession("Empty", model.DefaultModelID)
	if _, err := e.Export(empty); err == nil {
		t.Error("empty session should be rejected")
	}
}

func TestMarkdownEscapesTitle(t *testing.T) {
	sess := testSession(t)
	sess.Name = "why does *this* break #headings?"

	out, err := NewMarkdownExporter(nil).Export(sess)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `# why does \*this\* break \#headings?`) {
		t.Error("title should be markdown-escaped")
	}
}

func TestJSONExportRoundTrip(t *testing.T) {
	sess := testSession(t)

	out, err := NewJSONExporter(nil).Export(sess)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded model.ChatSession
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if decoded.ID != sess.ID || decoded.Name != sess.Name {
		t.Error("identity lost in round trip")
	}
	if len(decoded.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(decoded.Messages))
	}
	if decoded.Messages[1].TokenCount != 42 {
		t.Error("statistics lost in round trip")
	}
}

func TestExportToFile(t *testing.T) {
	sess := testSession(t)
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.OpenAfterExport = false

	path, err := ExportToFile(sess, NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("path = %q, want .md suffix", path)
	}
	if !strings.Contains(path, "chat_Go_questions_") {
		t.Errorf("path = %q, want sanitized session name", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# Go questions") {
		t.Error("file content missing title")
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"markdown", "md", "json"} {
		if _, err := ForFormat(format, nil); err != nil {
			t.Errorf("ForFormat(%q) failed: %v", format, err)
		}
	}
	if _, err := ForFormat("docx", nil); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Chat 1", "Chat_1"},
		{"a/b\\c:d", "a-b-c-d"},
		{"", "chat"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
