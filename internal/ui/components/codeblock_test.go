// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/rei-tui/internal/codeblock"
)

func TestHighlightCodeNeverEmpty(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		language string
	}{
		{"go", "package main\n\nfunc main() {}", "go"},
		{"python", "def hello():\n    pass", "python"},
		{"unknown language", "some plain text", "no-such-lang"},
		{"empty language", "x = 1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := highlightCode(tt.code, tt.language)
			if out == "" {
				t.Fatal("highlight produced empty output")
			}
		})
	}
}

func TestCodeBlockView(t *testing.T) {
	cb := NewCodeBlock(codeblock.File{
		Name:     "main.go",
		Language: "go",
		Content:  "package main\n\nfunc main() {}",
	})

	view := cb.View()
	if view == "" {
		t.Fatal("empty view")
	}
	if !strings.Contains(view, "go") {
		t.Error("language badge missing")
	}
	if !strings.Contains(view, "main.go") {
		t.Error("filename missing from badge")
	}
	// Line numbers for a three-line block.
	for _, n := range []string{"1", "2", "3"} {
		if !strings.Contains(view, n) {
			t.Errorf("line number %s missing", n)
		}
	}
}

func TestCodeBlockSynthesizedNameOmitted(t *testing.T) {
	cb := NewCodeBlock(codeblock.File{
		Name:     "code.py",
		Language: "python",
		Content:  "x = 1",
	})

	if strings.Contains(cb.renderBadge(), "code.py") {
		t.Error("synthesized filename should not appear in the badge")
	}
}

func TestCodeBlockEmpty(t *testing.T) {
	cb := &CodeBlock{Language: "go"}
	if cb.View() != "" {
		t.Error("empty code should render nothing")
	}
}

func TestRenderMessageContentProseOnly(t *testing.T) {
	out := RenderMessageContent("just some prose with no code", 60)
	if !strings.Contains(out, "just some prose") {
		t.Error("prose lost")
	}
}

func TestRenderMessageContentWithCode(t *testing.T) {
	content := "Here is an example:\n\n```go\npackage main\n```\n\nThat is all."
	out := RenderMessageContent(content, 60)

	if !strings.Contains(out, "Here is an example:") {
		t.Error("leading prose lost")
	}
	if !strings.Contains(out, "That is all.") {
		t.Error("trailing prose lost")
	}
	if strings.Contains(out, "```") {
		t.Error("fence markers should be replaced by the rendered block")
	}
	if strings.Contains(out, "[CODE_BLOCK_0]") {
		t.Error("placeholder leaked into output")
	}
}

func TestRenderInlineCode(t *testing.T) {
	out := RenderInlineCode("run `go test` now")
	if !strings.Contains(out, "go test") {
		t.Error("inline code content lost")
	}
	if strings.Contains(out, "`") {
		t.Error("backticks should be stripped")
	}

	// Unpaired backtick passes through untouched.
	if got := RenderInlineCode("a ` b"); got != "a ` b" {
		t.Errorf("unpaired backtick mangled: %q", got)
	}
}
