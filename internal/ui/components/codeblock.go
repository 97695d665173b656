// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rei-tui/internal/codeblock"
	"github.com/jeranaias/rei-tui/internal/ui/styles"
	"github.com/jeranaias/rei-tui/internal/util"
)

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies chroma syntax highlighting for terminal display.
// Falls back to the plain source on any highlighting failure so a broken
// lexer never loses code.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return code
	}

	return sb.String()
}

// =============================================================================
// CODE BLOCK COMPONENT
// =============================================================================

// CodeBlock renders one extracted code block with a language badge,
// line numbers, and a rounded border.
type CodeBlock struct {
	// Language is the fence language tag ("go", "python", "text").
	Language string

	// FileName is the display name for the block ("main.go", "code.py").
	FileName string

	// Code is the block body.
	Code string

	// MaxWidth constrains the rendered width; 0 means no constraint.
	MaxWidth int

	// ShowLineNumbers toggles the line number gutter.
	ShowLineNumbers bool
}

// NewCodeBlock creates a code block view for one extracted file.
func NewCodeBlock(file codeblock.File) *CodeBlock {
	return &CodeBlock{
		Language:        file.Language,
		FileName:        file.Name,
		Code:            file.Content,
		ShowLineNumbers: true,
	}
}

// View renders the code block.
func (cb *CodeBlock) View() string {
	if cb.Code == "" {
		return ""
	}

	highlighted := highlightCode(cb.Code, cb.Language)
	lines := strings.Split(strings.TrimRight(highlighted, "\n"), "\n")

	var body strings.Builder
	if cb.ShowLineNumbers {
		numStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(4).
			Align(lipgloss.Right)

		for i, line := range lines {
			body.WriteString(numStyle.Render(util.IntToString(i + 1)))
			body.WriteString(" ")
			body.WriteString(line)
			if i < len(lines)-1 {
				body.WriteString("\n")
			}
		}
	} else {
		body.WriteString(strings.Join(lines, "\n"))
	}

	blockStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1)
	if cb.MaxWidth > 4 {
		blockStyle = blockStyle.MaxWidth(cb.MaxWidth)
	}

	return cb.renderBadge() + "\n" + blockStyle.Render(body.String())
}

// renderBadge renders the language/filename badge shown above the block.
func (cb *CodeBlock) renderBadge() string {
	badgeStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Background(styles.Overlay).
		Padding(0, 1).
		Bold(true)

	label := cb.Language
	if label == "" {
		label = "text"
	}
	// Synthesized names ("code.py") carry no information beyond the
	// language; only real path hints earn a spot in the badge.
	if cb.FileName != "" && cb.FileName != codeblock.SynthesizedName(label) {
		label += " - " + cb.FileName
	}

	return badgeStyle.Render(label)
}

// =============================================================================
// MESSAGE CONTENT RENDERING
// =============================================================================

// RenderMessageContent renders assistant message content for the chat view:
// prose passes through word wrapping while fenced code blocks are extracted
// and rendered with syntax highlighting.
func RenderMessageContent(content string, width int) string {
	result := codeblock.Extract(content)
	if !result.HasCode {
		return wordWrap(content, width)
	}

	segments := codeblock.Split(result.TextContent, result.Files)
	parts := make([]string, 0, len(segments))

	for _, seg := range segments {
		if seg.IsCode() {
			cb := NewCodeBlock(result.Files[seg.CodeIndex])
			cb.MaxWidth = width
			parts = append(parts, cb.View())
			continue
		}
		parts = append(parts, wordWrap(strings.TrimSpace(seg.Text), width))
	}

	return strings.Join(parts, "\n\n")
}

// RenderInlineCode styles `inline code` spans within prose.
func RenderInlineCode(text string) string {
	inlineStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Background(styles.SurfaceDim)

	var sb strings.Builder
	rest := text
	for {
		start := strings.Index(rest, "`")
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+1:], "`")
		if end < 0 {
			sb.WriteString(rest)
			break
		}

		sb.WriteString(rest[:start])
		sb.WriteString(inlineStyle.Render(rest[start+1 : start+1+end]))
		rest = rest[start+end+2:]
	}

	return sb.String()
}
