// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package codeblock extracts fenced code blocks from assistant responses.
//
// Responses may interleave prose with fenced blocks, optionally annotated
// with a file path hint:
//
//	```go file_path="cmd/main.go"
//	package main
//	```
//
// Extract pulls the blocks out as named files and substitutes numbered
// placeholders into the surrounding text; Split re-expands the placeholder
// text into an ordered sequence of prose and code segments for rendering.
// All functions are pure: no I/O, no shared state.
package codeblock

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// fenceRe matches a fenced code block with an optional language tag and an
// optional file_path="..." hint on the fence line.
var fenceRe = regexp.MustCompile("(?s)```(\\w+)?\\s*(?:file_path=\"([^\"]+)\")?\\s*\\n(.*?)```")

// placeholderRe matches the numbered placeholders Extract substitutes.
var placeholderRe = regexp.MustCompile(`\[CODE_BLOCK_(\d+)\]`)

// extensions maps fence language tags to file extensions.
// Unknown languages fall back to "txt".
var extensions = map[string]string{
	"javascript": "js",
	"typescript": "ts",
	"jsx":        "jsx",
	"tsx":        "tsx",
	"python":     "py",
	"html":       "html",
	"css":        "css",
	"json":       "json",
	"markdown":   "md",
	"yaml":       "yml",
	"bash":       "sh",
	"sql":        "sql",
	"php":        "php",
	"java":       "java",
	"cpp":        "cpp",
	"c":          "c",
	"go":         "go",
	"rust":       "rs",
	"ruby":       "rb",
	"swift":      "swift",
	"kotlin":     "kt",
	"dart":       "dart",
}

// =============================================================================
// EXTRACTION
// =============================================================================

// File is one extracted code block.
type File struct {
	// Name is the display filename: the base of the path hint when one is
	// present, otherwise synthesized from the language ("code.py").
	Name string `json:"name"`

	// Language is the fence language tag, "text" when the fence had none.
	Language string `json:"language"`

	// Content is the block body with surrounding whitespace trimmed.
	Content string `json:"content"`

	// Path is the raw file_path hint, empty when absent.
	Path string `json:"path,omitempty"`
}

// Result is the outcome of extracting code blocks from a response.
type Result struct {
	// HasCode reports whether any block was found.
	HasCode bool `json:"has_code"`

	// Files holds the extracted blocks in order of appearance.
	Files []File `json:"files"`

	// TextContent is the input with each block replaced by its
	// [CODE_BLOCK_N] placeholder.
	TextContent string `json:"text_content"`
}

// SynthesizedName returns the filename synthesized for a block without a
// path hint: "code." plus the language's extension ("code.py"), falling
// back to "code.txt" for unknown languages.
func SynthesizedName(language string) string {
	ext, ok := extensions[language]
	if !ok {
		ext = "txt"
	}
	return "code." + ext
}

// Extract finds every fenced code block in content and returns the blocks
// as files alongside the placeholder-substituted text. Input without any
// fences comes back unchanged with HasCode false.
func Extract(content string) Result {
	matches := fenceRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return Result{TextContent: content}
	}

	files := make([]File, 0, len(matches))
	textContent := content

	for _, m := range matches {
		full, language, filePath, code := m[0], m[1], m[2], m[3]
		if language == "" {
			language = "text"
		}

		name := SynthesizedName(language)
		if filePath != "" {
			name = path.Base(filePath)
		}

		files = append(files, File{
			Name:     name,
			Language: language,
			Content:  strings.TrimSpace(code),
			Path:     filePath,
		})

		placeholder := "[CODE_BLOCK_" + strconv.Itoa(len(files)-1) + "]"
		textContent = strings.Replace(textContent, full, placeholder, 1)
	}

	return Result{
		HasCode:     true,
		Files:       files,
		TextContent: textContent,
	}
}

// =============================================================================
// SEGMENT SPLITTING
// =============================================================================

// Segment is one renderable piece of a response: either prose or a
// reference to an extracted code block.
type Segment struct {
	// Text is the prose content; empty for code segments.
	Text string

	// CodeIndex is the index into Result.Files, or -1 for prose.
	CodeIndex int
}

// IsCode reports whether the segment references a code block.
func (s Segment) IsCode() bool {
	return s.CodeIndex >= 0
}

// Split expands placeholder text into an ordered sequence of prose and
// code segments. Blank prose between placeholders is dropped; placeholders
// referencing an index outside files are dropped too.
func Split(textContent string, files []File) []Segment {
	var segments []Segment
	last := 0

	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(textContent, -1) {
		if text := textContent[last:loc[0]]; strings.TrimSpace(text) != "" {
			segments = append(segments, Segment{Text: text, CodeIndex: -1})
		}

		idx, err := strconv.Atoi(textContent[loc[2]:loc[3]])
		if err == nil && idx >= 0 && idx < len(files) {
			segments = append(segments, Segment{CodeIndex: idx})
		}
		last = loc[1]
	}

	if text := textContent[last:]; strings.TrimSpace(text) != "" {
		segments = append(segments, Segment{Text: text, CodeIndex: -1})
	}

	return segments
}
