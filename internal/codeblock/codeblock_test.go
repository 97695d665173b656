// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package codeblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNoCode(t *testing.T) {
	res := Extract("just a plain answer with no fences")
	assert.False(t, res.HasCode)
	assert.Empty(t, res.Files)
	assert.Equal(t, "just a plain answer with no fences", res.TextContent)
}

func TestExtractSingleBlock(t *testing.T) {
	input := "Here you go:\n```python\nprint('hi')\n```\nDone."
	res := Extract(input)

	require.True(t, res.HasCode)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "code.py", res.Files[0].Name)
	assert.Equal(t, "python", res.Files[0].Language)
	assert.Equal(t, "print('hi')", res.Files[0].Content)
	assert.Equal(t, "Here you go:\n[CODE_BLOCK_0]\nDone.", res.TextContent)
}

func TestExtractEmptyLanguageTag(t *testing.T) {
	res := Extract("Before\n```\nprint(1)\n```\nAfter")

	require.Len(t, res.Files, 1)
	assert.Equal(t, "text", res.Files[0].Language)
	assert.Equal(t, "code.txt", res.Files[0].Name)
	assert.Equal(t, "print(1)", res.Files[0].Content)

	segments := Split(res.TextContent, res.Files)
	require.Len(t, segments, 3)
	assert.Equal(t, "Before\n", segments[0].Text)
	assert.True(t, segments[1].IsCode())
	assert.Equal(t, 0, segments[1].CodeIndex)
	assert.Equal(t, "\nAfter", segments[2].Text)
}

func TestExtractFilePathHint(t *testing.T) {
	input := "```python file_path=\"src/app.py\"\nx = 1\n```"
	res := Extract(input)

	require.Len(t, res.Files, 1)
	assert.Equal(t, "app.py", res.Files[0].Name)
	assert.Equal(t, "src/app.py", res.Files[0].Path)
	assert.Equal(t, "python", res.Files[0].Language)
}

func TestExtractMultipleBlocks(t *testing.T) {
	input := "First:\n```go\npackage main\n```\nThen:\n```rust\nfn main() {}\n```\nEnd."
	res := Extract(input)

	require.Len(t, res.Files, 2)
	assert.Equal(t, "code.go", res.Files[0].Name)
	assert.Equal(t, "code.rs", res.Files[1].Name)
	assert.Equal(t, "First:\n[CODE_BLOCK_0]\nThen:\n[CODE_BLOCK_1]\nEnd.", res.TextContent)
}

func TestExtractUnknownLanguage(t *testing.T) {
	res := Extract("```brainfuck\n+++\n```")
	require.Len(t, res.Files, 1)
	assert.Equal(t, "brainfuck", res.Files[0].Language)
	assert.Equal(t, "code.txt", res.Files[0].Name)
}

func TestExtractExtensionTable(t *testing.T) {
	cases := map[string]string{
		"javascript": "code.js",
		"typescript": "code.ts",
		"markdown":   "code.md",
		"yaml":       "code.yml",
		"bash":       "code.sh",
		"kotlin":     "code.kt",
		"ruby":       "code.rb",
	}
	for lang, want := range cases {
		res := Extract("```" + lang + "\nbody\n```")
		require.Len(t, res.Files, 1, lang)
		assert.Equal(t, want, res.Files[0].Name, lang)
	}
}

func TestSynthesizedName(t *testing.T) {
	assert.Equal(t, "code.py", SynthesizedName("python"))
	assert.Equal(t, "code.go", SynthesizedName("go"))
	assert.Equal(t, "code.txt", SynthesizedName("no-such-lang"))

	// Extract synthesizes names through the same table.
	res := Extract("```python\nx = 1\n```")
	require.Len(t, res.Files, 1)
	assert.Equal(t, SynthesizedName("python"), res.Files[0].Name)
}

func TestSplitRoundTrip(t *testing.T) {
	input := "Intro\n```go\na := 1\n```\nMiddle\n```python\nb = 2\n```\nOutro"
	res := Extract(input)
	segments := Split(res.TextContent, res.Files)

	// Prose and code interleave in original order.
	require.Len(t, segments, 5)
	assert.False(t, segments[0].IsCode())
	assert.True(t, segments[1].IsCode())
	assert.False(t, segments[2].IsCode())
	assert.True(t, segments[3].IsCode())
	assert.False(t, segments[4].IsCode())
	assert.Equal(t, 0, segments[1].CodeIndex)
	assert.Equal(t, 1, segments[3].CodeIndex)
}

func TestSplitDropsBlankProse(t *testing.T) {
	res := Extract("```go\na := 1\n```\n\n```go\nb := 2\n```")
	segments := Split(res.TextContent, res.Files)

	require.Len(t, segments, 2)
	assert.True(t, segments[0].IsCode())
	assert.True(t, segments[1].IsCode())
}

func TestSplitOutOfRangeIndex(t *testing.T) {
	segments := Split("text [CODE_BLOCK_7] more", nil)
	require.Len(t, segments, 2)
	assert.Equal(t, "text ", segments[0].Text)
	assert.Equal(t, " more", segments[1].Text)
}

func TestExtractUnterminatedFence(t *testing.T) {
	// An unterminated fence is not a block; input passes through.
	input := "Look:\n```go\npackage main\n"
	res := Extract(input)
	assert.False(t, res.HasCode)
	assert.Equal(t, input, res.TextContent)
}
