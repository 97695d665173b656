// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for the rei CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles `rei ask` which sends one question and streams the reply to
// stdout. The exchange is not saved as a session.
//
// Examples:
//   rei ask "What projects use Rust?"
//   rei ask "Review this:" --file main.go
//   rei ask --deep "Walk me through the raytracer"
//   echo "question" | rei ask
//
// Flags:
//   -f, --file FILE     Include file content with the question
//   -i, --image FILE    Attach an image (switches to a vision model)
//   -m, --model NAME    Use specific model (overrides config)
//   --deep              Deep thinking mode
//   --json              Output response as JSON
//   -q, --quiet         Minimal output
package cli

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/rei-tui/internal/engine"
	"github.com/jeranaias/rei-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MaxFileSize is the maximum file size to include (50KB).
	MaxFileSize = 50 * 1024

	// MaxImageSize is the maximum image attachment size (5MB).
	MaxImageSize = 5 * 1024 * 1024
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
// USABILITY: Renders markdown responses with syntax highlighting.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse displays a response with markdown rendering when
// stdout is a TTY; piped output stays plain.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Print(response)
	}
}

// =============================================================================
// FILE READING
// =============================================================================

// readFileForContext reads a file and formats it for inclusion in a
// prompt. Files larger than MaxFileSize are rejected.
func readFileForContext(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("cannot access file: %w", err)
	}

	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d bytes)", info.Size(), MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("\n--- File: %s ---\n", path))
	builder.Write(content)
	builder.WriteString("\n--- End of file ---\n")

	return builder.String(), nil
}

// =============================================================================
// IMAGE ATTACHMENTS
// =============================================================================

// imageMimeTypes maps attachment extensions to their MIME types. Only
// formats the vision models accept are listed.
var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// readImageAsDataURI reads an image file and encodes it as a
// base64 data URI suitable for a multimodal message part.
func readImageAsDataURI(path string) (string, error) {
	mime, ok := imageMimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("unsupported image type: %s (expected png, jpg, gif, or webp)", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("image not found: %s", path)
		}
		return "", fmt.Errorf("cannot access image: %w", err)
	}
	if info.Size() > MaxImageSize {
		return "", fmt.Errorf("image too large: %d bytes (max %d bytes)", info.Size(), MaxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command: one question, one
// streamed reply, no session persisted.
func HandleAskCommand(args Args) error {
	app, err := NewApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.RequireKey(); err != nil {
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	question := args.Query

	// With no question on the command line, try piped stdin.
	if question == "" && !IsTTY() {
		reader := bufio.NewReader(os.Stdin)
		stdinData, err := io.ReadAll(reader)
		if err == nil && len(stdinData) > 0 {
			question = strings.TrimSpace(string(stdinData))
			if !args.Quiet && !args.JSON {
				fmt.Fprintf(os.Stderr, "%s Read question from stdin (%d bytes)\n",
					InfoStyle.Render("[+]"), len(stdinData))
			}
		}
	}

	if question == "" {
		err := ErrMissingArgument("question", `rei ask "your question"`)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	if args.File != "" {
		fileContent, err := readFileForContext(args.File)
		if err != nil {
			return err
		}
		question = question + "\n" + fileContent

		if !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "%s Including file: %s\n",
				InfoStyle.Render("[+]"), args.File)
		}
	}

	var images []string
	if args.Image != "" {
		uri, err := readImageAsDataURI(args.Image)
		if err != nil {
			return err
		}
		images = append(images, uri)

		if !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "%s Attaching image: %s\n",
				InfoStyle.Render("[+]"), args.Image)
		}
	}

	// Resolve the model: flag wins, then config.
	modelID := app.Config.DefaultModel
	if args.Model != "" {
		info, ok := model.Lookup(args.Model)
		if !ok {
			return ErrNotFound("model", args.Model)
		}
		modelID = info.ID
	}

	sess := model.NewChatSession("ask", modelID)
	opts := engine.Options{
		DeepThinking: args.Deep || app.Config.Chat.DeepThinking,
		Creative:     app.Config.Chat.Creative,
	}

	// Markdown needs the full reply before rendering; plain mode
	// streams tokens as they arrive.
	useMarkdown := IsStdoutTTY() && !args.JSON

	if !args.Quiet && !args.JSON {
		if info, ok := model.Lookup(modelID); ok {
			fmt.Fprintf(os.Stderr, "%s %s\n", DimStyle.Render("Model:"), info.Name)
		}
		fmt.Fprintln(os.Stderr)
	}

	startTime := time.Now()
	onDelta := func(token string) {
		if !args.JSON && !useMarkdown {
			fmt.Print(token)
		}
	}

	reply, err := app.Engine.Submit(context.Background(), sess, question, images, opts, onDelta)
	duration := time.Since(startTime)

	if err != nil {
		friendly := fmt.Errorf("%s", engine.FriendlyError(err))
		if args.JSON {
			NewJSONErrorResponse("ask", friendly).Print()
		}
		return friendly
	}

	if args.JSON {
		data := AskData{
			Response:     reply.Content,
			Model:        reply.ModelID,
			Tokens:       reply.EstimateTokens(),
			DurationMs:   duration.Milliseconds(),
			DeepThinking: opts.DeepThinking,
		}
		return NewJSONResponse("ask", data).Print()
	}

	if useMarkdown {
		displayResponse(reply.Content)
	}
	fmt.Println()

	if !args.Quiet {
		displayAskSummary(reply, duration)
	}

	return nil
}

// displayAskSummary shows timing and token stats after the reply.
func displayAskSummary(reply *model.Message, duration time.Duration) {
	separator := strings.Repeat("─", 45)
	fmt.Fprintln(os.Stderr, SeparatorStyle.Render(separator))

	modelName := reply.ModelID
	if info, ok := model.Lookup(reply.ModelID); ok {
		modelName = info.Name
	}

	fmt.Fprintf(os.Stderr, "%s %s | %s ~%s | %s %v\n",
		DimStyle.Render("Model:"),
		modelName,
		DimStyle.Render("Tokens:"),
		formatNumber(reply.EstimateTokens()),
		DimStyle.Render("Time:"),
		duration.Round(time.Millisecond))
}

// formatNumber formats an integer with commas for thousands.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+len(s)/3)

	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	return string(result)
}
