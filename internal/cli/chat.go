// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for the rei CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles `rei chat`, a line-oriented alternative to the TUI for
// terminals where a full-screen interface is unwanted. Sessions are
// shared with the TUI: the REPL resumes the active session and saves
// after every exchange.
//
// Interactive commands (during chat):
//   /help               Show available commands
//   /new                Start a new session
//   /sessions           List saved sessions
//   /switch <#|name>    Switch to another session
//   /rename <name>      Rename the current session
//   /delete <#|name>    Delete a session
//   /model [name]       Show or switch the session model
//   /models             List available models
//   /attach <path>      Attach an image to the next message
//   /deep               Toggle deep thinking mode
//   /history            Show the session transcript
//   /search <query>     Search archived messages
//   /export [md|json]   Export the transcript
//   /quit               Exit chat
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/rei-tui/internal/config"
	"github.com/jeranaias/rei-tui/internal/engine"
	"github.com/jeranaias/rei-tui/internal/export"
	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.Dir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

const chatHelpText = `Commands:
  /help               Show this help
  /new                Start a new session
  /sessions           List saved sessions
  /switch <#|name>    Switch to another session
  /rename <name>      Rename the current session
  /delete <#|name>    Delete a session
  /model [name]       Show or switch the session model
  /models             List available models
  /attach <path>      Attach an image to the next message
  /deep               Toggle deep thinking mode
  /history            Show the session transcript
  /search <query>     Search archived messages
  /export [md|json]   Export the transcript
  /quit               Exit chat

Ctrl+C cancels a streaming reply, Ctrl+D exits.`

// HandleChatCommand runs the interactive chat REPL.
func HandleChatCommand(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	app, err := NewApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.RequireKey(); err != nil {
		return err
	}

	sess := app.Store.Active()
	if sess == nil {
		sess = app.Store.Create()
	}

	if args.Model != "" {
		info, ok := model.Lookup(args.Model)
		if !ok {
			return ErrNotFound("model", args.Model)
		}
		sess.ModelID = info.ID
		app.Store.Sync(sess)
	}

	deep := args.Deep || app.Config.Chat.DeepThinking

	// Images staged by /attach, consumed by the next exchange.
	var pendingImages []string

	input := NewChatCLI()
	defer input.Close()

	if !args.Quiet {
		printChatBanner(sess, deep)
	}

	for {
		line, err := input.ReadInput("you> ")
		if err == liner.ErrPromptAborted {
			// Ctrl+C at the prompt: ignore, Ctrl+D exits.
			fmt.Println()
			continue
		}
		if err != nil {
			// io.EOF from Ctrl+D, or a terminal error.
			fmt.Println()
			break
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			quit, err := handleChatSlash(app, &sess, &deep, &pendingImages, text)
			if err != nil {
				fmt.Printf("%s %v\n", ErrorStyle.Render("[ERROR]"), err)
			}
			if quit {
				break
			}
			continue
		}

		if err := runChatExchange(app, sess, deep, text, pendingImages); err != nil {
			fmt.Printf("\n%s %s\n", ErrorStyle.Render("[ERROR]"), engine.FriendlyError(err))
		}
		pendingImages = nil
	}

	if !args.Quiet {
		fmt.Println(DimStyle.Render("Session saved."))
	}
	return nil
}

// runChatExchange runs one user turn. Ctrl+C during streaming cancels
// the exchange but keeps the partial reply.
func runChatExchange(app *App, sess *model.ChatSession, deep bool, text string, images []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := engine.Options{
		DeepThinking: deep,
		Creative:     app.Config.Chat.Creative,
	}

	fmt.Print(SuccessStyle.Render("rei> "))
	_, err := app.Engine.Submit(ctx, sess, text, images, opts, func(token string) {
		fmt.Print(token)
	})
	fmt.Println()

	app.Store.Sync(sess)
	if err == context.Canceled {
		fmt.Println(DimStyle.Render("(canceled)"))
		return nil
	}
	return err
}

// handleChatSlash dispatches a REPL slash command. Returns quit=true
// for /quit.
func handleChatSlash(app *App, sess **model.ChatSession, deep *bool, pendingImages *[]string, text string) (bool, error) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help", "/h":
		fmt.Println(chatHelpText)

	case "/new":
		*sess = app.Store.Create()
		fmt.Printf("Started %s\n", (*sess).Name)

	case "/sessions":
		return false, sessionsList(app, false)

	case "/switch":
		if len(args) == 0 {
			return false, ErrMissingArgument("session", "/switch 2")
		}
		target, err := sessionByArg(app, strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		if !app.Store.Switch(target.ID) {
			return false, ErrNotFound("session", target.ID)
		}
		*sess = app.Store.Active()
		fmt.Printf("Switched to %s\n", (*sess).Name)

	case "/rename":
		if len(args) == 0 {
			return false, ErrMissingArgument("name", "/rename Go questions")
		}
		name := strings.Join(args, " ")
		if !app.Store.Rename((*sess).ID, name) {
			return false, NewCommandError("chat", "rename", "rename rejected", nil)
		}
		fmt.Printf("Renamed to %s\n", name)

	case "/delete":
		if len(args) == 0 {
			return false, ErrMissingArgument("session", "/delete 2")
		}
		target, err := sessionByArg(app, strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		deletedCurrent := target.ID == (*sess).ID
		name := target.Name
		if !app.Store.Delete(target.ID) {
			return false, ErrNotFound("session", target.ID)
		}
		fmt.Printf("Deleted %s\n", name)
		if deletedCurrent {
			*sess = app.Store.Create()
			fmt.Printf("Started %s\n", (*sess).Name)
		}

	case "/search":
		if len(args) == 0 {
			return false, ErrMissingArgument("query", "/search raytracer")
		}
		if app.Archive == nil {
			return false, NewCommandError("chat", "search", "message archive unavailable", nil)
		}
		hits, err := app.Archive.Search(strings.Join(args, " "), 10)
		if err != nil {
			return false, err
		}
		if len(hits) == 0 {
			fmt.Println("No matches.")
			return false, nil
		}
		for _, h := range hits {
			fmt.Printf("%s %s: %s\n",
				DimStyle.Render(h.CreatedAt.Format("Jan 2")),
				InfoStyle.Render(h.SessionName),
				util.TruncateRunes(oneLine(h.Content), 90))
		}

	case "/model":
		if len(args) == 0 {
			name := (*sess).ModelID
			if info, ok := model.Lookup(name); ok {
				name = info.Name
			}
			fmt.Printf("Current model: %s\n", name)
			return false, nil
		}
		info, ok := model.Lookup(strings.Join(args, " "))
		if !ok {
			return false, ErrNotFound("model", strings.Join(args, " "))
		}
		(*sess).ModelID = info.ID
		app.Store.Sync(*sess)
		fmt.Printf("Model set to %s\n", info.Name)

	case "/models":
		printModelCatalog()

	case "/attach":
		if len(args) == 0 {
			return false, ErrMissingArgument("path", "/attach diagram.png")
		}
		uri, err := readImageAsDataURI(strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		*pendingImages = append(*pendingImages, uri)
		fmt.Printf("Attached %s (sent with your next message)\n", strings.Join(args, " "))

	case "/deep":
		*deep = !*deep
		if *deep {
			fmt.Println("Deep thinking on")
		} else {
			fmt.Println("Deep thinking off")
		}

	case "/history":
		if (*sess).IsEmpty() {
			fmt.Println("No messages yet.")
			return false, nil
		}
		fmt.Println((*sess).Transcript())

	case "/export":
		format := "markdown"
		if len(args) > 0 {
			format = strings.ToLower(args[0])
		}
		exporter, err := export.ForFormat(format, nil)
		if err != nil {
			return false, err
		}
		path, err := export.ExportToFile(*sess, exporter, export.DefaultOptions())
		if err != nil {
			return false, err
		}
		fmt.Printf("Exported to %s\n", path)

	case "/quit", "/q", "/exit":
		return true, nil

	default:
		fmt.Printf("Unknown command %s (try /help)\n", cmd)
	}

	return false, nil
}

// printChatBanner shows the session header when the REPL starts.
func printChatBanner(sess *model.ChatSession, deep bool) {
	modelName := sess.ModelID
	if info, ok := model.Lookup(sess.ModelID); ok {
		modelName = info.Name
	}

	fmt.Println(TitleStyle.Render("REI - portfolio assistant"))
	fmt.Printf("%s %s\n", DimStyle.Render("Session:"), sess.Name)
	fmt.Printf("%s %s\n", DimStyle.Render("Model:"), modelName)
	if deep {
		fmt.Println(DimStyle.Render("Deep thinking enabled"))
	}
	fmt.Println(DimStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Println()
}
