// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions_cmd.go - Session management commands for the rei CLI.
//
// Subcommands:
//   rei sessions list            List all saved sessions (alias: ls)
//   rei sessions show <#>        Show a session transcript
//   rei sessions rename <#> <name>  Rename a session
//   rei sessions delete <#> --confirm  Delete a session
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/util"
)

// HandleSessions dispatches the sessions subcommands.
func HandleSessions(args Args) error {
	app, err := NewApp()
	if err != nil {
		return err
	}
	defer app.Close()

	parser := NewArgParser(args.Raw)
	jsonMode := args.JSON || parser.BoolFlag("json")

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return sessionsList(app, jsonMode)

	case "show":
		return sessionsShow(app, parser)

	case "rename":
		return sessionsRename(app, parser)

	case "delete", "rm":
		return sessionsDelete(app, parser)

	default:
		return NewValidationError("subcommand", parser.Subcommand(),
			"expected list, show, rename, or delete")
	}
}

func sessionsList(app *App, jsonMode bool) error {
	sessions := app.Store.List()

	if jsonMode {
		data := make([]SessionData, 0, len(sessions))
		for i, sess := range sessions {
			data = append(data, SessionData{
				Index:     i + 1,
				ID:        sess.ID,
				Name:      sess.Name,
				ModelID:   sess.ModelID,
				Messages:  sess.MessageCount(),
				Preview:   sess.Preview(),
				UpdatedAt: sess.UpdatedAt.UTC().Format(time.RFC3339),
			})
		}
		return NewJSONResponse("sessions list", data).Print()
	}

	if len(sessions) == 0 {
		fmt.Println("No saved sessions. Start one with: rei chat")
		return nil
	}

	fmt.Println(TitleStyle.Render("Sessions"))
	for i, sess := range sessions {
		modelName := sess.ModelID
		if info, ok := model.Lookup(sess.ModelID); ok {
			modelName = info.Name
		}
		fmt.Printf("%s %s\n",
			ValueStyle.Render(fmt.Sprintf("%2d. %s", i+1, util.PadRight(sess.Name, 24))),
			DimStyle.Render(fmt.Sprintf("%d messages - %s", sess.MessageCount(), modelName)))
		if preview := sess.Preview(); preview != "" && preview != "Empty session" {
			fmt.Printf("      %s\n", DimStyle.Render(util.TruncateRunes(preview, 70)))
		}
	}
	return nil
}

func sessionsShow(app *App, parser *ArgParser) error {
	sess, err := sessionByArg(app, parser.Positional(1))
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		return NewJSONResponse("sessions show", sess).Print()
	}

	fmt.Println(TitleStyle.Render(sess.Name))
	modelName := sess.ModelID
	if info, ok := model.Lookup(sess.ModelID); ok {
		modelName = info.Name
	}
	fmt.Printf("%s %s\n", DimStyle.Render("Model:"), modelName)
	fmt.Printf("%s %s\n", DimStyle.Render("Created:"), sess.CreatedAt.Format("Jan 2, 2006 3:04 PM"))
	fmt.Println()

	if sess.IsEmpty() {
		fmt.Println(DimStyle.Render("No messages."))
		return nil
	}
	fmt.Println(sess.Transcript())
	return nil
}

func sessionsRename(app *App, parser *ArgParser) error {
	sess, err := sessionByArg(app, parser.Positional(1))
	if err != nil {
		return err
	}

	name := JoinPositionalArgs(parser, 2)
	if strings.TrimSpace(name) == "" {
		return ErrMissingArgument("name", "rei sessions rename 1 \"Go questions\"")
	}

	if !app.Store.Rename(sess.ID, name) {
		return NewCommandError("sessions", "rename", "rename rejected", nil)
	}
	fmt.Printf("%s Renamed to %s\n", SuccessStyle.Render("[OK]"), name)
	return nil
}

func sessionsDelete(app *App, parser *ArgParser) error {
	sess, err := sessionByArg(app, parser.Positional(1))
	if err != nil {
		return err
	}

	if !parser.BoolFlag("confirm") {
		return NewValidationError("confirm", "",
			"deleting a session requires --confirm")
	}

	name := sess.Name
	if !app.Store.Delete(sess.ID) {
		return ErrNotFound("session", sess.ID)
	}
	fmt.Printf("%s Deleted %s\n", SuccessStyle.Render("[OK]"), name)
	return nil
}

// sessionByArg resolves a session from a 1-based list index or an exact
// name match.
func sessionByArg(app *App, arg string) (*model.ChatSession, error) {
	if arg == "" {
		return nil, ErrMissingArgument("session", "rei sessions show 1")
	}

	sessions := app.Store.List()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(sessions) {
			return nil, ErrNotFound("session", arg)
		}
		return sessions[n-1], nil
	}

	for _, sess := range sessions {
		if strings.EqualFold(sess.Name, arg) {
			return sess, nil
		}
	}
	return nil, ErrNotFound("session", arg)
}
