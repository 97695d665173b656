// rei - portfolio assistant for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rei-tui/internal/cli"
	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/ui/chat"
	"github.com/jeranaias/rei-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args))
	case cli.CmdModels:
		exitOnError(cli.HandleModels(args))
	case cli.CmdAuth:
		exitOnError(cli.HandleAuth(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdExport:
		exitOnError(cli.HandleExport(args))
	case cli.CmdSearch:
		exitOnError(cli.HandleSearch(args))
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) {
	app, err := cli.NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
	defer app.Close()

	theme := styles.NewTheme()
	m := chat.New(theme, app.Store, app.Engine, app.Config)
	m.SetVersion(Version)
	if app.Archive != nil {
		m.SetArchive(app.Archive)
	}

	// CLI --model overrides the active session's model for this run.
	if args.Model != "" {
		info, ok := model.Lookup(args.Model)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: model not found: %s\n", args.Model)
			os.Exit(cli.ExitNotFoundError)
		}
		sess := app.Store.Active()
		if sess == nil {
			sess = app.Store.Create()
		}
		sess.ModelID = info.ID
		app.Store.Sync(sess)
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running rei: %v\n", err)
		os.Exit(1)
	}
}
