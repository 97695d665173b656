// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for rei.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdModels
	CmdAuth
	CmdConfig
	CmdExport
	CmdSearch
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool // Output in JSON format
	Model   string
	Deep    bool // Deep thinking mode for ask/chat

	// Command-specific
	Query      string
	File       string
	Image      string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `rei - portfolio assistant for the terminal

REI answers questions about Jesse Morgan's work, projects, and skills,
streaming replies from free OpenRouter models.

Usage:
  rei                        Start the TUI (default)
  rei ask "question"         Ask a single question
  rei chat                   Interactive chat REPL
  rei sessions [subcommand]  Manage saved sessions
  rei models                 List available models
  rei auth [subcommand]      Manage the OpenRouter API key
  rei config [show|set]      Configuration
  rei export [#]             Export a session transcript
  rei search <query>         Search archived messages
  rei version                Show version
  rei help                   Show this help

Session Commands:
  rei sessions list          List all saved sessions (alias: ls)
  rei sessions show <#>      Show a session transcript
  rei sessions rename <#> <name>  Rename a session
  rei sessions delete <#>    Delete a session
    --confirm                Required confirmation flag

Auth Commands:
  rei auth set               Store an API key (prompts, input hidden)
  rei auth status            Show whether a key is configured
  rei auth clear             Remove the stored key

Config Commands:
  rei config show            Show current configuration
  rei config set KEY VALUE   Set a configuration value
  rei config path            Print the config file path

Export:
  rei export 1 --format md   Export the first session as Markdown
  rei export 1 --format json Export as JSON

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --model NAME    Override the model for this invocation
  --deep          Enable deep thinking mode
  --json          Output in JSON format

Examples:
  rei                                  Start the TUI
  rei ask "What projects use Rust?"    One-shot question
  rei ask "Review this:" --file x.go   Include a file
  rei ask "What is this?" --image diagram.png   Attach an image
  echo "question" | rei ask            Read the question from stdin
  rei chat --model "QwQ 32B"           Chat with a specific model
  rei sessions list                    List sessions
  rei search "raytracer"               Search message history
  rei auth set                         Configure the API key

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("rei version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseFrom(os.Args[1:])
}

// ParseFrom parses the given arguments. Split out from Parse for tests.
func ParseFrom(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "session", "sessions":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdSessions, parsedArgs

	case "model", "models":
		return CmdModels, parsedArgs

	case "auth", "key":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdAuth, parsedArgs

	case "config":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdConfig, parsedArgs

	case "export":
		return CmdExport, parsedArgs

	case "search":
		return CmdSearch, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown word: treat the whole line as an ask query. This makes
		// `rei what does REI stand for` work without quoting.
		parsedArgs.Query = strings.Join(append([]string{cmd}, remaining...), " ")
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--deep":
			parsedArgs.Deep = true
		case "--model", "-m":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		case "-i", "--image":
			if i+1 < len(remaining) {
				i++
				args.Image = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			} else if strings.HasPrefix(arg, "--image=") {
				args.Image = strings.TrimPrefix(arg, "--image=")
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat handles the "chat" command.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
