// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - API key management for the rei CLI.
//
// The key lives in the encrypted keystore at ~/.rei/keystore.json.
// The OPENROUTER_API_KEY environment variable always wins over it.
//
// Subcommands:
//   rei auth set       Store a key (prompts with input hidden)
//   rei auth status    Show whether a key is configured and its source
//   rei auth clear     Remove the stored key
package cli

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/rei-tui/internal/config"
	"github.com/jeranaias/rei-tui/internal/openrouter"
	"github.com/jeranaias/rei-tui/internal/storage"
)

// HandleAuth dispatches the auth subcommands.
func HandleAuth(args Args) error {
	parser := NewArgParser(args.Raw)
	jsonMode := args.JSON || parser.BoolFlag("json")

	switch parser.Subcommand() {
	case "set":
		return authSet(parser)

	case "", "status", "show":
		return authStatus(jsonMode)

	case "clear", "remove":
		return authClear()

	default:
		return NewValidationError("subcommand", parser.Subcommand(),
			"expected set, status, or clear")
	}
}

func authSet(parser *ArgParser) error {
	// A key on the command line ends up in shell history, so the prompt
	// is the default; --key exists for scripted setup.
	key := parser.Flag("key")

	if key == "" {
		if err := RequiresTTY("enter an API key"); err != nil {
			return err
		}

		fmt.Print("OpenRouter API key (input hidden): ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return WrapError(err, "failed to read key")
		}
		key = strings.TrimSpace(string(raw))
	}

	if key == "" {
		return ErrMissingArgument("key", "rei auth set")
	}
	if !openrouter.ValidateAPIKey(key) {
		return NewValidationError("key", "", "does not look like an OpenRouter key (expected sk-or-... prefix)")
	}

	ks, err := storage.NewKeystore()
	if err != nil {
		return WrapError(err, "failed to open keystore")
	}
	if err := ks.Set(key); err != nil {
		return WrapError(err, "failed to store key")
	}

	fmt.Printf("%s API key stored.\n", SuccessStyle.Render("[OK]"))
	return nil
}

func authStatus(jsonMode bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	_, source := resolveAPIKey(cfg)

	if jsonMode {
		data := AuthData{Configured: source != "", Source: source}
		return NewJSONResponse("auth status", data).Print()
	}

	switch source {
	case "env":
		fmt.Printf("%s API key configured via OPENROUTER_API_KEY\n", SuccessStyle.Render("[OK]"))
	case "config":
		fmt.Printf("%s API key configured in config.toml\n", SuccessStyle.Render("[OK]"))
		fmt.Println(DimStyle.Render("Consider moving it to the keystore: rei auth set"))
	case "keystore":
		fmt.Printf("%s API key stored in the encrypted keystore\n", SuccessStyle.Render("[OK]"))
	default:
		fmt.Printf("%s No API key configured\n", WarningStyle.Render("[WARN]"))
		fmt.Println(DimStyle.Render("Set one with: rei auth set"))
	}
	return nil
}

func authClear() error {
	ks, err := storage.NewKeystore()
	if err != nil {
		return WrapError(err, "failed to open keystore")
	}
	if !ks.Exists() {
		fmt.Println("No stored key to clear.")
		return nil
	}
	if err := ks.Clear(); err != nil {
		return WrapError(err, "failed to clear key")
	}
	fmt.Printf("%s API key removed.\n", SuccessStyle.Render("[OK]"))
	return nil
}
