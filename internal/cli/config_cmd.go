// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration commands for the rei CLI.
//
// Subcommands:
//   rei config show           Show current configuration
//   rei config set <k> <v>    Set a value and save
//   rei config path           Print the config file path
//   rei config keys           List settable keys
package cli

import (
	"fmt"

	"github.com/jeranaias/rei-tui/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	parser := NewArgParser(args.Raw)
	jsonMode := args.JSON || parser.BoolFlag("json")

	switch parser.Subcommand() {
	case "", "show", "list":
		return configShow(jsonMode)

	case "set":
		return configSet(parser)

	case "path":
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "keys":
		for _, key := range config.Keys() {
			fmt.Println(key)
		}
		return nil

	default:
		return NewValidationError("subcommand", parser.Subcommand(),
			"expected show, set, path, or keys")
	}
}

func configShow(jsonMode bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if jsonMode {
		// The API key never appears in output, redacted or otherwise.
		redacted := *cfg
		redacted.API.Key = ""
		return NewJSONResponse("config show", redacted).Print()
	}

	fmt.Println(TitleStyle.Render("Configuration"))
	fmt.Printf("%s %s\n", LabelStyle.Render("default_model"), cfg.DefaultModel)
	fmt.Printf("%s %s\n", LabelStyle.Render("api.base_url"), valueOrDefault(cfg.API.BaseURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("api.site_url"), valueOrDefault(cfg.API.SiteURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("api.site_name"), valueOrDefault(cfg.API.SiteName))
	fmt.Printf("%s %s\n", LabelStyle.Render("ui.theme"), cfg.UI.Theme)
	fmt.Printf("%s %t\n", LabelStyle.Render("ui.show_stats"), cfg.UI.ShowStats)
	fmt.Printf("%s %t\n", LabelStyle.Render("ui.compact_mode"), cfg.UI.CompactMode)
	fmt.Printf("%s %t\n", LabelStyle.Render("chat.deep_thinking"), cfg.Chat.DeepThinking)
	fmt.Printf("%s %t\n", LabelStyle.Render("chat.creative"), cfg.Chat.Creative)
	fmt.Printf("%s %d\n", LabelStyle.Render("chat.max_sessions"), cfg.Chat.MaxSessions)

	fmt.Println()
	if cfg.API.Key != "" {
		fmt.Println(DimStyle.Render("API key: configured (rei auth status for details)"))
	} else {
		fmt.Println(DimStyle.Render("API key: not set (rei auth set)"))
	}
	return nil
}

func configSet(parser *ArgParser) error {
	key := parser.Positional(1)
	if key == "" {
		return ErrMissingArgument("key", "rei config set ui.theme dark")
	}
	value := JoinPositionalArgs(parser, 2)
	if value == "" {
		return ErrMissingArgument("value", "rei config set ui.theme dark")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return WrapError(err, "failed to save config")
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	return nil
}

func valueOrDefault(s string) string {
	if s == "" {
		return DimStyle.Render("(default)")
	}
	return s
}
