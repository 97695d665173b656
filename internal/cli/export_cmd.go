// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Transcript export command for the rei CLI.
//
// Usage:
//   rei export <#|name> [--format md|json] [--out DIR] [--no-metadata]
package cli

import (
	"fmt"

	"github.com/jeranaias/rei-tui/internal/export"
)

// HandleExport exports a session transcript to a file.
func HandleExport(args Args) error {
	app, err := NewApp()
	if err != nil {
		return err
	}
	defer app.Close()

	parser := NewArgParser(args.Raw)
	jsonMode := args.JSON || parser.BoolFlag("json-output")

	sess, err := sessionByArg(app, parser.Positional(0))
	if err != nil {
		return err
	}
	if sess.IsEmpty() {
		return NewCommandError("export", "render", "session has no messages", nil)
	}

	format := parser.FlagOrDefault("format", "markdown")
	opts := export.DefaultOptions()
	if dir := parser.Flag("out"); dir != "" {
		opts.OutputDir = dir
	}
	if parser.BoolFlag("no-metadata") {
		opts.IncludeMetadata = false
		opts.IncludeTimestamps = false
	}

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return NewValidationError("format", format, "expected md or json")
	}

	path, err := export.ExportToFile(sess, exporter, opts)
	if err != nil {
		return WrapError(err, "export failed")
	}

	if jsonMode {
		data := ExportData{Path: path, Format: format, Session: sess.Name}
		return NewJSONResponse("export", data).Print()
	}

	fmt.Printf("%s Exported %s to %s\n", SuccessStyle.Render("[OK]"), sess.Name, path)
	return nil
}
