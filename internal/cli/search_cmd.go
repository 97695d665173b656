// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// search_cmd.go - Full-text search over the message archive.
//
// Usage:
//   rei search <query> [--limit N] [--recent]
//
// The archive keeps every message ever exchanged, including ones from
// deleted sessions, so search reaches further back than `rei sessions`.
package cli

import (
	"fmt"
	"time"

	"github.com/jeranaias/rei-tui/internal/history"
	"github.com/jeranaias/rei-tui/internal/util"
)

// HandleSearch searches archived messages.
func HandleSearch(args Args) error {
	app, err := NewApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Archive == nil {
		return NewCommandError("search", "open archive", "message archive unavailable", nil)
	}

	parser := NewArgParser(args.Raw)
	jsonMode := args.JSON || parser.BoolFlag("json")
	limit := parser.FlagIntOrDefault("limit", 20)

	var hits []history.Hit
	if parser.BoolFlag("recent") {
		hits, err = app.Archive.Recent(limit)
	} else {
		query := JoinPositionalArgs(parser, 0)
		if query == "" {
			return ErrMissingArgument("query", `rei search "raytracer"`)
		}
		hits, err = app.Archive.Search(query, limit)
	}
	if err != nil {
		return WrapError(err, "search failed")
	}

	if jsonMode {
		data := make([]SearchHitData, 0, len(hits))
		for _, h := range hits {
			data = append(data, SearchHitData{
				SessionName: h.SessionName,
				Role:        h.Role.DisplayName(),
				Content:     h.Content,
				ModelID:     h.ModelID,
				CreatedAt:   h.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return NewJSONResponse("search", data).Print()
	}

	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("%d matches", len(hits))))
	for _, h := range hits {
		fmt.Printf("%s %s %s\n",
			DimStyle.Render(h.CreatedAt.Format("Jan 2 15:04")),
			ValueStyle.Render(util.PadRight(h.SessionName, 20)),
			InfoStyle.Render(h.Role.DisplayName()))
		fmt.Printf("  %s\n", util.TruncateRunes(oneLine(h.Content), 100))
	}
	return nil
}

func oneLine(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
