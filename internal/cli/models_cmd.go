// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models_cmd.go - Model catalog listing for the rei CLI.
package cli

import (
	"fmt"

	"github.com/jeranaias/rei-tui/internal/model"
	"github.com/jeranaias/rei-tui/internal/util"
)

// HandleModels lists the model catalog.
func HandleModels(args Args) error {
	if args.JSON {
		catalog := model.Catalog()
		data := make([]ModelData, 0, len(catalog))
		for _, info := range catalog {
			data = append(data, ModelData{
				ID:          info.ID,
				Name:        info.Name,
				Context:     info.Context,
				Category:    info.Category,
				Vision:      info.HasVision,
				Description: info.Description,
			})
		}
		return NewJSONResponse("models", data).Print()
	}

	printModelCatalog()
	return nil
}

// printModelCatalog prints the catalog grouped by category. Shared with
// the chat REPL's /models command.
func printModelCatalog() {
	fmt.Println(TitleStyle.Render("Available models (all free tier)"))

	byCat := model.ByCategory()
	for _, cat := range model.Categories() {
		infos, ok := byCat[cat]
		if !ok {
			continue
		}
		fmt.Println(SectionStyle.Render(cat))
		for _, info := range infos {
			line := fmt.Sprintf("  %s %s", util.PadRight(info.Name, 26), info.Context)
			if info.HasVision {
				line += "  " + InfoStyle.Render("[vision]")
			}
			fmt.Println(line)
			if info.Description != "" {
				fmt.Printf("    %s\n", DimStyle.Render(info.Description))
			}
		}
	}

	fmt.Println()
	fmt.Println(DimStyle.Render("Switch with: rei chat --model \"<name>\" or /model in chat"))
}
