// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import "strings"

// DefaultModelID is the model used for new sessions.
const DefaultModelID = "deepseek/deepseek-r1-distill-qwen-32b:free"

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo contains metadata about an OpenRouter model.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Context describes the context window size (display string)
	Context string `json:"context"`

	// HasVision marks models that accept image inputs
	HasVision bool `json:"has_vision"`

	// Category groups models for display
	Category string `json:"category"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"description"`
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// catalog is the registry of free OpenRouter models, in display order.
// Vision models first so that FirstVision picks the strongest one.
var catalog = []ModelInfo{
	{ID: "google/gemini-2.0-flash-exp:free", Name: "Gemini 2.0 Flash", Context: "1M tokens", HasVision: true, Category: "Vision", Description: "Latest Google model with vision"},
	{ID: "meta-llama/llama-3.2-11b-vision-instruct:free", Name: "Llama 3.2 11B Vision", Context: "131K tokens", HasVision: true, Category: "Vision", Description: "Meta vision model"},
	{ID: "qwen/qwen-2.5-vl-7b-instruct:free", Name: "Qwen 2.5 VL 7B", Context: "32K tokens", HasVision: true, Category: "Vision", Description: "Qwen vision model"},
	{ID: "qwen/qwen2.5-vl-3b-instruct:free", Name: "Qwen 2.5 VL 3B", Context: "64K tokens", HasVision: true, Category: "Vision", Description: "Compact vision model"},
	{ID: "opengvlab/internvl3-14b:free", Name: "InternVL3 14B", Context: "12K tokens", HasVision: true, Category: "Vision", Description: "Advanced vision model"},
	{ID: "opengvlab/internvl3-2b:free", Name: "InternVL3 2B", Context: "12K tokens", HasVision: true, Category: "Vision", Description: "Compact vision model"},
	{ID: "deepseek/deepseek-r1-distill-qwen-32b:free", Name: "DeepSeek R1 32B", Context: "16K tokens", Category: "Reasoning", Description: "Advanced reasoning model"},
	{ID: "deepseek/deepseek-r1-distill-qwen-14b:free", Name: "DeepSeek R1 14B", Context: "64K tokens", Category: "Reasoning", Description: "Reasoning specialist"},
	{ID: "deepseek/deepseek-r1-zero:free", Name: "DeepSeek R1 Zero", Context: "163K tokens", Category: "Reasoning", Description: "Zero-shot reasoning"},
	{ID: "microsoft/phi-4-reasoning-plus:free", Name: "Phi 4 Reasoning+", Context: "32K tokens", Category: "Reasoning", Description: "Microsoft reasoning model"},
	{ID: "microsoft/phi-4-reasoning:free", Name: "Phi 4 Reasoning", Context: "32K tokens", Category: "Reasoning", Description: "Compact reasoning"},
	{ID: "qwen/qwq-32b:free", Name: "QwQ 32B", Context: "40K tokens", Category: "Reasoning", Description: "Question reasoning model"},
	{ID: "deepseek/deepseek-prover-v2:free", Name: "DeepSeek Prover V2", Context: "163K tokens", Category: "Reasoning", Description: "Mathematical proving"},
	{ID: "meta-llama/llama-4-scout:free", Name: "Llama 4 Scout", Context: "200K tokens", Category: "Latest", Description: "Latest Llama 4 model"},
	{ID: "meta-llama/llama-4-maverick:free", Name: "Llama 4 Maverick", Context: "128K tokens", Category: "Latest", Description: "Llama 4 variant"},
	{ID: "meta-llama/llama-3.3-70b-instruct:free", Name: "Llama 3.3 70B", Context: "131K tokens", Category: "Latest", Description: "Large Llama model"},
	{ID: "meta-llama/llama-3.3-8b-instruct:free", Name: "Llama 3.3 8B", Context: "128K tokens", Category: "Latest", Description: "Mid-size Llama"},
	{ID: "meta-llama/llama-3.2-3b-instruct:free", Name: "Llama 3.2 3B", Context: "20K tokens", Category: "Latest", Description: "Compact Llama"},
	{ID: "meta-llama/llama-3.2-1b-instruct:free", Name: "Llama 3.2 1B", Context: "131K tokens", Category: "Latest", Description: "Smallest Llama"},
	{ID: "qwen/qwen3-30b-a3b:free", Name: "Qwen3 30B A3B", Context: "40K tokens", Category: "Qwen", Description: "Large Qwen model"},
	{ID: "qwen/qwen3-14b:free", Name: "Qwen3 14B", Context: "40K tokens", Category: "Qwen", Description: "Mid Qwen model"},
	{ID: "qwen/qwen3-8b:free", Name: "Qwen3 8B", Context: "40K tokens", Category: "Qwen", Description: "Compact Qwen"},
	{ID: "qwen/qwen-2.5-7b-instruct:free", Name: "Qwen 2.5 7B", Context: "32K tokens", Category: "Qwen", Description: "Qwen instruct model"},
	{ID: "deepseek/deepseek-r1-0528-qwen3-8b:free", Name: "DeepSeek R1 Qwen3 8B", Context: "131K tokens", Category: "Qwen", Description: "DeepSeek Qwen hybrid"},
	{ID: "mistralai/devstral-small:free", Name: "Devstral Small", Context: "131K tokens", Category: "Coding", Description: "Coding specialist"},
	{ID: "agentica-org/deepcoder-14b-preview:free", Name: "DeepCoder 14B", Context: "96K tokens", Category: "Coding", Description: "Advanced coding model"},
	{ID: "open-r1/olympiccoder-32b:free", Name: "OlympicCoder 32B", Context: "32K tokens", Category: "Coding", Description: "Competition coding"},
	{ID: "mistralai/mistral-small-3.1-24b-instruct:free", Name: "Mistral Small 3.1 24B", Context: "96K tokens", Category: "Mistral", Description: "Latest Mistral"},
	{ID: "mistralai/mistral-small-24b-instruct-2501:free", Name: "Mistral Small 3", Context: "32K tokens", Category: "Mistral", Description: "Mistral Small 3"},
	{ID: "mistralai/mistral-7b-instruct:free", Name: "Mistral 7B", Context: "32K tokens", Category: "Mistral", Description: "Base Mistral model"},
	{ID: "google/gemma-3-4b-it:free", Name: "Gemma 3 4B", Context: "96K tokens", Category: "Google", Description: "Mid Gemma model"},
	{ID: "google/gemma-3-1b-it:free", Name: "Gemma 3 1B", Context: "32K tokens", Category: "Google", Description: "Compact Gemma"},
	{ID: "nousresearch/deephermes-3-mistral-24b-preview:free", Name: "DeepHermes 3 Mistral 24B", Context: "32K tokens", Category: "Specialized", Description: "Hermes reasoning"},
	{ID: "nousresearch/deephermes-3-llama-3-8b-preview:free", Name: "DeepHermes 3 Llama 8B", Context: "131K tokens", Category: "Specialized", Description: "Hermes Llama"},
	{ID: "cognitivecomputations/dolphin3.0-mistral-24b:free", Name: "Dolphin 3.0 Mistral 24B", Context: "32K tokens", Category: "Specialized", Description: "Dolphin model"},
	{ID: "cognitivecomputations/dolphin3.0-r1-mistral-24b:free", Name: "Dolphin 3.0 R1 24B", Context: "32K tokens", Category: "Specialized", Description: "Dolphin reasoning"},
	{ID: "rekaai/reka-flash-3:free", Name: "Reka Flash 3", Context: "32K tokens", Category: "Specialized", Description: "Fast Reka model"},
	{ID: "sarvamai/sarvam-m:free", Name: "Sarvam-M", Context: "32K tokens", Category: "Specialized", Description: "Sarvam AI model"},
	{ID: "deepseek/deepseek-v3-base:free", Name: "DeepSeek V3 Base", Context: "163K tokens", Category: "Specialized", Description: "DeepSeek V3 base"},
}

// =============================================================================
// MODEL LOOKUP FUNCTIONS
// =============================================================================

// Catalog returns the full model registry in display order.
// The returned slice is a copy; callers may reorder it freely.
func Catalog() []ModelInfo {
	out := make([]ModelInfo, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a model by exact ID, then by case-insensitive substring
// match on name or ID.
func Lookup(nameOrID string) (ModelInfo, bool) {
	for _, info := range catalog {
		if info.ID == nameOrID {
			return info, true
		}
	}
	lower := strings.ToLower(nameOrID)
	for _, info := range catalog {
		if strings.Contains(strings.ToLower(info.Name), lower) ||
			strings.Contains(strings.ToLower(info.ID), lower) {
			return info, true
		}
	}
	return ModelInfo{}, false
}

// FirstVision returns the first vision-capable model in the catalog.
func FirstVision() (ModelInfo, bool) {
	for _, info := range catalog {
		if info.HasVision {
			return info, true
		}
	}
	return ModelInfo{}, false
}

// Fallback picks the substitute model after failedID became unavailable:
// the first catalog entry with a different ID.
func Fallback(failedID string) (ModelInfo, bool) {
	for _, info := range catalog {
		if info.ID != failedID {
			return info, true
		}
	}
	return ModelInfo{}, false
}

// ByCategory groups the catalog by category, preserving display order
// within each group.
func ByCategory() map[string][]ModelInfo {
	groups := make(map[string][]ModelInfo)
	for _, info := range catalog {
		groups[info.Category] = append(groups[info.Category], info)
	}
	return groups
}

// Categories returns category names in first-appearance order.
func Categories() []string {
	seen := make(map[string]bool)
	var names []string
	for _, info := range catalog {
		if !seen[info.Category] {
			seen[info.Category] = true
			names = append(names, info.Category)
		}
	}
	return names
}
