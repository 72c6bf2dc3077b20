// Package models holds the read-only catalog of model capabilities used to
// size token budgets: context window, default reserved output, and which
// counting strategy applies.
package models

import (
	"sort"
	"strings"
)

type CountStrategy string

const (
	// StrategyCl100k counts with the cl100k_base tokenizer. Several model
	// families share it as an approximation of their real tokenizers.
	StrategyCl100k CountStrategy = "cl100k_base"
	// StrategyHeuristic estimates one token per four characters.
	StrategyHeuristic CountStrategy = "heuristic"
)

const (
	DefaultContextWindow = 128_000
	DefaultMaxOutput     = 4_096
)

type ModelInfo struct {
	Name             string        `json:"name"`
	ContextWindow    int           `json:"context_window"`
	DefaultMaxOutput int           `json:"default_max_output"`
	Strategy         CountStrategy `json:"strategy"`
	SupportsTools    bool          `json:"supports_tools"`
	SupportsThinking bool          `json:"supports_thinking"`
	Provider         string        `json:"provider"`
}

// Catalog maps model identifiers to their capabilities. Lookups tolerate
// versioned identifiers by falling back to the longest seeded prefix, and
// InfoFor never fails: unknown models get usable defaults.
type Catalog struct {
	entries map[string]ModelInfo
}

func NewCatalog() *Catalog {
	catalog := &Catalog{entries: make(map[string]ModelInfo)}
	catalog.seed()

	return catalog
}

func (catalog *Catalog) Register(info ModelInfo) {
	catalog.entries[info.Name] = info
}

// Lookup finds a model by exact name, then by the longest seeded entry that
// prefixes the identifier (so "claude-sonnet-4-20250514" resolves via
// "claude-sonnet-4").
func (catalog *Catalog) Lookup(model string) (ModelInfo, bool) {
	if info, ok := catalog.entries[model]; ok {
		return info, true
	}

	bestLen := 0
	var best ModelInfo

	for name, info := range catalog.entries {
		if strings.HasPrefix(model, name) && len(name) > bestLen {
			bestLen = len(name)
			best = info
		}
	}

	return best, bestLen > 0
}

// InfoFor is Lookup with a guaranteed answer: unrecognized identifiers get a
// 128k window, 4096 reserved output, and heuristic counting.
func (catalog *Catalog) InfoFor(model string) ModelInfo {
	if info, ok := catalog.Lookup(model); ok {
		return info
	}

	return ModelInfo{
		Name:             model,
		ContextWindow:    DefaultContextWindow,
		DefaultMaxOutput: DefaultMaxOutput,
		Strategy:         StrategyHeuristic,
		SupportsTools:    true,
		Provider:         "unknown",
	}
}

func (catalog *Catalog) List() []ModelInfo {
	infos := make([]ModelInfo, 0, len(catalog.entries))
	for _, info := range catalog.entries {
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos
}

// Providers returns the distinct provider names across all entries, sorted.
func (catalog *Catalog) Providers() []string {
	seen := make(map[string]bool)
	for _, info := range catalog.entries {
		seen[info.Provider] = true
	}

	providers := make([]string, 0, len(seen))
	for provider := range seen {
		providers = append(providers, provider)
	}

	sort.Strings(providers)

	return providers
}

// ModelsForProvider returns the names of all entries for one provider,
// sorted.
func (catalog *Catalog) ModelsForProvider(provider string) []string {
	var names []string
	for _, info := range catalog.entries {
		if info.Provider == provider {
			names = append(names, info.Name)
		}
	}

	sort.Strings(names)

	return names
}

func (catalog *Catalog) seed() {
	for _, info := range []ModelInfo{
		{Name: "claude-opus-4", ContextWindow: 200_000, DefaultMaxOutput: 32_000, Strategy: StrategyCl100k, SupportsTools: true, SupportsThinking: true, Provider: "anthropic"},
		{Name: "claude-sonnet-4", ContextWindow: 200_000, DefaultMaxOutput: 64_000, Strategy: StrategyCl100k, SupportsTools: true, SupportsThinking: true, Provider: "anthropic"},
		{Name: "claude-3-7-sonnet", ContextWindow: 200_000, DefaultMaxOutput: 64_000, Strategy: StrategyCl100k, SupportsTools: true, SupportsThinking: true, Provider: "anthropic"},
		{Name: "claude-3-5-sonnet", ContextWindow: 200_000, DefaultMaxOutput: 8_192, Strategy: StrategyCl100k, SupportsTools: true, Provider: "anthropic"},
		{Name: "claude-3-5-haiku", ContextWindow: 200_000, DefaultMaxOutput: 8_192, Strategy: StrategyCl100k, SupportsTools: true, Provider: "anthropic"},
		{Name: "gpt-4o", ContextWindow: 128_000, DefaultMaxOutput: 16_384, Strategy: StrategyCl100k, SupportsTools: true, Provider: "openai"},
		{Name: "gpt-4o-mini", ContextWindow: 128_000, DefaultMaxOutput: 16_384, Strategy: StrategyCl100k, SupportsTools: true, Provider: "openai"},
		{Name: "gpt-4.1", ContextWindow: 1_047_576, DefaultMaxOutput: 32_768, Strategy: StrategyCl100k, SupportsTools: true, Provider: "openai"},
		{Name: "o3", ContextWindow: 200_000, DefaultMaxOutput: 100_000, Strategy: StrategyCl100k, SupportsTools: true, SupportsThinking: true, Provider: "openai"},
		{Name: "o4-mini", ContextWindow: 200_000, DefaultMaxOutput: 100_000, Strategy: StrategyCl100k, SupportsTools: true, SupportsThinking: true, Provider: "openai"},
		{Name: "gemini-2.5-pro", ContextWindow: 1_048_576, DefaultMaxOutput: 65_536, Strategy: StrategyCl100k, SupportsTools: true, SupportsThinking: true, Provider: "google"},
		{Name: "gemini-2.0-flash", ContextWindow: 1_048_576, DefaultMaxOutput: 8_192, Strategy: StrategyCl100k, SupportsTools: true, Provider: "google"},
		{Name: "gemini-1.5-pro", ContextWindow: 2_097_152, DefaultMaxOutput: 8_192, Strategy: StrategyCl100k, SupportsTools: true, Provider: "google"},
		{Name: "grok-3", ContextWindow: 131_072, DefaultMaxOutput: 16_384, Strategy: StrategyCl100k, SupportsTools: true, Provider: "xai"},
		{Name: "grok-2", ContextWindow: 131_072, DefaultMaxOutput: 8_192, Strategy: StrategyCl100k, SupportsTools: true, Provider: "xai"},
		{Name: "llama-3.3-70b", ContextWindow: 128_000, DefaultMaxOutput: 8_192, Strategy: StrategyHeuristic, SupportsTools: true, Provider: "groq"},
		{Name: "mixtral-8x7b", ContextWindow: 32_768, DefaultMaxOutput: 4_096, Strategy: StrategyHeuristic, SupportsTools: true, Provider: "groq"},
	} {
		catalog.Register(info)
	}
}
