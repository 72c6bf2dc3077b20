package models

import "testing"

func TestCatalog_ExactLookup(t *testing.T) {
	catalog := NewCatalog()

	info, ok := catalog.Lookup("gpt-4o")
	if !ok {
		t.Fatal("expected gpt-4o to be seeded")
	}

	if info.ContextWindow != 128_000 {
		t.Errorf("context window: got %d, want 128000", info.ContextWindow)
	}

	if info.Provider != "openai" {
		t.Errorf("provider: got %q, want openai", info.Provider)
	}
}

func TestCatalog_PrefixLookup(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		model string
		want  string
	}{
		{"claude-sonnet-4-20250514", "claude-sonnet-4"},
		{"gpt-4o-2024-11-20", "gpt-4o"},
		{"gemini-2.5-pro-preview", "gemini-2.5-pro"},
	}

	for _, tt := range tests {
		info, ok := catalog.Lookup(tt.model)
		if !ok {
			t.Errorf("Lookup(%q): expected a prefix match", tt.model)
			continue
		}

		if info.Name != tt.want {
			t.Errorf("Lookup(%q): got %q, want %q", tt.model, info.Name, tt.want)
		}
	}
}

func TestCatalog_PrefixLookupPrefersLongestMatch(t *testing.T) {
	catalog := NewCatalog()

	// gpt-4o-mini-2024 must resolve to gpt-4o-mini, not gpt-4o.
	info, ok := catalog.Lookup("gpt-4o-mini-2024-07-18")
	if !ok {
		t.Fatal("expected a match")
	}

	if info.Name != "gpt-4o-mini" {
		t.Errorf("got %q, want gpt-4o-mini", info.Name)
	}
}

func TestCatalog_InfoForUnknownModel(t *testing.T) {
	catalog := NewCatalog()

	info := catalog.InfoFor("totally-made-up-model")

	if info.ContextWindow != DefaultContextWindow {
		t.Errorf("context window: got %d, want %d", info.ContextWindow, DefaultContextWindow)
	}

	if info.DefaultMaxOutput != DefaultMaxOutput {
		t.Errorf("max output: got %d, want %d", info.DefaultMaxOutput, DefaultMaxOutput)
	}

	if info.Strategy != StrategyHeuristic {
		t.Errorf("strategy: got %q, want heuristic", info.Strategy)
	}

	if info.Name != "totally-made-up-model" {
		t.Errorf("name should echo the requested id, got %q", info.Name)
	}
}

func TestCatalog_RegisterOverrides(t *testing.T) {
	catalog := NewCatalog()
	catalog.Register(ModelInfo{Name: "gpt-4o", ContextWindow: 42, DefaultMaxOutput: 7, Strategy: StrategyHeuristic})

	info := catalog.InfoFor("gpt-4o")
	if info.ContextWindow != 42 {
		t.Errorf("expected registered override, got context window %d", info.ContextWindow)
	}
}

func TestCatalog_ListIsSorted(t *testing.T) {
	catalog := NewCatalog()

	infos := catalog.List()
	if len(infos) == 0 {
		t.Fatal("expected seeded entries")
	}

	for i := 1; i < len(infos); i++ {
		if infos[i-1].Name >= infos[i].Name {
			t.Fatalf("list not sorted at %d: %q >= %q", i, infos[i-1].Name, infos[i].Name)
		}
	}
}

func TestCatalog_Providers(t *testing.T) {
	catalog := NewCatalog()

	providers := catalog.Providers()

	want := map[string]bool{"anthropic": false, "openai": false, "google": false}
	for _, provider := range providers {
		if _, ok := want[provider]; ok {
			want[provider] = true
		}
	}

	for provider, found := range want {
		if !found {
			t.Errorf("provider %q missing from %v", provider, providers)
		}
	}

	for i := 1; i < len(providers); i++ {
		if providers[i-1] >= providers[i] {
			t.Fatalf("providers not sorted: %v", providers)
		}
	}
}

func TestCatalog_ModelsForProvider(t *testing.T) {
	catalog := NewCatalog()

	names := catalog.ModelsForProvider("anthropic")
	if len(names) == 0 {
		t.Fatal("expected anthropic models")
	}

	for _, name := range names {
		if catalog.InfoFor(name).Provider != "anthropic" {
			t.Errorf("%q is not an anthropic model", name)
		}
	}
}
