package agent

import (
	"strings"
	"testing"

	"github.com/RidgetopAi/ridge-context/internal/core"
	"github.com/RidgetopAi/ridge-context/internal/threads"
)

func compileDefaultSchemas(t *testing.T) *ToolSchemas {
	t.Helper()

	schemas, err := CompileToolSchemas(DefaultToolset())
	if err != nil {
		t.Fatalf("compile default toolset: %v", err)
	}

	return schemas
}

func TestCompileToolSchemas_DefaultToolset(t *testing.T) {
	schemas := compileDefaultSchemas(t)

	for _, tool := range DefaultToolset() {
		if _, ok := schemas.compiled[tool.Name]; !ok {
			t.Errorf("no compiled schema for %q", tool.Name)
		}
	}
}

func TestToolSchemas_Validate(t *testing.T) {
	schemas := compileDefaultSchemas(t)

	tests := []struct {
		name    string
		tool    string
		input   map[string]any
		wantErr bool
	}{
		{
			name:  "valid read_file",
			tool:  "read_file",
			input: map[string]any{"path": "main.go", "start_line": 1},
		},
		{
			name:    "missing required path",
			tool:    "read_file",
			input:   map[string]any{"start_line": 1},
			wantErr: true,
		},
		{
			name:    "wrong type for path",
			tool:    "read_file",
			input:   map[string]any{"path": 42},
			wantErr: true,
		},
		{
			name:  "valid edit_file",
			tool:  "edit_file",
			input: map[string]any{"path": "a.go", "old_str": "x", "new_str": "y"},
		},
		{
			name:    "nil input with required fields",
			tool:    "grep",
			input:   nil,
			wantErr: true,
		},
		{
			name:  "extra properties are tolerated",
			tool:  "web_fetch",
			input: map[string]any{"url": "https://example.com", "note": "ignored"},
		},
		{
			name:    "undeclared tool",
			tool:    "launch_missiles",
			input:   map[string]any{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schemas.Validate(tt.tool, tt.input)
			if tt.wantErr && err == nil {
				t.Error("expected a validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestToolSchemas_Validate_NilInputWithoutRequired(t *testing.T) {
	schemas, err := CompileToolSchemas([]core.ToolDefinition{{
		Name:        "ping",
		Description: "No arguments.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if err := schemas.Validate("ping", nil); err != nil {
		t.Errorf("nil input should satisfy a schema without required fields: %v", err)
	}
}

func TestCheckToolInputs(t *testing.T) {
	schemas := compileDefaultSchemas(t)

	thread := threads.NewThread("pack-test")
	thread.AddSegment(threads.NewSegment(threads.KindToolExchange,
		core.Message{Role: core.RoleAssistant, Blocks: []core.Block{
			core.ToolUseBlock("tu-ok", "read_file", map[string]any{"path": "main.go"}),
		}},
		core.Message{Role: core.RoleUser, Blocks: []core.Block{
			core.ToolResultBlock("tu-ok", core.TextPayload("package main"), false),
		}},
	))
	thread.AddSegment(threads.NewSegment(threads.KindToolExchange,
		core.Message{Role: core.RoleAssistant, Blocks: []core.Block{
			core.ToolUseBlock("tu-bad", "write_file", map[string]any{"path": "out.txt"}),
		}},
		core.Message{Role: core.RoleUser, Blocks: []core.Block{
			core.ToolResultBlock("tu-bad", core.TextPayload("missing content"), true),
		}},
	))

	violations := CheckToolInputs(thread, schemas)
	if len(violations) != 1 {
		t.Fatalf("violations: got %d, want 1", len(violations))
	}

	violation := violations[0]
	if violation.Tool != "write_file" {
		t.Errorf("tool: got %q, want %q", violation.Tool, "write_file")
	}

	if violation.ToolUseID != "tu-bad" {
		t.Errorf("tool use id: got %q, want %q", violation.ToolUseID, "tu-bad")
	}

	if !strings.Contains(violation.Error(), "write_file") {
		t.Errorf("violation message should name the tool: %q", violation.Error())
	}
}

func TestCheckToolInputs_EmptyThread(t *testing.T) {
	schemas := compileDefaultSchemas(t)

	if got := CheckToolInputs(threads.NewThread("pack-test"), schemas); got != nil {
		t.Errorf("empty thread: got %d violations, want none", len(got))
	}

	if got := CheckToolInputs(nil, schemas); got != nil {
		t.Errorf("nil thread: got %d violations, want none", len(got))
	}
}
