package agent

import "github.com/RidgetopAi/ridge-context/internal/core"

// DefaultToolset declares the standard coding-agent tools. Execution belongs
// to the embedding agent; the declarations live here because they weigh on
// every packed request and the budget math has to account for them.
func DefaultToolset() []core.ToolDefinition {
	return []core.ToolDefinition{
		{
			Name:        "read_file",
			Description: "Reads a file and returns its content with line numbers. Supports optional line range (1-indexed, inclusive).",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Relative path to the file to read",
					},
					"start_line": map[string]any{
						"type":        "integer",
						"description": "First line to read (1-indexed, default: 1)",
					},
					"end_line": map[string]any{
						"type":        "integer",
						"description": "Last line to read (inclusive, default: end of file)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "write_file",
			Description: "Creates or overwrites a file with the given content.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Relative path to the file to write",
					},
					"content": map[string]any{
						"type":        "string",
						"description": "Content to write to the file",
					},
				},
				"required": []string{"path", "content"},
			},
		},
		{
			Name:        "edit_file",
			Description: "Edits a file by replacing occurrences of old_str with new_str. File must exist and old_str must be found.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Relative path to the file to edit",
					},
					"old_str": map[string]any{
						"type":        "string",
						"description": "The text to find and replace",
					},
					"new_str": map[string]any{
						"type":        "string",
						"description": "The replacement text",
					},
					"occurrence": map[string]any{
						"type":        "integer",
						"description": "Which occurrence to replace: 0 for all, 1 for first, 2 for second, etc. (default: 0)",
					},
				},
				"required": []string{"path", "old_str", "new_str"},
			},
		},
		{
			Name:        "list_files",
			Description: "Lists files matching a glob pattern. Returns relative paths, excludes directories.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{"type": "string"},
				},
				"required": []string{"pattern"},
			},
		},
		{
			Name:        "grep",
			Description: "Searches file contents using regex patterns. Returns matching lines with file paths and line numbers.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{
						"type":        "string",
						"description": "Regex pattern to search for",
					},
					"path": map[string]any{
						"type":        "string",
						"description": "Directory or file path to search in (default: current directory)",
					},
					"glob": map[string]any{
						"type":        "string",
						"description": "File pattern filter (e.g., '*.go', '*.ts')",
					},
					"max_matches": map[string]any{
						"type":        "integer",
						"description": "Maximum number of matches to return (default: 100)",
					},
				},
				"required": []string{"pattern"},
			},
		},
		{
			Name:        "run_command",
			Description: "Executes a shell command in the working directory and returns its combined output.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"command": map[string]any{
						"type":        "string",
						"description": "The command to execute",
					},
					"timeout_seconds": map[string]any{
						"type":        "integer",
						"description": "Kill the command after this many seconds (default: 120)",
					},
				},
				"required": []string{"command"},
			},
		},
		{
			Name:        "web_fetch",
			Description: "Fetches content from a URL using HTTP GET. Returns the response body as text.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "The URL to fetch",
					},
				},
				"required": []string{"url"},
			},
		},
	}
}
