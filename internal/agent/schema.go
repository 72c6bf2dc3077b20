package agent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/RidgetopAi/ridge-context/internal/core"
	"github.com/RidgetopAi/ridge-context/internal/threads"
)

// ToolSchemas holds the compiled input schemas of a toolset, keyed by tool
// name. Compile once, validate many.
type ToolSchemas struct {
	compiled map[string]*jsonschema.Schema
}

// CompileToolSchemas compiles the input schema of every tool in the set. One
// bad declaration fails the whole set; the schemas are authored in-repo, so a
// compile error is a programming error, not input to tolerate.
func CompileToolSchemas(tools []core.ToolDefinition) (*ToolSchemas, error) {
	compiler := jsonschema.NewCompiler()

	for _, tool := range tools {
		doc, err := toSchemaDoc(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: encode schema: %w", tool.Name, err)
		}

		if err := compiler.AddResource(tool.Name+".json", doc); err != nil {
			return nil, fmt.Errorf("tool %s: add resource: %w", tool.Name, err)
		}
	}

	compiled := make(map[string]*jsonschema.Schema, len(tools))
	for _, tool := range tools {
		schema, err := compiler.Compile(tool.Name + ".json")
		if err != nil {
			return nil, fmt.Errorf("tool %s: compile: %w", tool.Name, err)
		}

		compiled[tool.Name] = schema
	}

	return &ToolSchemas{compiled: compiled}, nil
}

// Validate checks one tool invocation's input against the tool's declared
// schema. Invoking a tool the set never declared is itself a violation.
func (schemas *ToolSchemas) Validate(name string, input map[string]any) error {
	schema, ok := schemas.compiled[name]
	if !ok {
		return fmt.Errorf("tool %s is not declared", name)
	}

	if input == nil {
		input = map[string]any{}
	}

	doc, err := toSchemaDoc(input)
	if err != nil {
		return fmt.Errorf("tool %s: encode input: %w", name, err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("tool %s: %w", name, err)
	}

	return nil
}

// toSchemaDoc round-trips a Go map through JSON so the validator sees the
// decoded forms it expects (float64 numbers, []any slices).
func toSchemaDoc(value map[string]any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// InputViolation reports a recorded tool invocation whose input does not
// satisfy the declared schema.
type InputViolation struct {
	Sequence  uint64
	ToolUseID string
	Tool      string
	Err       error
}

func (v *InputViolation) Error() string {
	return fmt.Sprintf("segment %d invocation %q: %v", v.Sequence, v.ToolUseID, v.Err)
}

// CheckToolInputs validates every tool invocation recorded in the thread
// against the compiled schemas. Read-only, like the pairing check; repair
// never rewrites inputs, so violations here point at whoever recorded the
// exchange.
func CheckToolInputs(thread *threads.Thread, schemas *ToolSchemas) []*InputViolation {
	if thread == nil || schemas == nil {
		return nil
	}

	var violations []*InputViolation
	for _, segment := range thread.Segments {
		if segment == nil {
			continue
		}

		for _, message := range segment.Messages {
			for _, block := range message.Blocks {
				if block.Type != core.BlockToolUse || block.ToolUse == nil {
					continue
				}

				if err := schemas.Validate(block.ToolUse.Name, block.ToolUse.Input); err != nil {
					violations = append(violations, &InputViolation{
						Sequence:  segment.Sequence,
						ToolUseID: block.ToolUse.ID,
						Tool:      block.ToolUse.Name,
						Err:       err,
					})
				}
			}
		}
	}

	return violations
}
