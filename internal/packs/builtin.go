// ABOUTME: Built-in tool definitions, handlers and the optional doc block
// ABOUTME: Tools execute in-process and are grouped into packs for registration

package packs

import (
	"context"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/2389/remind-gateway/internal/auth"
)

// ToolDoc is the structured self-documentation surfaced to callers.
type ToolDoc struct {
	Description string `json:"description"`
	UseWhen     string `json:"use_when"`
	SideEffects string `json:"side_effects,omitempty"`
}

// ToolDefinition declares a tool: its name, description and JSON Schema input.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema string   // JSON Schema, "type":"object" at the root
	Doc         *ToolDoc // optional
}

// Summary returns the description shown in tool listings. When a doc block
// is present it is rendered as JSON so agents see when to use the tool and
// what it changes.
func (d *ToolDefinition) Summary() string {
	if d.Doc == nil {
		return d.Description
	}
	b, err := json.Marshal(d.Doc)
	if err != nil {
		return d.Description
	}
	return string(b)
}

// ToolHandler executes a built-in tool. It receives the caller's grant and the
// already-validated arguments as JSON. It returns the text handed back to the
// caller, or an error; use Fail to return a typed failure.
type ToolHandler func(ctx context.Context, grant *auth.Grant, input json.RawMessage) (string, error)

// BuiltinTool represents a tool that executes in the gateway process.
type BuiltinTool struct {
	Definition *ToolDefinition
	Handler    ToolHandler
}

// BuiltinPack is a collection of built-in tools with a pack ID.
type BuiltinPack struct {
	ID    string
	Tools []*BuiltinTool
}

// builtinEntry stores a builtin tool with its pack ID and compiled schema.
type builtinEntry struct {
	Tool   *BuiltinTool
	PackID string
	schema *jsonschema.Schema
}
