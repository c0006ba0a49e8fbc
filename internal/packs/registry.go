// ABOUTME: Thread-safe registry for built-in tool packs and their tools.
// ABOUTME: Compiles input schemas at registration and preserves registration order.

package packs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrToolCollision indicates a tool name already exists from another pack.
var ErrToolCollision = errors.New("tool name collision")

// ErrInvalidTool indicates a tool is missing its name, definition or handler.
var ErrInvalidTool = errors.New("invalid tool")

// Registry maintains the set of built-in tools. Tools are listed in the order
// their packs were registered.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]*builtinEntry // tool name -> entry
	order    []string                 // tool names in registration order
	logger   *slog.Logger
}

// NewRegistry creates a new Registry instance.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		builtins: make(map[string]*builtinEntry),
		logger:   logger,
	}
}

// RegisterBuiltinPack registers a pack of built-in tools that execute in-process.
// The pack is registered atomically: on any error no tool from it is added.
// Returns ErrToolCollision if a name is already taken (including twice within
// the pack), ErrInvalidTool for incomplete tools and ErrInvalidSchema when an
// input schema does not compile.
func (r *Registry) RegisterBuiltinPack(pack *BuiltinPack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(pack.Tools))
	entries := make([]*builtinEntry, 0, len(pack.Tools))

	for _, tool := range pack.Tools {
		if tool == nil || tool.Definition == nil || tool.Definition.Name == "" || tool.Handler == nil {
			return fmt.Errorf("%w: pack '%s' has an incomplete tool", ErrInvalidTool, pack.ID)
		}
		name := tool.Definition.Name
		if existing, exists := r.builtins[name]; exists {
			return fmt.Errorf("%w: tool '%s' already registered by pack '%s'", ErrToolCollision, name, existing.PackID)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: tool '%s' declared twice in pack '%s'", ErrToolCollision, name, pack.ID)
		}
		seen[name] = struct{}{}

		schema, err := compileSchema(name, tool.Definition.InputSchema)
		if err != nil {
			return err
		}
		entries = append(entries, &builtinEntry{Tool: tool, PackID: pack.ID, schema: schema})
	}

	for _, entry := range entries {
		name := entry.Tool.Definition.Name
		r.builtins[name] = entry
		r.order = append(r.order, name)
	}

	r.logger.Info("=== BUILTIN PACK REGISTERED ===",
		"pack_id", pack.ID,
		"tool_count", len(pack.Tools),
		"total_tools", len(r.order),
	)

	return nil
}

// GetBuiltinTool returns a builtin tool by name, or nil if not found.
func (r *Registry) GetBuiltinTool(name string) *BuiltinTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.builtins[name]; ok {
		return entry.Tool
	}
	return nil
}

// IsBuiltin returns true if the tool name is registered.
func (r *Registry) IsBuiltin(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builtins[name]
	return ok
}

func (r *Registry) entry(name string) *builtinEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builtins[name]
}

// Definitions returns every tool definition in registration order.
func (r *Registry) Definitions() []*ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.builtins[name].Tool.Definition)
	}
	return defs
}

// BuiltinPackInfo contains information about a registered builtin pack for display.
type BuiltinPackInfo struct {
	ID        string
	ToolNames []string
}

// ListBuiltinPacks returns the registered packs in registration order.
func (r *Registry) ListBuiltinPacks() []BuiltinPackInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []BuiltinPackInfo
	index := make(map[string]int)
	for _, name := range r.order {
		packID := r.builtins[name].PackID
		i, ok := index[packID]
		if !ok {
			i = len(result)
			index[packID] = i
			result = append(result, BuiltinPackInfo{ID: packID})
		}
		result[i].ToolNames = append(result[i].ToolNames, name)
	}
	return result
}

// ToolCount returns the number of registered tools.
func (r *Registry) ToolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Close clears the registry.
// This should be called during graceful shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	builtinCount := len(r.builtins)
	r.builtins = make(map[string]*builtinEntry)
	r.order = nil

	r.logger.Info("registry closed", "builtins_cleared", builtinCount)
}
