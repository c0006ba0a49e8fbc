// Package packs provides the tool registry and call router for the gateway.
//
// # Overview
//
// Tools are grouped into built-in packs (see internal/builtins) and execute
// in-process. The set of tools is fixed at startup; nothing registers tools
// at runtime.
//
// # Architecture
//
//   - Registry: tool definitions, compiled input schemas and handlers, in
//     registration order
//   - Router: authorizes a call against the caller's grant, validates its
//     arguments and runs the handler
//   - Failure: typed handler outcome (configuration, transport, not_found,
//     invalid_input, internal) reported to the caller as an error result
//
// # Tool Routing
//
// When a client calls a tool, the router:
//
//  1. Rejects calls without a grant (ErrUnauthenticated)
//  2. Looks up the tool by name (ErrToolNotFound)
//  3. Checks the grant covers the tool (ErrForbidden)
//  4. Validates arguments against the input schema (ErrInvalidArguments)
//  5. Runs the handler and returns a ToolResult
//
// Steps 1-4 never invoke the handler. Handler failures, including panics,
// become results with IsError set.
//
// # Documentation
//
// A ToolDefinition may carry a ToolDoc (description, use_when, side_effects).
// Summary renders it as the JSON description shown in tool listings.
//
// # Usage
//
//	registry := packs.NewRegistry(logger)
//	registry.RegisterBuiltinPack(builtins.TodoPack(todos))
//	router := packs.NewRouter(packs.RouterConfig{Registry: registry, Logger: logger})
//	result, err := router.Call(ctx, grant, "todo", args, requestID)
package packs
