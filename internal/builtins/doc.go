// Package builtins provides the tool packs the gateway exposes.
//
// # Tool Packs
//
// Todo Pack (builtin:todo):
//
//   - todo: Add a task to the shared to-do list
//   - mytodo: Show the list in insertion order
//   - complete: Remove the first task containing a keyword (case-insensitive)
//
// Reminder Pack (builtin:reminder):
//
//   - remind: Schedule a one-shot reminder after N minutes
//
// Mail Pack (builtin:mail):
//
//   - send_email: Send one email from the configured sender
//
// Validate Pack (builtin:validate):
//
//   - validate: Phone number normalization placeholder; returns ""
//
// # Tool Implementation
//
// Each tool is a packs.ToolHandler:
//
//	func(ctx context.Context, grant *auth.Grant, input json.RawMessage) (string, error)
//
// Arguments have already been checked against the tool's input schema when
// the handler runs. Handlers report expected failures (no matching task,
// missing mail credentials, transport errors, negative delays) with
// packs.Fail so the caller receives the message as an error result.
//
// # State
//
// Handlers hold their collaborators by handle: the todo store, the reminder
// scheduler and the mail dispatcher are built once by the gateway and shared
// by every call. Nothing here is persisted.
package builtins
