// Package mcp implements the Model Context Protocol server for the gateway's tools.
//
// # Protocol
//
// JSON-RPC 2.0 over the MCP Streamable HTTP transport, on a single endpoint:
//
//   - POST /mcp - JSON-RPC requests and notifications
//   - DELETE /mcp - terminate the session named by Mcp-Session-Id
//   - GET /mcp - 405; the server never opens SSE streams
//
// Supported methods are initialize, ping, tools/list and tools/call.
// Notifications (no id) are accepted with 202 and no body.
//
// # Authentication
//
// Every request, initialize included, must carry
//
//	Authorization: Bearer <token>
//
// The token is checked by the configured auth.TokenVerifier. A rejected or
// missing token gets HTTP 401 with a WWW-Authenticate header and a JSON-RPC
// error with code -32001 and a null id; the body is not read and no tool
// runs. The scheme name matches case-insensitively. The resulting grant
// lives in the request context for the duration of that request only.
//
// # Sessions
//
// initialize creates a session and returns its ID in the Mcp-Session-Id
// header. Every later request must send that header. Sessions are in-memory
// and end on DELETE or process exit.
//
// # Tool Discovery
//
//	{"jsonrpc": "2.0", "method": "tools/list", "id": 1}
//
// Tools are listed in registration order. The description is the tool's
// structured doc block rendered as JSON when it has one.
//
// # Tool Execution
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {"name": "todo", "arguments": {"task": "clean room"}},
//	  "id": 2
//	}
//
// Arguments are validated against the tool's input schema first; violations
// are JSON-RPC invalid params errors. Handler failures (no matching task,
// missing mail credentials) are successful JSON-RPC responses whose result
// has isError set and the message as text content.
package mcp
