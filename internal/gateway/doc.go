// Package gateway orchestrates the remind-gateway server components.
//
// # Overview
//
// The gateway package is the composition root. It owns the shared todo list,
// the reminder scheduler, the mail dispatcher, the tool pack registry and
// router, and the HTTP server carrying the MCP endpoint.
//
// # HTTP Endpoints
//
//   - POST /mcp - MCP JSON-RPC (bearer secret required)
//   - DELETE /mcp - End an MCP session
//   - GET /health - Liveness check
//   - GET /health/ready - Readiness check, 503 until the scheduler runs
//
// # Tool Registration
//
// Packs register in a fixed order, which is the order tools/list reports:
//
//	send_email, remind, todo, mytodo, complete, validate
//
// # Lifecycle
//
// Start the gateway:
//
//	gw, err := gateway.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	go gw.Run(ctx)
//
// Cancelling the context shuts down the HTTP server, cancels in-flight tool
// calls and stops the scheduler. Reminders still pending are dropped.
package gateway
