// Package auth provides the credential gate for remind-gateway.
//
// # Shared Secret
//
// The gateway is configured with exactly one bearer secret at startup. Every
// inbound MCP request carries it in the Authorization header:
//
//	Authorization: Bearer <token>
//
// SecretGate compares the presented token against the secret byte for byte.
// There is no fuzzy matching, rate limiting, lockout, issuance or rotation.
//
// # Grants
//
// A successful validation yields a Grant: the subject "reminder-client", the
// wildcard scope "*", and no expiry. Grants are never stored; they live for
// the duration of one request and travel in the request context:
//
//	grant, err := gate.Validate(token)
//	ctx = auth.WithGrant(ctx, grant)
//	...
//	grant := auth.GrantFromContext(ctx)
//
// A missing grant must be treated as unauthenticated. The tool router refuses
// to invoke any handler without one.
package auth
