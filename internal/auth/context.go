// ABOUTME: Grant type and context helpers for tracking the caller through handlers
// ABOUTME: Provides WithGrant/GrantFromContext for propagating auth info via context

package auth

import (
	"context"
	"slices"
	"time"
)

// Grant is the capability record produced by a successful validation.
// It authorizes a single request and is never persisted.
type Grant struct {
	Subject   string
	Scopes    []string
	ExpiresAt *time.Time // nil means no expiry
	IssuedAt  time.Time
}

// Allows reports whether the grant covers the named tool.
func (g *Grant) Allows(tool string) bool {
	if g == nil {
		return false
	}
	if g.ExpiresAt != nil && time.Now().After(*g.ExpiresAt) {
		return false
	}
	return slices.Contains(g.Scopes, ScopeAll) || slices.Contains(g.Scopes, tool)
}

// grantContextKey is the key type for storing a Grant in context.Context.
type grantContextKey struct{}

// WithGrant returns a new context with the Grant attached.
func WithGrant(ctx context.Context, grant *Grant) context.Context {
	return context.WithValue(ctx, grantContextKey{}, grant)
}

// GrantFromContext retrieves the Grant from the context, returning nil if not present.
func GrantFromContext(ctx context.Context) *Grant {
	grant, _ := ctx.Value(grantContextKey{}).(*Grant)
	return grant
}
