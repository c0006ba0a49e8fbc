// ABOUTME: Shared-secret credential gate that turns a bearer token into a Grant
// ABOUTME: Exact constant-time comparison against the single configured secret

package auth

import (
	"crypto/subtle"
	"errors"
	"time"
)

// Token errors
var (
	ErrRejected    = errors.New("invalid or missing token")
	ErrEmptySecret = errors.New("secret must not be empty")
)

// DefaultSubject identifies the single client every grant is issued to.
const DefaultSubject = "reminder-client"

// ScopeAll is the unrestricted scope carried by every grant.
const ScopeAll = "*"

// TokenVerifier defines the interface for token validation
type TokenVerifier interface {
	Validate(token string) (*Grant, error)
}

// SecretGate implements TokenVerifier against one fixed secret.
type SecretGate struct {
	secret []byte
	now    func() time.Time
}

// NewSecretGate creates a gate for the given secret.
func NewSecretGate(secret string) (*SecretGate, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &SecretGate{secret: []byte(secret), now: time.Now}, nil
}

// Validate returns a grant with unrestricted scope and no expiry when token
// equals the configured secret exactly. Any other value is rejected.
func (g *SecretGate) Validate(token string) (*Grant, error) {
	if token == "" {
		return nil, ErrRejected
	}
	if subtle.ConstantTimeCompare([]byte(token), g.secret) != 1 {
		return nil, ErrRejected
	}
	return &Grant{
		Subject:  DefaultSubject,
		Scopes:   []string{ScopeAll},
		IssuedAt: g.now(),
	}, nil
}
