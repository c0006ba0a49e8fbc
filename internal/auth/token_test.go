// ABOUTME: Unit tests for the shared-secret credential gate
// ABOUTME: Tests exact matches, near misses, and grant contents

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestNewSecretGate_EmptySecret(t *testing.T) {
	_, err := NewSecretGate("")
	if !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("NewSecretGate(\"\") error = %v, want ErrEmptySecret", err)
	}
}

func TestSecretGate_ValidToken(t *testing.T) {
	gate, err := NewSecretGate("my-secret-token")
	if err != nil {
		t.Fatalf("NewSecretGate() error = %v", err)
	}

	grant, err := gate.Validate("my-secret-token")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if grant.Subject != DefaultSubject {
		t.Errorf("Subject = %q, want %q", grant.Subject, DefaultSubject)
	}
	if len(grant.Scopes) != 1 || grant.Scopes[0] != ScopeAll {
		t.Errorf("Scopes = %v, want [%s]", grant.Scopes, ScopeAll)
	}
	if grant.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil", grant.ExpiresAt)
	}
	if grant.IssuedAt.IsZero() {
		t.Error("IssuedAt should be set")
	}
}

func TestSecretGate_RejectsEverythingElse(t *testing.T) {
	gate, err := NewSecretGate("my-secret-token")
	if err != nil {
		t.Fatalf("NewSecretGate() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "upper case", token: "MY-SECRET-TOKEN"},
		{name: "mixed case", token: "My-Secret-Token"},
		{name: "prefix", token: "my-secret"},
		{name: "suffix added", token: "my-secret-token2"},
		{name: "leading space", token: " my-secret-token"},
		{name: "trailing newline", token: "my-secret-token\n"},
		{name: "unrelated", token: "letmein"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant, err := gate.Validate(tt.token)
			if !errors.Is(err, ErrRejected) {
				t.Errorf("Validate(%q) error = %v, want ErrRejected", tt.token, err)
			}
			if grant != nil {
				t.Errorf("Validate(%q) returned a grant", tt.token)
			}
		})
	}
}

func TestGrant_Allows(t *testing.T) {
	g := &Grant{Subject: DefaultSubject, Scopes: []string{ScopeAll}}
	if !g.Allows("todo") {
		t.Error("wildcard grant should allow todo")
	}

	scoped := &Grant{Scopes: []string{"mytodo"}}
	if scoped.Allows("todo") {
		t.Error("scoped grant should not allow todo")
	}
	if !scoped.Allows("mytodo") {
		t.Error("scoped grant should allow mytodo")
	}

	past := time.Now().Add(-time.Minute)
	expired := &Grant{Scopes: []string{ScopeAll}, ExpiresAt: &past}
	if expired.Allows("todo") {
		t.Error("expired grant should not allow anything")
	}

	var none *Grant
	if none.Allows("todo") {
		t.Error("nil grant should not allow anything")
	}
}
