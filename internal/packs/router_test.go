// ABOUTME: Tests for the router: authorization, schema validation, failure conversion and in-flight tracking.
// ABOUTME: Uses counting handlers to prove rejected calls never reach the tool.

package packs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/2389/remind-gateway/internal/auth"
)

var allGrant = &auth.Grant{Subject: auth.DefaultSubject, Scopes: []string{auth.ScopeAll}}

const echoSchema = `{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"count": {"type": "integer"}
	},
	"required": ["text"]
}`

// setupRouterTest registers an "echo" tool whose call count is returned.
func setupRouterTest(t *testing.T, handler ToolHandler) (*Router, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	registry := NewRegistry(slog.Default())
	err := registry.RegisterBuiltinPack(&BuiltinPack{
		ID: "builtin:test",
		Tools: []*BuiltinTool{{
			Definition: &ToolDefinition{Name: "echo", Description: "Echo", InputSchema: echoSchema},
			Handler: func(ctx context.Context, grant *auth.Grant, input json.RawMessage) (string, error) {
				calls.Add(1)
				return handler(ctx, grant, input)
			},
		}},
	})
	if err != nil {
		t.Fatalf("failed to register pack: %v", err)
	}

	router := NewRouter(RouterConfig{Registry: registry, Logger: slog.Default()})
	return router, &calls
}

func echoText(_ context.Context, _ *auth.Grant, input json.RawMessage) (string, error) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	return in.Text, nil
}

func TestRouterCall(t *testing.T) {
	t.Run("routes to handler", func(t *testing.T) {
		router, calls := setupRouterTest(t, echoText)

		result, err := router.Call(context.Background(), allGrant, "echo", json.RawMessage(`{"text":"hi"}`), "req-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Errorf("expected success, got error result %q", result.Text)
		}
		if result.Text != "hi" {
			t.Errorf("expected 'hi', got %q", result.Text)
		}
		if result.RequestID != "req-1" || result.ToolName != "echo" {
			t.Errorf("unexpected correlation fields: %+v", result)
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 call, got %d", calls.Load())
		}
	})

	t.Run("nil grant never reaches handler", func(t *testing.T) {
		router, calls := setupRouterTest(t, echoText)

		_, err := router.Call(context.Background(), nil, "echo", json.RawMessage(`{"text":"hi"}`), "req-1")
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("handler must not run, ran %d times", calls.Load())
		}
	})

	t.Run("grant without scope is forbidden", func(t *testing.T) {
		router, calls := setupRouterTest(t, echoText)
		grant := &auth.Grant{Subject: "limited", Scopes: []string{"other"}}

		_, err := router.Call(context.Background(), grant, "echo", json.RawMessage(`{"text":"hi"}`), "")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("handler must not run, ran %d times", calls.Load())
		}
	})

	t.Run("expired grant is forbidden", func(t *testing.T) {
		router, _ := setupRouterTest(t, echoText)
		past := time.Now().Add(-time.Minute)
		grant := &auth.Grant{Subject: "old", Scopes: []string{auth.ScopeAll}, ExpiresAt: &past}

		_, err := router.Call(context.Background(), grant, "echo", json.RawMessage(`{"text":"hi"}`), "")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		router, _ := setupRouterTest(t, echoText)

		_, err := router.Call(context.Background(), allGrant, "missing", nil, "")
		if !errors.Is(err, ErrToolNotFound) {
			t.Fatalf("expected ErrToolNotFound, got %v", err)
		}
	})

	t.Run("schema violations never reach handler", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
		}{
			{"missing required field", `{}`},
			{"wrong type", `{"text": 42}`},
			{"float for integer", `{"text": "x", "count": 1.5}`},
			{"not an object", `["text"]`},
			{"malformed JSON", `{"text":`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router, calls := setupRouterTest(t, echoText)

				_, err := router.Call(context.Background(), allGrant, "echo", json.RawMessage(tt.input), "")
				if !errors.Is(err, ErrInvalidArguments) {
					t.Fatalf("expected ErrInvalidArguments, got %v", err)
				}
				if calls.Load() != 0 {
					t.Errorf("handler must not run, ran %d times", calls.Load())
				}
			})
		}
	})

	t.Run("empty arguments validated as empty object", func(t *testing.T) {
		router, calls := setupRouterTest(t, echoText)

		_, err := router.Call(context.Background(), allGrant, "echo", nil, "")
		if !errors.Is(err, ErrInvalidArguments) {
			t.Fatalf("expected ErrInvalidArguments for missing required field, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("handler must not run, ran %d times", calls.Load())
		}
	})
}

func TestRouterFailures(t *testing.T) {
	t.Run("typed failure becomes error result", func(t *testing.T) {
		router, _ := setupRouterTest(t, func(context.Context, *auth.Grant, json.RawMessage) (string, error) {
			return "", Fail(KindNotFound, "No matching task found for: 'x'", nil)
		})

		result, err := router.Call(context.Background(), allGrant, "echo", json.RawMessage(`{"text":"x"}`), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error result")
		}
		if result.Kind != KindNotFound {
			t.Errorf("expected kind %q, got %q", KindNotFound, result.Kind)
		}
		if result.Text != "No matching task found for: 'x'" {
			t.Errorf("unexpected text %q", result.Text)
		}
	})

	t.Run("plain error is internal", func(t *testing.T) {
		router, _ := setupRouterTest(t, func(context.Context, *auth.Grant, json.RawMessage) (string, error) {
			return "", errors.New("boom")
		})

		result, err := router.Call(context.Background(), allGrant, "echo", json.RawMessage(`{"text":"x"}`), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError || result.Kind != KindInternal || result.Text != "boom" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("panic is recovered", func(t *testing.T) {
		router, _ := setupRouterTest(t, func(context.Context, *auth.Grant, json.RawMessage) (string, error) {
			panic("kaboom")
		})

		result, err := router.Call(context.Background(), allGrant, "echo", json.RawMessage(`{"text":"x"}`), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError || result.Kind != KindInternal {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("failure wraps cause", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := Fail(KindTransport, "Failed to send email: dial tcp: refused", cause)
		if !errors.Is(err, cause) {
			t.Error("expected failure to unwrap to cause")
		}
		if f := AsFailure(err); f.Kind != KindTransport {
			t.Errorf("expected transport kind, got %q", f.Kind)
		}
	})
}

func TestRouterPendingCount(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	router, _ := setupRouterTest(t, func(ctx context.Context, _ *auth.Grant, _ json.RawMessage) (string, error) {
		close(started)
		<-release
		return "done", nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = router.Call(context.Background(), allGrant, "echo", json.RawMessage(`{"text":"x"}`), "req-slow")
	}()

	<-started
	if router.PendingCount() != 1 {
		t.Errorf("expected 1 pending, got %d", router.PendingCount())
	}

	_, err := router.Call(context.Background(), allGrant, "echo", json.RawMessage(`{"text":"x"}`), "req-slow")
	if !errors.Is(err, ErrDuplicateRequestID) {
		t.Errorf("expected ErrDuplicateRequestID, got %v", err)
	}

	close(release)
	<-done
	if router.PendingCount() != 0 {
		t.Errorf("expected 0 pending, got %d", router.PendingCount())
	}
}

func TestRouterClose(t *testing.T) {
	started := make(chan struct{})
	router, _ := setupRouterTest(t, func(ctx context.Context, _ *auth.Grant, _ json.RawMessage) (string, error) {
		close(started)
		<-ctx.Done()
		return "", Fail(KindTransport, "cancelled", ctx.Err())
	})

	var result *ToolResult
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, _ = router.Call(context.Background(), allGrant, "echo", json.RawMessage(`{"text":"x"}`), "req-1")
	}()

	<-started
	router.Close()
	wg.Wait()

	if result == nil || !result.IsError {
		t.Fatalf("expected cancelled call to return error result, got %+v", result)
	}

	_, err := router.Call(context.Background(), allGrant, "echo", json.RawMessage(`{"text":"x"}`), "req-2")
	if !errors.Is(err, ErrRouterClosed) {
		t.Errorf("expected ErrRouterClosed, got %v", err)
	}
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(RouterConfig{Registry: NewRegistry(nil)})
	if router.timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, router.timeout)
	}

	router = NewRouter(RouterConfig{Registry: NewRegistry(nil), Timeout: time.Second})
	if router.timeout != time.Second {
		t.Errorf("expected 1s timeout, got %v", router.timeout)
	}
}
