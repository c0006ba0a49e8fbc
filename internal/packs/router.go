// ABOUTME: Routes authenticated tool calls to built-in handlers.
// ABOUTME: Validates arguments, tracks in-flight calls, and converts failures to results.

package packs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/2389/remind-gateway/internal/auth"
)

// ErrToolNotFound indicates the requested tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrUnauthenticated indicates the call carried no grant.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden indicates the grant does not cover the requested tool.
var ErrForbidden = errors.New("tool not permitted by grant")

// ErrInvalidArguments indicates the arguments do not satisfy the tool's input schema.
var ErrInvalidArguments = errors.New("invalid arguments")

// ErrDuplicateRequestID indicates the request ID is already in use.
var ErrDuplicateRequestID = errors.New("duplicate request ID")

// ErrRouterClosed indicates the router has been shut down.
var ErrRouterClosed = errors.New("router closed")

// DefaultTimeout is the default timeout for tool execution.
const DefaultTimeout = 30 * time.Second

// ToolResult is the outcome of a handled call. Failures reported by the
// handler are results with IsError set, not Go errors.
type ToolResult struct {
	RequestID string
	ToolName  string
	Text      string
	IsError   bool
	Kind      FailureKind // empty on success
}

// Router dispatches tool calls to registered builtins.
type Router struct {
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration

	// pending tracks in-flight calls so they can be cancelled on shutdown
	mu      sync.Mutex
	pending map[string]context.CancelFunc
	closed  bool
}

// RouterConfig contains configuration options for the Router.
type RouterConfig struct {
	Registry *Registry
	Logger   *slog.Logger
	Timeout  time.Duration
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(cfg RouterConfig) *Router {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		registry: cfg.Registry,
		logger:   logger,
		timeout:  timeout,
		pending:  make(map[string]context.CancelFunc),
	}
}

// Call authorizes, validates and executes a tool call.
//
// Returns ErrUnauthenticated when grant is nil, ErrForbidden when the grant
// does not cover the tool, ErrToolNotFound for unknown tools and
// ErrInvalidArguments when the input fails schema validation. None of these
// invoke the handler. Once the handler runs, every outcome is a ToolResult.
func (r *Router) Call(ctx context.Context, grant *auth.Grant, toolName string, input json.RawMessage, requestID string) (*ToolResult, error) {
	if grant == nil {
		return nil, ErrUnauthenticated
	}

	entry := r.registry.entry(toolName)
	if entry == nil {
		r.logger.Debug("tool not found in registry",
			"tool_name", toolName,
			"request_id", requestID,
		)
		return nil, ErrToolNotFound
	}

	if !grant.Allows(toolName) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, toolName)
	}

	if len(input) == 0 || string(input) == "null" {
		input = json.RawMessage("{}")
	}
	if err := validateArguments(entry.schema, input); err != nil {
		r.logger.Debug("tool arguments rejected",
			"tool_name", toolName,
			"request_id", requestID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.createPendingRequest(requestID, cancel); err != nil {
		return nil, err
	}
	defer r.closePendingRequest(requestID)

	r.logger.Info("→ dispatching to builtin",
		"tool_name", toolName,
		"pack_id", entry.PackID,
		"request_id", requestID,
		"subject", grant.Subject,
	)

	text, err := r.invoke(ctx, entry.Tool.Handler, grant, input)
	if err != nil {
		f := AsFailure(err)
		r.logger.Warn("builtin tool error",
			"tool_name", toolName,
			"request_id", requestID,
			"kind", f.Kind,
			"error", err,
		)
		return &ToolResult{
			RequestID: requestID,
			ToolName:  toolName,
			Text:      f.Message,
			IsError:   true,
			Kind:      f.Kind,
		}, nil
	}

	r.logger.Info("← builtin responded",
		"tool_name", toolName,
		"request_id", requestID,
	)
	return &ToolResult{
		RequestID: requestID,
		ToolName:  toolName,
		Text:      text,
	}, nil
}

// invoke runs handler, converting a panic into an internal failure.
func (r *Router) invoke(ctx context.Context, handler ToolHandler, grant *auth.Grant, input json.RawMessage) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = Fail(KindInternal, fmt.Sprintf("internal error: %v", p), nil)
		}
	}()
	return handler(ctx, grant, input)
}

// createPendingRequest registers an in-flight call. An empty requestID is
// not tracked for duplicates.
func (r *Router) createPendingRequest(requestID string, cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRouterClosed
	}
	if requestID == "" {
		return nil
	}
	if _, exists := r.pending[requestID]; exists {
		return ErrDuplicateRequestID
	}
	r.pending[requestID] = cancel
	return nil
}

func (r *Router) closePendingRequest(requestID string) {
	if requestID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, requestID)
}

// PendingCount returns the number of in-flight tool calls with request IDs.
func (r *Router) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Close cancels all in-flight calls and rejects new ones.
// This should be called during graceful shutdown.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cancelled := len(r.pending)
	for requestID, cancel := range r.pending {
		cancel()
		delete(r.pending, requestID)
	}
	r.closed = true

	r.logger.Info("router closed", "pending_cancelled", cancelled)
}
