// ABOUTME: Gateway orchestrator that wires the tool packs, scheduler, and MCP server
// ABOUTME: Manages the HTTP server, reminder scheduler, and health endpoints lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/2389/remind-gateway/internal/auth"
	"github.com/2389/remind-gateway/internal/builtins"
	"github.com/2389/remind-gateway/internal/config"
	"github.com/2389/remind-gateway/internal/mailer"
	"github.com/2389/remind-gateway/internal/mcp"
	"github.com/2389/remind-gateway/internal/packs"
	"github.com/2389/remind-gateway/internal/reminder"
	"github.com/2389/remind-gateway/internal/store"
)

// ShutdownTimeout bounds graceful shutdown after the run context ends.
const ShutdownTimeout = 5 * time.Second

// Gateway orchestrates the remind-gateway server components.
// It owns the shared todo list, the reminder scheduler and the HTTP server
// that carries the MCP endpoint and health checks.
type Gateway struct {
	config     *config.Config
	httpServer *http.Server
	logger     *slog.Logger

	// serverID identifies this gateway instance
	serverID string

	todos      store.TodoStore
	scheduler  *reminder.Scheduler
	dispatcher *mailer.Dispatcher

	// packRegistry holds the builtin tools
	packRegistry *packs.Registry

	// packRouter authorizes and dispatches tool calls
	packRouter *packs.Router

	// mcpServer is the MCP-compatible HTTP server for external agents
	mcpServer *mcp.Server

	// running is true between scheduler start and shutdown
	running atomic.Bool

	// boundAddr is the HTTP listener address once Run has started listening
	boundAddr atomic.Value
}

// registerBuiltinPacks registers every tool pack. Registration order is the
// order tools/list reports.
func registerBuiltinPacks(registry *packs.Registry, dispatcher *mailer.Dispatcher, scheduler *reminder.Scheduler, todos store.TodoStore) error {
	if err := registry.RegisterBuiltinPack(builtins.MailPack(dispatcher)); err != nil {
		return fmt.Errorf("registering mail pack: %w", err)
	}
	if err := registry.RegisterBuiltinPack(builtins.ReminderPack(scheduler)); err != nil {
		return fmt.Errorf("registering reminder pack: %w", err)
	}
	if err := registry.RegisterBuiltinPack(builtins.TodoPack(todos)); err != nil {
		return fmt.Errorf("registering todo pack: %w", err)
	}
	if err := registry.RegisterBuiltinPack(builtins.ValidatePack()); err != nil {
		return fmt.Errorf("registering validate pack: %w", err)
	}
	return nil
}

// New creates a new Gateway instance with the given configuration.
// Outbound mail goes through go-mail over SMTPS.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	dialer := mailer.NewSMTPDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Timeout)
	return newGateway(cfg, logger, dialer)
}

func newGateway(cfg *config.Config, logger *slog.Logger, dialer mailer.Dialer) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gate, err := auth.NewSecretGate(cfg.Auth.Token)
	if err != nil {
		return nil, fmt.Errorf("creating credential gate: %w", err)
	}

	todos := store.NewMemoryTodoStore()

	delivery := reminder.NewLogDelivery(cfg.Reminders.LogPath, logger.With("component", "reminders"))
	scheduler := reminder.NewScheduler(reminder.Config{
		Delivery: delivery,
		Logger:   logger.With("component", "scheduler"),
	})

	dispatcher := mailer.NewDispatcher(
		mailer.Credentials{Address: cfg.Mail.Address, Password: cfg.Mail.Password},
		dialer,
		logger.With("component", "mailer"),
	)

	packRegistry := packs.NewRegistry(logger.With("component", "pack-registry"))
	packRouter := packs.NewRouter(packs.RouterConfig{
		Registry: packRegistry,
		Logger:   logger.With("component", "pack-router"),
		Timeout:  cfg.Server.ToolTimeout,
	})
	if err := registerBuiltinPacks(packRegistry, dispatcher, scheduler, todos); err != nil {
		return nil, err
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry:      packRegistry,
		Router:        packRouter,
		Logger:        logger.With("component", "mcp"),
		TokenVerifier: gate,
		ServerVersion: buildVersion(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	gw := &Gateway{
		config:       cfg,
		logger:       logger.With("component", "gateway"),
		serverID:     generateServerID(),
		todos:        todos,
		scheduler:    scheduler,
		dispatcher:   dispatcher,
		packRegistry: packRegistry,
		packRouter:   packRouter,
		mcpServer:    mcpServer,
	}

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)

	mcpServer.RegisterRoutes(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if !dispatcher.Configured() {
		gw.logger.Warn("mail credentials not set; send_email will report a configuration error")
	}

	return gw, nil
}

// Handler returns the gateway's HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Addr returns the address the HTTP server is listening on, or "" before Run.
func (g *Gateway) Addr() string {
	addr, _ := g.boundAddr.Load().(string)
	return addr
}

// ToolNames returns the registered tool names in listing order.
func (g *Gateway) ToolNames() []string {
	defs := g.packRegistry.Definitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// startServer starts the HTTP server in a goroutine, returning error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// Run starts the reminder scheduler and the HTTP server and blocks until the
// context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	g.logger.Info("starting gateway",
		"server_id", g.serverID,
		"http_addr", g.config.Server.HTTPAddr,
		"tools", len(g.ToolNames()),
	)

	for _, pack := range g.packRegistry.ListBuiltinPacks() {
		g.logger.Info("tool pack ready", "pack_id", pack.ID, "tools", pack.ToolNames)
	}

	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	g.boundAddr.Store(ln.Addr().String())

	g.scheduler.Start(ctx)
	g.running.Store(true)

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server, cancels in-flight tool calls and stops the
// scheduler. Pending reminders are dropped.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")
	g.running.Store(false)

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	g.packRouter.Close()
	g.scheduler.Stop()
	g.packRegistry.Close()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the reminder scheduler is running.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	if !g.running.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("scheduler not running"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d pending reminders, %d tasks, %d sessions, %d calls in flight)",
		g.scheduler.Pending(), g.todos.Len(), g.mcpServer.SessionCount(), g.packRouter.PendingCount())
}

// generateServerID creates a unique identifier for this gateway instance.
func generateServerID() string {
	return fmt.Sprintf("remind-gateway-%d", time.Now().UnixNano()%1000000)
}

// buildVersion reports the main module version embedded by the Go toolchain.
func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
