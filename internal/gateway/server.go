// Package gateway assembles the suite's HTTP server: permission-gated
// views, the workflow endpoint, notification sockets and UI state.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/soyeahso/suite/internal/agents"
	"github.com/soyeahso/suite/internal/authz"
	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/metrics"
	"github.com/soyeahso/suite/internal/notify"
	"github.com/soyeahso/suite/internal/plugin"
	"github.com/soyeahso/suite/internal/route"
	"github.com/soyeahso/suite/internal/store"
	"github.com/soyeahso/suite/internal/uistate"
	"github.com/soyeahso/suite/internal/version"
	"github.com/soyeahso/suite/internal/workflow"
)

// Server is the suite HTTP server.
type Server struct {
	cfg     config.Config
	log     *logging.Logger
	hooks   *hooks.Manager
	metrics *metrics.Metrics

	auth      *authz.Authorizer
	gate      *route.Gatekeeper
	agents    *agents.Registry
	workflows *workflow.Handler
	hub       *notify.Hub
	sessions  *uistate.Sessions
	training  TrainingRecords
	parties   PartyDirectory
	audit     AuditLog
	plugins   *plugin.Registry
	db        *store.DB

	startedAt  time.Time
	httpServer *http.Server
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithHooks sets the hook manager for lifecycle events.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) { s.hooks = hm }
}

// WithMetrics enables Prometheus collection.
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithAgents replaces the agent registry built from config.
func WithAgents(r *agents.Registry) ServerOption {
	return func(s *Server) { s.agents = r }
}

// WithTraining replaces the training data source.
func WithTraining(t TrainingRecords) ServerOption {
	return func(s *Server) { s.training = t }
}

// WithAudit replaces the audit trail store.
func WithAudit(a AuditLog) ServerOption {
	return func(s *Server) { s.audit = a }
}

// WithParties replaces the customer/supplier data source.
func WithParties(p PartyDirectory) ServerOption {
	return func(s *Server) { s.parties = p }
}

// New wires every component from cfg. db backs training, parties and audit
// unless replaced by options.
func New(cfg config.Config, db *store.DB, log *logging.Logger, opts ...ServerOption) (*Server, error) {
	s := &Server{cfg: cfg, log: log.Sub("gateway"), db: db}
	if db != nil {
		s.training = store.NewTrainingStore(db)
		s.parties = store.NewPartyStore(db)
		s.audit = store.NewAuditStore(db)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.training == nil || s.parties == nil || s.audit == nil {
		return nil, errors.New("gateway: no data source for training, parties or audit")
	}
	if s.hooks == nil {
		s.hooks = hooks.NewManager(log)
	}

	auth, err := authz.New(cfg.Auth, log, authz.WithMetrics(s.metrics))
	if err != nil {
		return nil, err
	}
	s.auth = auth
	s.gate = route.NewGatekeeper(auth, log, s.metrics).WithHooks(s.hooks)

	if s.agents == nil {
		s.agents = agents.NewRegistry(log, agents.Providers(cfg.Agents)...)
	}

	s.hub = notify.NewHub(log, notify.WithHooks(s.hooks), notify.WithMetrics(s.metrics))

	var uiOpts []uistate.Option
	uiOpts = append(uiOpts, uistate.WithHooks(s.hooks), uistate.WithMetrics(s.metrics))
	if cfg.Server.TLS.Enabled {
		uiOpts = append(uiOpts, uistate.WithSecureCookie())
	}
	s.sessions = uistate.NewSessions(cfg.UI, log, uiOpts...)

	s.workflows, err = workflow.Serve(workflow.Options{
		SigningKey: cfg.Workflows.SigningKey,
		Log:        log,
		Metrics:    s.metrics,
		Hooks:      s.hooks,
	}, workflow.Builtin(s.hub, cfg.Workflows.Disabled...)...)
	if err != nil {
		return nil, fmt.Errorf("registering workflows: %w", err)
	}

	s.plugins = plugin.NewRegistry(s.hooks, log)
	if err := s.plugins.Register(plugin.NewAudit(s.audit)); err != nil {
		return nil, err
	}

	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.Server.AllowedOrigins)
}

// Workflows exposes the workflow handler for in-process triggers.
func (s *Server) Workflows() *workflow.Handler { return s.workflows }

// Agents exposes the agent registry.
func (s *Server) Agents() *agents.Registry { return s.agents }

// ResolveBindAddr computes the listen address from config.
func ResolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return net.JoinHostPort(host, fmt.Sprint(cfg.Port))
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := ResolveBindAddr(s.cfg.Server)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.Server.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.Server.TLS.CertPath, s.cfg.Server.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Server.Bind != "loopback" {
		s.log.Warn().Msg("TLS is not enabled, API tokens travel in cleartext")
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.startedAt = time.Now()

	if err := s.plugins.InitAll(ctx); err != nil {
		ln.Close()
		return err
	}
	go s.sessions.Run(ctx)

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("version", version.Version).
		Strs("workflows", s.workflows.Registry().IDs()).
		Int("agents", s.agents.Len()).
		Msg("server ready")
	s.hooks.Emit(ctx, hooks.EventServerStart, map[string]any{"addr": ln.Addr().String()})

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down server")
		s.hooks.Emit(context.Background(), hooks.EventServerStop, nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.hub.CloseAll()
		s.httpServer.Shutdown(shutdownCtx)
		s.plugins.CloseAll()
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// checkWebSocketOrigin allows non-browser clients and listed origins.
func checkWebSocketOrigin(allowed []string) notify.OriginChecker {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return isOriginAllowed(origin, allowed)
	}
}
