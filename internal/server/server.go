// Package server exposes the dashboard JSON API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/OpsDeck/OpsDeck/internal/agents"
	"github.com/OpsDeck/OpsDeck/internal/billing"
	"github.com/OpsDeck/OpsDeck/internal/store"
	"github.com/OpsDeck/OpsDeck/internal/tasks"
	"github.com/OpsDeck/OpsDeck/internal/warroom"
)

// AgentDirectory lists agents and their sessions.
type AgentDirectory interface {
	List(ctx context.Context) ([]agents.Agent, error)
	Sessions(ctx context.Context, roster []agents.Agent) map[string][]agents.Session
}

// Integrations summarizes which optional collaborators are configured.
type Integrations struct {
	AgentCLI bool `json:"agent_cli"`
	Database bool `json:"database"`
	Sheets   bool `json:"sheets"`
	Mailer   bool `json:"mailer"`
	Slack    bool `json:"slack"`
	Events   bool `json:"events"`
}

// Config holds the HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	Version      string
	Integrations Integrations
}

// Server wraps the HTTP server and its collaborators.
type Server struct {
	cfg        Config
	store      *store.Store
	directory  AgentDirectory
	dispatcher *tasks.Dispatcher
	room       *warroom.Room
	billing    *billing.Service
	logger     *slog.Logger
	srv        *http.Server
	started    time.Time
}

// Options wires the server.
type Options struct {
	Config     Config
	Store      *store.Store
	Directory  AgentDirectory
	Dispatcher *tasks.Dispatcher
	Room       *warroom.Room
	Billing    *billing.Service
	Logger     *slog.Logger
}

// New creates the server and registers its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 4820
	}

	s := &Server{
		cfg:        cfg,
		store:      opts.Store,
		directory:  opts.Directory,
		dispatcher: opts.Dispatcher,
		room:       opts.Room,
		billing:    opts.Billing,
		logger:     logger,
		started:    time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/overview", s.handleOverview)
	mux.HandleFunc("POST /api/v1/tasks", s.handleCreateTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/dispatch", s.handleDispatchTask)
	mux.HandleFunc("GET /api/v1/warroom", s.handleWarRoomGet)
	mux.HandleFunc("POST /api/v1/warroom", s.handleWarRoomPost)
	mux.HandleFunc("POST /api/v1/quotes", s.handleCreateQuote)
	mux.HandleFunc("POST /api/v1/invoices", s.handleCreateInvoice)
	mux.HandleFunc("POST /api/v1/bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/integrations", s.handleIntegrations)
	mux.HandleFunc("OPTIONS /api/v1/", func(w http.ResponseWriter, r *http.Request) {
		writeCORS(w)
	})

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.withLogging(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the underlying handler, for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// ListenAndServe starts the server and shuts it down gracefully when the
// context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("dashboard API listening", "addr", s.srv.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
