// Package a2aserver hosts an A2A agent executor over HTTP: the JSON-RPC
// endpoint at the agent root, the agent card at the well-known path, and
// the /health and /info endpoints the status dashboard probes.
package a2aserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"

	"github.com/ayutaki/agenthub/pkg/config"
)

// Server hosts one agent executor.
type Server struct {
	cfg       *config.AgentConfig
	executor  a2asrv.AgentExecutor
	card      *a2a.AgentCard
	agentType string

	server *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAgentType overrides the service type reported at /info. The
// default is "agent".
func WithAgentType(agentType string) Option {
	return func(s *Server) {
		s.agentType = agentType
	}
}

// NewServer wires an executor behind the standard agent surface.
func NewServer(cfg *config.AgentConfig, executor a2asrv.AgentExecutor, skills []a2a.AgentSkill, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		executor:  executor,
		card:      BuildCard(cfg, skills),
		agentType: "agent",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	var handler http.Handler = s.routes()
	handler = loggingMiddleware(handler)

	s.server = &http.Server{
		Addr:         s.Address(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Agent server starting", "agent", s.cfg.Name, "address", s.Address())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("Agent server shutting down", "agent", s.cfg.Name)
	return s.server.Shutdown(shutdownCtx)
}

// Address returns the listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

func (s *Server) routes() *http.ServeMux {
	requestHandler := a2asrv.NewHandler(s.executor)

	mux := http.NewServeMux()
	mux.Handle("/", a2asrv.NewJSONRPCHandler(requestHandler))
	mux.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewStaticAgentCardHandler(s.card))
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/info", s.handleInfo)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"agent":  s.cfg.Name,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(buildInfo(s.card, s.agentType))
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
