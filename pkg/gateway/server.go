// Package gateway is the HTTP front of the system: the chat relay, the
// agent status API and the agent registry live behind one server.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayutaki/agenthub/pkg/agentregistry"
	"github.com/ayutaki/agenthub/pkg/agentstatus"
	"github.com/ayutaki/agenthub/pkg/chatrelay"
	"github.com/ayutaki/agenthub/pkg/config"
)

// ChatStreamer is the slice of the chat relay the gateway needs.
type ChatStreamer interface {
	Stream(ctx context.Context, messages []chatrelay.Message, onToken chatrelay.TokenFunc) error
}

// Server hosts the gateway API.
type Server struct {
	cfg        *config.GatewayConfig
	registry   agentregistry.Registry
	aggregator *agentstatus.Aggregator
	relay      ChatStreamer
	metrics    *Metrics

	server *http.Server
}

// NewServer wires the gateway from its collaborators.
func NewServer(cfg *config.GatewayConfig, registry agentregistry.Registry, aggregator *agentstatus.Aggregator, relay ChatStreamer) *Server {
	return &Server{
		cfg:        cfg,
		registry:   registry,
		aggregator: aggregator,
		relay:      relay,
		metrics:    NewMetrics(),
	}
}

// Start runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:        s.Address(),
		Handler:     s.routes(),
		ReadTimeout: 30 * time.Second,
		// Chat streaming holds the response open, so the write timeout
		// stays generous.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Gateway starting", "address", s.Address())

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

	slog.Info("Gateway shutting down")
	return s.server.Shutdown(shutdownCtx)
}

// Address returns the listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(corsMiddleware)

	r.Get("/health", handleHealth)
	r.Get("/metrics", s.metrics.Handler().ServeHTTP)

	r.Post("/api/chat", s.handleChat)

	r.Route("/api/agents", func(r chi.Router) {
		r.Post("/status", s.handleAgentStatus)
		r.Get("/", s.handleListAgents)
		r.Post("/", s.handleAddAgent)
		r.Put("/{id}", s.handleUpdateAgent)
		r.Delete("/{id}", s.handleRemoveAgent)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// Don't wrap ResponseWriter - it breaks http.Flusher for streaming
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// statusRecorder captures the response code for metrics. It forwards
// Flush so chat streaming keeps working through the wrapper.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Flush() {
	if flusher, ok := rec.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.metrics.observeRequest(r.Method, routePattern(r), rec.status, time.Since(start))
	})
}

// routePattern reports the matched chi pattern so metrics label
// cardinality stays bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}
