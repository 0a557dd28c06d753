package calendarsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ayutaki/agenthub/pkg/config"
	"github.com/ayutaki/agenthub/pkg/observability"
)

const (
	serviceName    = "Outlook MCP Server"
	serviceVersion = "1.0.0"

	defaultWindow = 7 * 24 * time.Hour
)

// Server hosts the calendar data service: REST for the schedule agent and
// MCP tools for protocol clients.
type Server struct {
	cfg    *config.CalendarServiceConfig
	source Source
	mcp    *mcpserver.MCPServer

	server *http.Server
}

func NewServer(cfg *config.CalendarServiceConfig, source Source) *Server {
	return &Server{
		cfg:    cfg,
		source: source,
		mcp:    NewMCPServer(source, serviceVersion),
	}
}

// Start runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.Address(),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Calendar service starting", "address", s.Address(), "source", s.cfg.Source)

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

	slog.Info("Calendar service shutting down")
	return s.server.Shutdown(shutdownCtx)
}

// Address returns the listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/calendar/events", s.handleEvents)
	mux.HandleFunc("/api/calendar/availability", s.handleAvailability)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/info", s.handleInfo)
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.mcp,
		mcpserver.WithEndpointPath("/mcp"),
	))
	return mux
}

// handleEvents serves GET /api/calendar/events. The window defaults to
// the next seven days; responses are a bare JSON array, the shape the
// schedule agent's client decodes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	token, ok := bearerToken(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	start := time.Now().UTC()
	if raw := r.URL.Query().Get("startDateTime"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid startDateTime")
			return
		}
		start = parsed
	}
	end := start.Add(defaultWindow)
	if raw := r.URL.Query().Get("endDateTime"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid endDateTime")
			return
		}
		end = parsed
	}

	trace, _ := observability.FromHeaders(r.Header)
	events, err := s.source.Events(r.Context(), token, start, end, trace)
	if err != nil {
		slog.Error("Calendar source failed", "error", err)
		writeMessage(w, http.StatusBadGateway, "Failed to fetch calendar events")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

type availabilityRequest struct {
	UserEmail string `json:"userEmail"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// handleAvailability serves POST /api/calendar/availability.
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	token, ok := bearerToken(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserEmail == "" {
		writeMessage(w, http.StatusBadRequest, "userEmail is required")
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid startTime")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid endTime")
		return
	}

	trace, _ := observability.FromHeaders(r.Header)
	availability, err := s.source.Availability(r.Context(), token, req.UserEmail, start, end, trace)
	if err != nil {
		slog.Error("Availability lookup failed", "userEmail", req.UserEmail, "error", err)
		writeMessage(w, http.StatusBadGateway, "Failed to check availability")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(availability)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"agent":  serviceName,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"name":         serviceName,
		"description":  "Calendar data service: Outlook events and availability over REST and MCP",
		"version":      serviceVersion,
		"type":         "mcp",
		"capabilities": []string{"get_calendar_events", "check_availability"},
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
