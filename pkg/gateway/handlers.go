package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayutaki/agenthub/pkg/agentregistry"
	"github.com/ayutaki/agenthub/pkg/agentstatus"
	"github.com/ayutaki/agenthub/pkg/chatrelay"
)

const (
	errInvalidURLs       = "Invalid request: urls array is required"
	errStatusFailed      = "Failed to fetch agent status"
	errInvalidChatBody   = "Invalid request: messages array is required"
	errChatFailed        = "Failed to stream chat response"
	errInvalidAgentBody  = "Invalid request: url is required"
	errRegistryFailed    = "Registry operation failed"
	errAgentNotFoundBody = "Agent not found"
)

type statusRequest struct {
	URLs json.RawMessage `json:"urls"`
}

type statusResponse struct {
	Agents    []agentstatus.Report `json:"agents"`
	Timestamp string               `json:"timestamp"`
}

// handleAgentStatus probes every endpoint in the request body and returns
// one report per endpoint, in request order.
func (s *Server) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Agent status aggregation panicked", "panic", rec)
			writeError(w, http.StatusInternalServerError, errStatusFailed)
		}
	}()

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidURLs)
		return
	}

	var targets []agentstatus.Descriptor
	if len(req.URLs) == 0 || json.Unmarshal(req.URLs, &targets) != nil || targets == nil {
		writeError(w, http.StatusBadRequest, errInvalidURLs)
		return
	}

	reports := s.aggregator.Aggregate(r.Context(), targets)
	for _, report := range reports {
		s.metrics.observeProbe(string(report.Status))
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Agents:    reports,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type chatRequest struct {
	Messages []chatrelay.Message `json:"messages"`
}

// handleChat relays the conversation to the completion backend and writes
// tokens to the response as they arrive. Failures after the first token
// has been written can only be logged; the stream just ends early.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Messages == nil {
		writeError(w, http.StatusBadRequest, errInvalidChatBody)
		return
	}

	flusher, _ := w.(http.Flusher)

	started := false
	err := s.relay.Stream(r.Context(), req.Messages, func(token string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write([]byte(token)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		if started {
			slog.Error("Chat stream interrupted", "error", err)
			return
		}
		slog.Error("Chat stream failed", "error", err)
		writeError(w, http.StatusInternalServerError, errChatFailed)
		return
	}

	if !started {
		// Backend produced no tokens. Still a successful, empty stream.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}

type agentsResponse struct {
	Agents []*agentregistry.Agent `json:"agents"`
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.registry.List()
	if err != nil {
		slog.Error("Registry list failed", "error", err)
		writeError(w, http.StatusInternalServerError, errRegistryFailed)
		return
	}
	writeJSON(w, http.StatusOK, agentsResponse{Agents: agents})
}

type upsertAgentRequest struct {
	URL     string                 `json:"url"`
	Headers []agentregistry.Header `json:"headers"`
}

func (s *Server) handleAddAgent(w http.ResponseWriter, r *http.Request) {
	var req upsertAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, errInvalidAgentBody)
		return
	}

	agent, err := s.registry.Add(req.URL, req.Headers)
	if err != nil {
		slog.Error("Registry add failed", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, errRegistryFailed)
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req upsertAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidAgentBody)
		return
	}

	if req.URL != "" {
		if err := s.registry.UpdateURL(id, req.URL); err != nil {
			s.writeRegistryError(w, id, err)
			return
		}
	}
	if req.Headers != nil {
		if err := s.registry.UpdateHeaders(id, req.Headers); err != nil {
			s.writeRegistryError(w, id, err)
			return
		}
	}

	agent, err := s.registry.Get(id)
	if err != nil {
		s.writeRegistryError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) handleRemoveAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.registry.Remove(id); err != nil {
		s.writeRegistryError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeRegistryError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, agentregistry.ErrAgentNotFound) {
		writeError(w, http.StatusNotFound, errAgentNotFoundBody)
		return
	}
	slog.Error("Registry operation failed", "id", id, "error", err)
	writeError(w, http.StatusInternalServerError, errRegistryFailed)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
