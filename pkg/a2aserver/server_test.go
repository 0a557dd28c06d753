package a2aserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"

	"github.com/ayutaki/agenthub/pkg/config"
)

type noopExecutor struct{}

func (noopExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return nil
}

func (noopExecutor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return nil
}

func testConfig() *config.AgentConfig {
	return &config.AgentConfig{
		Name:        "Outlook Schedule Agent",
		Description: "An agent that checks Outlook calendar and coordinates availability",
		URL:         "http://localhost:8000/",
		Host:        "0.0.0.0",
		Port:        8000,
		Version:     "1.0.0",
	}
}

func testSkills() []a2a.AgentSkill {
	return []a2a.AgentSkill{{
		ID:          "outlook-calendar",
		Name:        "Outlook Calendar",
		Description: "Check Outlook calendar and coordinate availability",
		Tags:        []string{"outlook", "calendar", "schedule"},
	}}
}

func TestBuildCard(t *testing.T) {
	card := BuildCard(testConfig(), testSkills())

	if card.Name != "Outlook Schedule Agent" {
		t.Errorf("unexpected name: %s", card.Name)
	}
	if card.ProtocolVersion != "0.3.0" {
		t.Errorf("unexpected protocol version: %s", card.ProtocolVersion)
	}
	if card.Version != "1.0.0" {
		t.Errorf("unexpected version: %s", card.Version)
	}
	if !card.Capabilities.Streaming {
		t.Error("streaming capability must be advertised")
	}
	if len(card.Skills) != 1 || card.Skills[0].ID != "outlook-calendar" {
		t.Errorf("unexpected skills: %+v", card.Skills)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(testConfig(), noopExecutor{}, testSkills())

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid health body: %v", err)
	}
	if body["status"] != "ok" || body["agent"] != "Outlook Schedule Agent" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestInfoEndpoint(t *testing.T) {
	s := NewServer(testConfig(), noopExecutor{}, testSkills())

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var info InfoDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid info body: %v", err)
	}
	if info.Name != "Outlook Schedule Agent" {
		t.Errorf("unexpected name: %s", info.Name)
	}
	if info.Type != "agent" {
		t.Errorf("unexpected type: %s", info.Type)
	}
	if len(info.Capabilities) != 1 || info.Capabilities[0] != "outlook-calendar" {
		t.Errorf("unexpected capabilities: %v", info.Capabilities)
	}
}

func TestWithAgentType(t *testing.T) {
	s := NewServer(testConfig(), noopExecutor{}, nil, WithAgentType("mcp"))

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	var info InfoDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid info body: %v", err)
	}
	if info.Type != "mcp" {
		t.Errorf("unexpected type: %s", info.Type)
	}
	if info.Capabilities == nil || len(info.Capabilities) != 0 {
		t.Errorf("capabilities must be an empty array, got %v", info.Capabilities)
	}
}

func TestAgentCardServedAtWellKnownPath(t *testing.T) {
	s := NewServer(testConfig(), noopExecutor{}, testSkills())

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, a2asrv.WellKnownAgentCardPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var card a2a.AgentCard
	if err := json.Unmarshal(rec.Body.Bytes(), &card); err != nil {
		t.Fatalf("invalid card body: %v", err)
	}
	if card.Name != "Outlook Schedule Agent" || card.ProtocolVersion != "0.3.0" {
		t.Errorf("unexpected card: name=%s protocol=%s", card.Name, card.ProtocolVersion)
	}
}

func TestAddress(t *testing.T) {
	s := NewServer(testConfig(), noopExecutor{}, nil)
	if got := s.Address(); got != "0.0.0.0:8000" {
		t.Errorf("unexpected address: %s", got)
	}
}
