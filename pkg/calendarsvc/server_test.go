package calendarsvc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayutaki/agenthub/pkg/calendar"
	"github.com/ayutaki/agenthub/pkg/config"
)

func testCalendarServer() *Server {
	cfg := &config.CalendarServiceConfig{Host: "0.0.0.0", Port: 8000, Source: "static"}
	return NewServer(cfg, testStaticSource())
}

func TestEventsEndpoint(t *testing.T) {
	s := testCalendarServer()

	start := testClock()().UTC().Format(time.RFC3339)
	end := testClock()().Add(7 * 24 * time.Hour).UTC().Format(time.RFC3339)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/events?startDateTime="+start+"&endDateTime="+end, nil)
	req.Header.Set("Authorization", "Bearer token-123")

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}

	var events []calendar.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("response must be a bare event array: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}
}

func TestEventsEndpointRequiresBearer(t *testing.T) {
	s := testCalendarServer()

	for _, auth := range []string{"", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/calendar/events", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}

		rec := httptest.NewRecorder()
		s.routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("auth %q: expected 401, got %d", auth, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Access token required") {
			t.Errorf("auth %q: unexpected body: %s", auth, rec.Body.String())
		}
	}
}

func TestEventsEndpointRejectsBadWindow(t *testing.T) {
	s := testCalendarServer()

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/events?startDateTime=yesterday", nil)
	req.Header.Set("Authorization", "Bearer token-123")

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid startDateTime") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	s := testCalendarServer()

	body := `{"userEmail":"user@example.com","startTime":"2026-03-03T00:00:00Z","endTime":"2026-03-03T03:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calendar/availability", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer token-123")

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}

	var availability calendar.Availability
	if err := json.Unmarshal(rec.Body.Bytes(), &availability); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if availability.UserEmail != "user@example.com" {
		t.Errorf("unexpected userEmail: %s", availability.UserEmail)
	}
}

func TestAvailabilityEndpointValidation(t *testing.T) {
	s := testCalendarServer()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing email", `{"startTime":"2026-03-03T00:00:00Z","endTime":"2026-03-03T03:00:00Z"}`, "userEmail is required"},
		{"bad start", `{"userEmail":"u@example.com","startTime":"x","endTime":"2026-03-03T03:00:00Z"}`, "Invalid startTime"},
		{"bad end", `{"userEmail":"u@example.com","startTime":"2026-03-03T00:00:00Z","endTime":"x"}`, "Invalid endTime"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/calendar/availability", strings.NewReader(tc.body))
			req.Header.Set("Authorization", "Bearer token-123")

			rec := httptest.NewRecorder()
			s.routes().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Errorf("unexpected body: %s", rec.Body.String())
			}
		})
	}
}

func TestInfoReportsMCPType(t *testing.T) {
	s := testCalendarServer()

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	var info struct {
		Name         string   `json:"name"`
		Type         string   `json:"type"`
		Capabilities []string `json:"capabilities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid info body: %v", err)
	}
	if info.Type != "mcp" {
		t.Errorf("unexpected type: %s", info.Type)
	}
	if len(info.Capabilities) != 2 || info.Capabilities[0] != "get_calendar_events" {
		t.Errorf("unexpected capabilities: %v", info.Capabilities)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := testCalendarServer()

	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["status"] != "ok" || body["agent"] != serviceName {
		t.Errorf("unexpected body: %v", body)
	}
}
