package agentstatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newProber() *Prober {
	return NewProber(nil)
}

func TestProbeOnlineFromInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Outlook Schedule Agent","description":"calendar agent","version":"1.0.0","type":"agent","capabilities":["streaming"]}`))
	}))
	defer server.Close()

	report := newProber().Probe(context.Background(), Descriptor{ID: "a1", URL: server.URL})

	if report.Status != StatusOnline {
		t.Fatalf("expected online, got %s", report.Status)
	}
	if report.Name != "Outlook Schedule Agent" {
		t.Errorf("unexpected name: %s", report.Name)
	}
	if report.Version != "1.0.0" {
		t.Errorf("unexpected version: %s", report.Version)
	}
	if report.Type != TypeAgent {
		t.Errorf("unexpected type: %s", report.Type)
	}
	if len(report.Capabilities) != 1 || report.Capabilities[0] != "streaming" {
		t.Errorf("unexpected capabilities: %v", report.Capabilities)
	}
}

func TestProbeInfoDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	report := newProber().Probe(context.Background(), Descriptor{ID: "a1", URL: server.URL})

	if report.Status != StatusOnline {
		t.Fatalf("expected online, got %s", report.Status)
	}
	if report.Name != "Unknown Agent" {
		t.Errorf("expected default name, got %s", report.Name)
	}
	if report.Description != "" {
		t.Errorf("expected empty description, got %s", report.Description)
	}
	if report.Type != TypeUnknown {
		t.Errorf("expected unknown type, got %s", report.Type)
	}
	if report.Capabilities == nil || len(report.Capabilities) != 0 {
		t.Errorf("expected empty capabilities slice, got %v", report.Capabilities)
	}
}

func TestProbeFallsBackToHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/info":
			w.WriteHeader(http.StatusNotFound)
		case "/health":
			w.Write([]byte(`{"status":"ok"}`))
		}
	}))
	defer server.Close()

	report := newProber().Probe(context.Background(), Descriptor{ID: "a1", URL: server.URL})

	if report.Status != StatusOnline {
		t.Fatalf("expected online via health fallback, got %s", report.Status)
	}
	if report.Name != "Unknown Agent" {
		t.Errorf("unexpected name: %s", report.Name)
	}
	if report.Description != "エージェント情報の取得に失敗しました" {
		t.Errorf("unexpected description: %s", report.Description)
	}
	if report.Type != TypeUnknown {
		t.Errorf("unexpected type: %s", report.Type)
	}
}

func TestProbeOfflineWhenBothFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	report := newProber().Probe(context.Background(), Descriptor{ID: "a1", URL: server.URL})

	if report.Status != StatusOffline {
		t.Fatalf("expected offline, got %s", report.Status)
	}
	if report.Name != "Unknown" {
		t.Errorf("expected Unknown name for offline report, got %s", report.Name)
	}
	if report.Capabilities == nil || len(report.Capabilities) != 0 {
		t.Errorf("expected empty capabilities slice, got %v", report.Capabilities)
	}
}

func TestProbeOfflineWhenUnreachable(t *testing.T) {
	report := newProber().Probe(context.Background(), Descriptor{ID: "a1", URL: "http://127.0.0.1:1"})

	if report.Status != StatusOffline {
		t.Fatalf("expected offline for unreachable endpoint, got %s", report.Status)
	}
}

func TestProbeOfflineOnMalformedInfoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/info":
			w.Write([]byte(`not json`))
		case "/health":
			// A broken info body skips the health fallback entirely.
			t.Error("health must not be probed after a 2xx info response")
		}
	}))
	defer server.Close()

	report := newProber().Probe(context.Background(), Descriptor{ID: "a1", URL: server.URL})

	if report.Status != StatusOffline {
		t.Fatalf("expected offline for malformed info body, got %s", report.Status)
	}
}

func TestProbeOfflineOnNullInfoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/info":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`null`))
		case "/health":
			t.Error("health must not be probed after a 2xx info response")
		}
	}))
	defer server.Close()

	report := newProber().Probe(context.Background(), Descriptor{ID: "a1", URL: server.URL})

	if report.Status != StatusOffline {
		t.Fatalf("expected offline for null info body, got %s", report.Status)
	}
	if report.Name != "Unknown" {
		t.Errorf("expected Unknown name for offline report, got %s", report.Name)
	}
}

func TestProbeSendsCustomHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"name":"a","type":"agent"}`))
	}))
	defer server.Close()

	desc := Descriptor{
		ID:  "a1",
		URL: server.URL,
		Headers: []Header{
			{Key: "Authorization", Value: "Bearer first"},
			{Key: "X-Tenant", Value: "contoso"},
			{Key: "Authorization", Value: "Bearer second"},
		},
	}

	newProber().Probe(context.Background(), desc)

	if got.Get("Authorization") != "Bearer second" {
		t.Errorf("expected last Authorization header to win, got %s", got.Get("Authorization"))
	}
	if got.Get("X-Tenant") != "contoso" {
		t.Errorf("expected X-Tenant header, got %s", got.Get("X-Tenant"))
	}
}
