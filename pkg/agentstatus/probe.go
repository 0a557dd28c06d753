// Package agentstatus discovers whether registered agent endpoints are
// reachable and what they report about themselves. A probe hits the
// agent's /info endpoint and falls back to /health; the aggregator fans
// probes out concurrently, one report per endpoint, in request order.
package agentstatus

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayutaki/agenthub/pkg/httpclient"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	infoTimeout   = 5 * time.Second
	healthTimeout = 3 * time.Second
)

// Agent type values reported by /info.
const (
	TypeAgent   = "agent"
	TypeMCP     = "mcp"
	TypeUnknown = "unknown"
)

// Header is one custom HTTP header attached to probe requests.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Descriptor identifies one endpoint to probe.
type Descriptor struct {
	ID      string   `json:"id"`
	URL     string   `json:"url"`
	Headers []Header `json:"headers,omitempty"`
}

// agentInfo is the /info response document.
type agentInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Version      string   `json:"version,omitempty"`
	Type         string   `json:"type"`
	Capabilities []string `json:"capabilities"`
}

// Report is the probe outcome for one endpoint.
type Report struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Status       string   `json:"status"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Version      string   `json:"version,omitempty"`
	Type         string   `json:"type"`
	Capabilities []string `json:"capabilities"`
}

// Prober checks a single endpoint. Probes never retry; a failed request
// means the endpoint is reported offline, not re-asked.
type Prober struct {
	client *httpclient.Client
}

// NewProber creates a prober. A nil client gets a retry-free default.
func NewProber(client *httpclient.Client) *Prober {
	if client == nil {
		client = httpclient.New(httpclient.WithoutRetries())
	}
	return &Prober{client: client}
}

// Probe checks one endpoint. It never returns an error: every transport
// failure maps to an offline report.
//
// GET {url}/info is tried first with a 5s budget. A 2xx response yields an
// online report filled from the info document with defaults for missing
// fields. Otherwise GET {url}/health gets 3s; a 2xx there means the agent
// is up but its info endpoint is broken, which the report says outright.
// Anything else is offline.
func (p *Prober) Probe(ctx context.Context, desc Descriptor) Report {
	if info, ok := p.fetchInfo(ctx, desc); ok {
		if info == nil {
			// /info answered 2xx with an unreadable body.
			return offlineReport(desc)
		}
		return Report{
			ID:           desc.ID,
			URL:          desc.URL,
			Status:       StatusOnline,
			Name:         info.Name,
			Description:  info.Description,
			Version:      info.Version,
			Type:         info.Type,
			Capabilities: info.Capabilities,
		}
	}

	if p.checkHealth(ctx, desc) {
		return Report{
			ID:           desc.ID,
			URL:          desc.URL,
			Status:       StatusOnline,
			Name:         "Unknown Agent",
			Description:  "エージェント情報の取得に失敗しました",
			Type:         TypeUnknown,
			Capabilities: []string{},
		}
	}

	return offlineReport(desc)
}

func offlineReport(desc Descriptor) Report {
	return Report{
		ID:           desc.ID,
		URL:          desc.URL,
		Status:       StatusOffline,
		Name:         "Unknown",
		Description:  "",
		Type:         TypeUnknown,
		Capabilities: []string{},
	}
}

// fetchInfo returns (info, true) on a readable 2xx /info response,
// (nil, true) on a 2xx response whose body cannot be decoded or is the
// JSON literal null, and
// (nil, false) when /info is unreachable or non-2xx.
func (p *Prober) fetchInfo(ctx context.Context, desc Descriptor) (*agentInfo, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, desc.URL+"/info", nil)
	if err != nil {
		return nil, false
	}
	applyHeaders(req, desc.Headers)

	resp, err := p.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, false
	}
	defer resp.Body.Close()

	// Decoding through a pointer keeps "null" apart from "{}": null leaves
	// the pointer nil (no document at all), an empty object still counts as
	// an answer and gets the field defaults below.
	var info *agentInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, true
	}
	if info == nil {
		return nil, true
	}

	if info.Name == "" {
		info.Name = "Unknown Agent"
	}
	if info.Type == "" {
		info.Type = TypeUnknown
	}
	if info.Capabilities == nil {
		info.Capabilities = []string{}
	}

	return info, true
}

func (p *Prober) checkHealth(ctx context.Context, desc Descriptor) bool {
	reqCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, desc.URL+"/health", nil)
	if err != nil {
		return false
	}
	applyHeaders(req, desc.Headers)

	resp, err := p.client.Do(req)
	if resp != nil {
		resp.Body.Close()
	}
	return err == nil
}

// applyHeaders sets custom headers in order; a repeated key overwrites.
func applyHeaders(req *http.Request, headers []Header) {
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
}
