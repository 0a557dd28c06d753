// Package observability provides W3C trace-context propagation helpers and
// OpenTelemetry tracer bootstrap for the agent services.
package observability

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
)

const (
	TraceparentHeader = "traceparent"
	TracestateHeader  = "tracestate"
)

// traceparent format: version-trace_id-parent_id-trace_flags
// e.g. 00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01
var traceparentPattern = regexp.MustCompile(`^([0-9a-f]{2})-([0-9a-f]{32})-([0-9a-f]{16})-([0-9a-f]{2})$`)

// TraceContext carries W3C trace-context fields across service boundaries.
type TraceContext struct {
	Version    string
	TraceID    string
	ParentID   string
	TraceFlags string
	Tracestate string
}

// ParseTraceparent parses a traceparent header value. Returns false for
// missing, malformed, or non-version-00 values.
func ParseTraceparent(value string) (*TraceContext, bool) {
	match := traceparentPattern.FindStringSubmatch(value)
	if match == nil {
		return nil, false
	}

	if match[1] != "00" {
		return nil, false
	}

	return &TraceContext{
		Version:    match[1],
		TraceID:    match[2],
		ParentID:   match[3],
		TraceFlags: match[4],
	}, true
}

// FromHeaders extracts a trace context from HTTP headers. Returns false when
// no valid traceparent is present.
func FromHeaders(headers http.Header) (*TraceContext, bool) {
	tc, ok := ParseTraceparent(headers.Get(TraceparentHeader))
	if !ok {
		return nil, false
	}

	if state := headers.Get(TracestateHeader); state != "" {
		tc.Tracestate = state
	}

	return tc, true
}

// Traceparent formats the context as a traceparent header value.
func (tc *TraceContext) Traceparent() string {
	return fmt.Sprintf("%s-%s-%s-%s", tc.Version, tc.TraceID, tc.ParentID, tc.TraceFlags)
}

// SetHeaders writes traceparent (and tracestate if present) onto headers.
func (tc *TraceContext) SetHeaders(headers http.Header) {
	if tc.TraceID == "" || tc.ParentID == "" {
		return
	}

	headers.Set(TraceparentHeader, tc.Traceparent())
	if tc.Tracestate != "" {
		headers.Set(TracestateHeader, tc.Tracestate)
	}
}

// NewSpanID returns a random 16-hex-char span id.
func NewSpanID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// a zero span id is still well-formed.
		return "0000000000000000"
	}
	return hex.EncodeToString(b[:])
}

// ChildTraceparent builds a traceparent value continuing the given trace
// with a fresh span id and the sampled flag set.
func ChildTraceparent(traceID string) string {
	return fmt.Sprintf("00-%s-%s-01", traceID, NewSpanID())
}
