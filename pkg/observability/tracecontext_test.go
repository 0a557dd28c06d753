package observability

import (
	"net/http"
	"regexp"
	"testing"
)

func TestParseTraceparent(t *testing.T) {
	tc, ok := ParseTraceparent("00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	if !ok {
		t.Fatal("expected valid traceparent to parse")
	}

	if tc.TraceID != "0af7651916cd43dd8448eb211c80319c" {
		t.Errorf("unexpected trace id: %s", tc.TraceID)
	}
	if tc.ParentID != "b7ad6b7169203331" {
		t.Errorf("unexpected parent id: %s", tc.ParentID)
	}
	if tc.TraceFlags != "01" {
		t.Errorf("unexpected flags: %s", tc.TraceFlags)
	}
}

func TestParseTraceparentRejectsMalformed(t *testing.T) {
	invalid := []string{
		"",
		"not-a-traceparent",
		"00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331",         // missing flags
		"00-0AF7651916CD43DD8448EB211C80319C-B7AD6B7169203331-01",      // uppercase
		"ff-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",      // wrong version
		"00-0af7651916cd43dd8448eb211c80319-b7ad6b7169203331-01",       // short trace id
		"00-0af7651916cd43dd8448eb211c80319c-b7ad6b716920333-01",       // short parent id
		" 00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",     // leading space
		"00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01-more", // trailing
	}

	for _, v := range invalid {
		if _, ok := ParseTraceparent(v); ok {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}

func TestTraceparentRoundTrip(t *testing.T) {
	value := "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"
	tc, ok := ParseTraceparent(value)
	if !ok {
		t.Fatal("parse failed")
	}
	if tc.Traceparent() != value {
		t.Errorf("round trip mismatch: %s", tc.Traceparent())
	}
}

func TestFromHeadersWithTracestate(t *testing.T) {
	headers := http.Header{}
	headers.Set("Traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	headers.Set("Tracestate", "vendor=value")

	tc, ok := FromHeaders(headers)
	if !ok {
		t.Fatal("expected headers to parse")
	}
	if tc.Tracestate != "vendor=value" {
		t.Errorf("unexpected tracestate: %s", tc.Tracestate)
	}

	out := http.Header{}
	tc.SetHeaders(out)
	if out.Get(TraceparentHeader) == "" || out.Get(TracestateHeader) == "" {
		t.Error("expected both headers to be set")
	}
}

func TestNewSpanID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{16}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewSpanID()
		if !pattern.MatchString(id) {
			t.Fatalf("span id %q is not 16 lowercase hex chars", id)
		}
		if seen[id] {
			t.Fatalf("span id %q repeated", id)
		}
		seen[id] = true
	}
}

func TestChildTraceparent(t *testing.T) {
	traceID := "0af7651916cd43dd8448eb211c80319c"
	value := ChildTraceparent(traceID)

	tc, ok := ParseTraceparent(value)
	if !ok {
		t.Fatalf("child traceparent %q does not parse", value)
	}
	if tc.TraceID != traceID {
		t.Errorf("trace id not preserved: %s", tc.TraceID)
	}
	if tc.TraceFlags != "01" {
		t.Errorf("expected sampled flag, got %s", tc.TraceFlags)
	}
}
