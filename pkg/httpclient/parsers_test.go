package httpclient

import (
	"net/http"
	"testing"
	"time"
)

func TestParseAzureOpenAIHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Retry-After", "12")
	headers.Set("x-ratelimit-remaining-requests", "41")
	headers.Set("x-ratelimit-remaining-tokens", "39500")

	info := ParseAzureOpenAIHeaders(headers)

	if info.RetryAfter != 12*time.Second {
		t.Errorf("expected 12s retry-after, got %v", info.RetryAfter)
	}
	if info.RequestsRemaining != 41 {
		t.Errorf("expected 41 requests remaining, got %d", info.RequestsRemaining)
	}
	if info.TokensRemaining != 39500 {
		t.Errorf("expected 39500 tokens remaining, got %d", info.TokensRemaining)
	}
}

func TestParseAzureOpenAIHeadersEmpty(t *testing.T) {
	info := ParseAzureOpenAIHeaders(http.Header{})

	if info.RetryAfter != 0 || info.ResetTime != 0 {
		t.Errorf("expected zero values for empty headers, got %+v", info)
	}
}

func TestParseRetryAfter(t *testing.T) {
	headers := http.Header{}
	headers.Set("Retry-After", "3")

	info := ParseRetryAfter(headers)
	if info.RetryAfter != 3*time.Second {
		t.Errorf("expected 3s, got %v", info.RetryAfter)
	}

	// Non-numeric values are ignored.
	headers.Set("Retry-After", "Wed, 21 Oct 2026 07:28:00 GMT")
	info = ParseRetryAfter(headers)
	if info.RetryAfter != 0 {
		t.Errorf("expected 0 for HTTP-date value, got %v", info.RetryAfter)
	}
}
