// Package chatrelay streams chat completions from an Azure OpenAI
// deployment and hands tokens to the caller as they arrive.
package chatrelay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ayutaki/agenthub/pkg/config"
	"github.com/ayutaki/agenthub/pkg/httpclient"
)

// defaultMaxDuration bounds one relayed completion end to end.
const defaultMaxDuration = 30 * time.Second

// Message is one chat turn sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenFunc receives each streamed text token. Returning an error stops
// the stream.
type TokenFunc func(token string) error

type chatRequest struct {
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type streamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Relay streams completions for the gateway's chat endpoint.
type Relay struct {
	endpoint    string
	apiKey      string
	http        *httpclient.Client
	maxDuration time.Duration
}

type Option func(*Relay)

// WithMaxDuration overrides the per-completion time bound.
func WithMaxDuration(d time.Duration) Option {
	return func(r *Relay) {
		r.maxDuration = d
	}
}

// NewRelay creates a relay for the configured deployment. A nil httpClient
// gets a default that honors Azure's rate limit headers.
func NewRelay(cfg config.AzureOpenAIConfig, httpClient *httpclient.Client, opts ...Option) *Relay {
	if httpClient == nil {
		httpClient = httpclient.New(
			httpclient.WithMaxRetries(2),
			httpclient.WithHeaderParser(httpclient.ParseAzureOpenAIHeaders),
		)
	}

	r := &Relay{
		endpoint:    cfg.Endpoint(),
		apiKey:      cfg.APIKey,
		http:        httpClient,
		maxDuration: defaultMaxDuration,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Stream sends the conversation upstream and invokes onToken for every
// text delta until the stream completes or the time bound expires.
func (r *Relay) Stream(ctx context.Context, messages []Message, onToken TokenFunc) error {
	ctx, cancel := context.WithTimeout(ctx, r.maxDuration)
	defer cancel()

	requestBody, err := json.Marshal(chatRequest{Messages: messages, Stream: true})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(requestBody)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", r.apiKey)

	resp, err := r.http.Do(req)
	// The HTTP client may return both a response and an error for non-2xx
	// status codes, and the body carries the API's error details.
	if resp != nil {
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, readErr := io.ReadAll(resp.Body)
			errorBody := string(body)
			if readErr != nil {
				errorBody = fmt.Sprintf("(failed to read error body: %v)", readErr)
			}
			return fmt.Errorf("chat completion failed with status %d: %s", resp.StatusCode, errorBody)
		}
	}
	if err != nil {
		return fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("chat completion request failed: no response received")
	}

	return r.consumeStream(resp.Body, onToken)
}

func (r *Relay) consumeStream(body io.Reader, onToken TokenFunc) error {
	reader := bufio.NewReader(body)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read stream: %w", err)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}
		line = line[6:]

		if bytes.Equal(line, []byte("[DONE]")) {
			return nil
		}

		var chunk streamResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}

		if chunk.Error != nil {
			return fmt.Errorf("API error: %s", chunk.Error.Message)
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		if content := chunk.Choices[0].Delta.Content; content != "" {
			if err := onToken(content); err != nil {
				return err
			}
		}
	}
}
