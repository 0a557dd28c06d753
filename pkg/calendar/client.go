// Package calendar is the client for the internal calendar data service.
// Calls carry the caller's bearer token and, when a trace id is known,
// a W3C traceparent continuing that trace.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ayutaki/agenthub/pkg/httpclient"
	"github.com/ayutaki/agenthub/pkg/observability"
)

// eventsWindow is how far ahead FetchEvents looks.
const eventsWindow = 7 * 24 * time.Hour

// Event is one calendar entry as the data service returns it.
type Event struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	Start     EventTime  `json:"start"`
	End       EventTime  `json:"end"`
	Location  *Location  `json:"location,omitempty"`
	Organizer *Organizer `json:"organizer,omitempty"`
}

type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type Location struct {
	DisplayName string `json:"displayName"`
}

type Organizer struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

type EmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Availability is the response of the availability endpoint.
type Availability struct {
	UserEmail string     `json:"userEmail"`
	Slots     []TimeSlot `json:"slots"`
}

type TimeSlot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// Client talks to the calendar data service. It performs no retries: a
// single failure surfaces immediately so the executor can turn it into a
// user-facing error.
type Client struct {
	baseURL string
	http    *httpclient.Client

	// now is injected for tests that pin the request window.
	now func() time.Time
}

type Option func(*Client)

// WithClock overrides the time source used for the events window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a calendar client. A nil httpClient gets a retry-free
// default with a 30s timeout.
func NewClient(baseURL string, httpClient *httpclient.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.WithoutRetries())
	}

	c := &Client{
		baseURL: baseURL,
		http:    httpClient,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchEvents returns the caller's events for the next seven days.
func (c *Client) FetchEvents(ctx context.Context, accessToken, traceID string) ([]Event, error) {
	now := c.now().UTC()
	params := url.Values{}
	params.Set("startDateTime", now.Format(time.RFC3339))
	params.Set("endDateTime", now.Add(eventsWindow).Format(time.RFC3339))

	endpoint := fmt.Sprintf("%s/api/calendar/events?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build events request: %w", err)
	}
	c.setHeaders(req, accessToken, traceID)

	slog.Info("Fetching calendar events", "traceID", traceID)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events response: %w", err)
	}

	slog.Debug("Calendar events retrieved", "count", len(events), "traceID", traceID)
	return events, nil
}

// CheckAvailability asks the data service for a user's free/busy slots in
// the given window.
func (c *Client) CheckAvailability(ctx context.Context, userEmail string, start, end time.Time, accessToken, traceID string) (*Availability, error) {
	payload, err := json.Marshal(map[string]string{
		"userEmail": userEmail,
		"startTime": start.UTC().Format(time.RFC3339),
		"endTime":   end.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode availability request: %w", err)
	}

	endpoint := c.baseURL + "/api/calendar/availability"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build availability request: %w", err)
	}
	c.setHeaders(req, accessToken, traceID)

	slog.Info("Searching availability", "userEmail", userEmail, "traceID", traceID)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var availability Availability
	if err := json.Unmarshal(body, &availability); err != nil {
		return nil, fmt.Errorf("failed to decode availability response: %w", err)
	}

	return &availability, nil
}

func (c *Client) setHeaders(req *http.Request, accessToken, traceID string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	if traceID != "" {
		req.Header.Set(observability.TraceparentHeader, observability.ChildTraceparent(traceID))
	}
}

// do executes the request and returns the response body, converting non-2xx
// responses into *Error. Transport errors pass through unchanged.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return nil, newErrorFromResponse(resp)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
