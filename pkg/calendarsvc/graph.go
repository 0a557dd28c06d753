package calendarsvc

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

	"github.com/ayutaki/agenthub/pkg/calendar"
	"github.com/ayutaki/agenthub/pkg/config"
	"github.com/ayutaki/agenthub/pkg/httpclient"
	"github.com/ayutaki/agenthub/pkg/observability"
)

// GraphSource reads the caller's calendar from Microsoft Graph with the
// caller's own bearer token. Trace context is forwarded on every request.
type GraphSource struct {
	cfg  config.GraphConfig
	http *httpclient.Client
}

// NewGraphSource creates a Graph-backed source. A nil httpClient gets a
// retry-free default.
func NewGraphSource(cfg config.GraphConfig, httpClient *httpclient.Client) *GraphSource {
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.WithoutRetries())
	}
	return &GraphSource{cfg: cfg, http: httpClient}
}

type graphEventList struct {
	Value []calendar.Event `json:"value"`
}

// Events queries /me/calendarView for the window.
func (g *GraphSource) Events(ctx context.Context, accessToken string, start, end time.Time, trace *observability.TraceContext) ([]calendar.Event, error) {
	params := url.Values{}
	params.Set("startDateTime", start.UTC().Format(time.RFC3339))
	params.Set("endDateTime", end.UTC().Format(time.RFC3339))

	endpoint := fmt.Sprintf("%s/me/calendarView?%s", g.cfg.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendarView request: %w", err)
	}
	g.setHeaders(req, accessToken, trace)

	slog.Info("Querying Graph calendarView", "start", params.Get("startDateTime"), "end", params.Get("endDateTime"))

	body, err := g.do(req)
	if err != nil {
		return nil, err
	}

	var list graphEventList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode calendarView response: %w", err)
	}
	return list.Value, nil
}

type graphScheduleRequest struct {
	Schedules                []string          `json:"schedules"`
	StartTime                graphDateTimeZone `json:"startTime"`
	EndTime                  graphDateTimeZone `json:"endTime"`
	AvailabilityViewInterval int               `json:"availabilityViewInterval"`
}

type graphDateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphScheduleResponse struct {
	Value []struct {
		ScheduleID       string `json:"scheduleId"`
		AvailabilityView string `json:"availabilityView"`
	} `json:"value"`
}

// Availability maps /me/calendar/getSchedule's availabilityView onto
// hourly slots: '0' is free, everything else is busy or tentative.
func (g *GraphSource) Availability(ctx context.Context, accessToken, userEmail string, start, end time.Time, trace *observability.TraceContext) (*calendar.Availability, error) {
	payload, err := json.Marshal(graphScheduleRequest{
		Schedules:                []string{userEmail},
		StartTime:                graphDateTimeZone{DateTime: start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		EndTime:                  graphDateTimeZone{DateTime: end.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		AvailabilityViewInterval: 60,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode getSchedule request: %w", err)
	}

	endpoint := g.cfg.BaseURL + "/me/calendar/getSchedule"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build getSchedule request: %w", err)
	}
	g.setHeaders(req, accessToken, trace)

	slog.Info("Querying Graph getSchedule", "userEmail", userEmail)

	body, err := g.do(req)
	if err != nil {
		return nil, err
	}

	var resp graphScheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode getSchedule response: %w", err)
	}

	availability := &calendar.Availability{UserEmail: userEmail}
	if len(resp.Value) == 0 {
		return availability, nil
	}

	for i, c := range resp.Value[0].AvailabilityView {
		slotStart := start.Add(time.Duration(i) * time.Hour)
		availability.Slots = append(availability.Slots, calendar.TimeSlot{
			Start:     slotStart.UTC().Format(time.RFC3339),
			End:       slotStart.Add(time.Hour).UTC().Format(time.RFC3339),
			Available: c == '0',
		})
	}
	return availability, nil
}

func (g *GraphSource) setHeaders(req *http.Request, accessToken string, trace *observability.TraceContext) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	if trace != nil {
		trace.SetHeaders(req.Header)
	}
}

func (g *GraphSource) do(req *http.Request) ([]byte, error) {
	resp, err := g.http.Do(req)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return nil, fmt.Errorf("graph request failed: HTTP %d", resp.StatusCode)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph response: %w", err)
	}
	return body, nil
}
