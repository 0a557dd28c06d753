// Package calendarsvc is the internal calendar data service: the REST
// endpoints the schedule agent calls and the same operations exposed as
// MCP tools over streamable HTTP.
package calendarsvc

import (
	"context"
	"time"

	"github.com/ayutaki/agenthub/pkg/calendar"
	"github.com/ayutaki/agenthub/pkg/observability"
)

// Source is a calendar backend. The service ships two: a Microsoft Graph
// passthrough and a static demo source.
type Source interface {
	// Events returns the caller's events overlapping [start, end).
	Events(ctx context.Context, accessToken string, start, end time.Time, trace *observability.TraceContext) ([]calendar.Event, error)

	// Availability reports a user's free/busy slots in [start, end).
	Availability(ctx context.Context, accessToken, userEmail string, start, end time.Time, trace *observability.TraceContext) (*calendar.Availability, error)
}
