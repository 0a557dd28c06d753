package calendarsvc

import (
	"context"
	"time"

	"github.com/ayutaki/agenthub/pkg/calendar"
	"github.com/ayutaki/agenthub/pkg/observability"
)

// StaticSource serves a fixed weekly schedule relative to the current day.
// It needs no credentials and exists so the system runs end to end without
// a Microsoft tenant.
type StaticSource struct {
	now func() time.Time
	loc *time.Location
}

type StaticOption func(*StaticSource)

// WithStaticClock overrides the time source.
func WithStaticClock(now func() time.Time) StaticOption {
	return func(s *StaticSource) {
		s.now = now
	}
}

// WithStaticLocation overrides the display zone.
func WithStaticLocation(loc *time.Location) StaticOption {
	return func(s *StaticSource) {
		s.loc = loc
	}
}

func NewStaticSource(opts ...StaticOption) *StaticSource {
	s := &StaticSource{
		now: time.Now,
		loc: displayLocation(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the demo events overlapping [start, end). The access
// token and trace context are accepted for interface compatibility and
// ignored.
func (s *StaticSource) Events(ctx context.Context, accessToken string, start, end time.Time, trace *observability.TraceContext) ([]calendar.Event, error) {
	events := make([]calendar.Event, 0, 3)
	for _, ev := range s.schedule() {
		if ev.end.After(start) && ev.start.Before(end) {
			events = append(events, ev.toEvent(s.loc))
		}
	}
	return events, nil
}

// Availability marks hourly business-hour slots free unless a demo event
// overlaps them.
func (s *StaticSource) Availability(ctx context.Context, accessToken, userEmail string, start, end time.Time, trace *observability.TraceContext) (*calendar.Availability, error) {
	schedule := s.schedule()

	var slots []calendar.TimeSlot
	day := start.In(s.loc).Truncate(time.Hour)
	for slot := day; slot.Before(end); slot = slot.Add(time.Hour) {
		if slot.Before(start) {
			continue
		}
		hour := slot.In(s.loc).Hour()
		if hour < 9 || hour >= 18 {
			continue
		}

		slotEnd := slot.Add(time.Hour)
		available := true
		for _, ev := range schedule {
			if ev.end.After(slot) && ev.start.Before(slotEnd) {
				available = false
				break
			}
		}
		slots = append(slots, calendar.TimeSlot{
			Start:     slot.UTC().Format(time.RFC3339),
			End:       slotEnd.UTC().Format(time.RFC3339),
			Available: available,
		})
	}

	return &calendar.Availability{UserEmail: userEmail, Slots: slots}, nil
}

type demoEvent struct {
	id       string
	subject  string
	start    time.Time
	end      time.Time
	location string
}

func (d demoEvent) toEvent(loc *time.Location) calendar.Event {
	ev := calendar.Event{
		ID:      d.id,
		Subject: d.subject,
		Start: calendar.EventTime{
			DateTime: d.start.In(loc).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
		End: calendar.EventTime{
			DateTime: d.end.In(loc).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
	}
	if d.location != "" {
		ev.Location = &calendar.Location{DisplayName: d.location}
	}
	return ev
}

// schedule lays the demo events out over the three days after today.
func (s *StaticSource) schedule() []demoEvent {
	now := s.now().In(s.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	at := func(days int, hour, minute int) time.Time {
		return day.AddDate(0, 0, days).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	return []demoEvent{
		{
			id:       "demo-001",
			subject:  "週次定例ミーティング",
			start:    at(1, 10, 0),
			end:      at(1, 11, 0),
			location: "会議室A",
		},
		{
			id:       "demo-002",
			subject:  "プロジェクトレビュー",
			start:    at(2, 14, 0),
			end:      at(2, 15, 30),
			location: "オンライン",
		},
		{
			id:      "demo-003",
			subject: "1on1",
			start:   at(3, 9, 30),
			end:     at(3, 10, 0),
		},
	}
}

func displayLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	return time.Local
}
