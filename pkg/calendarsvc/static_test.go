package calendarsvc

import (
	"context"
	"testing"
	"time"
)

var testZone = time.FixedZone("JST", 9*60*60)

func testClock() func() time.Time {
	// Monday 2026-03-02 09:00 JST.
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, testZone)
	return func() time.Time { return fixed }
}

func testStaticSource() *StaticSource {
	return NewStaticSource(WithStaticClock(testClock()), WithStaticLocation(testZone))
}

func TestStaticEventsWithinWindow(t *testing.T) {
	s := testStaticSource()

	start := testClock()()
	events, err := s.Events(context.Background(), "token", start, start.Add(7*24*time.Hour), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	first := events[0]
	if first.Subject != "週次定例ミーティング" {
		t.Errorf("unexpected subject: %s", first.Subject)
	}
	if first.Start.DateTime != "2026-03-03T10:00:00+09:00" {
		t.Errorf("unexpected start: %s", first.Start.DateTime)
	}
	if first.Location == nil || first.Location.DisplayName != "会議室A" {
		t.Errorf("unexpected location: %+v", first.Location)
	}
	if events[2].Location != nil {
		t.Errorf("third event must have no location: %+v", events[2].Location)
	}
}

func TestStaticEventsWindowFilters(t *testing.T) {
	s := testStaticSource()

	start := testClock()()
	events, err := s.Events(context.Background(), "token", start, start.Add(36*time.Hour), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the first event, got %d", len(events))
	}

	events, err = s.Events(context.Background(), "token", start.Add(-48*time.Hour), start, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events before the window, got %d", len(events))
	}
}

func TestStaticAvailability(t *testing.T) {
	s := testStaticSource()

	// Tuesday 2026-03-03, 9:00-12:00 JST: the weekly meeting blocks 10-11.
	start := time.Date(2026, 3, 3, 9, 0, 0, 0, testZone)
	availability, err := s.Availability(context.Background(), "token", "user@example.com", start, start.Add(3*time.Hour), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if availability.UserEmail != "user@example.com" {
		t.Errorf("unexpected userEmail: %s", availability.UserEmail)
	}
	if len(availability.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(availability.Slots))
	}

	wantAvailable := []bool{true, false, true}
	for i, slot := range availability.Slots {
		if slot.Available != wantAvailable[i] {
			t.Errorf("slot %d: available=%v, want %v", i, slot.Available, wantAvailable[i])
		}
	}
}

func TestStaticAvailabilitySkipsOffHours(t *testing.T) {
	s := testStaticSource()

	// Full day: only the nine business hours appear.
	start := time.Date(2026, 3, 4, 0, 0, 0, 0, testZone)
	availability, err := s.Availability(context.Background(), "token", "user@example.com", start, start.AddDate(0, 0, 1), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(availability.Slots) != 9 {
		t.Fatalf("expected 9 business-hour slots, got %d", len(availability.Slots))
	}
}
