package scheduleagent

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayutaki/agenthub/pkg/calendar"
)

// RenderEvents formats the week's events for the user. Times are shown in
// the given location in the ja-JP style (no zero-padded month, day or
// hour); an unparseable start time falls back to the raw value.
func RenderEvents(events []calendar.Event, loc *time.Location) string {
	if len(events) == 0 {
		return "今週の予定はありません。"
	}

	var b strings.Builder
	b.WriteString("今週の予定:\n\n")

	for i, event := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, event.Subject)
		fmt.Fprintf(&b, "   日時: %s\n", formatJaTime(event.Start.DateTime, loc))

		location := "未設定"
		if event.Location != nil && event.Location.DisplayName != "" {
			location = event.Location.DisplayName
		}
		fmt.Fprintf(&b, "   場所: %s\n\n", location)
	}

	return b.String()
}

func formatJaTime(value string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}

	t = t.In(loc)
	return fmt.Sprintf("%d/%d/%d %d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// displayLocation returns the zone event times are rendered in. The agent
// serves Japanese users, so Asia/Tokyo when the tzdata is available.
func displayLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	return time.Local
}
