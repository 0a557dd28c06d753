package calendar

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error is a non-2xx response from the calendar data service. Message is
// the server's message field when the body carries one, otherwise the
// HTTP status text.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Outlook MCP error: %d - %s", e.Status, e.Message)
}

func newErrorFromResponse(resp *http.Response) *Error {
	message := http.StatusText(resp.StatusCode)

	if body, err := io.ReadAll(resp.Body); err == nil && len(body) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
			message = payload.Message
		}
	}

	return &Error{
		Status:  resp.StatusCode,
		Message: message,
	}
}
