package calendarsvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ayutaki/agenthub/pkg/observability"
)

// NewMCPServer exposes the calendar source as MCP tools. A W3C
// traceparent can ride along as a tool argument because MCP has no header
// channel of its own.
func NewMCPServer(source Source, version string) *server.MCPServer {
	s := server.NewMCPServer("Outlook MCP Server", version,
		server.WithToolCapabilities(false),
	)

	eventsTool := mcp.NewTool("get_calendar_events",
		mcp.WithDescription("Get the user's calendar events in a time window. Defaults to the next seven days."),
		mcp.WithString("access_token",
			mcp.Required(),
			mcp.Description("User access token"),
		),
		mcp.WithString("start_date_time",
			mcp.Description("Window start, RFC3339. Defaults to now."),
		),
		mcp.WithString("end_date_time",
			mcp.Description("Window end, RFC3339. Defaults to start plus seven days."),
		),
		mcp.WithString("traceparent",
			mcp.Description("W3C traceparent header value"),
		),
	)
	s.AddTool(eventsTool, eventsHandler(source))

	availabilityTool := mcp.NewTool("check_availability",
		mcp.WithDescription("Check a user's free/busy slots in a time window."),
		mcp.WithString("access_token",
			mcp.Required(),
			mcp.Description("User access token"),
		),
		mcp.WithString("user_email",
			mcp.Required(),
			mcp.Description("Email address of the user to check"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Window start, RFC3339"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("Window end, RFC3339"),
		),
		mcp.WithString("traceparent",
			mcp.Description("W3C traceparent header value"),
		),
	)
	s.AddTool(availabilityTool, availabilityHandler(source))

	return s
}

func eventsHandler(source Source) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token, err := request.RequireString("access_token")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		start := time.Now().UTC()
		if raw := request.GetString("start_date_time", ""); raw != "" {
			start, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				return mcp.NewToolResultError("invalid start_date_time: " + err.Error()), nil
			}
		}
		end := start.Add(7 * 24 * time.Hour)
		if raw := request.GetString("end_date_time", ""); raw != "" {
			end, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				return mcp.NewToolResultError("invalid end_date_time: " + err.Error()), nil
			}
		}

		events, err := source.Events(ctx, token, start, end, toolTrace(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		body, err := json.Marshal(events)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func availabilityHandler(source Source) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token, err := request.RequireString("access_token")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		userEmail, err := request.RequireString("user_email")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		start, err := time.Parse(time.RFC3339, request.GetString("start_time", ""))
		if err != nil {
			return mcp.NewToolResultError("invalid start_time: " + err.Error()), nil
		}
		end, err := time.Parse(time.RFC3339, request.GetString("end_time", ""))
		if err != nil {
			return mcp.NewToolResultError("invalid end_time: " + err.Error()), nil
		}

		availability, err := source.Availability(ctx, token, userEmail, start, end, toolTrace(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		body, err := json.Marshal(availability)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func toolTrace(request mcp.CallToolRequest) *observability.TraceContext {
	trace, _ := observability.ParseTraceparent(request.GetString("traceparent", ""))
	return trace
}
