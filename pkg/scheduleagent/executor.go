// Package scheduleagent implements the Outlook schedule agent: an A2A
// executor that answers calendar questions by calling the internal
// calendar data service.
package scheduleagent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"

	"github.com/ayutaki/agenthub/pkg/calendar"
)

// User-facing replies. Every execution path ends in exactly one of these
// (or a rendered event list); the executor never surfaces a transport
// error to the caller.
const (
	msgMissingUserMessage = "エラー: ユーザーメッセージが見つかりません。"
	msgMissingToken       = "エラー: アクセストークンが提供されていません。認証が必要です。"
	msgNoEvents           = "今週の予定はありません。"
	msgHelpPrompt         = "Outlookのスケジュールに関する質問をお聞かせください。例: 「今週の予定を教えて」"
)

var hex32 = regexp.MustCompile(`^[0-9a-f]{32}$`)

// CalendarService is the slice of the calendar client the executor needs.
type CalendarService interface {
	FetchEvents(ctx context.Context, accessToken, traceID string) ([]calendar.Event, error)
}

// Executor answers schedule questions over A2A.
//
// Per task it writes exactly one agent message followed by one final
// completed status, on every path: validation failures, classifier
// misses, downstream errors and panics all collapse into a reply text.
type Executor struct {
	calendar   CalendarService
	creds      CredentialSource
	classifier IntentClassifier
	loc        *time.Location
}

// NewExecutor wires the executor. A nil classifier gets the keyword
// default; a nil location gets the agent's display zone.
func NewExecutor(calendarService CalendarService, creds CredentialSource, classifier IntentClassifier) *Executor {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Executor{
		calendar:   calendarService,
		creds:      creds,
		classifier: classifier,
		loc:        displayLocation(),
	}
}

// Execute implements a2asrv.AgentExecutor.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	slog.Info("Executing schedule agent", "taskID", reqCtx.TaskID, "contextID", reqCtx.ContextID)

	if reqCtx.StoredTask == nil {
		event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)
		if err := queue.Write(ctx, event); err != nil {
			return fmt.Errorf("failed to write submitted event: %w", err)
		}
	}

	working := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, nil)
	if err := queue.Write(ctx, working); err != nil {
		return fmt.Errorf("failed to write working event: %w", err)
	}

	reply := e.reply(ctx, reqCtx)

	msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: reply})
	if err := queue.Write(ctx, msg); err != nil {
		return fmt.Errorf("failed to write response message: %w", err)
	}

	completed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
	completed.Final = true
	if err := queue.Write(ctx, completed); err != nil {
		return fmt.Errorf("failed to write completed event: %w", err)
	}

	return nil
}

// Cancel implements a2asrv.AgentExecutor. Cancellation is acknowledged but
// does not abort in-flight work; a fetch already running completes and its
// result is discarded by the server.
func (e *Executor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	slog.Info("Task cancellation requested", "taskID", reqCtx.TaskID)

	event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCanceled, nil)
	event.Final = true
	return queue.Write(ctx, event)
}

// reply turns the request into the user-facing response text. It never
// fails: errors and panics become error replies.
func (e *Executor) reply(ctx context.Context, reqCtx *a2asrv.RequestContext) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Executor panicked", "taskID", reqCtx.TaskID, "panic", r)
			text = fmt.Sprintf("エラーが発生しました: %v", r)
		}
	}()

	msg := reqCtx.Message
	if msg == nil || msg.Role != a2a.MessageRoleUser {
		return msgMissingUserMessage
	}

	query := textOf(msg)
	slog.Debug("User query", "query", query)

	token, ok := e.creds.Resolve(reqCtx)
	if !ok {
		return msgMissingToken
	}

	if !e.classifier.Matches(query) {
		return msgHelpPrompt
	}

	events, err := e.calendar.FetchEvents(ctx, token, traceIDForTask(reqCtx.TaskID))
	if err != nil {
		slog.Error("Calendar fetch failed", "taskID", reqCtx.TaskID, "error", err)
		return fmt.Sprintf("エラーが発生しました: %s", errorText(err))
	}

	return RenderEvents(events, e.loc)
}

// textOf joins the text parts of a message with single spaces. Non-text
// parts are ignored.
func textOf(msg *a2a.Message) string {
	var texts []string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case a2a.TextPart:
			texts = append(texts, p.Text)
		case *a2a.TextPart:
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}

// traceIDForTask derives a W3C trace id from the task id. Task ids are
// UUIDs; stripped of dashes they are exactly the 32 hex chars a trace id
// needs. Anything else yields no trace id rather than a malformed header.
func traceIDForTask(taskID a2a.TaskID) string {
	id := strings.ToLower(strings.ReplaceAll(string(taskID), "-", ""))
	if !hex32.MatchString(id) {
		return ""
	}
	return id
}

func errorText(err error) string {
	if err == nil {
		return "不明なエラー"
	}
	return err.Error()
}

// Ensure Executor implements a2asrv.AgentExecutor
var _ a2asrv.AgentExecutor = (*Executor)(nil)
