// Package notebookagent implements the OneNote search agent: an A2A
// executor that drives a two-step conversation, first picking a notebook
// and then running search, question, summary or extraction operations
// against it.
package notebookagent

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
)

const (
	msgSearchIntro  = "OneNote検索を開始します。\n\n"
	msgUnknownState = "エラー: 不明な状態です。最初からやり直してください。\n\n"
	msgCanceled     = "OneNote検索操作をキャンセルしました。"
)

// Keyword tables routing user input to operations. Matching is
// case-insensitive substring containment.
var (
	listKeywords     = []string{"ノートブック", "notebook", "一覧", "list"}
	questionKeywords = []string{"質問", "回答", "教えて", "?", "？"}
	summaryKeywords  = []string{"要約", "まとめ", "summary"}
	extractKeywords  = []string{"抽出", "extract", "コンテンツ"}
)

// Executor runs the notebook conversation over A2A.
//
// Like the schedule agent it writes exactly one agent message followed by
// one final completed status per execution; the conversation state lives
// in the executor, keyed by task id.
type Executor struct {
	notebooks []Notebook
	sessions  *sessionStore
}

// NewExecutor wires the executor. Nil notebooks get the built-in corpus.
func NewExecutor(notebooks []Notebook) *Executor {
	if notebooks == nil {
		notebooks = DefaultNotebooks()
	}
	return &Executor{
		notebooks: notebooks,
		sessions:  newSessionStore(),
	}
}

// Execute implements a2asrv.AgentExecutor.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	slog.Info("Executing notebook agent", "taskID", reqCtx.TaskID, "contextID", reqCtx.ContextID)

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

	reply := e.reply(reqCtx)

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

// Cancel implements a2asrv.AgentExecutor. It drops the task's
// conversation state so a restarted conversation begins at notebook
// selection again.
func (e *Executor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	slog.Info("Task cancellation requested", "taskID", reqCtx.TaskID)
	e.sessions.delete(reqCtx.TaskID)

	msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: msgCanceled})
	if err := queue.Write(ctx, msg); err != nil {
		return fmt.Errorf("failed to write cancellation message: %w", err)
	}

	event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCanceled, nil)
	event.Final = true
	return queue.Write(ctx, event)
}

// reply advances the conversation one step and returns the response text.
func (e *Executor) reply(reqCtx *a2asrv.RequestContext) string {
	input := inputText(reqCtx.Message)
	taskID := reqCtx.TaskID

	sess, _ := e.sessions.get(taskID)
	switch sess.state {
	case StateNotebookSelected:
		return e.operate(taskID, sess.notebookID, input)
	case StateInitial, "":
		return e.begin(taskID, input)
	default:
		e.sessions.put(taskID, session{state: StateInitial})
		return msgUnknownState + renderNotebookList(e.notebooks)
	}
}

// begin handles the selection phase: a notebook number or name selects,
// otherwise the picker is (re)shown, prefixed with the intro unless the
// user explicitly asked for the list.
func (e *Executor) begin(taskID a2a.TaskID, input string) string {
	if nb, ok := e.matchNotebook(input); ok {
		e.sessions.put(taskID, session{state: StateNotebookSelected, notebookID: nb.ID})
		return renderSelection(nb)
	}

	e.sessions.put(taskID, session{state: StateInitial})
	if containsAny(input, listKeywords) {
		return renderNotebookList(e.notebooks)
	}
	return msgSearchIntro + renderNotebookList(e.notebooks)
}

// operate routes input to an operation against the selected notebook.
// Anything that is not a question, summary or extraction request is
// treated as a search query.
func (e *Executor) operate(taskID a2a.TaskID, notebookID, input string) string {
	if notebookID == "" {
		notebookID = "unknown"
	}

	var result string
	switch {
	case containsAny(input, questionKeywords):
		result = renderAnswer(notebookID, input)
	case containsAny(input, summaryKeywords):
		result = renderSummary(notebookID, input)
	case containsAny(input, extractKeywords):
		result = renderExtract(input)
	default:
		result = renderSearch(notebookID, input)
	}

	e.sessions.put(taskID, session{state: StateNotebookSelected, notebookID: notebookID})
	return result
}

// matchNotebook resolves a 1-based notebook number or a notebook name
// mentioned anywhere in the input.
func (e *Executor) matchNotebook(input string) (Notebook, bool) {
	trimmed := strings.TrimSpace(input)
	if isDigits(trimmed) {
		index, err := strconv.Atoi(trimmed)
		if err == nil && index >= 1 && index <= len(e.notebooks) {
			return e.notebooks[index-1], true
		}
		return Notebook{}, false
	}

	for _, nb := range e.notebooks {
		if strings.Contains(input, nb.Name) {
			return nb, true
		}
	}
	return Notebook{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsAny(input string, keywords []string) bool {
	lower := strings.ToLower(input)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// inputText joins the text parts of the user message with single spaces.
func inputText(msg *a2a.Message) string {
	if msg == nil {
		return ""
	}
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

// Ensure Executor implements a2asrv.AgentExecutor
var _ a2asrv.AgentExecutor = (*Executor)(nil)
