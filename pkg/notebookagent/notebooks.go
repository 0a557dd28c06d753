package notebookagent

import (
	"fmt"
	"strings"
)

// Notebook is one searchable OneNote notebook.
type Notebook struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultNotebooks is the built-in corpus the agent searches. A real
// deployment would enumerate notebooks through the OneNote connector;
// the proof of concept ships a fixed set.
func DefaultNotebooks() []Notebook {
	return []Notebook{
		{ID: "nb-001", Name: "個人用ノート"},
		{ID: "nb-002", Name: "プロジェクトA"},
		{ID: "nb-003", Name: "ミーティング議事録"},
		{ID: "nb-004", Name: "技術メモ"},
	}
}

// renderNotebookList formats the notebook picker shown whenever the
// conversation (re)starts.
func renderNotebookList(notebooks []Notebook) string {
	var b strings.Builder
	b.WriteString("📚 利用可能なノートブック一覧:\n\n")
	for i, nb := range notebooks {
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, nb.Name, nb.ID)
	}
	b.WriteString("\n検索したいノートブックの番号または名前を指定してください。")
	return b.String()
}

func renderSelection(nb Notebook) string {
	return fmt.Sprintf("✅ ノートブック「%s」を選択しました。\n\n検索キーワードを入力するか、以下の操作を指定してください:\n- 検索: キーワードを入力\n- 質問: 「〜について教えて」\n- 要約: 「要約して」", nb.Name)
}

func renderSearch(notebookID, query string) string {
	return fmt.Sprintf("📝 ノートブック「%s」内で「%s」を検索中...\n\n[Placeholder] 検索結果がここに表示されます。\n\nOneNote MCP Serverとの連携により実装予定。", notebookID, query)
}

func renderAnswer(notebookID, question string) string {
	return fmt.Sprintf("💡 質問「%s」への回答:\n\n[Placeholder] ノートブック「%s」の内容を元に回答を生成します。\n\nLLMとの連携により実装予定。", question, notebookID)
}

func renderSummary(notebookID, scope string) string {
	return fmt.Sprintf("📋 要約結果 (範囲: %s):\n\n[Placeholder] ノートブック「%s」の内容を要約します。\n\nLLMとの連携により実装予定。", scope, notebookID)
}

func renderExtract(pageIdentifier string) string {
	return fmt.Sprintf("[Placeholder] Extracting content from page: '%s'\n\nThis will be implemented using OneNote MCP Server.", pageIdentifier)
}
