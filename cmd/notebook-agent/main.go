// Command notebook-agent serves the OneNote search agent over A2A.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/alecthomas/kong"

	"github.com/ayutaki/agenthub/pkg/a2aserver"
	"github.com/ayutaki/agenthub/pkg/config"
	"github.com/ayutaki/agenthub/pkg/logger"
	"github.com/ayutaki/agenthub/pkg/notebookagent"
	"github.com/ayutaki/agenthub/pkg/observability"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Serve   ServeCmd   `cmd:"" default:"1" help:"Start the agent server."`

	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (plain, text, or json)." default:"plain"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("notebook-agent version %s\n", version)
	return nil
}

// ServeCmd starts the agent server.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.NotebookAgentFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	if _, err := observability.InitGlobalTracer(ctx, observability.TracerConfig{
		Enabled:      cfg.Tracing.Enabled,
		EndpointURL:  cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SampleRate,
		ServiceName:  cfg.Tracing.ServiceName,
	}); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	executor := notebookagent.NewExecutor(nil)

	return a2aserver.NewServer(cfg, executor, notebookSkills()).Start(ctx)
}

func notebookSkills() []a2a.AgentSkill {
	return []a2a.AgentSkill{
		{
			ID:          "list_notebooks",
			Name:        "ノートブック一覧取得",
			Description: "利用可能なOneNoteノートブックの一覧を取得します",
			Tags:        []string{"ノートブック", "一覧", "onenote"},
			Examples: []string{
				"ノートブック一覧を表示して",
				"利用可能なノートブックを教えて",
				"どのノートブックがありますか？",
			},
		},
		{
			ID:          "search_onenote",
			Name:        "OneNote検索",
			Description: "指定されたOneNoteノートブック内から関連情報を検索します（ノートブック選択後に使用）",
			Tags:        []string{"検索", "情報検索", "onenote"},
			Examples: []string{
				"先週のミーティングノートを探して",
				"プロジェクト仕様書を検索",
				"Q4の計画書を探して",
			},
		},
		{
			ID:          "answer_question",
			Name:        "質問回答",
			Description: "選択されたノートブックの内容から質問に回答します",
			Tags:        []string{"質問", "回答", "Q&A", "onenote"},
			Examples: []string{
				"プロジェクトの納期について教えて",
				"前回のミーティングでの決定事項は？",
				"このタスクの担当者は誰ですか？",
			},
		},
		{
			ID:          "summarize_content",
			Name:        "コンテンツ要約",
			Description: "選択されたノートブックの内容を要約します",
			Tags:        []string{"要約", "まとめ", "onenote"},
			Examples: []string{
				"今月のミーティング内容を要約して",
				"プロジェクトの進捗をまとめて",
				"重要なポイントを抽出して",
			},
		},
		{
			ID:          "extract_content",
			Name:        "OneNoteコンテンツ抽出",
			Description: "特定のOneNoteページからコンテンツを抽出します",
			Tags:        []string{"抽出", "コンテンツ", "onenote"},
			Examples: []string{
				"「Q1計画」というタイトルのページからコンテンツを抽出して",
				"昨日のミーティングノートを取得",
				"プロジェクトキックオフノートを表示",
			},
		},
	}
}

func initLogger(cli *CLI) (func(), error) {
	level, err := logger.ParseLevel(cli.LogLevel)
	if err != nil {
		return nil, err
	}

	output := os.Stderr
	cleanup := func() {}
	if cli.LogFile != "" {
		file, closeFile, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			return nil, err
		}
		output = file
		cleanup = closeFile
	}

	logger.Init(level, output, cli.LogFormat)
	return cleanup, nil
}

func main() {
	_ = config.LoadDotEnv()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("notebook-agent"),
		kong.Description("OneNote search agent - A2A service"),
		kong.UsageOnError(),
	)

	cleanup, err := initLogger(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
