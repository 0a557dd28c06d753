// Command schedule-agent serves the Outlook schedule agent over A2A.
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
	"github.com/ayutaki/agenthub/pkg/calendar"
	"github.com/ayutaki/agenthub/pkg/config"
	"github.com/ayutaki/agenthub/pkg/logger"
	"github.com/ayutaki/agenthub/pkg/observability"
	"github.com/ayutaki/agenthub/pkg/scheduleagent"
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
	fmt.Printf("schedule-agent version %s\n", version)
	return nil
}

// ServeCmd starts the agent server.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.ScheduleAgentFromEnv()
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

	creds, err := scheduleagent.NewCredentialSource(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure credential source: %w", err)
	}

	calendarClient := calendar.NewClient(cfg.CalendarBaseURL, nil)
	executor := scheduleagent.NewExecutor(calendarClient, creds, nil)

	skills := []a2a.AgentSkill{{
		ID:          "outlook-calendar",
		Name:        "Outlook Calendar",
		Description: "Check Outlook calendar and coordinate availability",
		Tags:        []string{"outlook", "calendar", "schedule"},
	}}

	return a2aserver.NewServer(cfg, executor, skills).Start(ctx)
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
		kong.Name("schedule-agent"),
		kong.Description("Outlook schedule agent - A2A service"),
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
