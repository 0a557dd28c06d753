// Command calendar-mcp serves the internal calendar data service: REST
// endpoints for the schedule agent and MCP tools over streamable HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ayutaki/agenthub/pkg/calendarsvc"
	"github.com/ayutaki/agenthub/pkg/config"
	"github.com/ayutaki/agenthub/pkg/logger"
	"github.com/ayutaki/agenthub/pkg/observability"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Serve   ServeCmd   `cmd:"" default:"1" help:"Start the calendar service."`

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
	fmt.Printf("calendar-mcp version %s\n", version)
	return nil
}

// ServeCmd starts the calendar service.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.CalendarServiceFromEnv()
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

	var source calendarsvc.Source
	switch cfg.Source {
	case "graph":
		source = calendarsvc.NewGraphSource(cfg.Graph, nil)
	default:
		source = calendarsvc.NewStaticSource()
	}

	return calendarsvc.NewServer(cfg, source).Start(ctx)
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
		kong.Name("calendar-mcp"),
		kong.Description("Calendar data service - REST and MCP"),
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
