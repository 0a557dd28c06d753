// Command agenthub is the gateway: chat relay, agent status API and
// agent registry behind one HTTP server.
//
// Usage:
//
//	agenthub serve
//	agenthub version
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

	"github.com/ayutaki/agenthub/pkg/agentregistry"
	"github.com/ayutaki/agenthub/pkg/agentstatus"
	"github.com/ayutaki/agenthub/pkg/chatrelay"
	"github.com/ayutaki/agenthub/pkg/config"
	"github.com/ayutaki/agenthub/pkg/gateway"
	"github.com/ayutaki/agenthub/pkg/logger"
	"github.com/ayutaki/agenthub/pkg/observability"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Serve   ServeCmd   `cmd:"" default:"1" help:"Start the gateway server."`

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
	fmt.Printf("agenthub version %s\n", version)
	return nil
}

// ServeCmd starts the gateway server.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.GatewayFromEnv()
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

	if _, err := observability.InitGlobalTracer(ctx, tracerConfig(cfg.Tracing)); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry, closeRegistry, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer closeRegistry()

	aggregator := agentstatus.NewAggregator(agentstatus.NewProber(nil))
	relay := chatrelay.NewRelay(cfg.AzureOpenAI, nil)

	return gateway.NewServer(cfg, registry, aggregator, relay).Start(ctx)
}

func openRegistry(cfg *config.GatewayConfig) (agentregistry.Registry, func(), error) {
	switch cfg.RegistryDriver {
	case "sqlite":
		store, err := agentregistry.OpenSQLStore(cfg.RegistryPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open agent registry: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return agentregistry.NewMemoryStoreWithDefaults(), func() {}, nil
	}
}

func tracerConfig(cfg config.TracingConfig) observability.TracerConfig {
	return observability.TracerConfig{
		Enabled:      cfg.Enabled,
		EndpointURL:  cfg.Endpoint,
		SamplingRate: cfg.SampleRate,
		ServiceName:  cfg.ServiceName,
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
		kong.Name("agenthub"),
		kong.Description("agenthub - multi-agent chat gateway"),
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
