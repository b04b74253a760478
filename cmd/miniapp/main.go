package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cityreports/miniapp/adapter/cli"
	"github.com/cityreports/miniapp/adapter/cli/profile"
	"github.com/cityreports/miniapp/adapter/cli/settings"
	"github.com/cityreports/miniapp/adapter/cli/store"
	"github.com/cityreports/miniapp/internal/app"
	"github.com/cityreports/miniapp/pkg/config"
	"github.com/cityreports/miniapp/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	logCfg.ServiceVersion = cli.Version
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	// The container is built after flag parsing so --store and -v apply.
	cli.SetBootstrap(func(ctx context.Context, storeOverride string) (*cli.App, error) {
		if cli.Verbose() {
			logCfg.Level = observability.LogLevelDebug
			logger = observability.NewLogger(logCfg)
			cli.SetLogger(logger)
		}
		if storeOverride != "" {
			cfg.StoreCandidates = []string{storeOverride}
		}
		container, err := app.NewContainer(ctx, cfg, logger, cli.Version)
		if err != nil {
			return nil, err
		}
		return &cli.App{Container: container}, nil
	})

	// Register commands
	cli.AddCommand(settings.Cmd)
	cli.AddCommand(profile.Cmd)
	cli.AddCommand(store.Cmd)

	code := cli.Execute(ctx)
	cancel()
	os.Exit(code)
}
