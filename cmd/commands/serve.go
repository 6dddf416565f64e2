package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/elicit-dev/elicit/internal/archive"
	"github.com/elicit-dev/elicit/internal/config"
	"github.com/elicit-dev/elicit/internal/events"
	"github.com/elicit-dev/elicit/internal/gateway"
	"github.com/elicit-dev/elicit/internal/generate"
	"github.com/elicit-dev/elicit/internal/models"
	"github.com/elicit-dev/elicit/internal/pipeline"
	"github.com/elicit-dev/elicit/internal/tasks"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the elicit gateway server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = int(cmd.Int("port"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Event bus
	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	// Model registry
	modelRegistry := models.NewRegistry(cfg.Models)

	chatModel, err := modelRegistry.Default(ctx)
	if err != nil {
		return fmt.Errorf("init default model: %w", err)
	}

	gen := generate.NewModelGenerator(chatModel,
		generate.WithMaxAttempts(cfg.Pipeline.MaxRetries),
		generate.WithBackoff(cfg.Pipeline.RetryBackoff.Duration()),
	)

	run := func(ctx context.Context, taskID, brief string, onProgress pipeline.ProgressFunc) (pipeline.Results, error) {
		observed := pipeline.ObserveGenerator(gen, bus, taskID)
		state, err := pipeline.New(observed, cfg.Pipeline).Run(ctx, brief, onProgress)
		if err != nil {
			return pipeline.Results{}, err
		}
		return pipeline.CollectResults(state), nil
	}

	opts := []tasks.Option{
		tasks.WithBus(bus),
		tasks.WithRetention(cfg.Tasks.Retention.Duration()),
	}
	var serverOpts []gateway.ServerOption

	if cfg.Archive.Path != "" {
		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer store.Close()
		opts = append(opts, tasks.WithArchiver(store))
		serverOpts = append(serverOpts, gateway.WithHistory(store))
	}

	taskRegistry := tasks.NewRegistry(run, opts...)
	defer taskRegistry.Close()

	server := gateway.NewServer(taskRegistry, bus, cfg.Gateway.Host, cfg.Gateway.Port, serverOpts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
