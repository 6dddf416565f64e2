package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/elicit-dev/elicit/internal/config"
	"github.com/elicit-dev/elicit/internal/generate"
	"github.com/elicit-dev/elicit/internal/models"
	"github.com/elicit-dev/elicit/internal/pipeline"
)

// NewRunCommand returns the run subcommand.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the requirements pipeline once and write the documents to disk",
		ArgsUsage: "<initial requirements>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to write the generated documents to",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Model provider to use (default from config)",
			},
		},
		Action: runRun,
	}
}

func runRun(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	brief := cmd.Args().First()
	if brief == "" {
		return fmt.Errorf("usage: elicit run <initial requirements>")
	}

	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	modelRegistry := models.NewRegistry(cfg.Models)

	var chatModel generate.ChatModel
	if name := cmd.String("model"); name != "" {
		chatModel, err = modelRegistry.Get(ctx, name)
	} else {
		chatModel, err = modelRegistry.Default(ctx)
	}
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}

	gen := generate.NewModelGenerator(chatModel,
		generate.WithMaxAttempts(cfg.Pipeline.MaxRetries),
		generate.WithBackoff(cfg.Pipeline.RetryBackoff.Duration()),
	)

	onProgress := func(stage string, percent int, message string) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, message)
	}

	state, err := pipeline.New(gen, cfg.Pipeline).Run(ctx, brief, onProgress)
	if err != nil {
		return err
	}

	outDir := cmd.String("output")
	if err := writeDocuments(outDir, pipeline.CollectResults(state)); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "documents written to %s\n", outDir)
	return nil
}

func writeDocuments(dir string, results pipeline.Results) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	formatted := pipeline.FormatResults(results)
	for _, doc := range formatted.Documents {
		path := filepath.Join(dir, doc.Type+".md")
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	if len(formatted.Conversations) > 0 {
		data, err := json.MarshalIndent(formatted.Conversations, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal conversations: %w", err)
		}
		path := filepath.Join(dir, "conversations.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	return nil
}
