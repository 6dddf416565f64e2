package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Stage is one step of the workflow. Percent is the overall progress
// once the stage is reported, Message the human-readable status line.
type Stage struct {
	Name    string
	Percent int
	Message string
	Run     func(ctx context.Context, state *State) error
}

// ProgressFunc receives stage transitions as the runner advances.
type ProgressFunc func(stage string, percent int, message string)

// Runner executes stages sequentially, reporting progress before each
// stage and aborting on the first failure.
type Runner struct {
	stages     []Stage
	onProgress ProgressFunc
}

// NewRunner creates a runner over the given stages.
func NewRunner(stages []Stage, onProgress ProgressFunc) *Runner {
	return &Runner{stages: stages, onProgress: onProgress}
}

// Run executes all stages in order against the state. A stage error
// aborts the run; remaining stages are not executed.
func (r *Runner) Run(ctx context.Context, state *State) error {
	for _, stage := range r.stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.onProgress != nil {
			r.onProgress(stage.Name, stage.Percent, stage.Message)
		}

		slog.Info("pipeline stage", "stage", stage.Name, "percent", stage.Percent)

		if stage.Run == nil {
			continue
		}
		if err := stage.Run(ctx, state); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
	}
	return nil
}
