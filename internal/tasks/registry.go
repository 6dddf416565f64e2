package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elicit-dev/elicit/internal/events"
	"github.com/elicit-dev/elicit/internal/pipeline"
)

var (
	ErrNotFound = errors.New("task not found")
	ErrNotReady = errors.New("task results not ready")
)

// RunFunc executes the pipeline for a task and returns its results.
type RunFunc func(ctx context.Context, taskID, brief string, onProgress pipeline.ProgressFunc) (pipeline.Results, error)

// Archiver persists finished tasks. Failures are logged, never fatal.
type Archiver interface {
	Save(ctx context.Context, task Task) error
}

// Registry is the process-wide store of tasks. All lookups and updates
// go through its mutex so status, progress and message always change
// together.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task

	run       RunFunc
	bus       *events.Bus
	archiver  Archiver
	retention time.Duration

	wg   sync.WaitGroup
	done chan struct{}
}

// Option configures a Registry.
type Option func(*Registry)

// WithBus publishes task lifecycle events to the given bus.
func WithBus(bus *events.Bus) Option {
	return func(r *Registry) { r.bus = bus }
}

// WithArchiver persists completed tasks through the archiver.
func WithArchiver(a Archiver) Option {
	return func(r *Registry) { r.archiver = a }
}

// WithRetention sets how long finished tasks are kept before eviction.
func WithRetention(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.retention = d
		}
	}
}

// NewRegistry creates a task registry running pipelines via run.
func NewRegistry(run RunFunc, opts ...Option) *Registry {
	r := &Registry{
		tasks:     make(map[string]*Task),
		run:       run,
		retention: 24 * time.Hour,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.evictLoop()
	return r
}

// Submit registers a new task and starts its pipeline in the
// background. The returned id can be polled immediately.
func (r *Registry) Submit(ctx context.Context, brief string) (string, error) {
	if brief == "" {
		return "", fmt.Errorf("empty requirements brief")
	}

	id := uuid.NewString()
	now := time.Now()

	r.mu.Lock()
	r.tasks[id] = &Task{
		ID:        id,
		Status:    StatusStarted,
		Brief:     brief,
		Progress:  0,
		Message:   "Multi-agent requirement generation process has been initiated",
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.mu.Unlock()

	r.publish(events.EventTaskSubmitted, id, map[string]any{"brief_chars": len(brief)})

	// The pipeline outlives the submitting call. Detach from the
	// caller's context so an HTTP request ending does not abort the
	// task; values (trace ids etc.) are kept.
	runCtx := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(runCtx, id, brief)
	}()

	return id, nil
}

func (r *Registry) execute(ctx context.Context, id, brief string) {
	r.update(id, StatusRunning, 5, "", "Running multi-agent requirement analysis")

	results, err := r.run(ctx, id, brief, func(stage string, percent int, message string) {
		r.update(id, StatusRunning, percent, stage, message)
		r.publish(events.EventTaskStage, id, map[string]any{
			"stage":   stage,
			"percent": percent,
			"message": message,
		})
	})

	if err != nil {
		slog.Error("task failed", "task", id, "error", err)
		r.fail(id, fmt.Sprintf("Workflow failed: %v", err))
		r.publish(events.EventTaskFailed, id, map[string]any{"error": err.Error()})
		return
	}

	r.complete(id, results)
	r.publish(events.EventTaskCompleted, id, nil)

	if r.archiver != nil {
		if err := r.archiver.Save(context.Background(), r.snapshot(id)); err != nil {
			slog.Warn("archive task", "task", id, "error", err)
		}
	}
}

// update applies a status/progress/message change atomically. Progress
// never moves backwards and finished tasks are left untouched.
func (r *Registry) update(id string, status Status, progress int, stage, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}

	if status.rank() > t.Status.rank() {
		t.Status = status
	}
	if progress > t.Progress {
		t.Progress = progress
	}
	if stage != "" {
		t.CurrentStage = stage
	}
	if message != "" {
		t.Message = message
	}
	t.UpdatedAt = time.Now()
}

func (r *Registry) complete(id string, results pipeline.Results) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}

	now := time.Now()
	t.Status = StatusCompleted
	t.Progress = 100
	t.Message = "Requirement generation completed successfully"
	t.Results = &results
	t.UpdatedAt = now
	t.FinishedAt = now
}

func (r *Registry) fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}

	now := time.Now()
	t.Status = StatusFailed
	t.Message = message
	t.UpdatedAt = now
	t.FinishedAt = now
}

// Status returns a snapshot of the task record.
func (r *Registry) Status(id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return *t, nil
}

// Results returns the results of a completed task. Fetching them is
// idempotent; the record is not consumed.
func (r *Registry) Results(id string) (pipeline.Results, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return pipeline.Results{}, ErrNotFound
	}
	if t.Status != StatusCompleted || t.Results == nil {
		return pipeline.Results{}, fmt.Errorf("%w: status is %s", ErrNotReady, t.Status)
	}
	return *t.Results, nil
}

func (r *Registry) snapshot(id string) Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tasks[id]; ok {
		return *t
	}
	return Task{}
}

// Wait blocks until all in-flight tasks have finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

// Close stops the eviction loop.
func (r *Registry) Close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

func (r *Registry) evictLoop() {
	interval := r.retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evict(time.Now())
		case <-r.done:
			return
		}
	}
}

// evict removes finished tasks older than the retention window.
func (r *Registry) evict(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tasks {
		if t.Status.Terminal() && !t.FinishedAt.IsZero() && now.Sub(t.FinishedAt) > r.retention {
			delete(r.tasks, id)
			slog.Debug("evicted finished task", "task", id)
		}
	}
}

func (r *Registry) publish(eventType events.EventType, taskID string, payload map[string]any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.NewEventWithTask(eventType, events.SourceRegistry, payload, taskID))
}
