package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elicit-dev/elicit/internal/pipeline"
)

func succeedingRun(results pipeline.Results) RunFunc {
	return func(ctx context.Context, taskID, brief string, onProgress pipeline.ProgressFunc) (pipeline.Results, error) {
		onProgress("initialize", 10, "Initializing and identifying end users...")
		onProgress("finalize", 100, "Workflow completed successfully")
		return results, nil
	}
}

func TestSubmitAndComplete(t *testing.T) {
	results := pipeline.Results{SRSDocument: "the srs"}
	r := NewRegistry(succeedingRun(results))
	defer r.Close()

	id, err := r.Submit(context.Background(), "a blog website")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id == "" {
		t.Fatal("expected a task id")
	}

	r.Wait()

	task, err := r.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if task.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", task.Status)
	}
	if task.Progress != 100 {
		t.Errorf("expected progress 100, got %d", task.Progress)
	}

	got, err := r.Results(id)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if got.SRSDocument != "the srs" {
		t.Errorf("unexpected results: %+v", got)
	}

	// Results are idempotent.
	again, err := r.Results(id)
	if err != nil || again.SRSDocument != "the srs" {
		t.Errorf("second fetch should return the same results, got %+v, %v", again, err)
	}
}

func TestSubmitEmptyBrief(t *testing.T) {
	r := NewRegistry(succeedingRun(pipeline.Results{}))
	defer r.Close()

	if _, err := r.Submit(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty brief")
	}
}

func TestSubmitOutlivesCallerContext(t *testing.T) {
	release := make(chan struct{})
	run := func(ctx context.Context, taskID, brief string, onProgress pipeline.ProgressFunc) (pipeline.Results, error) {
		<-release
		if err := ctx.Err(); err != nil {
			return pipeline.Results{}, err
		}
		return pipeline.Results{SRSDocument: "srs"}, nil
	}
	r := NewRegistry(run)
	defer r.Close()

	// Short-lived caller context, like an HTTP request that returns
	// as soon as the task id is handed back.
	ctx, cancel := context.WithCancel(context.Background())
	id, err := r.Submit(ctx, "a blog website")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	cancel()
	close(release)
	r.Wait()

	task, err := r.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if task.Status != StatusCompleted {
		t.Fatalf("task must run to completion after caller cancel, got %s (%s)", task.Status, task.Message)
	}
}

func TestTaskFailure(t *testing.T) {
	run := func(ctx context.Context, taskID, brief string, onProgress pipeline.ProgressFunc) (pipeline.Results, error) {
		onProgress("initialize", 10, "starting")
		return pipeline.Results{}, errors.New("model unavailable")
	}
	r := NewRegistry(run)
	defer r.Close()

	id, _ := r.Submit(context.Background(), "brief")
	r.Wait()

	task, err := r.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if task.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", task.Status)
	}
	if !strings.Contains(task.Message, "model unavailable") {
		t.Errorf("failure message should carry the cause: %q", task.Message)
	}

	if _, err := r.Results(id); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady for failed task, got %v", err)
	}
}

func TestUnknownTask(t *testing.T) {
	r := NewRegistry(succeedingRun(pipeline.Results{}))
	defer r.Close()

	if _, err := r.Status("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Results("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResultsNotReadyWhileRunning(t *testing.T) {
	release := make(chan struct{})
	run := func(ctx context.Context, taskID, brief string, onProgress pipeline.ProgressFunc) (pipeline.Results, error) {
		<-release
		return pipeline.Results{}, nil
	}
	r := NewRegistry(run)
	defer r.Close()

	id, _ := r.Submit(context.Background(), "brief")

	deadline := time.After(time.Second)
	for {
		task, err := r.Status(id)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if task.Status == StatusRunning {
			break
		}
		select {
		case <-deadline:
			t.Fatal("task never reached running")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := r.Results(id); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}

	close(release)
	r.Wait()
}

func TestProgressMonotonic(t *testing.T) {
	run := func(ctx context.Context, taskID, brief string, onProgress pipeline.ProgressFunc) (pipeline.Results, error) {
		onProgress("a", 50, "half")
		onProgress("b", 30, "stale update")
		return pipeline.Results{}, errors.New("stop here")
	}
	r := NewRegistry(run)
	defer r.Close()

	var mu sync.Mutex
	var seen []int
	id, _ := r.Submit(context.Background(), "brief")

	// Poll while running to observe intermediate values.
	go func() {
		for i := 0; i < 200; i++ {
			if task, err := r.Status(id); err == nil {
				mu.Lock()
				seen = append(seen, task.Progress)
				mu.Unlock()
			}
			time.Sleep(time.Millisecond)
		}
	}()

	r.Wait()

	task, _ := r.Status(id)
	if task.Progress != 50 {
		t.Errorf("progress should not move backwards, got %d", task.Progress)
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("observed progress regression: %v", seen)
		}
	}
}

func TestEviction(t *testing.T) {
	r := NewRegistry(succeedingRun(pipeline.Results{}), WithRetention(10*time.Millisecond))
	defer r.Close()

	id, _ := r.Submit(context.Background(), "brief")
	r.Wait()

	r.evict(time.Now().Add(time.Hour))

	if _, err := r.Status(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected task to be evicted, got %v", err)
	}
}

func TestEvictionKeepsRunningTasks(t *testing.T) {
	release := make(chan struct{})
	run := func(ctx context.Context, taskID, brief string, onProgress pipeline.ProgressFunc) (pipeline.Results, error) {
		<-release
		return pipeline.Results{}, nil
	}
	r := NewRegistry(run, WithRetention(time.Millisecond))
	defer r.Close()

	id, _ := r.Submit(context.Background(), "brief")
	r.evict(time.Now().Add(time.Hour))

	if _, err := r.Status(id); err != nil {
		t.Errorf("running task must survive eviction: %v", err)
	}

	close(release)
	r.Wait()
}
