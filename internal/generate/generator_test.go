package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	calls     int
	failUntil int
	reply     string
	lastInput []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.lastInput = input
	if f.calls <= f.failUntil {
		return nil, errors.New("transient failure")
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func TestGenerate_Success(t *testing.T) {
	fake := &fakeChatModel{reply: "hello"}
	gen := NewModelGenerator(fake, WithBackoff(time.Millisecond))

	out, err := gen.Generate(context.Background(), "you are a tester", "say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "hello" {
		t.Fatalf("expected %q, got %q", "hello", out)
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 call, got %d", fake.calls)
	}
}

func TestGenerate_MessageShape(t *testing.T) {
	fake := &fakeChatModel{reply: "ok"}
	gen := NewModelGenerator(fake)

	if _, err := gen.Generate(context.Background(), "profile text", "prompt text"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(fake.lastInput) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(fake.lastInput))
	}
	if fake.lastInput[0].Role != schema.System || fake.lastInput[0].Content != "profile text" {
		t.Errorf("unexpected system message: %+v", fake.lastInput[0])
	}
	if fake.lastInput[1].Role != schema.User || fake.lastInput[1].Content != "prompt text" {
		t.Errorf("unexpected user message: %+v", fake.lastInput[1])
	}
}

func TestGenerate_RetriesThenSucceeds(t *testing.T) {
	fake := &fakeChatModel{failUntil: 2, reply: "recovered"}
	gen := NewModelGenerator(fake, WithBackoff(time.Millisecond))

	out, err := gen.Generate(context.Background(), "p", "q")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "recovered" {
		t.Fatalf("expected %q, got %q", "recovered", out)
	}
	if fake.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", fake.calls)
	}
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	fake := &fakeChatModel{failUntil: 100}
	gen := NewModelGenerator(fake, WithMaxAttempts(3), WithBackoff(time.Millisecond))

	_, err := gen.Generate(context.Background(), "p", "q")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if genErr.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", genErr.Attempts)
	}
	if fake.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", fake.calls)
	}
}

func TestGenerate_ContextCancelledDuringBackoff(t *testing.T) {
	fake := &fakeChatModel{failUntil: 100}
	gen := NewModelGenerator(fake, WithBackoff(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := gen.Generate(ctx, "p", "q")
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Generate did not return after cancellation")
	}
}
