package pipeline

import (
	"context"

	"github.com/elicit-dev/elicit/internal/events"
	"github.com/elicit-dev/elicit/internal/generate"
)

// observedGenerator publishes a generate.call event for every
// generation made on behalf of a task.
type observedGenerator struct {
	gen    generate.Generator
	bus    *events.Bus
	taskID string
}

// ObserveGenerator wraps a generator so that each call is traced on
// the event bus.
func ObserveGenerator(gen generate.Generator, bus *events.Bus, taskID string) generate.Generator {
	if bus == nil {
		return gen
	}
	return &observedGenerator{gen: gen, bus: bus, taskID: taskID}
}

func (o *observedGenerator) Generate(ctx context.Context, profile, prompt string) (string, error) {
	out, err := o.gen.Generate(ctx, profile, prompt)

	payload := map[string]any{
		"profile_chars": len(profile),
		"prompt_chars":  len(prompt),
		"output_chars":  len(out),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	o.bus.Publish(events.NewEventWithTask(events.EventGenerateCall, events.SourceAgent, payload, o.taskID))

	return out, err
}
