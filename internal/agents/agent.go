package agents

import (
	"context"
	"fmt"

	"github.com/elicit-dev/elicit/internal/generate"
)

// agent is the shared core of every role: a persona profile, an
// append-only memory, and a generator used to produce text.
type agent struct {
	profile string
	memory  *Memory
	gen     generate.Generator
}

func newAgent(profile string, gen generate.Generator) agent {
	return agent{
		profile: profile,
		memory:  NewMemory(),
		gen:     gen,
	}
}

// produce runs one generation with the agent's persona as the system
// profile.
func (a *agent) produce(ctx context.Context, prompt string) (string, error) {
	out, err := a.gen.Generate(ctx, a.profile, prompt)
	if err != nil {
		return "", fmt.Errorf("produce: %w", err)
	}
	return out, nil
}

// Memory exposes the agent's artifact log, mainly for inspection.
func (a *agent) Memory() *Memory {
	return a.memory
}
