package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/elicit-dev/elicit/internal/config"
	"github.com/elicit-dev/elicit/internal/events"
)

// routedGenerator answers based on recognizable prompt fragments so a
// whole pipeline run can be scripted without call-order bookkeeping.
type routedGenerator struct {
	calls int
	fail  string // prompt fragment that triggers a failure
}

func (g *routedGenerator) Generate(ctx context.Context, profile, prompt string) (string, error) {
	g.calls++

	if g.fail != "" && strings.Contains(prompt, g.fail) {
		return "", errors.New("scripted failure")
	}

	switch {
	case strings.Contains(prompt, "identify and describe the relevant end user roles"):
		return `["Author", "Reader"]`, nil
	case strings.Contains(prompt, "DIALOGUE HISTORY"):
		return fmt.Sprintf("Question %d?", g.calls), nil
	case strings.Contains(prompt, "respond to the following interview question"):
		return fmt.Sprintf("Answer %d.", g.calls), nil
	case strings.Contains(prompt, "generate a structured interview record"):
		return "the interview record", nil
	case strings.Contains(prompt, "formal interview record"):
		return "the user requirements", nil
	case strings.Contains(prompt, "operational environment specification"):
		return "the operation environment", nil
	case strings.Contains(prompt, "expert systems analyst"):
		return "the system requirements", nil
	case strings.Contains(prompt, "PlantUML-formatted use case diagram"):
		return "@startuml\nactor Author\n@enduml", nil
	case strings.Contains(prompt, "Requirements Archivist"):
		return "# chapter content", nil
	case strings.Contains(prompt, "Audit the Software Requirements Specification"):
		return `[{"id":"FR-1","issue_type":"Ambiguity","severity":"Minor","description":"vague"}]`, nil
	case strings.Contains(prompt, "create a **Review Report**"):
		return "# Review Report", nil
	default:
		return "", fmt.Errorf("unexpected prompt: %.80s", prompt)
	}
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		EndUserRounds: 2,
		MaxRetries:    3,
		RetryBackoff:  config.Duration(time.Millisecond),
		DefaultRoles:  []string{"User", "Administrator"},
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	gen := &routedGenerator{}
	p := New(gen, testPipelineConfig())

	type step struct {
		stage   string
		percent int
	}
	var steps []step
	state, err := p.Run(context.Background(), "a blog website", func(stage string, percent int, message string) {
		steps = append(steps, step{stage, percent})
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantStages := []step{
		{"initialize", 10},
		{"conduct_interviews", 30},
		{"deployer_interview", 50},
		{"analyze_requirements", 70},
		{"generate_srs", 80},
		{"review_srs", 90},
		{"finalize", 100},
	}
	if len(steps) != len(wantStages) {
		t.Fatalf("expected %d progress reports, got %d: %v", len(wantStages), len(steps), steps)
	}
	for i, want := range wantStages {
		if steps[i] != want {
			t.Errorf("step %d: expected %v, got %v", i, want, steps[i])
		}
	}

	if len(state.EndUserRoles) != 2 || state.EndUserRoles[0] != "Author" {
		t.Errorf("unexpected roles: %v", state.EndUserRoles)
	}

	// 2 roles x 2 rounds.
	if len(state.Conversations) != 4 {
		t.Fatalf("expected 4 conversation turns, got %d", len(state.Conversations))
	}
	for i, turn := range state.Conversations {
		wantType := "Author"
		if i >= 2 {
			wantType = "Reader"
		}
		wantRound := i%2 + 1
		if turn.UserType != wantType || turn.Round != wantRound {
			t.Errorf("turn %d: expected %s round %d, got %s round %d",
				i, wantType, wantRound, turn.UserType, turn.Round)
		}
		if turn.Question == "" || turn.Answer == "" {
			t.Errorf("turn %d has empty question or answer: %+v", i, turn)
		}
	}

	results := CollectResults(state)
	if results.InterviewRecord != "the interview record" {
		t.Errorf("unexpected interview record: %q", results.InterviewRecord)
	}
	if results.UserRequirements != "the user requirements" {
		t.Errorf("unexpected user requirements: %q", results.UserRequirements)
	}
	if results.OperationEnvironment != "the operation environment" {
		t.Errorf("unexpected operation environment: %q", results.OperationEnvironment)
	}
	if results.SystemRequirements != "the system requirements" {
		t.Errorf("unexpected system requirements: %q", results.SystemRequirements)
	}
	if !strings.Contains(results.RequirementModel, "@startuml") {
		t.Errorf("unexpected requirement model: %q", results.RequirementModel)
	}
	if !strings.Contains(results.SRSDocument, "# chapter content") {
		t.Errorf("unexpected srs document: %q", results.SRSDocument)
	}
	if results.ReviewReport != "# Review Report" {
		t.Errorf("unexpected review report: %q", results.ReviewReport)
	}
}

func TestPipelineRoleFallback(t *testing.T) {
	// A generator whose role-list response is prose falls back to the
	// configured default roles.
	gen := &fallbackRoleGenerator{inner: &routedGenerator{}}
	p := New(gen, testPipelineConfig())

	state, err := p.Run(context.Background(), "a blog website", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(state.EndUserRoles) != 2 || state.EndUserRoles[0] != "User" || state.EndUserRoles[1] != "Administrator" {
		t.Errorf("expected default roles, got %v", state.EndUserRoles)
	}
}

type fallbackRoleGenerator struct {
	inner *routedGenerator
}

func (g *fallbackRoleGenerator) Generate(ctx context.Context, profile, prompt string) (string, error) {
	if strings.Contains(prompt, "identify and describe the relevant end user roles") {
		return "I am not sure about the user types.", nil
	}
	return g.inner.Generate(ctx, profile, prompt)
}

func TestPipelineStageFailureAborts(t *testing.T) {
	gen := &routedGenerator{fail: "operational environment specification"}
	p := New(gen, testPipelineConfig())

	var lastStage string
	_, err := p.Run(context.Background(), "a blog website", func(stage string, percent int, message string) {
		lastStage = stage
	})
	if err == nil {
		t.Fatal("expected pipeline failure")
	}
	if !strings.Contains(err.Error(), "stage deployer_interview") {
		t.Errorf("error should name the failing stage: %v", err)
	}
	if lastStage != "deployer_interview" {
		t.Errorf("no stage after the failure should report progress, got %q", lastStage)
	}
}

func TestFormatResults(t *testing.T) {
	r := Results{
		InterviewRecord:  "record",
		UserRequirements: "reqs",
		SRSDocument:      "srs",
	}
	f := FormatResults(r)

	if len(f.Documents) != 3 {
		t.Fatalf("expected 3 documents for 3 non-empty artifacts, got %d", len(f.Documents))
	}
	if f.Documents[0].Title != "Interview Record" || f.Documents[0].Type != "interview-record" {
		t.Errorf("unexpected first document: %+v", f.Documents[0])
	}
	if !f.Documents[0].ReadyForSave {
		t.Error("documents should be marked ready for save")
	}
	if !strings.Contains(f.Summary, "3") {
		t.Errorf("summary should count documents: %q", f.Summary)
	}
}

func TestObserveGeneratorPublishes(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	ch, unsub := bus.SubscribeChan(4, events.EventGenerateCall)
	defer unsub()

	gen := ObserveGenerator(&routedGenerator{}, bus, "task-1")
	if _, err := gen.Generate(context.Background(), "profile", "PlantUML-formatted use case diagram"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	select {
	case e := <-ch:
		if e.TaskID != "task-1" {
			t.Errorf("expected task id on event, got %q", e.TaskID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for generate.call event")
	}
}
