package pipeline

import (
	"context"
	"fmt"

	"github.com/elicit-dev/elicit/internal/agents"
	"github.com/elicit-dev/elicit/internal/config"
	"github.com/elicit-dev/elicit/internal/generate"
)

// Pipeline wires the role agents into the staged workflow.
type Pipeline struct {
	gen generate.Generator
	cfg config.PipelineConfig
}

// New creates a pipeline over the given generator.
func New(gen generate.Generator, cfg config.PipelineConfig) *Pipeline {
	return &Pipeline{gen: gen, cfg: cfg}
}

// Run executes the full workflow for a development brief and returns
// the final state.
func (p *Pipeline) Run(ctx context.Context, brief string, onProgress ProgressFunc) (*State, error) {
	state := NewState(brief)
	runner := NewRunner(p.Stages(), onProgress)
	if err := runner.Run(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Stages builds the stage list for one run. The interviewer persists
// across stages so its memory accumulates over the whole workflow.
func (p *Pipeline) Stages() []Stage {
	var interviewer *agents.Interviewer

	return []Stage{
		{
			Name:    "initialize",
			Percent: 10,
			Message: "Initializing and identifying end users...",
			Run: func(ctx context.Context, state *State) error {
				interviewer = agents.NewInterviewer(p.gen, state.Brief)
				roles, err := interviewer.DecideEndUserRoles(ctx, p.cfg.DefaultRoles)
				if err != nil {
					return fmt.Errorf("decide end user roles: %w", err)
				}
				state.EndUserRoles = roles
				return nil
			},
		},
		{
			Name:    "conduct_interviews",
			Percent: 30,
			Message: "Conducting user interviews and gathering requirements...",
			Run: func(ctx context.Context, state *State) error {
				for _, role := range state.EndUserRoles {
					endUser := agents.NewEndUser(p.gen, role)
					var userTurns []agents.Turn

					for round := 1; round <= p.cfg.EndUserRounds; round++ {
						question, err := interviewer.NextQuestion(ctx, userTurns)
						if err != nil {
							return fmt.Errorf("interview %s round %d: %w", role, round, err)
						}
						answer, err := endUser.Answer(ctx, question)
						if err != nil {
							return fmt.Errorf("interview %s round %d: %w", role, round, err)
						}

						turn := agents.Turn{
							UserType: role,
							Round:    round,
							Question: question,
							Answer:   answer,
						}
						userTurns = append(userTurns, turn)
						state.Conversations = append(state.Conversations, turn)
					}
				}

				record, err := interviewer.WriteInterviewRecord(ctx, state.Conversations)
				if err != nil {
					return fmt.Errorf("write interview record: %w", err)
				}
				state.InterviewRecord = record

				reqs, err := interviewer.WriteUserRequirements(ctx, record)
				if err != nil {
					return fmt.Errorf("write user requirements: %w", err)
				}
				state.UserRequirements = reqs
				return nil
			},
		},
		{
			Name:    "deployer_interview",
			Percent: 50,
			Message: "Analyzing deployment environment and constraints...",
			Run: func(ctx context.Context, state *State) error {
				deployer := agents.NewDeployer(p.gen)
				env, err := deployer.OperationEnvironment(ctx, state.Brief)
				if err != nil {
					return fmt.Errorf("operation environment: %w", err)
				}
				state.OperationEnvironment = env
				return nil
			},
		},
		{
			Name:    "analyze_requirements",
			Percent: 70,
			Message: "Analyzing requirements and generating use case models...",
			Run: func(ctx context.Context, state *State) error {
				analyst := agents.NewAnalyst(p.gen)
				reqs, err := analyst.WriteSystemRequirements(ctx, state.UserRequirements, state.OperationEnvironment)
				if err != nil {
					return fmt.Errorf("system requirements: %w", err)
				}
				state.SystemRequirements = reqs

				model, err := analyst.ConstructUseCaseModel(ctx, reqs)
				if err != nil {
					return fmt.Errorf("use case model: %w", err)
				}
				state.RequirementModel = model
				return nil
			},
		},
		{
			Name:    "generate_srs",
			Percent: 80,
			Message: "Generating IEEE 29148 compliant SRS document...",
			Run: func(ctx context.Context, state *State) error {
				archivist := agents.NewArchivist(p.gen)
				doc, err := archivist.WriteSRS(ctx, state.SystemRequirements)
				if err != nil {
					return fmt.Errorf("write srs: %w", err)
				}
				state.SRSDocument = doc
				return nil
			},
		},
		{
			Name:    "review_srs",
			Percent: 90,
			Message: "Conducting quality review of SRS document...",
			Run: func(ctx context.Context, state *State) error {
				reviewer := agents.NewReviewer(p.gen)
				findings, err := reviewer.EvaluateSRS(ctx, state.SRSDocument)
				if err != nil {
					return fmt.Errorf("evaluate srs: %w", err)
				}
				report, err := reviewer.WriteReviewReport(ctx, findings)
				if err != nil {
					return fmt.Errorf("review report: %w", err)
				}
				state.ReviewReport = report
				return nil
			},
		},
		{
			Name:    "finalize",
			Percent: 100,
			Message: "Workflow completed successfully",
		},
	}
}
