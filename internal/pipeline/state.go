// Package pipeline runs the linear multi-agent requirements workflow:
// end-user interviews, deployment analysis, requirements analysis, SRS
// drafting and review.
package pipeline

import "github.com/elicit-dev/elicit/internal/agents"

// State is the shared bag of artifacts flowing through the stages.
// Each stage reads what earlier stages produced and adds its own.
type State struct {
	Brief        string
	EndUserRoles []string

	Conversations []agents.Turn

	InterviewRecord      string
	UserRequirements     string
	OperationEnvironment string
	SystemRequirements   string
	RequirementModel     string
	SRSDocument          string
	ReviewReport         string
}

// NewState creates the initial state for a development brief.
func NewState(brief string) *State {
	return &State{Brief: brief}
}
