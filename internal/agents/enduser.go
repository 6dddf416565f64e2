package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/elicit-dev/elicit/internal/generate"
)

const endUserProfile = `You are a simulated end user participating in a requirements interview.
Your role is to respond naturally and helpfully to interviewer questions about your needs and expectations for a software system.

Background: You represent a typical user who will interact with the system being discussed.
Personality: Engaged, thoughtful, and willing to share details about your workflow and pain points.

Guidelines:
- Answer questions based on the context of your user type
- Provide specific examples and scenarios when possible
- Express both functional needs and quality concerns
- Be honest about uncertainties or areas where you're flexible
- Ask clarifying questions if the interviewer's question is unclear`

const endUserAnswerPrompt = `As a %s, respond to the following interview question about system requirements.

Previous conversation:
%s

Current question: %s

Provide a natural, detailed response that helps the interviewer understand your needs and workflows.
Be specific about your goals, challenges, and expectations.`

// EndUser simulates one discovered user type answering interview
// questions, with the running conversation kept in memory.
type EndUser struct {
	agent
	userType string
}

// NewEndUser creates a simulated end user of the given type.
func NewEndUser(gen generate.Generator, userType string) *EndUser {
	if userType == "" {
		userType = "User"
	}
	return &EndUser{agent: newAgent(endUserProfile, gen), userType: userType}
}

// UserType returns the role this end user plays.
func (u *EndUser) UserType() string {
	return u.userType
}

// Answer responds to an interviewer question, taking earlier exchanges
// from memory into account.
func (u *EndUser) Answer(ctx context.Context, question string) (string, error) {
	questions := u.memory.Recall("interview_question")
	answers := u.memory.Recall("user_response")

	var prior strings.Builder
	for i := 0; i < len(questions) && i < len(answers); i++ {
		fmt.Fprintf(&prior, "Q%d: %s\nA%d: %s\n\n", i+1, questions[i], i+1, answers[i])
	}

	u.memory.Remember("interview_question", question)

	answer, err := u.produce(ctx, fmt.Sprintf(endUserAnswerPrompt, u.userType, prior.String(), question))
	if err != nil {
		return "", err
	}

	u.memory.Remember("user_response", answer)
	return answer, nil
}
