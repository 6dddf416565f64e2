package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elicit-dev/elicit/internal/generate"
)

const interviewerProfile = `You are an experienced requirements interviewer.
Mission:
Elicit, clarify, and document stakeholder requirements with maximum completeness and accuracy.
Personality:
Neutral, empathetic, and inquisitive; fluent in both business and technical terminology.
Workflow:
1. Conduct multi-round dialogue with end users.
2. Produce interview records immediately after dialogues.
3. Write a consolidated user requirements list.
4. Conduct multi-round dialogue with system deployers.
5. Write an operation environment list.
Experience & Preferred Practices:
1. Follow ISO/IEC/IEEE 29418 and BABOK v3 guidance.
2. Use open-ended questions, active listening, and iterative paraphrasing.
3. Apply Socratic Questioning to resolve any ambiguous statements.
4. Limit each question turn to no more than two questions to maintain a natural conversational flow.
Internal Chain of Thought (visible to the agent only):
1. Identify stakeholder type and context.
2. Use 5W1H and targeted probes to surface goals, pain points, and constraints.
3. Map each utterance to (Role|Goal|Behaviour|Constraint) tuples.
4. Paraphrase key findings and request confirmation before proceeding.`

const decideEndUserListPrompt = `Your task is to analyze an initial system requirement description and identify the **types of end users** who will interact with the system.

Follow these steps:

1. Read and understand the system's core functions, goals, and usage scenarios.
2. Based on these, infer the distinct categories of **end users** who will interact with the system directly.
3. For each user type:
   - Give the **role name** (e.g., "Customer", "Administrator", "Content Reviewer")
   - Briefly describe their **responsibilities** or typical interactions with the system
   - If helpful, include **examples of actions** they would perform

If the description is vague, use reasonable assumptions based on common software systems.

Below is the initial system requirement description:
--------------------
%s
--------------------

Now, based on this description, identify and describe the relevant end user roles.
Only return a structured list of end user types name with ['',''] format.`

const nextQuestionPrompt = `You are a professional **requirements elicitor** conducting an interview with an end user to understand system requirements.
Your goal is to extract clear, useful, and detailed requirements (both functional and non-functional) by asking appropriate, open-ended, and context-aware questions.

You have two inputs:
1. The high-level **Initial Development Brief** provided by stakeholders (may be incomplete or imprecise).
2. The running **Dialogue History** with the end user.

================  INITIAL DEVELOPMENT BRIEF  ================
%s
=============================================================

--------------------  DIALOGUE HISTORY  ---------------------
%s
-------------------------------------------------------------

Guidelines for your next question
- Focus on uncovering the user's **goals**, **pain points**, **desired features**, **usage scenarios**, and **constraints**.
- Ask **open-ended** questions (avoid yes/no).
- Dig deeper into any aspect already mentioned before moving on.
- Cover both **functional** (what the system should do) and **non-functional** requirements (performance, security, usability, etc.).
- Maintain a **natural, professional tone** and be a collaborative partner, not a robot.
- Validate or clarify any assumptions implied by the Initial Development Brief.

Task
If the dialogue history is empty, greet the user politely and open with a broad question that anchors on the Initial Development Brief.
Otherwise, propose the **single most relevant follow-up question** that will elicit concrete software requirements next.

Return *only* that next question.`

const interviewRecordPrompt = `You are acting as a professional assistant for a requirements engineer. Your task is to **summarize the dialogue between the requirements interviewer and the end user into a clear and structured interview record**.

The record should help the development team understand the user's needs, goals, and expectations. Follow these principles:

1. **Use a professional tone**.
2. Extract key points related to:
   - Background of the user or system
   - User's goals
   - Functional requirements (what the system should do)
   - Non-functional requirements (performance, security, usability, etc.)
   - Pain points or current challenges
   - Usage scenarios or workflows
   - Any implicit or stated constraints
3. Group related information into logical sections using appropriate headers.
4. If the user is uncertain, note it with phrases like "The user is not sure yet, but considers..."
5. Avoid verbatim copying of the dialogue; instead, summarize meaningfully.

Below is the dialogue history between the interviewer and the end user:
--------------------
%s
--------------------

Now, generate a structured interview record that summarizes the above conversation. Use bullet points or short paragraphs under each section when appropriate.

Return only the interview record.`

const userRequirementsPrompt = `You are an assistant to a professional requirements engineer. Your task is to extract a **clear and structured list of user requirements** based on a formal interview record.

Follow these principles:

1. **Classify requirements** into the following categories:
   - Functional Requirements
   - Non-functional Requirements
   - Constraints
   - Usage Scenarios (if present)

2. **Ensure clarity**: Each requirement should be written as a complete and unambiguous sentence, describing what the user expects the system to do or how it should behave.

3. **Avoid redundancy**: Merge similar items and generalize when needed.

4. **Respect uncertainty**: If the user's intention is unclear or tentative, include phrases like "The user may need..." or "The user is considering..."

5. **Use bullet points**, and group requirements under proper section headings.

6. If possible, **assign a rough priority**: High / Medium / Low, based on how essential or urgent the requirement seems from the interview.

Below is the formal interview record:
--------------------
%s
--------------------

Now, based on the above record, write a structured **User Requirements List** with categories and priorities. Keep it concise but informative.`

// Interviewer drives the elicitation dialogues and consolidates their
// outcomes into the interview record and user requirements list.
type Interviewer struct {
	agent
	brief string
}

// NewInterviewer creates an interviewer for the given development brief.
func NewInterviewer(gen generate.Generator, brief string) *Interviewer {
	iv := &Interviewer{agent: newAgent(interviewerProfile, gen), brief: brief}
	iv.memory.Remember("initial_requirements", brief)
	return iv
}

// DecideEndUserRoles derives the end-user role list from the brief.
// A response that cannot be parsed as a role list falls back to the
// provided defaults.
func (iv *Interviewer) DecideEndUserRoles(ctx context.Context, defaults []string) ([]string, error) {
	resp, err := iv.produce(ctx, fmt.Sprintf(decideEndUserListPrompt, iv.brief))
	if err != nil {
		return nil, err
	}

	roles, perr := parseRoleList(resp)
	if perr != nil {
		return defaults, nil
	}

	iv.memory.Remember("end_user_list", resp)
	return roles, nil
}

// NextQuestion proposes the next interview question given the dialogue
// so far with one end user.
func (iv *Interviewer) NextQuestion(ctx context.Context, history []Turn) (string, error) {
	return iv.produce(ctx, fmt.Sprintf(nextQuestionPrompt, iv.brief, FormatTranscript(history, "End User")))
}

// WriteInterviewRecord summarizes all end-user dialogues into a
// structured interview record.
func (iv *Interviewer) WriteInterviewRecord(ctx context.Context, turns []Turn) (string, error) {
	record, err := iv.produce(ctx, fmt.Sprintf(interviewRecordPrompt, FormatTranscript(turns, "End User")))
	if err != nil {
		return "", err
	}
	iv.memory.Remember("interview_record", record)
	return record, nil
}

// WriteUserRequirements extracts a categorized user requirements list
// from the interview record.
func (iv *Interviewer) WriteUserRequirements(ctx context.Context, interviewRecord string) (string, error) {
	reqs, err := iv.produce(ctx, fmt.Sprintf(userRequirementsPrompt, interviewRecord))
	if err != nil {
		return "", err
	}
	iv.memory.Remember("user_requirements", reqs)
	return reqs, nil
}

// parseRoleList extracts a list of role names from a model response.
// Accepts JSON-style arrays with single or double quoted entries.
func parseRoleList(s string) ([]string, error) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no list found in response")
	}
	candidate := s[start : end+1]

	var roles []string
	if err := json.Unmarshal([]byte(candidate), &roles); err != nil {
		// Single-quoted entries are common; normalize and retry.
		normalized := strings.ReplaceAll(candidate, "'", `"`)
		if err := json.Unmarshal([]byte(normalized), &roles); err != nil {
			return nil, fmt.Errorf("parse role list: %w", err)
		}
	}

	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty role list")
	}
	return out, nil
}
