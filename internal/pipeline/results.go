package pipeline

import (
	"fmt"
	"time"

	"github.com/elicit-dev/elicit/internal/agents"
)

// Results are the artifacts of a completed run, keyed the way API
// consumers expect them.
type Results struct {
	InterviewRecord      string        `json:"interview_record"`
	UserRequirements     string        `json:"user_requirements"`
	OperationEnvironment string        `json:"operation_environment"`
	SystemRequirements   string        `json:"system_requirements"`
	RequirementModel     string        `json:"requirement_model"`
	SRSDocument          string        `json:"srs_document"`
	ReviewReport         string        `json:"review_report"`
	Conversations        []agents.Turn `json:"conversations"`
}

// CollectResults extracts the results from a finished state.
func CollectResults(state *State) Results {
	return Results{
		InterviewRecord:      state.InterviewRecord,
		UserRequirements:     state.UserRequirements,
		OperationEnvironment: state.OperationEnvironment,
		SystemRequirements:   state.SystemRequirements,
		RequirementModel:     state.RequirementModel,
		SRSDocument:          state.SRSDocument,
		ReviewReport:         state.ReviewReport,
		Conversations:        state.Conversations,
	}
}

// Document is one generated artifact presented as a savable document.
type Document struct {
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Type         string    `json:"type"`
	GeneratedAt  time.Time `json:"generated_at"`
	ReadyForSave bool      `json:"ready_for_save"`
}

// FormattedResults is the document-oriented view of the results.
type FormattedResults struct {
	Documents     []Document    `json:"documents"`
	Conversations []agents.Turn `json:"conversations"`
	Summary       string        `json:"summary"`
}

// FormatResults renders the results as a list of titled documents.
// Empty artifacts are omitted.
func FormatResults(r Results) FormattedResults {
	now := time.Now()

	mapping := []struct {
		title   string
		content string
		docType string
	}{
		{"Interview Record", r.InterviewRecord, "interview-record"},
		{"User Requirements", r.UserRequirements, "user-requirements"},
		{"Operation Environment", r.OperationEnvironment, "operation-environment"},
		{"System Requirements", r.SystemRequirements, "system-requirements"},
		{"Use Case Model (PlantUML)", r.RequirementModel, "use-case-model"},
		{"Software Requirements Specification", r.SRSDocument, "srs-document"},
		{"SRS Review Report", r.ReviewReport, "review-report"},
	}

	docs := make([]Document, 0, len(mapping))
	for _, m := range mapping {
		if m.content == "" {
			continue
		}
		docs = append(docs, Document{
			Title:        m.title,
			Content:      m.content,
			Type:         m.docType,
			GeneratedAt:  now,
			ReadyForSave: true,
		})
	}

	return FormattedResults{
		Documents:     docs,
		Conversations: r.Conversations,
		Summary:       fmt.Sprintf("Generated %d requirement documents", len(docs)),
	}
}
