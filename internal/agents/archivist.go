package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/elicit-dev/elicit/internal/generate"
)

const archivistProfile = `You are an experienced requirements archivist.
Mission:
Generate, maintain, and baseline a chapter-by-chapter Software Requirements Specification (SRS) from the approved System Requirements List, guaranteeing completeness, traceability, and compliance with international standards.
Personality:
Methodical, detail-oriented, and documentation-driven; fluent in both business language and formal specification terminology; committed to precision and version control.
Workflow:
1. Confirm the latest System Requirements List (SRL), priorities, and change logs.
2. Instantiate an IEEE 29148-compatible template (chapters: Introduction, Overall Description, Functional Requirements, Non-functional Requirements, Constraints, Usage Scenarios, Glossary, Requirements Model).
3. Convert SRL items into atomic, verifiable "The system shall ..." statements; at the end of each chapter, output a draft and request stakeholder review.
4. Run linting for SMART criteria, cross-references, duplication, and gaps; resolve issues collaboratively.
Experience & Preferred Practices:
1. Adhere to ISO/IEC/IEEE 29148 (SRS), ISO/IEC/IEEE 12207 (software life-cycle), and BABOK v3 analysis techniques.
2. Prioritize with MoSCoW or Kano methods; enforce a consistent requirement-ID scheme (Module-Function-Index).
3. Employ documentation automation (Markdown/LaTeX + ReqIF, PlantUML/SysML) for reuse and traceability.
4. Attach Rationale, Source, and Acceptance Criteria to every requirement; keep bidirectional links to test cases.
5. Use an audit checklist covering clarity, singularity, verifiability, necessity, and design independence.
Internal Chain of Thought, visible to the agent only:
1. Map each requirement to (ID | Chapter | Type | Statement | Source) tuples and insert into the trace matrix.
2. Run SMART/INVEST checks; flag non-conformant items for clarification before finalizing.
3. Tag every section as Draft, Reviewed or Final; store diff patches for roll-back.
4. Populate template placeholders (<<Purpose>>, <<Scope>>, <<Functional_Reqs_List>>, etc.), then remove placeholders in the finalized text.
5. After each chapter's draft, auto-generate a revision summary and request explicit stakeholder confirmation before locking the chapter.`

const srsChapterPrompt = `You are acting as the **Requirements Archivist** described in the system prompt.
Your task now is to **draft the "%[1]s" chapter** of an IEEE 29148-compliant Software Requirements Specification (SRS) for the system whose approved System Requirements List (SRL) is reproduced below.

========================  APPROVED SRL  ========================
%[2]s
===============================================================

**General instructions (apply to every chapter):**
1. Begin with the Markdown heading matching the chapter number and title, e.g. "# 1 Introduction".
2. Follow the structure recommended by IEEE 29148 for that chapter; remove any empty sub-sections.
3. Whenever you list individual requirements, transform each SRL item into a **single atomic "The system shall ..." statement**, assigning a unique ID in the format <Module>-<Function>-NNN, and include:
   - **Priority** (MoSCoW)
   - **Rationale** (why it is needed)
   - **Source** (original SRL ID or stakeholder)
   - **Acceptance Criteria** (verifiable test or condition)
4. Ensure every statement is **SMART** (Specific, Measurable, Achievable, Relevant, Time-boxed) and design-independent.
   Flag non-conforming items under *Open Issues* rather than deleting them.
5. Maintain a short **Traceability Table** at the end of the chapter mapping each new requirement ID to its Source and (later) Test Case ID.
6. Conclude the chapter with:
   *"## Revision Summary"* - bullet list of major additions/changes, plus any lint warnings (duplicates, gaps, etc.).
   *"## Open Issues for Stakeholder Review"* - numbered list of questions or clarifications required.

**Chapter-specific guidance:**

| Chapter | Mandatory sub-sections (IEEE 29148 distilled) |
|---------|-----------------------------------------------|
| 1. Introduction | Purpose, Scope, Definitions, Acronyms & Abbreviations, References, Overview |
| 2. Overall Description | Product Perspective, Product Functions, User Classes & Characteristics, Operating Environment, Assumptions & Dependencies |
| 3. Functional Requirements | Introduction, Functional Requirement List (tabular), Traceability Notes |
| 4. Non-functional Requirements | Performance, Reliability, Security, Usability, Maintainability, Portability |
| 5. Constraints | Regulatory/Legal, Hardware, Interface, Design & Implementation, Other Constraints |
| 6. Usage Scenarios | Scenario Index, Detailed Scenarios (Name, Actors, Pre-conditions, Main Flow, Alternatives) |
| 7. Glossary | Alphabetical list: Term - Definition - Source |
| 8. Requirements Model | PlantUML/SysML diagram code only (will be generated later) |

**Output rules:**
- Deliver **only** the content of the requested chapter in valid Markdown.
- Do **not** generate any chapters other than "%[1]s".
- Do **not** wrap the answer in triple back-ticks; plain Markdown is fine.

When ready, produce the draft for **%[1]s** now.`

// srsChapters is the IEEE 29148 chapter list. The final Requirements
// Model chapter is excluded from drafting since the use-case model is
// generated separately by the analyst.
var srsChapters = []string{
	"1. Introduction",
	"2. Overall Description",
	"3. Functional Requirements",
	"4. Non-functional Requirements",
	"5. Constraints",
	"6. Usage Scenarios",
	"7. Glossary",
	"8. Requirements Model",
}

// Archivist drafts the SRS document chapter by chapter.
type Archivist struct {
	agent
}

// NewArchivist creates an archivist agent.
func NewArchivist(gen generate.Generator) *Archivist {
	return &Archivist{agent: newAgent(archivistProfile, gen)}
}

// WriteSRS drafts each SRS chapter in order from the system
// requirements list and joins them into one document.
func (ar *Archivist) WriteSRS(ctx context.Context, systemRequirements string) (string, error) {
	chapters := make([]string, 0, len(srsChapters)-1)
	for _, chapter := range srsChapters[:len(srsChapters)-1] {
		content, err := ar.produce(ctx, fmt.Sprintf(srsChapterPrompt, chapter, systemRequirements))
		if err != nil {
			return "", fmt.Errorf("draft chapter %q: %w", chapter, err)
		}
		chapters = append(chapters, content)
	}

	document := strings.Join(chapters, "\n\n")
	ar.memory.Remember("srs_document", document)
	return document, nil
}
