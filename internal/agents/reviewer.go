package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elicit-dev/elicit/internal/generate"
)

const reviewerProfile = `You are a senior **SRS Reviewer** specialising in software-requirements quality assurance.
Mission:
Close the quality-control loop by auditing, reporting and verifying an IEEE 29148-compliant Software Requirements Specification (SRS).
Personality:
Thorough, analytical, and constructive; speaks the language of both engineers and auditors; uncompromising on standards compliance.
Workflow:
1. **Evaluate** - apply the checklist and quality criteria to every SRS section, logging concrete findings.
2. **Raise Findings** - compile a structured review report, classify each issue, set severity, and propose actionable fixes.
3. **Confirm Closure** - after re-work, re-examine the SRS, verify resolution, and either sign-off or re-open items.
Experience & Preferred Practices:
- Follows ISO/IEC/IEEE 29148, ISO/IEC/IEEE 12207, and BABOK v3.
- Uses SMART/INVEST rules, ambiguity keywords, and traceability matrices.
- Severity scale: Blocker, Major, Minor, Info.
- Issue taxonomy: Ambiguity, Inconsistency, Unverifiable, Duplicate, Missing, Traceability-Gap.
- Keeps bidirectional links to change-requests and test-cases.`

const evaluatePrompt = `You are the SRS Reviewer.
Audit the Software Requirements Specification reproduced below.

====================  SRS DRAFT  ====================
%s
=====================================================

Apply the following **Quality Checklist** to every numbered clause:
1. Clarity - free of ambiguity keywords (e.g., "fast", "user-friendly").
2. Singularity - one requirement per statement.
3. Verifiability - objectively testable acceptance criteria present.
4. Necessity - requirement is essential and not design-specific.
5. Consistency - no conflicts with other statements.
6. Traceability - has unique ID and source reference.
7. Completeness - all mandatory sub-sections populated.

**Output** a JSON array called "findings" where each element has:
- "id" (string) - SRS clause or requirement ID.
- "issue_type" (one of Ambiguity, Inconsistency, Unverifiable, Duplicate, Missing, Traceability-Gap).
- "severity" (Blocker, Major, Minor, Info).
- "description" - concise problem explanation quoting the offending text.
Store the JSON only - no extra prose.`

const reviewReportPrompt = `Act as the SRS Reviewer.
Using the JSON "findings" array provided below, create a **Review Report** in Markdown with the following format:

# Review Report

## Summary
* Total issues: %d
* Blocker: %d, Major: %d, Minor: %d, Info: %d

## Detailed Findings
For each item list:
* **ID** - requirement or section reference
* **Type** - issue_type
* **Severity** - severity
* **Description** - description (one sentence)
* **Recommended Fix** - concrete, actionable change that would resolve the problem.

Render the report exactly in this structure and nothing else.

` + "```json\n%s\n```"

// Finding is one review issue raised against the SRS.
type Finding struct {
	ID          string `json:"id"`
	IssueType   string `json:"issue_type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Reviewer audits the SRS document and produces the review report.
type Reviewer struct {
	agent
}

// NewReviewer creates a reviewer agent.
func NewReviewer(gen generate.Generator) *Reviewer {
	return &Reviewer{agent: newAgent(reviewerProfile, gen)}
}

// EvaluateSRS runs the quality checklist on the SRS and returns the
// raw findings JSON produced by the model.
func (r *Reviewer) EvaluateSRS(ctx context.Context, srsDocument string) (string, error) {
	findings, err := r.produce(ctx, fmt.Sprintf(evaluatePrompt, srsDocument))
	if err != nil {
		return "", err
	}
	r.memory.Remember("findings_json", findings)
	return findings, nil
}

// WriteReviewReport turns the findings JSON into a markdown review
// report with severity tallies. Malformed findings JSON degrades to an
// empty findings list rather than failing the review.
func (r *Reviewer) WriteReviewReport(ctx context.Context, findingsJSON string) (string, error) {
	findings := parseFindings(findingsJSON)

	tally := map[string]int{"Blocker": 0, "Major": 0, "Minor": 0, "Info": 0}
	for _, f := range findings {
		if _, ok := tally[f.Severity]; ok {
			tally[f.Severity]++
		}
	}

	report, err := r.produce(ctx, fmt.Sprintf(reviewReportPrompt,
		len(findings), tally["Blocker"], tally["Major"], tally["Minor"], tally["Info"],
		findingsJSON))
	if err != nil {
		return "", err
	}

	r.memory.Remember("review_report", report)
	return report, nil
}

// parseFindings extracts review findings from a model response,
// tolerating surrounding prose and code fences.
func parseFindings(s string) []Finding {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil
	}

	var findings []Finding
	if err := json.Unmarshal([]byte(s[start:end+1]), &findings); err != nil {
		return nil
	}
	return findings
}
