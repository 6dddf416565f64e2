package agents

import (
	"fmt"
	"strings"
)

// Turn is one question/answer exchange in an interview.
type Turn struct {
	UserType string `json:"user_type"`
	Round    int    `json:"round"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PairTurns zips questions with answers into turns. Unanswered
// questions beyond the pairing are dropped, except a single trailing
// open question, which is kept with an empty answer so the transcript
// shows where the dialogue stopped.
func PairTurns(questions, answers []string) []Turn {
	n := len(questions)
	if len(answers) < n {
		n = len(answers)
	}

	turns := make([]Turn, 0, n+1)
	for i := 0; i < n; i++ {
		turns = append(turns, Turn{
			Round:    i + 1,
			Question: questions[i],
			Answer:   answers[i],
		})
	}

	if len(questions) == n+1 {
		turns = append(turns, Turn{
			Round:    n + 1,
			Question: questions[n],
		})
	}

	return turns
}

// FormatTranscript renders turns as an interview transcript, one
// question/answer pair per block, with the respondent labeled by role.
func FormatTranscript(turns []Turn, respondent string) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("Interviewer: %s\n%s: %s", t.Question, respondent, t.Answer))
	}
	return strings.Join(lines, "\n")
}
