package agents

import (
	"strings"
	"testing"
)

func TestPairTurnsEqualLengths(t *testing.T) {
	turns := PairTurns([]string{"q1", "q2"}, []string{"a1", "a2"})
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Question != "q1" || turns[0].Answer != "a1" || turns[0].Round != 1 {
		t.Errorf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Round != 2 {
		t.Errorf("expected round 2, got %d", turns[1].Round)
	}
}

func TestPairTurnsTrailingOpenQuestion(t *testing.T) {
	turns := PairTurns([]string{"q1", "q2"}, []string{"a1"})
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[1].Question != "q2" || turns[1].Answer != "" {
		t.Errorf("expected trailing open question with empty answer, got %+v", turns[1])
	}
}

func TestPairTurnsExcessQuestionsDropped(t *testing.T) {
	turns := PairTurns([]string{"q1", "q2", "q3"}, []string{"a1"})
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn when more than one question is unanswered, got %d", len(turns))
	}
}

func TestPairTurnsExcessAnswersDropped(t *testing.T) {
	turns := PairTurns([]string{"q1"}, []string{"a1", "a2"})
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
}

func TestFormatTranscript(t *testing.T) {
	turns := []Turn{
		{Question: "What do you need?", Answer: "A blog."},
		{Question: "Anything else?", Answer: "Comments."},
	}

	got := FormatTranscript(turns, "End User")
	if !strings.Contains(got, "Interviewer: What do you need?\nEnd User: A blog.") {
		t.Errorf("transcript missing first exchange:\n%s", got)
	}
	if !strings.Contains(got, "Interviewer: Anything else?\nEnd User: Comments.") {
		t.Errorf("transcript missing second exchange:\n%s", got)
	}
}

func TestFormatTranscriptEmpty(t *testing.T) {
	if got := FormatTranscript(nil, "End User"); got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}
