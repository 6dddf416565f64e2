package agents

import "testing"

func TestMemoryRecallByType(t *testing.T) {
	m := NewMemory()
	m.Remember("question", "first question")
	m.Remember("answer", "first answer")
	m.Remember("question", "second question")

	questions := m.Recall("question")
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0] != "first question" || questions[1] != "second question" {
		t.Errorf("recall should preserve insertion order, got %v", questions)
	}

	answers := m.Recall("answer")
	if len(answers) != 1 || answers[0] != "first answer" {
		t.Errorf("unexpected answers: %v", answers)
	}
}

func TestMemoryRecallUnknownType(t *testing.T) {
	m := NewMemory()
	m.Remember("question", "q")

	if got := m.Recall("nonexistent"); got != nil {
		t.Errorf("expected nil for unknown type, got %v", got)
	}
}

func TestMemoryLen(t *testing.T) {
	m := NewMemory()
	if m.Len() != 0 {
		t.Fatalf("expected empty memory, got %d", m.Len())
	}
	m.Remember("a", "1")
	m.Remember("b", "2")
	if m.Len() != 2 {
		t.Errorf("expected 2 artifacts, got %d", m.Len())
	}
}
