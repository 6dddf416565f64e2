// Package agents implements the role-played participants of the
// requirements elicitation pipeline: interviewer, end users, deployer,
// analyst, archivist and reviewer.
package agents

import "sync"

// Artifact is a typed piece of content an agent has produced or observed.
type Artifact struct {
	Type    string
	Content string
}

// Memory is an append-only log of artifacts. Artifacts are never
// mutated or removed; Recall returns them in insertion order.
type Memory struct {
	mu        sync.RWMutex
	artifacts []Artifact
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Remember appends an artifact to the log.
func (m *Memory) Remember(artifactType, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, Artifact{Type: artifactType, Content: content})
}

// Recall returns the contents of all artifacts of the given type,
// oldest first.
func (m *Memory) Recall(artifactType string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, a := range m.artifacts {
		if a.Type == artifactType {
			out = append(out, a.Content)
		}
	}
	return out
}

// Len returns the total number of stored artifacts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.artifacts)
}
