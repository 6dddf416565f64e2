// Package tasks tracks requirement-generation runs and their results.
package tasks

import (
	"time"

	"github.com/elicit-dev/elicit/internal/pipeline"
)

// Status is the lifecycle state of a task. Transitions are forward
// only: started -> running -> completed or failed.
type Status string

const (
	StatusStarted   Status = "started"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// rank orders statuses so updates can never move a task backwards.
func (s Status) rank() int {
	switch s {
	case StatusStarted:
		return 0
	case StatusRunning:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is the record of one requirement-generation run.
type Task struct {
	ID           string            `json:"id"`
	Status       Status            `json:"status"`
	Brief        string            `json:"initial_requirements"`
	Progress     int               `json:"progress"`
	CurrentStage string            `json:"current_stage,omitempty"`
	Message      string            `json:"message"`
	Results      *pipeline.Results `json:"results,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	FinishedAt   time.Time         `json:"finished_at,omitzero"`
}
