package core

import (
	"time"

	"github.com/google/uuid"
)

// TaskType is an optional operator-supplied routing hint.
type TaskType string

const (
	TaskTypeTechnical TaskType = "technical"
	TaskTypeProduct   TaskType = "product"
	TaskTypeAmbiguous TaskType = "ambiguous"
)

// Task is the immutable unit of work handed to the pipeline. It is created
// once by the caller and never mutated by any kernel component.
type Task struct {
	ID          string
	Type        TaskType // empty when the operator gave no hint
	Body        string
	ContextDocs []string
	CreatedAt   time.Time
}

// NewTask creates a task with a generated ID.
func NewTask(body string, taskType TaskType) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}
