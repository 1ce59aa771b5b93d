// Package audit provides the append-only, per-task event trail. The trail
// is the sole persistent artifact of a run: consumers reconstruct full task
// history by replaying a task's stream in order.
package audit

import (
	"context"
	"time"
)

// EventType identifies one kind of audit record.
type EventType string

const (
	EventExecutionStart EventType = "execution_start"
	EventClassification EventType = "classification"
	EventAgentSpawned   EventType = "agent_spawned"
	EventAgentDestroyed EventType = "agent_destroyed"
	EventProductSkipped EventType = "product_skipped"
	EventSpawnError     EventType = "spawn_error"
	EventRetry          EventType = "retry"
	EventEscalation     EventType = "escalation"
	EventExecutionEnd   EventType = "execution_end"
)

// Event is one append-only audit record. Once written it is never altered
// or deleted.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	TaskID    string         `json:"task_id"`
	Type      EventType      `json:"type"`
	AgentID   string         `json:"agent_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Log is a single-writer, sequential-append store with one logical stream
// per task id. Append never surfaces a failure to the caller: an audit
// write fault is reported to the log's side channel and execution
// continues, because a broken audit sink must never abort a task.
type Log interface {
	Append(ctx context.Context, event Event)
	List(ctx context.Context, taskID string) ([]Event, error)
}

// NewEvent builds an event stamped with the current UTC time.
func NewEvent(eventType EventType, taskID, agentID string, payload map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		TaskID:    taskID,
		Type:      eventType,
		AgentID:   agentID,
		Payload:   payload,
	}
}

// stampTime fills a zero timestamp at append time.
func stampTime(event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}
	return event
}
