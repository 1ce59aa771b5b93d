package audit

import (
	"context"
	"sync"
)

// MemoryLog keeps audit events in memory, ordered by append. Intended for
// tests and short-lived embedding.
type MemoryLog struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryLog returns an in-memory audit log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append records an event.
func (l *MemoryLog) Append(_ context.Context, event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, stampTime(event))
}

// List returns the events for a task in append order.
func (l *MemoryLog) List(_ context.Context, taskID string) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, 0, len(l.events))
	for _, ev := range l.events {
		if ev.TaskID == taskID {
			out = append(out, ev)
		}
	}
	return out, nil
}
