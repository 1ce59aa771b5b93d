package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileLog persists one JSONL stream per task id under a base directory.
// Writes are append-only and synced per record; each line is one complete,
// independently parseable JSON object. Directory creation is lazy and
// idempotent: nothing is created until the first event for a task arrives.
type FileLog struct {
	baseDir string
	logger  *slog.Logger

	mu sync.Mutex
}

// NewFileLog creates a file-backed audit log rooted at baseDir. The
// directory is not created until the first append.
func NewFileLog(baseDir string, logger *slog.Logger) *FileLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLog{baseDir: baseDir, logger: logger}
}

// StreamPath returns the on-disk location of a task's audit stream.
func (l *FileLog) StreamPath(taskID string) string {
	return filepath.Join(l.baseDir, taskID+".jsonl")
}

// Append writes one event to the task's stream. A write fault is reported
// to the side channel and swallowed.
func (l *FileLog) Append(ctx context.Context, event Event) {
	event = stampTime(event)
	if err := l.write(event); err != nil {
		l.logger.ErrorContext(ctx, "audit append failed",
			"task_id", event.TaskID,
			"event_type", string(event.Type),
			"error", err,
		)
	}
}

func (l *FileLog) write(event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.StreamPath(event.TaskID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// List replays a task's stream in write order. A missing stream yields an
// empty slice, not an error.
func (l *FileLog) List(_ context.Context, taskID string) ([]Event, error) {
	f, err := os.Open(l.StreamPath(taskID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
