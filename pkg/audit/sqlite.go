package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteLog persists audit events in an append-only SQLite table. The
// table has no update or delete path; ordering is by insertion rowid.
type SQLiteLog struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteLog creates a SQLite-backed audit log and ensures schema.
func NewSQLiteLog(db *sql.DB, logger *slog.Logger) (*SQLiteLog, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := ensureAuditSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteLog{db: db, logger: logger}, nil
}

// OpenSQLiteLog opens (or creates) the database at path and returns a log
// backed by it.
func OpenSQLiteLog(path string, logger *slog.Logger) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteLog(db, logger)
}

// Append stores one event. A write fault is reported to the side channel
// and swallowed.
func (l *SQLiteLog) Append(ctx context.Context, event Event) {
	event = stampTime(event)
	if err := l.insert(ctx, event); err != nil {
		l.logger.ErrorContext(ctx, "audit append failed",
			"task_id", event.TaskID,
			"event_type", string(event.Type),
			"error", err,
		)
	}
}

func (l *SQLiteLog) insert(ctx context.Context, event Event) error {
	payload, err := encodePayload(event.Payload)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO audit_events (task_id, event_type, agent_id, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		event.TaskID,
		string(event.Type),
		event.AgentID,
		string(payload),
		event.Timestamp.Format(time.RFC3339Nano),
	)
	return err
}

// List returns a task's events in insertion order.
func (l *SQLiteLog) List(ctx context.Context, taskID string) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT task_id, event_type, agent_id, payload_json, created_at
		FROM audit_events
		WHERE task_id = ?
		ORDER BY id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev          Event
			eventType   string
			payloadJSON string
			createdAt   string
		)
		if err := rows.Scan(&ev.TaskID, &eventType, &ev.AgentID, &payloadJSON, &createdAt); err != nil {
			return nil, err
		}
		ev.Type = EventType(eventType)
		if payloadJSON != "" && payloadJSON != "null" {
			if err := json.Unmarshal([]byte(payloadJSON), &ev.Payload); err != nil {
				return nil, err
			}
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			ev.Timestamp = ts
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Close closes the underlying database.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

func encodePayload(payload map[string]any) ([]byte, error) {
	if payload == nil {
		return []byte("null"), nil
	}
	return json.Marshal(payload)
}

func ensureAuditSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			agent_id TEXT,
			payload_json TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_task ON audit_events(task_id);
		CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_events(event_type);
	`)
	return err
}
