// Package audit persists every command state transition to a SQLite trail
// so operators can reconstruct a command's history after a restart.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/signalsfoundry/satti-simulator/internal/logging"
	"github.com/signalsfoundry/satti-simulator/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS command_audit (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    command_id   TEXT NOT NULL,
    satellite_id TEXT NOT NULL,
    state        TEXT NOT NULL,
    message      TEXT NOT NULL DEFAULT '',
    occurred_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_command_audit_command_id ON command_audit (command_id);
`

// Entry is one persisted transition.
type Entry struct {
	CommandID   string
	SatelliteID string
	State       model.CommandState
	Message     string
	OccurredAt  time.Time
}

// Trail is a SQLite-backed audit log.
type Trail struct {
	db  *sql.DB
	log logging.Logger
}

// Open opens (or creates) the trail database and ensures the schema.
func Open(path string, log logging.Logger) (*Trail, error) {
	if log == nil {
		log = logging.Noop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	// SQLite does not handle concurrent writers well.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}
	return &Trail{db: db, log: log}, nil
}

// CommandTransition appends the transition to the trail. Write failures are
// logged and swallowed so a broken trail never stalls the lifecycle.
func (t *Trail) CommandTransition(ctx context.Context, ev model.CommandEvent) {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO command_audit (command_id, satellite_id, state, message, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		ev.CommandID, ev.SatelliteID, string(ev.State), ev.Message, ev.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		t.log.Warn(ctx, "audit write failed",
			logging.String("command_id", ev.CommandID),
			logging.String("error", err.Error()),
		)
	}
}

// History returns the recorded transitions for a command, oldest first.
func (t *Trail) History(ctx context.Context, commandID string) ([]Entry, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT command_id, satellite_id, state, message, occurred_at FROM command_audit WHERE command_id = ? ORDER BY id ASC`,
		commandID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var state, occurredAt string
		if err := rows.Scan(&e.CommandID, &e.SatelliteID, &state, &e.Message, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.State = model.CommandState(state)
		if ts, err := time.Parse(time.RFC3339Nano, occurredAt); err == nil {
			e.OccurredAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (t *Trail) Close() error {
	return t.db.Close()
}
