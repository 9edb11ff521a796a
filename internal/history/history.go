// Package history appends observed session status transitions to a local
// SQLite journal. The journal is write-mostly: nothing on the tick path ever
// reads it, so a slow disk can not stall rendering.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/reycn/agent-box/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	run_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	agent TEXT NOT NULL,
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	observed_at_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS transitions_session
ON transitions(session_id, observed_at_ms);
`

// Transition is one observed status change. FromStatus is empty for the
// first sighting of a session in this run.
type Transition struct {
	RunID        string
	SessionID    string
	Agent        model.AgentKind
	FromStatus   model.SessionStatus
	ToStatus     model.SessionStatus
	ObservedAtMs int64
}

type Journal struct {
	db    *sql.DB
	runID string
}

func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("chmod journal path: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &Journal{db: db, runID: uuid.NewString()}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RunID identifies this process's rows in the journal.
func (j *Journal) RunID() string {
	return j.runID
}

// Append records one transition. The journal's run id is filled in when the
// caller leaves it empty.
func (j *Journal) Append(ctx context.Context, tr Transition) error {
	if tr.RunID == "" {
		tr.RunID = j.runID
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO transitions(run_id, session_id, agent, from_status, to_status, observed_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
`, tr.RunID, tr.SessionID, string(tr.Agent), string(tr.FromStatus), string(tr.ToStatus), tr.ObservedAtMs)
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}
	return nil
}

// RecentForSession returns the newest transitions for one session, newest
// first, capped at limit.
func (j *Journal) RecentForSession(ctx context.Context, sessionID string, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT run_id, session_id, agent, from_status, to_status, observed_at_ms
FROM transitions
WHERE session_id = ?
ORDER BY observed_at_ms DESC
LIMIT ?
`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Transition
	for rows.Next() {
		var tr Transition
		var agent, from, to string
		if err := rows.Scan(&tr.RunID, &tr.SessionID, &agent, &from, &to, &tr.ObservedAtMs); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		tr.Agent = model.AgentKind(agent)
		tr.FromStatus = model.SessionStatus(from)
		tr.ToStatus = model.SessionStatus(to)
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}
