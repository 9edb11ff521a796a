package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/reycn/agent-box/internal/history"
	"github.com/reycn/agent-box/internal/model"
)

// Record builds a plausible session record for tests.
func Record(id string, status model.SessionStatus, updatedMs int64) model.SessionRecord {
	return model.SessionRecord{
		ID:          id,
		Agent:       model.AgentClaude,
		Title:       "demo task",
		WorkingDir:  "/tmp/demo",
		User:        "alice",
		Status:      status,
		StartedAtMs: 1,
		UpdatedAtMs: updatedMs,
		LastLines:   []string{"working"},
	}
}

// RecordWithLines builds a Running record carrying the given tail lines.
func RecordWithLines(id string, updatedMs int64, lines ...string) model.SessionRecord {
	rec := Record(id, model.StatusRunning, updatedMs)
	rec.LastLines = lines
	return rec
}

// NewHistory opens a throwaway history journal backed by a temp directory.
func NewHistory(t *testing.T) (*history.Journal, context.Context) {
	t.Helper()
	ctx := context.Background()
	journal, err := history.Open(ctx, filepath.Join(t.TempDir(), "agent-box-test.db"))
	if err != nil {
		t.Fatalf("open test journal: %v", err)
	}
	t.Cleanup(func() {
		_ = journal.Close()
	})
	return journal, ctx
}
