// Package collector discovers locally running agent sessions. The
// reconciliation loop only depends on the Collector interface; the ps-based
// implementation and the mock are interchangeable.
package collector

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/reycn/agent-box/internal/adapter"
	"github.com/reycn/agent-box/internal/model"
)

type Collector interface {
	Collect() []model.SessionRecord
}

// LocalProcessCollector scans the process table once per call and synthesizes
// a Running record for every recognized agent process. Records are fresh each
// tick; only the proc-<pid> id carries identity across ticks.
type LocalProcessCollector struct {
	registry *adapter.Registry
}

func NewLocalProcessCollector() *LocalProcessCollector {
	return &LocalProcessCollector{registry: adapter.DefaultRegistry()}
}

func (c *LocalProcessCollector) Collect() []model.SessionRecord {
	out, err := exec.Command("ps", "-axo", "pid=,command=").Output()
	if err != nil {
		return nil
	}
	return c.parsePS(string(out), time.Now().UnixMilli())
}

func (c *LocalProcessCollector) parsePS(psOutput string, nowMs int64) []model.SessionRecord {
	user := os.Getenv("USER")
	if user == "" {
		user = "local"
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	var records []model.SessionRecord
	for _, line := range strings.Split(psOutput, "\n") {
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		fields := strings.Fields(raw)
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		command := strings.TrimSpace(strings.TrimPrefix(raw, fields[0]))
		if command == "" {
			continue
		}
		// Never report the monitor itself as a session.
		if strings.Contains(command, "agent-box") {
			continue
		}
		kind, ok := c.registry.Classify(command)
		if !ok {
			continue
		}

		records = append(records, model.SessionRecord{
			ID:          "proc-" + strconv.Itoa(pid),
			Agent:       kind,
			Title:       titleFromCommand(command),
			WorkingDir:  cwd,
			User:        user,
			Status:      model.StatusRunning,
			StartedAtMs: nowMs,
			UpdatedAtMs: nowMs,
			LastLines: []string{
				"pid=" + strconv.Itoa(pid),
				"cmd: " + summarizeCommand(command, 64),
			},
		})
	}
	return records
}

// MockCollector produces a stable demo snapshot for tests and offline runs.
type MockCollector struct{}

func NewMockCollector() MockCollector {
	return MockCollector{}
}

func (MockCollector) Collect() []model.SessionRecord {
	now := time.Now().UnixMilli()
	return []model.SessionRecord{
		{
			ID:            "local-claude-1",
			Agent:         model.AgentClaude,
			Title:         "refactor parser",
			WorkingDir:    "/workspace/app",
			User:          "local",
			Status:        model.StatusRunning,
			PendingAction: "Approve write",
			StartedAtMs:   now - 40_000,
			UpdatedAtMs:   now,
			LastLines:     []string{"inspecting cli parser", "preparing patch"},
		},
		{
			ID:            "local-gemini-1",
			Agent:         model.AgentGemini,
			Title:         "test stabilization",
			WorkingDir:    "/workspace/app",
			User:          "local",
			Status:        model.StatusWaitingInput,
			PendingAction: "Confirm run",
			StartedAtMs:   now - 80_000,
			UpdatedAtMs:   now,
			LastLines:     []string{"awaiting confirmation"},
		},
	}
}
