package collector

import (
	"strings"
	"testing"

	"github.com/reycn/agent-box/internal/model"
)

func TestParsePSClassifiesAgentProcesses(t *testing.T) {
	psOutput := strings.Join([]string{
		"  101 /usr/local/bin/claude --resume",
		"  102 bash -lc ls",
		"  103 /opt/tools/codex --sandbox workspace",
		"  104 gemini --version",
		"  105 agent-box 127.0.0.1:abc",
		"",
	}, "\n")

	c := NewLocalProcessCollector()
	records := c.parsePS(psOutput, 5_000)
	if len(records) != 3 {
		t.Fatalf("expected 3 agent sessions, got %d: %+v", len(records), records)
	}
	if records[0].ID != "proc-101" || records[0].Agent != model.AgentClaude {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Agent != model.AgentCodex || records[2].Agent != model.AgentGemini {
		t.Fatalf("unexpected classification: %+v", records[1:])
	}
	for _, rec := range records {
		if rec.Status != model.StatusRunning {
			t.Fatalf("collected session should be running: %+v", rec)
		}
		if rec.StartedAtMs != 5_000 || rec.UpdatedAtMs != 5_000 {
			t.Fatalf("timestamps should use the provided clock: %+v", rec)
		}
		if len(rec.LastLines) != 2 || !strings.HasPrefix(rec.LastLines[0], "pid=") {
			t.Fatalf("expected pid and cmd tail lines: %+v", rec.LastLines)
		}
	}
}

func TestParsePSSkipsMalformedLines(t *testing.T) {
	c := NewLocalProcessCollector()
	records := c.parsePS("notapid claude\n42\n", 1)
	if len(records) != 0 {
		t.Fatalf("malformed lines should be skipped, got %+v", records)
	}
}

func TestTitleFromCommandIsBounded(t *testing.T) {
	title := titleFromCommand("/opt/tools/claude this is a very very very very very very long command string with extra tail")
	if len([]rune(title)) > 48 {
		t.Fatalf("title too long (%d): %q", len([]rune(title)), title)
	}
}

func TestSummarizeCommandPrefersExecutableAndTail(t *testing.T) {
	s := summarizeCommand("/home/u/.nvm/versions/node/v20.8.1/bin/node /a/b/c/d/e/f/g.js --foo --bar", 64)
	if !strings.Contains(s, "node") {
		t.Fatalf("expected executable name in summary: %q", s)
	}
	if !strings.Contains(s, "--foo") && !strings.Contains(s, "--bar") {
		t.Fatalf("expected trailing args in summary: %q", s)
	}
}

func TestTruncateKeepRight(t *testing.T) {
	if got := truncateKeepRight("short", 10); got != "short" {
		t.Fatalf("short input should pass through: %q", got)
	}
	got := truncateKeepRight("abcdefghijklmnop", 10)
	if len(got) != 10 || !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "nop") {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestMockCollectorShape(t *testing.T) {
	records := NewMockCollector().Collect()
	if len(records) != 2 {
		t.Fatalf("expected 2 demo sessions, got %d", len(records))
	}
	if records[0].Agent != model.AgentClaude || records[1].Agent != model.AgentGemini {
		t.Fatalf("unexpected demo agents: %+v", records)
	}
}
