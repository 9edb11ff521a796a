package render

import (
	"strings"
	"testing"

	"github.com/reycn/agent-box/internal/model"
	"github.com/reycn/agent-box/internal/testutil"
)

func TestRenderEmptySnapshot(t *testing.T) {
	out := NewRenderer().Render(nil, 0)
	if !strings.Contains(out, "No active") {
		t.Fatalf("expected empty-state message, got %q", out)
	}
}

func TestRenderIncludesPendingAction(t *testing.T) {
	rec := testutil.Record("1", model.StatusWaitingInput, 2)
	rec.Agent = model.AgentCodex
	rec.PendingAction = "Click approve"
	out := NewRenderer().Render([]model.SessionRecord{rec}, 0)
	if !strings.Contains(out, "Click approve") {
		t.Fatalf("pending action missing from output:\n%s", out)
	}
	if !strings.Contains(out, "WAITING_INPUT") {
		t.Fatalf("status label missing from output:\n%s", out)
	}
}

func TestRenderLimitsTailLines(t *testing.T) {
	rec := testutil.RecordWithLines("1", 2, "one", "two", "three")
	out := NewRenderer().Render([]model.SessionRecord{rec}, 0)
	if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Fatalf("tail lines missing:\n%s", out)
	}
	if strings.Contains(out, "three") {
		t.Fatalf("only two tail lines should render:\n%s", out)
	}
}

func TestRenderSpinnerAdvancesWithFrame(t *testing.T) {
	rec := testutil.Record("1", model.StatusRunning, 2)
	r := NewRenderer()
	frame0 := r.Render([]model.SessionRecord{rec}, 0)
	frame1 := r.Render([]model.SessionRecord{rec}, 1)
	if frame0 == frame1 {
		t.Fatalf("running spinner should change between frames")
	}
	frame4 := r.Render([]model.SessionRecord{rec}, 4)
	if frame0 != frame4 {
		t.Fatalf("spinner should wrap every four frames")
	}
}

func TestRenderSeparatesSessions(t *testing.T) {
	records := []model.SessionRecord{
		testutil.Record("a", model.StatusRunning, 1),
		testutil.Record("b", model.StatusSuccess, 1),
	}
	out := NewRenderer().Render(records, 0)
	if !strings.Contains(out, "\n\n") {
		t.Fatalf("cards should be blank-line separated:\n%s", out)
	}
	if !strings.Contains(out, "SUCCESS") || !strings.Contains(out, "RUNNING") {
		t.Fatalf("both sessions should render:\n%s", out)
	}
}

func TestRenderTruncatesLongTitle(t *testing.T) {
	rec := testutil.Record("1", model.StatusRunning, 2)
	rec.Title = strings.Repeat("x", 100)
	out := NewRenderer().Render([]model.SessionRecord{rec}, 0)
	if !strings.Contains(out, "...") {
		t.Fatalf("long title should be truncated:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 40)) {
		t.Fatalf("truncation did not bound the title:\n%s", out)
	}
}
