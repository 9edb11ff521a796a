package model

import "testing"

func record(id string, status SessionStatus, updatedMs int64) SessionRecord {
	return SessionRecord{
		ID:          id,
		Agent:       AgentClaude,
		Title:       "demo",
		WorkingDir:  "/tmp",
		User:        "alice",
		Status:      status,
		StartedAtMs: 1,
		UpdatedAtMs: updatedMs,
		LastLines:   []string{"hello"},
	}
}

func TestUpsertInsertsNewID(t *testing.T) {
	store := NewStateStore()
	if !store.Upsert(record("a", StatusRunning, 10)) {
		t.Fatalf("insert of new id should be accepted")
	}
	got, ok := store.Get("a")
	if !ok || got.UpdatedAtMs != 10 {
		t.Fatalf("unexpected stored record: %+v ok=%v", got, ok)
	}
}

func TestUpsertRejectsOlderUpdate(t *testing.T) {
	store := NewStateStore()
	if !store.Upsert(record("a", StatusRunning, 20)) {
		t.Fatalf("first upsert should be accepted")
	}
	if store.Upsert(record("a", StatusRunning, 19)) {
		t.Fatalf("stale update should be rejected")
	}
	got, _ := store.Get("a")
	if got.UpdatedAtMs != 20 {
		t.Fatalf("stale update must not replace stored record, got ts=%d", got.UpdatedAtMs)
	}
}

func TestUpsertRejectsTransitionFromTerminal(t *testing.T) {
	store := NewStateStore()
	if !store.Upsert(record("a", StatusSuccess, 20)) {
		t.Fatalf("terminal insert should be accepted")
	}
	if store.Upsert(record("a", StatusRunning, 21)) {
		t.Fatalf("terminal status must not change to a different status")
	}
	got, _ := store.Get("a")
	if got.Status != StatusSuccess {
		t.Fatalf("stored status changed unexpectedly: %s", got.Status)
	}
}

func TestUpsertAcceptsSameStatusRefreshOnTerminal(t *testing.T) {
	store := NewStateStore()
	store.Upsert(record("a", StatusSuccess, 20))
	refreshed := record("a", StatusSuccess, 25)
	refreshed.LastLines = []string{"final output"}
	if !store.Upsert(refreshed) {
		t.Fatalf("same-status refresh on terminal record should be accepted")
	}
	got, _ := store.Get("a")
	if got.UpdatedAtMs != 25 || got.LastLines[0] != "final output" {
		t.Fatalf("refresh not applied: %+v", got)
	}
}

func TestUpsertAppliesPermittedTransition(t *testing.T) {
	store := NewStateStore()
	store.Upsert(record("a", StatusRunning, 10))
	if !store.Upsert(record("a", StatusWaitingInput, 11)) {
		t.Fatalf("running -> waiting_input should be accepted")
	}
	// waiting_input may only move to running or stopped
	if store.Upsert(record("a", StatusSuccess, 12)) {
		t.Fatalf("waiting_input -> success should be rejected")
	}
	if !store.Upsert(record("a", StatusRunning, 12)) {
		t.Fatalf("waiting_input -> running should be accepted")
	}
	if !store.Upsert(record("a", StatusSuccess, 13)) {
		t.Fatalf("running -> success should be accepted")
	}
}

func TestAllSortedByID(t *testing.T) {
	store := NewStateStore()
	store.Upsert(record("c", StatusRunning, 1))
	store.Upsert(record("a", StatusRunning, 1))
	store.Upsert(record("b", StatusRunning, 1))
	all := store.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].ID != want {
			t.Fatalf("position %d: expected %s got %s", i, want, all[i].ID)
		}
	}
}

func TestClearEmptiesStore(t *testing.T) {
	store := NewStateStore()
	store.Upsert(record("a", StatusRunning, 1))
	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("store should be empty after clear, len=%d", store.Len())
	}
	if !store.Upsert(record("a", StatusRunning, 0)) {
		t.Fatalf("cleared store must accept previously-seen id at any timestamp")
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		want     bool
	}{
		{StatusRunning, StatusWaitingInput, true},
		{StatusRunning, StatusSuccess, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusStopped, true},
		{StatusWaitingInput, StatusRunning, true},
		{StatusWaitingInput, StatusStopped, true},
		{StatusWaitingInput, StatusFailed, false},
		{StatusSuccess, StatusRunning, false},
		{StatusFailed, StatusStopped, false},
		{StatusStopped, StatusRunning, false},
		{StatusSuccess, StatusSuccess, true},
		{StatusStopped, StatusStopped, true},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []SessionStatus{StatusSuccess, StatusFailed, StatusStopped} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []SessionStatus{StatusRunning, StatusWaitingInput} {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
