package model

// AgentKind identifies which coding agent a session belongs to.
type AgentKind string

const (
	AgentClaude  AgentKind = "Claude"
	AgentCodex   AgentKind = "Codex"
	AgentGemini  AgentKind = "Gemini"
	AgentUnknown AgentKind = "Unknown"
)

// Label returns the lowercase display label for the agent.
func (a AgentKind) Label() string {
	switch a {
	case AgentClaude:
		return "claude"
	case AgentCodex:
		return "codex"
	case AgentGemini:
		return "gemini"
	default:
		return "unknown"
	}
}

// SessionStatus is the normalized runtime state of one agent session.
type SessionStatus string

const (
	StatusRunning      SessionStatus = "Running"
	StatusWaitingInput SessionStatus = "WaitingInput"
	StatusSuccess      SessionStatus = "Success"
	StatusFailed       SessionStatus = "Failed"
	StatusStopped      SessionStatus = "Stopped"
)

// IsTerminal reports whether no further status change is permitted.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}

// allowedTransitions maps a status to the different statuses it may move to.
// Same-status refreshes bypass this table entirely.
var allowedTransitions = map[SessionStatus]map[SessionStatus]bool{
	StatusRunning: {
		StatusWaitingInput: true,
		StatusSuccess:      true,
		StatusFailed:       true,
		StatusStopped:      true,
	},
	StatusWaitingInput: {
		StatusRunning: true,
		StatusStopped: true,
	},
}

// CanTransition reports whether a session may move from one status to another.
// A refresh that keeps the status is always allowed, including on terminal
// statuses; a terminal status never changes to a different one.
func CanTransition(from, to SessionStatus) bool {
	if from == to {
		return true
	}
	return allowedTransitions[from][to]
}

// SessionRecord is one observed agent session. Field names on the wire match
// the peer sync protocol; timestamps are unix wall-clock milliseconds.
type SessionRecord struct {
	ID            string        `json:"id"`
	Agent         AgentKind     `json:"agent"`
	Title         string        `json:"title"`
	WorkingDir    string        `json:"working_dir"`
	User          string        `json:"user"`
	Status        SessionStatus `json:"status"`
	PendingAction string        `json:"pending_action,omitempty"`
	StartedAtMs   int64         `json:"started_at_unix_ms"`
	UpdatedAtMs   int64         `json:"updated_at_unix_ms"`
	LastLines     []string      `json:"last_lines"`
}

// NewRunningRecord builds a fresh Running record with both timestamps set to now.
func NewRunningRecord(id, title, workingDir, user string, lastLines []string, nowMs int64) SessionRecord {
	return SessionRecord{
		ID:          id,
		Agent:       AgentUnknown,
		Title:       title,
		WorkingDir:  workingDir,
		User:        user,
		Status:      StatusRunning,
		StartedAtMs: nowMs,
		UpdatedAtMs: nowMs,
		LastLines:   lastLines,
	}
}

// CanTransitionTo reports whether this record accepts a successor with the
// given status.
func (r SessionRecord) CanTransitionTo(next SessionStatus) bool {
	return CanTransition(r.Status, next)
}
