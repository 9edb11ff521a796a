package reconcile

import (
	"time"

	"github.com/reycn/agent-box/internal/config"
)

// PeerHealth is the reachability verdict for one sync peer.
type PeerHealth string

const (
	PeerHealthOK       PeerHealth = "ok"
	PeerHealthDegraded PeerHealth = "degraded"
	PeerHealthDown     PeerHealth = "down"
)

type HealthState struct {
	Current              PeerHealth
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastTransitionAt     time.Time
}

func NextHealth(cfg config.Config, state HealthState, success bool, now time.Time) HealthState {
	if state.Current == "" {
		state.Current = PeerHealthOK
	}
	if state.LastTransitionAt.IsZero() {
		state.LastTransitionAt = now
	}

	if success {
		state.ConsecutiveSuccesses++
		state.ConsecutiveFailures = 0
		switch state.Current {
		case PeerHealthDegraded:
			// One answered pull proves the peer reachable again.
			state.Current = PeerHealthOK
			state.LastTransitionAt = now
		case PeerHealthDown:
			// A down peer has to earn its way back with a streak.
			if state.ConsecutiveSuccesses >= cfg.PeerRecoverSuccesses {
				state.Current = PeerHealthOK
				state.LastTransitionAt = now
			}
		}
		return state
	}

	state.ConsecutiveFailures++
	state.ConsecutiveSuccesses = 0
	switch state.Current {
	case PeerHealthOK:
		state.Current = PeerHealthDegraded
		state.LastTransitionAt = now
	case PeerHealthDegraded:
		if now.Sub(state.LastTransitionAt) > cfg.PeerDownWindow {
			// Failure window expired; start a new degraded window from this failure.
			state.ConsecutiveFailures = 1
			state.LastTransitionAt = now
			return state
		}
		if state.ConsecutiveFailures >= cfg.PeerDownFailures {
			state.Current = PeerHealthDown
			state.LastTransitionAt = now
		}
	case PeerHealthDown:
		// keep down until enough successful pulls arrive
	}
	return state
}
