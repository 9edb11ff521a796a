package model

import "sort"

// StateStore holds the session records visible in one view, keyed by id.
// It enforces last-write-wins ordering by updated_at_unix_ms, refined by the
// status transition table, for records that collide on id.
type StateStore struct {
	sessions map[string]SessionRecord
}

func NewStateStore() *StateStore {
	return &StateStore{sessions: map[string]SessionRecord{}}
}

// Upsert applies an incoming record and reports whether it was accepted.
// A record for a new id is inserted unconditionally. For an existing id the
// incoming record is rejected when it is older than the stored one, or when
// it asks for a status change the transition table forbids; otherwise it
// replaces the stored record wholesale.
func (s *StateStore) Upsert(incoming SessionRecord) bool {
	existing, ok := s.sessions[incoming.ID]
	if !ok {
		s.sessions[incoming.ID] = incoming
		return true
	}
	if incoming.UpdatedAtMs < existing.UpdatedAtMs {
		return false
	}
	if incoming.Status != existing.Status && !existing.CanTransitionTo(incoming.Status) {
		return false
	}
	s.sessions[incoming.ID] = incoming
	return true
}

// Get returns the record for id, if present.
func (s *StateStore) Get(id string) (SessionRecord, bool) {
	rec, ok := s.sessions[id]
	return rec, ok
}

// All returns every record sorted ascending by id.
func (s *StateStore) All() []SessionRecord {
	items := make([]SessionRecord, 0, len(s.sessions))
	for _, rec := range s.sessions {
		items = append(items, rec)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items
}

// Clear empties the store so a fresh per-tick view can be rebuilt.
func (s *StateStore) Clear() {
	s.sessions = map[string]SessionRecord{}
}

// Len returns the number of stored records.
func (s *StateStore) Len() int {
	return len(s.sessions)
}
