package progression

import (
	"encoding/json"
	"sort"
)

// Set is an append-only collection of string identifiers. It persists as a
// JSON object mapping each member to true — the encoding the original mobile
// release used — so existing installations decode cleanly.
type Set struct {
	members map[string]bool
}

// NewSet returns an empty set.
func NewSet() Set {
	return Set{members: make(map[string]bool)}
}

// DecodeSet parses the persisted encoding. An empty raw value decodes to an
// empty set. A malformed value returns an error together with an empty set,
// so callers can apply the discard-and-reset recovery for that one key.
func DecodeSet(raw string) (Set, error) {
	s := NewSet()
	if raw == "" {
		return s, nil
	}
	var m map[string]bool
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return NewSet(), err
	}
	for id, present := range m {
		if present {
			s.members[id] = true
		}
	}
	return s, nil
}

// Add inserts id and reports whether it was newly added. Inserting an
// existing member is a no-op, which is what makes solve and unlock
// operations idempotent.
func (s *Set) Add(id string) bool {
	if s.members == nil {
		s.members = make(map[string]bool)
	}
	if s.members[id] {
		return false
	}
	s.members[id] = true
	return true
}

// Has reports membership.
func (s Set) Has(id string) bool {
	return s.members[id]
}

// Len returns the member count.
func (s Set) Len() int {
	return len(s.members)
}

// IDs returns the members in sorted order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Encode serializes the set to its persisted JSON form.
func (s Set) Encode() (string, error) {
	m := s.members
	if m == nil {
		m = map[string]bool{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
