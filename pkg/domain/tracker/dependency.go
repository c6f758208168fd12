package tracker

import (
	"encoding/json"
	"sort"
)

// DependencySet holds the identifiers a task depends on. It has set
// semantics: adding a member twice is the same as adding it once, and
// removing a non-member is a no-op. Members are plain identifier values;
// no existence check is performed against them, so a dependency may
// reference a task that does not exist, including the task itself. That
// looseness is part of the tracked contract, not an oversight.
type DependencySet struct {
	members map[int]struct{}
}

// Add inserts an identifier into the set. Idempotent.
func (s *DependencySet) Add(id int) {
	if s.members == nil {
		s.members = make(map[int]struct{})
	}
	s.members[id] = struct{}{}
}

// Remove deletes an identifier from the set. Removing a non-member does
// nothing.
func (s *DependencySet) Remove(id int) {
	delete(s.members, id)
}

// Clone returns an independent copy of the set.
func (s DependencySet) Clone() DependencySet {
	var out DependencySet
	for id := range s.members {
		out.Add(id)
	}
	return out
}

// Contains reports whether the identifier is a member.
func (s *DependencySet) Contains(id int) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of members.
func (s *DependencySet) Len() int {
	return len(s.members)
}

// Values returns the members in ascending order.
func (s *DependencySet) Values() []int {
	out := make([]int, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// MarshalJSON implements json.Marshaler. The set serializes as a sorted
// array so the persisted document is deterministic.
func (s DependencySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *DependencySet) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	s.members = nil
	for _, id := range ids {
		s.Add(id)
	}
	return nil
}
