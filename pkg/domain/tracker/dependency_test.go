package tracker

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDependencySetAddIdempotent(t *testing.T) {
	var s DependencySet
	s.Add(3)
	s.Add(3)
	s.Add(1)

	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
	if got := s.Values(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("values = %v, want [1 3]", got)
	}
}

func TestDependencySetRemoveNonMemberIsNoOp(t *testing.T) {
	var s DependencySet
	s.Add(1)
	s.Remove(42)
	s.Remove(42)

	if !s.Contains(1) || s.Len() != 1 {
		t.Errorf("set changed by removing a non-member: %v", s.Values())
	}

	s.Remove(1)
	if s.Contains(1) || s.Len() != 0 {
		t.Errorf("remove of a member failed: %v", s.Values())
	}
}

func TestDependencySetSelfReferenceAccepted(t *testing.T) {
	// No existence check: a task may depend on itself or on an id that
	// does not exist. The tracked contract accepts both.
	var s DependencySet
	s.Add(7)
	s.Add(9999)
	if !s.Contains(7) || !s.Contains(9999) {
		t.Errorf("values = %v", s.Values())
	}
}

func TestDependencySetJSONRoundTrip(t *testing.T) {
	var s DependencySet
	s.Add(5)
	s.Add(2)
	s.Add(11)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[2,5,11]" {
		t.Errorf("marshal = %s, want sorted [2,5,11]", data)
	}

	var back DependencySet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Values(), s.Values()) {
		t.Errorf("round trip = %v, want %v", back.Values(), s.Values())
	}
}

func TestDependencySetMarshalEmptyAsArray(t *testing.T) {
	var s DependencySet
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty set = %s, want []", data)
	}
}
