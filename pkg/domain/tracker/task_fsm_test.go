package tracker

import "testing"

func TestTaskStateMachineAllTransitionsAllowed(t *testing.T) {
	// The contract places no precondition on transitions: every state is
	// reachable from every other state, self-transitions included.
	for _, from := range AllStates() {
		for _, to := range AllStates() {
			sm, err := NewTaskStateMachine(from, 0)
			if err != nil {
				t.Fatalf("build machine at %s: %v", from, err)
			}
			if err := sm.Transition(to); err != nil {
				t.Errorf("%s -> %s: %v", from, to, err)
			}
			if sm.Current() != to {
				t.Errorf("%s -> %s: current = %s", from, to, sm.Current())
			}
		}
	}
}

func TestTaskStateMachineRejectsUnknownState(t *testing.T) {
	sm, err := NewTaskStateMachine(StateTodo, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := sm.Transition(State("Paused")); err == nil {
		t.Error("expected error for state outside the enumeration")
	}
	if sm.Current() != StateTodo {
		t.Errorf("current = %s, want Todo", sm.Current())
	}
}
