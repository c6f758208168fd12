package tracker

import (
	"testing"
	"time"
)

func TestNewTaskOpensInInitialState(t *testing.T) {
	at := time.Unix(1000, 0)
	task := NewTask(0, "T", "x", at)

	if task.State != InitialState {
		t.Errorf("state = %s, want %s", task.State, InitialState)
	}
	if task.Log.Len() != 1 {
		t.Fatalf("log len = %d, want 1 (Opened)", task.Log.Len())
	}
	entry, _ := task.Log.Last()
	if entry.Kind != EntryOpened {
		t.Errorf("entry kind = %s, want Opened", entry.Kind)
	}
}

func TestSetStateAppendsLogAndUpdatesState(t *testing.T) {
	at := time.Unix(1000, 0)
	task := NewTask(0, "T", "x", at)

	if err := task.SetState(StateBlocked, at.Add(time.Second)); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	if task.State != StateBlocked {
		t.Errorf("state = %s, want Blocked", task.State)
	}
	entry, _ := task.Log.Last()
	if entry.Kind != EntryStateChangedTo || entry.State != StateBlocked {
		t.Errorf("last entry = %+v", entry)
	}
}

func TestStateAlwaysMatchesLatestStateEntry(t *testing.T) {
	at := time.Unix(1000, 0)
	task := NewTask(3, "T", "", at)

	sequence := []State{StateInProgress, StateBlocked, StateBlocked, StateDone, StateTodo}
	for i, s := range sequence {
		if err := task.SetState(s, at.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("SetState(%s): %v", s, err)
		}
		if task.State != task.CurrentState() {
			t.Fatalf("after %s: State=%s, derived=%s", s, task.State, task.CurrentState())
		}
	}

	if task.State != StateTodo {
		t.Errorf("final state = %s, want Todo", task.State)
	}
	if task.Log.Len() != 1+len(sequence) {
		t.Errorf("log len = %d, want %d", task.Log.Len(), 1+len(sequence))
	}
}

func TestLogTimestampsNonDecreasing(t *testing.T) {
	at := time.Unix(1000, 0)
	task := NewTask(0, "T", "", at)
	task.AddComment("a", at.Add(time.Second))
	if err := task.SetState(StateDone, at.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	task.AddComment("b", at.Add(2*time.Second))

	entries := task.Log.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Errorf("entry %d timestamp %v before entry %d timestamp %v",
				i, entries[i].Timestamp, i-1, entries[i-1].Timestamp)
		}
	}
}
