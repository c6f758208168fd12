package tracker

import (
	"encoding/json"
	"fmt"
)

// State is the lifecycle state of a task.
type State string

const (
	StateTodo       State = "Todo"
	StateInProgress State = "InProgress"
	StateBlocked    State = "Blocked"
	StateDone       State = "Done"
)

// InitialState is the state every task starts in.
const InitialState = StateTodo

// AllStates returns all valid task states.
func AllStates() []State {
	return []State{
		StateTodo,
		StateInProgress,
		StateBlocked,
		StateDone,
	}
}

// IsValid returns true if the state is part of the closed enumeration.
func (s State) IsValid() bool {
	switch s {
	case StateTodo, StateInProgress, StateBlocked, StateDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// ParseState parses a string into a State.
func ParseState(s string) (State, error) {
	state := State(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid task state: %s", s)
	}
	return state, nil
}

// MustParseState parses a string into a State, panicking on error.
func MustParseState(s string) State {
	state, err := ParseState(s)
	if err != nil {
		panic(err)
	}
	return state
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Accept empty string as the initial state for documents written
	// before the state field existed.
	if str == "" {
		*s = InitialState
		return nil
	}

	state := State(str)
	if !state.IsValid() {
		return fmt.Errorf("invalid task state: %s", str)
	}

	*s = state
	return nil
}
