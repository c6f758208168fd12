package tracker

import "time"

// Task is a unit of work within a project. Its identifier is unique
// within the owning project and immutable; everything else is mutable
// through the methods below. The activity log only grows.
type Task struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	State        State         `json:"state"`
	Dependencies DependencySet `json:"dependencies"`
	Log          ActivityLog   `json:"log"`
}

// NewTask creates a task in the initial state with an Opened entry
// recording its creation time.
func NewTask(id int, title, description string, at time.Time) *Task {
	t := &Task{
		ID:          id,
		Title:       title,
		Description: description,
		State:       InitialState,
	}
	t.Log.Append(NewOpenedEntry(at))
	return t
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	out := *t
	out.Dependencies = t.Dependencies.Clone()
	out.Log = t.Log.Clone()
	return &out
}

// SetState runs the state machine to the requested state and appends the
// matching StateChangedTo entry. Log append and state update are one
// unit; callers persist the registry before acknowledging.
func (t *Task) SetState(target State, at time.Time) error {
	sm, err := NewTaskStateMachine(t.State, t.ID)
	if err != nil {
		return err
	}
	if err := sm.Transition(target); err != nil {
		return err
	}
	t.Log.Append(NewStateEntry(at, target))
	t.State = sm.Current()
	return nil
}

// AddComment appends a comment entry. No length or content constraints.
func (t *Task) AddComment(text string, at time.Time) {
	t.Log.Append(NewCommentEntry(at, text))
}

// CurrentState derives the state from the activity log: the state of the
// most recent StateChangedTo entry, or the initial state when the log has
// none. Task.State is kept equal to this at all times.
func (t *Task) CurrentState() State {
	if state, ok := t.Log.LastState(); ok {
		return state
	}
	return InitialState
}
