package tracker

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Machine state constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID
// compatibility. Values are kept in sync with the State constants.
const (
	MachineTodo       = "Todo"
	MachineInProgress = "InProgress"
	MachineBlocked    = "Blocked"
	MachineDone       = "Done"
)

// init validates at startup that the machine state constants match the
// State values, so the FSM and the value object stay in sync.
func init() {
	stateMap := map[string]State{
		MachineTodo:       StateTodo,
		MachineInProgress: StateInProgress,
		MachineBlocked:    StateBlocked,
		MachineDone:       StateDone,
	}

	for machineState, state := range stateMap {
		if machineState != string(state) {
			panic(fmt.Sprintf("machine state %q does not match State %q - constants are out of sync", machineState, state))
		}
	}
}

// TaskContext carries transition data.
type TaskContext struct {
	TaskID int
}

// TaskStateMachine models the task lifecycle. The tracked contract places
// no precondition on transitions: every state is reachable from every
// other state, self-transitions included, and dependency completion is
// not a gate. Each event is named after the state it targets.
type TaskStateMachine struct {
	interpreter *statekit.Interpreter[TaskContext]
}

// NewTaskStateMachine builds a machine positioned at the given state.
func NewTaskStateMachine(initial State, taskID int) (*TaskStateMachine, error) {
	builder := statekit.NewMachine[TaskContext]("task-machine").
		WithInitial(statekit.StateID(initial.String())).
		WithContext(TaskContext{TaskID: taskID})

	// Every state accepts every event, self-transitions included.
	builder.State(MachineTodo).
		On("Todo").Target(MachineTodo).
		On("InProgress").Target(MachineInProgress).
		On("Blocked").Target(MachineBlocked).
		On("Done").Target(MachineDone).
		Done()

	builder.State(MachineInProgress).
		On("Todo").Target(MachineTodo).
		On("InProgress").Target(MachineInProgress).
		On("Blocked").Target(MachineBlocked).
		On("Done").Target(MachineDone).
		Done()

	builder.State(MachineBlocked).
		On("Todo").Target(MachineTodo).
		On("InProgress").Target(MachineInProgress).
		On("Blocked").Target(MachineBlocked).
		On("Done").Target(MachineDone).
		Done()

	builder.State(MachineDone).
		On("Todo").Target(MachineTodo).
		On("InProgress").Target(MachineInProgress).
		On("Blocked").Target(MachineBlocked).
		On("Done").Target(MachineDone).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &TaskStateMachine{interpreter: interpreter}, nil
}

// Transition moves the task to the requested state. The target doubles as
// the event name, so any valid state is accepted from anywhere.
func (sm *TaskStateMachine) Transition(target State) error {
	if !target.IsValid() {
		return fmt.Errorf("invalid task state: %s", target)
	}
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(target.String())})
	if sm.Current() != target {
		return fmt.Errorf("transition to '%s' did not take effect from '%s'", target, sm.Current())
	}
	return nil
}

// Current returns the current state.
func (sm *TaskStateMachine) Current() State {
	return State(sm.interpreter.State().Value)
}
