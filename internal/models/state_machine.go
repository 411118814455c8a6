package models

import "fmt"

// ContractState represents where the covered-call position sits in its
// write/settle cycle.
type ContractState string

const (
	// StateIdle means shares are held with no open contract.
	StateIdle ContractState = "idle"
	// StateContractOpen means shares are held with a written call against them.
	StateContractOpen ContractState = "contract_open"
	// StateLegClosed means shares were called away and not repurchased; the
	// covered-call leg is done for the remainder of the run.
	StateLegClosed ContractState = "leg_closed"
)

// StateTransition defines one valid state transition.
type StateTransition struct {
	From        ContractState
	To          ContractState
	Condition   string
	Description string
}

// ValidTransitions enumerates the covered-call lifecycle.
var ValidTransitions = []StateTransition{
	{StateIdle, StateContractOpen, "call_written", "Call written, premium collected"},
	{StateContractOpen, StateIdle, "expired_worthless", "Spot at or below strike, shares retained"},
	{StateContractOpen, StateIdle, "assigned_cash_settled", "Intrinsic value paid out, shares retained"},
	{StateContractOpen, StateIdle, "assigned_repurchased", "Shares called away and repurchased at spot"},
	{StateContractOpen, StateLegClosed, "assigned_no_repurchase", "Shares called away, leg terminated"},
}

// StateMachine tracks the contract lifecycle and rejects out-of-order
// events, e.g. settling while idle or writing over an open contract.
type StateMachine struct {
	transitionCount map[ContractState]int
	currentState    ContractState
	previousState   ContractState
	writeCount      int
	assignmentCount int
}

// NewStateMachine creates a state machine in the idle state.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		currentState:    StateIdle,
		previousState:   StateIdle,
		transitionCount: make(map[ContractState]int),
	}
}

// Current returns the current state.
func (sm *StateMachine) Current() ContractState {
	return sm.currentState
}

// Previous returns the previous state.
func (sm *StateMachine) Previous() ContractState {
	return sm.previousState
}

// CanWrite returns true if a new call may be written now.
func (sm *StateMachine) CanWrite() bool {
	return sm.currentState == StateIdle
}

// IsValidTransition checks whether moving to `to` under `condition` is
// defined, without performing it.
func (sm *StateMachine) IsValidTransition(to ContractState, condition string) error {
	for _, t := range ValidTransitions {
		if t.From == sm.currentState && t.To == to && t.Condition == condition {
			return nil
		}
	}
	return fmt.Errorf("invalid transition from %s to %s with condition %q",
		sm.currentState, to, condition)
}

// Transition moves to a new state.
func (sm *StateMachine) Transition(to ContractState, condition string) error {
	if err := sm.IsValidTransition(to, condition); err != nil {
		return err
	}

	sm.previousState = sm.currentState
	sm.currentState = to
	sm.transitionCount[to]++

	if condition == "call_written" {
		sm.writeCount++
	}
	if condition == "assigned_cash_settled" || condition == "assigned_repurchased" ||
		condition == "assigned_no_repurchase" {
		sm.assignmentCount++
	}
	return nil
}

// TransitionCount returns how many times the machine has entered a state.
func (sm *StateMachine) TransitionCount(state ContractState) int {
	return sm.transitionCount[state]
}

// WriteCount returns the number of calls written so far.
func (sm *StateMachine) WriteCount() int {
	return sm.writeCount
}

// AssignmentCount returns the number of contracts that finished in the money.
func (sm *StateMachine) AssignmentCount() int {
	return sm.assignmentCount
}

// Reset returns the machine to the idle state with cleared counters.
func (sm *StateMachine) Reset() {
	sm.currentState = StateIdle
	sm.previousState = StateIdle
	sm.transitionCount = make(map[ContractState]int)
	sm.writeCount = 0
	sm.assignmentCount = 0
}
