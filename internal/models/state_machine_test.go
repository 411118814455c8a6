package models

import "testing"

func TestStateMachineInitialState(t *testing.T) {
	sm := NewStateMachine()
	if sm.Current() != StateIdle {
		t.Errorf("initial state = %s, want idle", sm.Current())
	}
	if !sm.CanWrite() {
		t.Error("a fresh machine must allow writing")
	}
}

func TestStateMachineWriteSettleCycle(t *testing.T) {
	sm := NewStateMachine()

	if err := sm.Transition(StateContractOpen, "call_written"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if sm.CanWrite() {
		t.Error("writing must be blocked while a contract is open")
	}

	if err := sm.Transition(StateIdle, "expired_worthless"); err != nil {
		t.Fatalf("expiry: %v", err)
	}
	if !sm.CanWrite() {
		t.Error("writing must be allowed again after expiry")
	}

	if sm.WriteCount() != 1 {
		t.Errorf("WriteCount = %d, want 1", sm.WriteCount())
	}
	if sm.AssignmentCount() != 0 {
		t.Errorf("AssignmentCount = %d, want 0", sm.AssignmentCount())
	}
}

func TestStateMachineAssignmentPaths(t *testing.T) {
	tests := []struct {
		condition string
		to        ContractState
		canWrite  bool
	}{
		{"assigned_cash_settled", StateIdle, true},
		{"assigned_repurchased", StateIdle, true},
		{"assigned_no_repurchase", StateLegClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			sm := NewStateMachine()
			if err := sm.Transition(StateContractOpen, "call_written"); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := sm.Transition(tt.to, tt.condition); err != nil {
				t.Fatalf("settle: %v", err)
			}
			if sm.CanWrite() != tt.canWrite {
				t.Errorf("CanWrite = %v, want %v", sm.CanWrite(), tt.canWrite)
			}
			if sm.AssignmentCount() != 1 {
				t.Errorf("AssignmentCount = %d, want 1", sm.AssignmentCount())
			}
		})
	}
}

func TestStateMachineRejectsInvalidTransitions(t *testing.T) {
	sm := NewStateMachine()

	// Settling while idle.
	if err := sm.Transition(StateIdle, "expired_worthless"); err == nil {
		t.Error("settling from idle should fail")
	}

	// Writing over an open contract.
	if err := sm.Transition(StateContractOpen, "call_written"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sm.Transition(StateContractOpen, "call_written"); err != nil {
		if sm.Current() != StateContractOpen {
			t.Errorf("failed transition changed state to %s", sm.Current())
		}
	} else {
		t.Error("double write should fail")
	}

	// Valid endpoint, wrong condition.
	if err := sm.Transition(StateIdle, "call_written"); err == nil {
		t.Error("open->idle under call_written should fail")
	}

	// Leg closed is terminal.
	if err := sm.Transition(StateLegClosed, "assigned_no_repurchase"); err != nil {
		t.Fatalf("assignment: %v", err)
	}
	if err := sm.Transition(StateContractOpen, "call_written"); err == nil {
		t.Error("writing from leg_closed should fail")
	}
}

func TestStateMachineReset(t *testing.T) {
	sm := NewStateMachine()
	if err := sm.Transition(StateContractOpen, "call_written"); err != nil {
		t.Fatalf("write: %v", err)
	}
	sm.Reset()

	if sm.Current() != StateIdle || sm.WriteCount() != 0 {
		t.Errorf("Reset left state=%s writes=%d", sm.Current(), sm.WriteCount())
	}
	if sm.TransitionCount(StateContractOpen) != 0 {
		t.Error("Reset did not clear transition counts")
	}
}
