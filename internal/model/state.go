package model

import "fmt"

// State is an object's lifecycle state. No state removes the object from the
// ledger index: Deleted is a state, not an erasure.
type State string

const (
	StateActive     State = "Active"
	StateInProgress State = "InProgress"
	StateCompleted  State = "Completed"
	StateArchived   State = "Archived"
	StateDeleted    State = "Deleted"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateActive, StateInProgress, StateCompleted, StateArchived, StateDeleted:
		return true
	}
	return false
}

// Open reports whether the object still represents pending work.
func (s State) Open() bool {
	return s == StateActive || s == StateInProgress
}

// transitions is the allowed state graph. Active and InProgress complete via
// checkbox flips; Completed objects can be archived later; anything can be
// deleted; Deleted returns to Active only through an annotated resurrection.
var transitions = map[State][]State{
	StateActive:     {StateInProgress, StateCompleted, StateDeleted},
	StateInProgress: {StateActive, StateCompleted, StateDeleted},
	StateCompleted:  {StateArchived, StateDeleted},
	StateArchived:   {StateDeleted},
	StateDeleted:    {StateActive},
}

// CanTransition reports whether from -> to is an allowed transition.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a state change on the object.
func (o *Object) Transition(to State) error {
	if !to.Valid() {
		return fmt.Errorf("unknown state %q", to)
	}
	if !CanTransition(o.State, to) {
		return &InvalidTransitionError{ID: o.ID, From: o.State, To: to}
	}
	o.State = to
	return nil
}

// InvalidTransitionError reports a state change outside the allowed graph.
type InvalidTransitionError struct {
	ID   ID
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: invalid state transition %s -> %s", e.ID, e.From, e.To)
}
