package session

import (
	"github.com/osse101/FarmState_Go/internal/domain"
)

// View is an immutable picture of a session for renderers
type View struct {
	SessionID string
	FarmID    string
	State     State
	Snapshot  domain.GameState
	Version   int64
	// Pending counts actions not yet accepted by the authority, in flight or not
	Pending   int
	InFlight  int
	ErrorCode string
	// Operation is set while an operation is in flight
	Operation domain.OperationKind
	// Outcome is the result of the last finished operation
	Outcome domain.OperationOutcome
}

// IsBlocking reports whether a modal covers the farm
func (v View) IsBlocking() bool {
	return v.State.Blocking()
}

// HasUnsavedChanges reports whether any action awaits the authority
func (v View) HasUnsavedChanges() bool {
	return v.Pending > 0
}

// IsIn reports whether the session is in any of states
func (v View) IsIn(states ...State) bool {
	for _, s := range states {
		if v.State == s {
			return true
		}
	}
	return false
}

// CanPlay reports whether gameplay actions are accepted right now
func (v View) CanPlay() bool {
	return v.State.AcceptsActions()
}
