package session

import (
	"github.com/osse101/FarmState_Go/internal/domain"
)

// EventKind is an external trigger the machine reacts to
type EventKind int

const (
	// EventSave is an explicit save: playing → syncing
	EventSave EventKind = iota
	// EventAutosave is the autosave timer: playing → autosaving
	EventAutosave
	// EventBlur is visibility loss; it saves like the timer does
	EventBlur
	// EventRetry leaves error by reloading from the authority
	EventRetry
	// EventAcknowledge dismisses an error, a notice or an entry gate
	EventAcknowledge
	// EventContinue dismisses a terminal outcome (synced, traded, sniped, deposited)
	EventContinue
	// EventRefresh reloads the authority snapshot and rebases pending actions
	EventRefresh
	// EventOperation starts an external operation; Event.Operation says which
	EventOperation
)

func (k EventKind) String() string {
	switch k {
	case EventSave:
		return "save"
	case EventAutosave:
		return "autosave"
	case EventBlur:
		return "blur"
	case EventRetry:
		return "retry"
	case EventAcknowledge:
		return "acknowledge"
	case EventContinue:
		return "continue"
	case EventRefresh:
		return "refresh"
	case EventOperation:
		return "operation"
	}
	return "unknown"
}

// Event is one trigger sent to the machine
type Event struct {
	Kind      EventKind
	Operation domain.OperationKind
	Params    domain.OperationParams
}

// operationState is the in-flight state for each operation kind
func operationState(kind domain.OperationKind) (State, bool) {
	switch kind {
	case domain.OperationPurchase:
		return StatePurchasing, true
	case domain.OperationMint:
		return StateMinting, true
	case domain.OperationTransact:
		return StateTransacting, true
	case domain.OperationTrade:
		return StateTrading, true
	case domain.OperationDeposit:
		return StateDepositing, true
	}
	return StatePlaying, false
}

// outcomeState is where a finished operation lands
func outcomeState(outcome domain.OperationOutcome) State {
	switch outcome {
	case domain.OutcomeTraded:
		return StateTraded
	case domain.OutcomeSniped:
		return StateSniped
	case domain.OutcomeDeposited:
		return StateDeposited
	case domain.OutcomeCompleted:
		return StateSynced
	}
	return StateSynced
}
