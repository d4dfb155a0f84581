package session

// State is one lifecycle state of a session. Exactly one is active at a time.
type State int

const (
	StateLoading State = iota
	StatePlaying
	StateAutosaving
	StateSyncing
	StateSynced
	StateError
	StateNoBumpkinFound
	StateNoTownCenter
	StateIntroduction
	StateCoolingDown
	StateHoarding
	StateSwarming
	StateRefreshing
	StatePurchasing
	StateMinting
	StateTransacting
	StateTrading
	StateTraded
	StateSniped
	StateDepositing
	StateDeposited
)

// AllStates lists every state in declaration order
var AllStates = []State{
	StateLoading, StatePlaying, StateAutosaving, StateSyncing, StateSynced, StateError,
	StateNoBumpkinFound, StateNoTownCenter, StateIntroduction, StateCoolingDown,
	StateHoarding, StateSwarming, StateRefreshing, StatePurchasing, StateMinting,
	StateTransacting, StateTrading, StateTraded, StateSniped, StateDepositing, StateDeposited,
}

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateAutosaving:
		return "autosaving"
	case StateSyncing:
		return "syncing"
	case StateSynced:
		return "synced"
	case StateError:
		return "error"
	case StateNoBumpkinFound:
		return "noBumpkinFound"
	case StateNoTownCenter:
		return "noTownCenter"
	case StateIntroduction:
		return "introduction"
	case StateCoolingDown:
		return "coolingDown"
	case StateHoarding:
		return "hoarding"
	case StateSwarming:
		return "swarming"
	case StateRefreshing:
		return "refreshing"
	case StatePurchasing:
		return "purchasing"
	case StateMinting:
		return "minting"
	case StateTransacting:
		return "transacting"
	case StateTrading:
		return "trading"
	case StateTraded:
		return "traded"
	case StateSniped:
		return "sniped"
	case StateDepositing:
		return "depositing"
	case StateDeposited:
		return "deposited"
	}
	return "unknown"
}

// Blocking reports whether the state puts a modal in front of the farm.
// Every state is listed; the exhaustive linter fails the build when a new
// state is added without a decision here.
func (s State) Blocking() bool {
	switch s {
	case StatePlaying, StateAutosaving, StateIntroduction:
		return false
	case StateLoading, StateSyncing, StateSynced, StateError,
		StateNoBumpkinFound, StateNoTownCenter,
		StateCoolingDown, StateHoarding, StateSwarming, StateRefreshing,
		StatePurchasing, StateMinting, StateTransacting, StateTrading,
		StateTraded, StateSniped, StateDepositing, StateDeposited:
		return true
	}
	return true
}

// AcceptsActions reports whether local gameplay actions can be dispatched.
// Play continues optimistically while a flush is in flight.
func (s State) AcceptsActions() bool {
	switch s {
	case StatePlaying, StateAutosaving, StateSyncing:
		return true
	case StateLoading, StateSynced, StateError,
		StateNoBumpkinFound, StateNoTownCenter, StateIntroduction,
		StateCoolingDown, StateHoarding, StateSwarming, StateRefreshing,
		StatePurchasing, StateMinting, StateTransacting, StateTrading,
		StateTraded, StateSniped, StateDepositing, StateDeposited:
		return false
	}
	return false
}

// isFlushing reports whether a sync attempt is in flight in s
func (s State) isFlushing() bool {
	return s == StateAutosaving || s == StateSyncing
}

// isOperation reports whether s is an in-flight external operation
func (s State) isOperation() bool {
	switch s {
	case StatePurchasing, StateMinting, StateTransacting, StateTrading, StateDepositing:
		return true
	default:
		return false
	}
}
