// Package dispatcher applies ordered batches of actions through the reducer
// registry. A batch either applies completely or not at all.
package dispatcher

import (
	"fmt"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/reducer"
)

// AccessChecker is the feature-flag predicate consulted before gated actions
type AccessChecker interface {
	HasAccess(state domain.GameState, feature string) bool
}

// BatchError reports the action that aborted a batch
type BatchError struct {
	Index  int
	Action domain.Action
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("action %d (%s %s) failed: %v", e.Index, e.Action.Type, e.Action.ID, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Dispatcher routes actions to their reducers
type Dispatcher struct {
	registry *reducer.Registry
	access   AccessChecker
}

// New creates a dispatcher. A nil access checker denies every gated action.
func New(registry *reducer.Registry, access AccessChecker) *Dispatcher {
	return &Dispatcher{registry: registry, access: access}
}

// Apply runs one action against state at the action's creation time
func (d *Dispatcher) Apply(state domain.GameState, action domain.Action) (domain.GameState, error) {
	entry, ok := d.registry.Lookup(action.Type)
	if !ok {
		return state, fmt.Errorf("%w: %s", domain.ErrUnknownAction, action.Type)
	}

	if entry.Feature != nil {
		if feature := entry.Feature(action); feature != "" {
			if d.access == nil || !d.access.HasAccess(state, feature) {
				return state, fmt.Errorf("%w: %s requires %s", domain.ErrActionNotPermitted, action.Type, feature)
			}
		}
	}

	return entry.Reduce(state, action.CreatedAt, action)
}

// ApplyBatch applies actions strictly in the given order, threading each
// result into the next. On the first failure it returns the original state
// together with a *BatchError; no intermediate result escapes.
func (d *Dispatcher) ApplyBatch(state domain.GameState, actions []domain.Action) (domain.GameState, error) {
	current := state
	for i, action := range actions {
		if i > 0 && action.CreatedAt.Before(actions[i-1].CreatedAt) {
			return state, &BatchError{Index: i, Action: action, Err: domain.ErrOutOfOrder}
		}

		next, err := d.Apply(current, action)
		if err != nil {
			return state, &BatchError{Index: i, Action: action, Err: err}
		}
		current = next
	}
	return current, nil
}
