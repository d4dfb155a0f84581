package reducer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// PlaceCollectible puts one more owned copy of a collectible on the farm.
// Its bonus, if any, is active from the next action on.
func (e *Engine) PlaceCollectible(state domain.GameState, createdAt time.Time, action domain.PlaceCollectibleAction) (domain.GameState, error) {
	if state.Bumpkin == nil {
		return state, domain.ErrNoBumpkin
	}

	owned := state.Inventory.Count(action.Name)
	placed := state.Collectibles[action.Name]
	if !owned.GreaterThan(decimal.NewFromInt(int64(len(placed)))) {
		return state, fmt.Errorf("%w: %s", domain.ErrNoCollectibleAvailable, action.Name)
	}

	for _, p := range placed {
		if p.ID == action.ID {
			return state, fmt.Errorf("%w: %s", domain.ErrDuplicatePlacementID, action.ID)
		}
	}

	next := state.Clone()
	if next.Collectibles == nil {
		next.Collectibles = make(map[string][]domain.Placement)
	}
	now := millis(createdAt)
	next.Collectibles[action.Name] = append(next.Collectibles[action.Name], domain.Placement{
		ID:          action.ID,
		Coordinates: action.Coordinates,
		CreatedAt:   now,
		ReadyAt:     now,
	})

	return next, nil
}

// PlaceBud puts an owned bud on the farm so its type bonus activates
func (e *Engine) PlaceBud(state domain.GameState, _ time.Time, action domain.PlaceBudAction) (domain.GameState, error) {
	bud, ok := state.Buds[action.ID]
	if !ok {
		return state, fmt.Errorf("%w: %d", domain.ErrBudNotFound, action.ID)
	}
	if bud.IsPlaced() {
		return state, domain.ErrBudAlreadyPlaced
	}

	next := state.Clone()
	coords := action.Coordinates
	bud.Coordinates = &coords
	next.Buds[action.ID] = bud

	return next, nil
}
