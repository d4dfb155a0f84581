package reducer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// PlantFruit plants one fruit seed on an empty patch.
//
// Validation order: profile, patch, empty patch, fruit seed, seed in
// inventory, harvest override within the species maximum. harvestsLeft
// overrides the species default when non-nil; the harvest bonus is added
// afterwards and the total is capped at the species maximum.
func (e *Engine) PlantFruit(state domain.GameState, createdAt time.Time, action domain.PlantFruitAction, harvestsLeft *int) (domain.GameState, error) {
	if state.Bumpkin == nil {
		return state, domain.ErrNoBumpkin
	}

	index, ok := patchIndex(state, action.Index)
	if !ok {
		return state, fmt.Errorf("%w: %q", domain.ErrPlotNotFound, action.Index)
	}

	patch := state.FruitPatches[index]
	if patch.Fruit != nil {
		return state, domain.ErrAlreadyPlanted
	}

	seed, ok := e.catalog.Seed(action.Seed)
	if !ok {
		return state, fmt.Errorf("%w: %s", domain.ErrWrongSeedType, action.Seed)
	}

	seedCount := state.Inventory.Count(seed.Name)
	if seedCount.LessThan(decimal.NewFromInt(1)) {
		return state, domain.ErrInsufficientInventory
	}

	harvests := seed.DefaultHarvests
	if harvestsLeft != nil {
		if *harvestsLeft < 0 || *harvestsLeft > seed.MaxHarvests {
			return state, fmt.Errorf("%w: %d exceeds %d", domain.ErrInvalidHarvestCount, *harvestsLeft, seed.MaxHarvests)
		}
		harvests = *harvestsLeft
	}
	harvests += e.HarvestBonus(state, seed)
	if harvests > seed.MaxHarvests {
		harvests = seed.MaxHarvests
	}

	next := state.Clone()
	next.Inventory[seed.Name] = seedCount.Sub(decimal.NewFromInt(1))

	patch.Fruit = &domain.FruitPlanting{
		Name:         seed.Yield,
		Amount:       e.FruitAmount(state, seed),
		PlantedAt:    millis(createdAt) - e.GrowthShiftMillis(state, seed),
		HarvestedAt:  0,
		HarvestsLeft: harvests,
	}
	next.FruitPatches[index] = patch

	next.Bumpkin.TrackActivity(seed.Name+activityPlantedSuffix, 1)

	return next, nil
}
