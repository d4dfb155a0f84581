package reducer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// HarvestFruit collects a ready fruit patch. The readiness anchor is the
// last harvest, or the planting when the tree was never harvested.
func (e *Engine) HarvestFruit(state domain.GameState, createdAt time.Time, action domain.HarvestFruitAction) (domain.GameState, error) {
	if state.Bumpkin == nil {
		return state, domain.ErrNoBumpkin
	}

	index, ok := patchIndex(state, action.Index)
	if !ok {
		return state, fmt.Errorf("%w: %q", domain.ErrPlotNotFound, action.Index)
	}

	patch := state.FruitPatches[index]
	if patch.Fruit == nil {
		return state, domain.ErrNothingPlanted
	}
	if patch.Fruit.HarvestsLeft <= 0 {
		return state, domain.ErrNoHarvestsLeft
	}

	seed, ok := e.catalog.FruitByYield(patch.Fruit.Name)
	if !ok {
		return state, fmt.Errorf("%w: %s", domain.ErrWrongSeedType, patch.Fruit.Name)
	}

	anchor := patch.Fruit.PlantedAt
	if patch.Fruit.HarvestedAt != 0 {
		anchor = patch.Fruit.HarvestedAt
	}
	now := millis(createdAt)
	if now-anchor < seed.PlantMillis() {
		return state, domain.ErrNotReady
	}

	next := state.Clone()
	if next.Inventory == nil {
		next.Inventory = make(domain.Inventory)
	}
	harvested := patch.Fruit.Amount
	next.Inventory[seed.Yield] = next.Inventory.Count(seed.Yield).Add(harvested)

	fruit := *patch.Fruit
	fruit.HarvestsLeft--
	fruit.HarvestedAt = now - e.GrowthShiftMillis(state, seed)
	fruit.Amount = e.FruitAmount(state, seed)
	patch.Fruit = &fruit
	next.FruitPatches[index] = patch

	next.Bumpkin.TrackActivity(seed.Yield+activityHarvestedSuffix, activityAmount(harvested))

	return next, nil
}

// RemoveFruitTree chops an exhausted fruit tree with an axe, freeing the patch
func (e *Engine) RemoveFruitTree(state domain.GameState, _ time.Time, action domain.RemoveFruitTreeAction) (domain.GameState, error) {
	if state.Bumpkin == nil {
		return state, domain.ErrNoBumpkin
	}
	if action.Item != ItemAxe {
		return state, domain.ErrWrongTool
	}

	axes := state.Inventory.Count(ItemAxe)
	if axes.LessThan(decimal.NewFromInt(1)) {
		return state, domain.ErrNoAxe
	}

	index, ok := patchIndex(state, action.Index)
	if !ok {
		return state, fmt.Errorf("%w: %q", domain.ErrPlotNotFound, action.Index)
	}

	patch := state.FruitPatches[index]
	if patch.Fruit == nil {
		return state, domain.ErrNothingPlanted
	}
	if patch.Fruit.HarvestsLeft > 0 {
		return state, domain.ErrFruitStillAvailable
	}

	next := state.Clone()
	next.Inventory[ItemAxe] = axes.Sub(decimal.NewFromInt(1))
	next.Inventory[ItemWood] = next.Inventory.Count(ItemWood).Add(decimal.NewFromInt(1))

	patch.Fruit = nil
	next.FruitPatches[index] = patch

	next.Bumpkin.TrackActivity(ActivityFruitTreeRemoved, 1)

	return next, nil
}
