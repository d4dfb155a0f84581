package reducer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FarmState_Go/internal/domain"
)

func plantedState(t *testing.T, e *Engine, seed string) domain.GameState {
	t.Helper()
	state := farmState()
	state.Inventory[seed] = qty(1)
	planted, err := e.PlantFruit(state, dateNow, domain.PlantFruitAction{Index: "0", Seed: seed}, nil)
	require.NoError(t, err)
	return planted
}

func TestHarvestFruit(t *testing.T) {
	e := newTestEngine(t)
	apple, _ := e.Catalog().Seed("Apple Seed")
	ready := dateNow.Add(time.Duration(apple.PlantSeconds) * time.Second)

	t.Run("not ready", func(t *testing.T) {
		state := plantedState(t, e, "Apple Seed")
		_, err := e.HarvestFruit(state, ready.Add(-time.Second), domain.HarvestFruitAction{Index: "0"})
		assert.ErrorIs(t, err, domain.ErrNotReady)
	})

	t.Run("nothing planted", func(t *testing.T) {
		_, err := e.HarvestFruit(farmState(), ready, domain.HarvestFruitAction{Index: "1"})
		assert.ErrorIs(t, err, domain.ErrNothingPlanted)
	})

	t.Run("bad index", func(t *testing.T) {
		_, err := e.HarvestFruit(farmState(), ready, domain.HarvestFruitAction{Index: "0.5"})
		assert.ErrorIs(t, err, domain.ErrPlotNotFound)
	})

	t.Run("harvests ready fruit", func(t *testing.T) {
		state := plantedState(t, e, "Apple Seed")
		got, err := e.HarvestFruit(state, ready, domain.HarvestFruitAction{Index: "0"})
		require.NoError(t, err)

		assert.Equal(t, "1", got.Inventory["Apple"].String())
		fruit := got.FruitPatches[0].Fruit
		assert.Equal(t, 2, fruit.HarvestsLeft)
		assert.Equal(t, ready.UnixMilli(), fruit.HarvestedAt)
		assert.Equal(t, float64(1), got.Bumpkin.Activity["Apple Harvested"])

		// Next harvest counts from the last one
		_, err = e.HarvestFruit(got, ready.Add(time.Minute), domain.HarvestFruitAction{Index: "0"})
		assert.ErrorIs(t, err, domain.ErrNotReady)
	})

	t.Run("no harvests left", func(t *testing.T) {
		state := plantedState(t, e, "Apple Seed")
		p := state.FruitPatches[0]
		p.Fruit.HarvestsLeft = 0
		state.FruitPatches[0] = p
		_, err := e.HarvestFruit(state, ready, domain.HarvestFruitAction{Index: "0"})
		assert.ErrorIs(t, err, domain.ErrNoHarvestsLeft)
	})

	t.Run("growth bonus carries to the next cycle", func(t *testing.T) {
		state := withCollectible(farmState(), "Squirrel Monkey")
		state.Inventory["Orange Seed"] = qty(1)
		orange, _ := e.Catalog().Seed("Orange Seed")
		planted, err := e.PlantFruit(state, dateNow, domain.PlantFruitAction{Index: "0", Seed: "Orange Seed"}, nil)
		require.NoError(t, err)

		half := time.Duration(orange.PlantSeconds/2) * time.Second
		got, err := e.HarvestFruit(planted, dateNow.Add(half), domain.HarvestFruitAction{Index: "0"})
		require.NoError(t, err)
		assert.Equal(t, dateNow.Add(half).UnixMilli()-orange.PlantMillis()/2, got.FruitPatches[0].Fruit.HarvestedAt)

		_, err = e.HarvestFruit(got, dateNow.Add(2*half), domain.HarvestFruitAction{Index: "0"})
		assert.NoError(t, err)
	})
}

func TestRemoveFruitTree(t *testing.T) {
	e := newTestEngine(t)

	exhausted := func() domain.GameState {
		state := plantedState(t, e, "Apple Seed")
		p := state.FruitPatches[0]
		p.Fruit.HarvestsLeft = 0
		state.FruitPatches[0] = p
		state.Inventory[ItemAxe] = qty(1)
		return state
	}

	t.Run("wrong tool", func(t *testing.T) {
		_, err := e.RemoveFruitTree(exhausted(), dateNow, domain.RemoveFruitTreeAction{Index: "0", Item: "Pickaxe"})
		assert.ErrorIs(t, err, domain.ErrWrongTool)
	})

	t.Run("no axe", func(t *testing.T) {
		state := exhausted()
		state.Inventory[ItemAxe] = qty(0)
		_, err := e.RemoveFruitTree(state, dateNow, domain.RemoveFruitTreeAction{Index: "0", Item: ItemAxe})
		assert.ErrorIs(t, err, domain.ErrNoAxe)
	})

	t.Run("fruit still available", func(t *testing.T) {
		state := plantedState(t, e, "Apple Seed")
		state.Inventory[ItemAxe] = qty(1)
		_, err := e.RemoveFruitTree(state, dateNow, domain.RemoveFruitTreeAction{Index: "0", Item: ItemAxe})
		assert.ErrorIs(t, err, domain.ErrFruitStillAvailable)
	})

	t.Run("removes tree", func(t *testing.T) {
		got, err := e.RemoveFruitTree(exhausted(), dateNow, domain.RemoveFruitTreeAction{Index: "0", Item: ItemAxe})
		require.NoError(t, err)
		assert.Nil(t, got.FruitPatches[0].Fruit)
		assert.Equal(t, "0", got.Inventory[ItemAxe].String())
		assert.Equal(t, "1", got.Inventory[ItemWood].String())
		assert.Equal(t, float64(1), got.Bumpkin.Activity[ActivityFruitTreeRemoved])
	})
}
