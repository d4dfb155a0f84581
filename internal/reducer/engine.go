// Package reducer holds the pure action reducers. Every reducer validates its
// preconditions in a fixed order, fails with the first typed error it meets,
// and otherwise returns a new snapshot built from a clone of its input.
package reducer

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/bonus"
	"github.com/osse101/FarmState_Go/internal/catalog"
	"github.com/osse101/FarmState_Go/internal/domain"
)

// Engine provides the reducers over one catalog (no I/O)
type Engine struct {
	catalog *catalog.Catalog
	bonuses *bonus.Resolver
}

// NewEngine creates a reducer engine for the catalog
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c, bonuses: bonus.NewResolver(c)}
}

// Catalog returns the catalog the engine reads species from
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// FruitAmount is the bonus-adjusted yield of one harvest of seed
func (e *Engine) FruitAmount(state domain.GameState, seed catalog.FruitSeed) decimal.Decimal {
	res := e.bonuses.Resolve(state, catalog.EffectFruitYield, seed.Yield)
	return res.Apply(decimal.NewFromInt(BaseFruitAmount)).Round(AmountPrecision)
}

// GrowthShiftMillis is how far a growth bonus moves the readiness anchor
// into the past. Durations stay at their base value so every readiness check
// is anchor + base duration.
func (e *Engine) GrowthShiftMillis(state domain.GameState, seed catalog.FruitSeed) int64 {
	base := seed.PlantMillis()
	res := e.bonuses.Resolve(state, catalog.EffectFruitGrowthTime, seed.Name)
	if res.IsNeutral() {
		return 0
	}
	effective := res.Apply(decimal.NewFromInt(base)).IntPart()
	if effective < 0 {
		effective = 0
	}
	if effective > base {
		return 0
	}
	return base - effective
}

// HarvestBonus is the extra harvest count granted for seed
func (e *Engine) HarvestBonus(state domain.GameState, seed catalog.FruitSeed) int {
	res := e.bonuses.Resolve(state, catalog.EffectFruitHarvests, seed.Name)
	return int(res.Offset.IntPart())
}

// patchIndex resolves a wire index to an existing fruit patch key.
// Fractional, negative and unknown indices are all treated as not found.
func patchIndex(state domain.GameState, raw string) (int, bool) {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, false
	}
	if _, ok := state.FruitPatches[idx]; !ok {
		return 0, false
	}
	return idx, true
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func activityAmount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
