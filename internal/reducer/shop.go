package reducer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// BuySeed spends balance on fruit seeds at the catalog price
func (e *Engine) BuySeed(state domain.GameState, _ time.Time, action domain.BuySeedAction) (domain.GameState, error) {
	if state.Bumpkin == nil {
		return state, domain.ErrNoBumpkin
	}

	seed, ok := e.catalog.Seed(action.Item)
	if !ok {
		return state, fmt.Errorf("%w: %s", domain.ErrUnknownItem, action.Item)
	}
	if action.Amount < 1 {
		return state, fmt.Errorf("%w: %d", domain.ErrInvalidAmount, action.Amount)
	}

	amount := decimal.NewFromInt(int64(action.Amount))
	total := seed.Price.Mul(amount)
	if state.Balance.LessThan(total) {
		return state, domain.ErrInsufficientFunds
	}

	next := state.Clone()
	if next.Inventory == nil {
		next.Inventory = make(domain.Inventory)
	}
	next.Balance = state.Balance.Sub(total)
	next.Inventory[seed.Name] = next.Inventory.Count(seed.Name).Add(amount)

	next.Bumpkin.TrackActivity(ActivitySFLSpent, activityAmount(total))
	next.Bumpkin.TrackActivity(seed.Name+activityBoughtSuffix, float64(action.Amount))

	return next, nil
}
