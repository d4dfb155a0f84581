package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/repository"
)

// operation applies one blocking operation on top of the replayed batch.
// Failures that are the player's fault are *domain.ActionError values.
type operation func(ctx context.Context, tx repository.FarmTx, farmID string, state domain.GameState, p domain.OperationParams) (domain.GameState, domain.OperationOutcome, error)

func operationFor(kind domain.OperationKind) (operation, error) {
	switch kind {
	case domain.OperationPurchase:
		return purchase, nil
	case domain.OperationMint:
		return mint, nil
	case domain.OperationTransact:
		return transact, nil
	case domain.OperationTrade:
		return trade, nil
	case domain.OperationDeposit:
		return deposit, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOperation, kind)
}

// purchase buys Amount of Item for Price
func purchase(_ context.Context, _ repository.FarmTx, _ string, state domain.GameState, p domain.OperationParams) (domain.GameState, domain.OperationOutcome, error) {
	return acquire(state, p)
}

// mint creates Amount of Item, paying Price as the minting fee
func mint(_ context.Context, _ repository.FarmTx, _ string, state domain.GameState, p domain.OperationParams) (domain.GameState, domain.OperationOutcome, error) {
	return acquire(state, p)
}

func acquire(state domain.GameState, p domain.OperationParams) (domain.GameState, domain.OperationOutcome, error) {
	amount, err := itemAmount(p)
	if err != nil {
		return state, "", err
	}
	next := state.Clone()
	if err := debitBalance(&next, p.Price); err != nil {
		return state, "", err
	}
	credit(&next, p.Item, amount)
	return next, domain.OutcomeCompleted, nil
}

// transact sells Amount of Item for Price
func transact(_ context.Context, _ repository.FarmTx, _ string, state domain.GameState, p domain.OperationParams) (domain.GameState, domain.OperationOutcome, error) {
	amount, err := itemAmount(p)
	if err != nil {
		return state, "", err
	}
	if p.Price.IsNegative() {
		return state, "", domain.ErrInvalidAmount
	}
	next := state.Clone()
	if err := debit(&next, p.Item, amount); err != nil {
		return state, "", err
	}
	next.Balance = next.Balance.Add(p.Price)
	return next, domain.OutcomeCompleted, nil
}

// deposit brings Item (or, without an item, Price worth of balance) into the farm
func deposit(_ context.Context, _ repository.FarmTx, _ string, state domain.GameState, p domain.OperationParams) (domain.GameState, domain.OperationOutcome, error) {
	next := state.Clone()
	if p.Item == "" {
		if !p.Price.IsPositive() {
			return state, "", domain.ErrInvalidAmount
		}
		next.Balance = next.Balance.Add(p.Price)
		return next, domain.OutcomeDeposited, nil
	}

	amount, err := itemAmount(p)
	if err != nil {
		return state, "", err
	}
	credit(&next, p.Item, amount)
	return next, domain.OutcomeDeposited, nil
}

// trade fills a listing. A listing another farm filled first is sniped and
// leaves the state as the batch left it.
func trade(ctx context.Context, tx repository.FarmTx, farmID string, state domain.GameState, p domain.OperationParams) (domain.GameState, domain.OperationOutcome, error) {
	if p.ListingID == "" {
		return state, "", fmt.Errorf("%w: listing id required", domain.ErrInvalidPayload)
	}

	listing, err := tx.GetListingForUpdate(ctx, p.ListingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return state, "", err
		}
		return state, "", fmt.Errorf("failed to read listing: %w", err)
	}
	if listing.Filled() {
		return state, domain.OutcomeSniped, nil
	}

	next := state.Clone()
	if err := debitBalance(&next, listing.Price); err != nil {
		return state, "", err
	}
	credit(&next, listing.Item, listing.Amount)
	if err := tx.FillListing(ctx, listing.ID, farmID); err != nil {
		return state, "", err
	}
	return next, domain.OutcomeTraded, nil
}

// itemAmount defaults a zero amount to one
func itemAmount(p domain.OperationParams) (decimal.Decimal, error) {
	if p.Item == "" {
		return decimal.Zero, fmt.Errorf("%w: item required", domain.ErrInvalidPayload)
	}
	amount := p.Amount
	if amount.IsZero() {
		amount = decimal.NewFromInt(1)
	}
	if amount.IsNegative() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}

func debitBalance(state *domain.GameState, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.ErrInvalidAmount
	}
	if state.Balance.LessThan(price) {
		return domain.ErrInsufficientFunds
	}
	state.Balance = state.Balance.Sub(price)
	return nil
}

func credit(state *domain.GameState, item string, amount decimal.Decimal) {
	if state.Inventory == nil {
		state.Inventory = domain.Inventory{}
	}
	state.Inventory[item] = state.Inventory.Count(item).Add(amount)
}

func debit(state *domain.GameState, item string, amount decimal.Decimal) error {
	have := state.Inventory.Count(item)
	if have.LessThan(amount) {
		return domain.ErrInsufficientInventory
	}
	if rest := have.Sub(amount); rest.IsZero() {
		delete(state.Inventory, item)
	} else {
		state.Inventory[item] = rest
	}
	return nil
}
