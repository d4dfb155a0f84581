package repository

import (
	"context"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// Tx defines the interface for transactional operations
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// FarmTx is a ledger transaction holding the row lock of one farm
type FarmTx interface {
	Tx
	// GetFarmForUpdate locks the farm row until commit or rollback
	GetFarmForUpdate(ctx context.Context, farmID string) (*FarmRecord, error)
	// AppliedActions returns which of ids the farm has already applied
	AppliedActions(ctx context.Context, farmID string, ids []string) (map[string]bool, error)
	RecordActions(ctx context.Context, farmID string, ids []string) error
	SaveFarm(ctx context.Context, farmID string, state domain.GameState, version int64) error
	// GetListingForUpdate locks a listing so only one trade can fill it
	GetListingForUpdate(ctx context.Context, listingID string) (*domain.Listing, error)
	FillListing(ctx context.Context, listingID, farmID string) error
}
