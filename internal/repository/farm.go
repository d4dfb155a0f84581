package repository

import (
	"context"
	"time"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// FarmRecord is the stored authoritative state of a farm
type FarmRecord struct {
	FarmID    string
	State     domain.GameState
	Version   int64
	UpdatedAt time.Time
}

// Farm defines the ledger's persistence
type Farm interface {
	// CreateFarm returns domain.ErrFarmExists for a taken id
	CreateFarm(ctx context.Context, farmID string, state domain.GameState) (*FarmRecord, error)
	// GetFarm returns domain.ErrFarmNotFound for an unknown id
	GetFarm(ctx context.Context, farmID string) (*FarmRecord, error)
	CreateListing(ctx context.Context, listing domain.Listing) (*domain.Listing, error)
	BeginTx(ctx context.Context) (FarmTx, error)
}
