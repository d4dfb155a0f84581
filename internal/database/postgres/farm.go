package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/repository"
)

// FarmRepository implements repository.Farm for PostgreSQL
type FarmRepository struct {
	db *pgxpool.Pool
}

// NewFarmRepository creates a new farm repository
func NewFarmRepository(db *pgxpool.Pool) *FarmRepository {
	return &FarmRepository{db: db}
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateFarm stores a new farm at version 0
func (r *FarmRepository) CreateFarm(ctx context.Context, farmID string, state domain.GameState) (*repository.FarmRecord, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalState, err)
	}

	var updatedAt time.Time
	err = r.db.QueryRow(ctx, queryInsertFarm, farmID, raw).Scan(&updatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == PgErrorCodeUniqueViolation {
			return nil, fmt.Errorf("%w: %s", domain.ErrFarmExists, farmID)
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToInsertFarm, err)
	}

	return &repository.FarmRecord{FarmID: farmID, State: state.Clone(), UpdatedAt: updatedAt}, nil
}

// GetFarm reads the current state of a farm
func (r *FarmRepository) GetFarm(ctx context.Context, farmID string) (*repository.FarmRecord, error) {
	return scanFarm(ctx, r.db, querySelectFarm, farmID)
}

// CreateListing stores an open marketplace listing
func (r *FarmRepository) CreateListing(ctx context.Context, listing domain.Listing) (*domain.Listing, error) {
	out := listing
	err := r.db.QueryRow(ctx, queryInsertListing, listing.Item, listing.Amount.String(), listing.Price.String()).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToInsertListing, err)
	}
	out.FilledBy = ""
	return &out, nil
}

// BeginTx starts a transaction and returns a FarmTx
func (r *FarmRepository) BeginTx(ctx context.Context) (repository.FarmTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &farmTx{tx: tx}, nil
}

// farmTx implements repository.FarmTx
type farmTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *farmTx) Commit(ctx context.Context) error {
	return txClosed(t.tx.Commit(ctx))
}

// Rollback rolls back the transaction
func (t *farmTx) Rollback(ctx context.Context) error {
	return txClosed(t.tx.Rollback(ctx))
}

// GetFarmForUpdate reads a farm with a FOR UPDATE lock
func (t *farmTx) GetFarmForUpdate(ctx context.Context, farmID string) (*repository.FarmRecord, error) {
	return scanFarm(ctx, t.tx, querySelectFarmForUpdate, farmID)
}

// AppliedActions returns the subset of ids already recorded for the farm
func (t *farmTx) AppliedActions(ctx context.Context, farmID string, ids []string) (map[string]bool, error) {
	applied := make(map[string]bool)
	if len(ids) == 0 {
		return applied, nil
	}

	rows, err := t.tx.Query(ctx, querySelectAppliedActions, farmID, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryAppliedActions, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryAppliedActions, err)
		}
		applied[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryAppliedActions, err)
	}
	return applied, nil
}

// RecordActions marks ids as applied so resubmissions are skipped
func (t *farmTx) RecordActions(ctx context.Context, farmID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := t.tx.Exec(ctx, queryInsertAppliedActions, farmID, ids); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToRecordActions, err)
	}
	return nil
}

// SaveFarm writes the new state and version of a locked farm
func (t *farmTx) SaveFarm(ctx context.Context, farmID string, state domain.GameState, version int64) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMarshalState, err)
	}

	tag, err := t.tx.Exec(ctx, queryUpdateFarm, farmID, raw, version)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateFarm, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrFarmNotFound, farmID)
	}
	return nil
}

// GetListingForUpdate reads a listing with a FOR UPDATE lock
func (t *farmTx) GetListingForUpdate(ctx context.Context, listingID string) (*domain.Listing, error) {
	var (
		l             domain.Listing
		amount, price string
		filledBy      *string
	)
	err := t.tx.QueryRow(ctx, querySelectListingForUpdate, listingID).
		Scan(&l.ID, &l.Item, &amount, &price, &filledBy, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == PgErrorCodeInvalidTextRepresentation {
			return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetListing, err)
	}

	if l.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetListing, err)
	}
	if l.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetListing, err)
	}
	if filledBy != nil {
		l.FilledBy = *filledBy
	}
	return &l, nil
}

// FillListing marks a listing as taken by farmID
func (t *farmTx) FillListing(ctx context.Context, listingID, farmID string) error {
	if _, err := t.tx.Exec(ctx, queryFillListing, listingID, farmID); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToFillListing, err)
	}
	return nil
}

func scanFarm(ctx context.Context, q querier, query, farmID string) (*repository.FarmRecord, error) {
	var (
		rec repository.FarmRecord
		raw []byte
	)
	err := q.QueryRow(ctx, query, farmID).Scan(&rec.FarmID, &raw, &rec.Version, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFarmNotFound, farmID)
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetFarm, err)
	}

	if err := json.Unmarshal(raw, &rec.State); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToUnmarshalState, err)
	}
	return &rec, nil
}

// txClosed maps the pgx finished-transaction error to its domain form
func txClosed(err error) error {
	if errors.Is(err, pgx.ErrTxClosed) {
		return domain.ErrTxClosed
	}
	return err
}
