package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/repository"
)

// FakeRepository is a stateful in-memory repository.Farm for tests and for
// running the ledger without PostgreSQL. Transactions are serialized and
// their writes become visible on commit.
type FakeRepository struct {
	txMu sync.Mutex

	mu       sync.Mutex
	farms    map[string]repository.FarmRecord
	applied  map[string]map[string]bool
	listings map[string]domain.Listing
}

// NewFakeRepository creates an empty fake
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		farms:    make(map[string]repository.FarmRecord),
		applied:  make(map[string]map[string]bool),
		listings: make(map[string]domain.Listing),
	}
}

func (f *FakeRepository) CreateFarm(_ context.Context, farmID string, state domain.GameState) (*repository.FarmRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.farms[farmID]; ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFarmExists, farmID)
	}
	rec := repository.FarmRecord{FarmID: farmID, State: state.Clone(), UpdatedAt: time.Now()}
	f.farms[farmID] = rec
	return copyRecord(rec), nil
}

func (f *FakeRepository) GetFarm(_ context.Context, farmID string) (*repository.FarmRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.farms[farmID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFarmNotFound, farmID)
	}
	return copyRecord(rec), nil
}

func (f *FakeRepository) CreateListing(_ context.Context, listing domain.Listing) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	listing.ID = uuid.NewString()
	listing.FilledBy = ""
	listing.CreatedAt = time.Now()
	f.listings[listing.ID] = listing
	return &listing, nil
}

func (f *FakeRepository) BeginTx(ctx context.Context) (repository.FarmTx, error) {
	f.txMu.Lock()
	return &fakeTx{repo: f, farms: map[string]repository.FarmRecord{}, filled: map[string]string{}}, nil
}

// fakeTx stages writes until Commit
type fakeTx struct {
	repo    *FakeRepository
	done    bool
	farms   map[string]repository.FarmRecord
	applied []string
	farmID  string
	filled  map[string]string
}

func (t *fakeTx) GetFarmForUpdate(ctx context.Context, farmID string) (*repository.FarmRecord, error) {
	if rec, ok := t.farms[farmID]; ok {
		return copyRecord(rec), nil
	}
	return t.repo.GetFarm(ctx, farmID)
}

func (t *fakeTx) AppliedActions(_ context.Context, farmID string, ids []string) (map[string]bool, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	out := make(map[string]bool)
	for _, id := range ids {
		if t.repo.applied[farmID][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (t *fakeTx) RecordActions(_ context.Context, farmID string, ids []string) error {
	t.farmID = farmID
	t.applied = append(t.applied, ids...)
	return nil
}

func (t *fakeTx) SaveFarm(ctx context.Context, farmID string, state domain.GameState, version int64) error {
	if _, err := t.repo.GetFarm(ctx, farmID); err != nil {
		return err
	}
	t.farms[farmID] = repository.FarmRecord{FarmID: farmID, State: state.Clone(), Version: version, UpdatedAt: time.Now()}
	return nil
}

func (t *fakeTx) GetListingForUpdate(_ context.Context, listingID string) (*domain.Listing, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	l, ok := t.repo.listings[listingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}
	if by, ok := t.filled[listingID]; ok {
		l.FilledBy = by
	}
	return &l, nil
}

func (t *fakeTx) FillListing(_ context.Context, listingID, farmID string) error {
	t.filled[listingID] = farmID
	return nil
}

func (t *fakeTx) Commit(context.Context) error {
	if t.done {
		return domain.ErrTxClosed
	}
	t.done = true
	defer t.repo.txMu.Unlock()

	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	for id, rec := range t.farms {
		t.repo.farms[id] = rec
	}
	if len(t.applied) > 0 {
		if t.repo.applied[t.farmID] == nil {
			t.repo.applied[t.farmID] = make(map[string]bool)
		}
		for _, id := range t.applied {
			t.repo.applied[t.farmID][id] = true
		}
	}
	for id, by := range t.filled {
		l := t.repo.listings[id]
		l.FilledBy = by
		t.repo.listings[id] = l
	}
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return domain.ErrTxClosed
	}
	t.done = true
	t.repo.txMu.Unlock()
	return nil
}

func copyRecord(rec repository.FarmRecord) *repository.FarmRecord {
	out := rec
	out.State = rec.State.Clone()
	return &out
}
