package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FarmState_Go/internal/catalog"
	"github.com/osse101/FarmState_Go/internal/dispatcher"
	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/features"
	"github.com/osse101/FarmState_Go/internal/reducer"
	"github.com/osse101/FarmState_Go/internal/worker"
)

const testFarmID = "farm-1"

var t0 = time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)

// MockAuthority is a mock implementation of the Authority interface
type MockAuthority struct {
	mock.Mock
}

func (m *MockAuthority) Load(ctx context.Context, farmID string) (*domain.Snapshot, error) {
	args := m.Called(ctx, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockAuthority) Sync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResponse), args.Error(1)
}

func (m *MockAuthority) Execute(ctx context.Context, req domain.OperationRequest) (*domain.OperationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OperationResponse), args.Error(1)
}

// MockStore is a mock implementation of the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, farmID string) (*domain.PersistedSession, error) {
	args := m.Called(ctx, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersistedSession), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, s domain.PersistedSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, farmID string) error {
	return m.Called(ctx, farmID).Error(0)
}

// manualRunner holds jobs until the test runs them
type manualRunner struct {
	mu   sync.Mutex
	jobs []worker.Job
}

func (r *manualRunner) Enqueue(job worker.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

func (r *manualRunner) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *manualRunner) RunNext(t *testing.T) {
	t.Helper()
	r.mu.Lock()
	require.NotEmpty(t, r.jobs, "no job queued")
	job := r.jobs[0]
	r.jobs = r.jobs[1:]
	r.mu.Unlock()

	_ = job.Process(context.Background())
}

func (r *manualRunner) Drain(t *testing.T) {
	t.Helper()
	for r.Len() > 0 {
		r.RunNext(t)
	}
}

// viewRecorder collects every view a machine publishes
type viewRecorder struct {
	mu    sync.Mutex
	views []View
}

func (r *viewRecorder) record(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *viewRecorder) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v.State)
	}
	return out
}

func (r *viewRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = nil
}

type harness struct {
	m          *Machine
	authority  *MockAuthority
	store      *MockStore
	runner     *manualRunner
	views      *viewRecorder
	dispatcher *dispatcher.Dispatcher
}

func newDispatcher() *dispatcher.Dispatcher {
	engine := reducer.NewEngine(catalog.MustDefault())
	return dispatcher.New(reducer.NewDefaultRegistry(engine), features.New(features.TestnetNetwork))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		authority:  &MockAuthority{},
		store:      &MockStore{},
		runner:     &manualRunner{},
		views:      &viewRecorder{},
		dispatcher: newDispatcher(),
	}
	h.store.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()

	h.m = New(Config{FarmID: testFarmID, SessionID: "session-1", SyncTimeout: time.Second}, Deps{
		Authority:  h.authority,
		Store:      h.store,
		Dispatcher: h.dispatcher,
		Runner:     h.runner,
		Clock:      func() time.Time { return t0 },
	})
	h.m.Subscribe(h.views.record)
	return h
}

// boot starts the machine against an authority holding state
func (h *harness) boot(t *testing.T, state domain.GameState) {
	t.Helper()
	h.store.On("Load", mock.Anything, testFarmID).Return(nil, domain.ErrNoPersistedSession).Once()
	h.authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: state, Version: 1}, nil).Once()

	require.NoError(t, h.m.Start(context.Background()))
	h.runner.Drain(t)
}

// playableFarm passes every entry gate
func playableFarm() domain.GameState {
	return domain.GameState{
		Balance:      decimal.NewFromInt(100),
		Inventory:    domain.Inventory{"Apple Seed": decimal.NewFromInt(5)},
		Collectibles: map[string][]domain.Placement{},
		Buildings: map[string][]domain.Placement{
			BuildingTownCenter: {{ID: "tc-1"}},
		},
		FruitPatches: map[int]domain.FruitPatch{
			0: {Width: 2, Height: 2},
			1: {X: 2, Width: 2, Height: 2},
		},
		Bumpkin: &domain.Bumpkin{Experience: 120},
	}
}

func plant(index string, at time.Time) domain.Action {
	return domain.MustAction(domain.ActionFruitPlanted, at, domain.PlantFruitAction{Index: index, Seed: "Apple Seed"})
}

func mustApply(t *testing.T, d *dispatcher.Dispatcher, state domain.GameState, actions ...domain.Action) domain.GameState {
	t.Helper()
	next, err := d.ApplyBatch(state, actions)
	require.NoError(t, err)
	return next
}

func isSync(n int) interface{} {
	return mock.MatchedBy(func(req domain.SyncRequest) bool { return len(req.Actions) == n })
}
