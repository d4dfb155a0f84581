package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FarmState_Go/internal/domain"
)

func TestStart_LoadsIntoPlaying(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	v := h.m.View()
	assert.Equal(t, StatePlaying, v.State)
	assert.Equal(t, int64(1), v.Version)
	assert.False(t, v.IsBlocking())
	assert.Equal(t, []State{StateLoading, StatePlaying}, h.views.States())
}

func TestStart_EntryGates(t *testing.T) {
	noBumpkin := playableFarm()
	noBumpkin.Bumpkin = nil

	noTownCenter := playableFarm()
	noTownCenter.Buildings = map[string][]domain.Placement{}

	fresh := playableFarm()
	fresh.Bumpkin = &domain.Bumpkin{}

	returning := playableFarm()
	returning.Bumpkin = &domain.Bumpkin{Activity: map[string]float64{"Apple Harvested": 1}}

	tests := []struct {
		name  string
		state domain.GameState
		want  State
	}{
		{"no bumpkin", noBumpkin, StateNoBumpkinFound},
		{"bumpkin checked before town center", func() domain.GameState { s := noTownCenter; s.Bumpkin = nil; return s }(), StateNoBumpkinFound},
		{"no town center", noTownCenter, StateNoTownCenter},
		{"new player", fresh, StateIntroduction},
		{"activity without experience", returning, StatePlaying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.boot(t, tt.state)
			assert.Equal(t, tt.want, h.m.View().State)
		})
	}
}

func TestStart_GateAcknowledgeReloads(t *testing.T) {
	h := newHarness(t)
	state := playableFarm()
	state.Buildings = map[string][]domain.Placement{}
	h.boot(t, state)
	require.Equal(t, StateNoTownCenter, h.m.View().State)

	h.authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: playableFarm(), Version: 2}, nil).Once()

	require.NoError(t, h.m.Acknowledge())
	assert.Equal(t, StateLoading, h.m.View().State)
	h.runner.Drain(t)
	assert.Equal(t, StatePlaying, h.m.View().State)
}

func TestStart_IntroductionAcknowledged(t *testing.T) {
	h := newHarness(t)
	state := playableFarm()
	state.Bumpkin = &domain.Bumpkin{}
	h.boot(t, state)

	assert.False(t, h.m.View().IsBlocking())
	require.NoError(t, h.m.Acknowledge())
	assert.Equal(t, StatePlaying, h.m.View().State)
}

func TestStart_LoadFailureThenRetry(t *testing.T) {
	h := newHarness(t)
	h.store.On("Load", mock.Anything, testFarmID).Return(nil, domain.ErrNoPersistedSession).Once()
	h.authority.On("Load", mock.Anything, testFarmID).Return(nil, errors.New("connection refused")).Once()

	require.NoError(t, h.m.Start(context.Background()))
	h.runner.Drain(t)

	v := h.m.View()
	assert.Equal(t, StateError, v.State)
	assert.Equal(t, ErrorCodeLoadFailed, v.ErrorCode)

	h.authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: playableFarm(), Version: 3}, nil).Once()
	require.NoError(t, h.m.Retry())
	h.runner.Drain(t)

	v = h.m.View()
	assert.Equal(t, StatePlaying, v.State)
	assert.Empty(t, v.ErrorCode)
	assert.Equal(t, int64(3), v.Version)
}

func TestStart_Twice(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	err := h.m.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	h.store.AssertNumberOfCalls(t, "Load", 1)
}

func TestStart_AfterCloseLeavesStoreAlone(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.Close())

	err := h.m.Start(context.Background())

	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	h.store.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	h.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	h.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStart_ResumesPersistedSessionID(t *testing.T) {
	store := &MockStore{}
	authority := &MockAuthority{}
	runner := &manualRunner{}
	store.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()
	store.On("Load", mock.Anything, testFarmID).Return(&domain.PersistedSession{
		FarmID:    testFarmID,
		SessionID: "session-before-restart",
		Version:   2,
		State:     playableFarm(),
	}, nil).Once()
	authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: playableFarm(), Version: 2}, nil).Once()

	m := New(Config{FarmID: testFarmID}, Deps{Authority: authority, Store: store, Dispatcher: newDispatcher(), Runner: runner})
	fresh := m.SessionID()
	require.NoError(t, m.Start(context.Background()))
	runner.Drain(t)

	assert.NotEqual(t, fresh, m.SessionID())
	assert.Equal(t, "session-before-restart", m.SessionID())
	assert.Equal(t, "session-before-restart", m.View().SessionID)
}

func TestStart_ConfiguredSessionIDWins(t *testing.T) {
	h := newHarness(t)
	h.store.On("Load", mock.Anything, testFarmID).Return(&domain.PersistedSession{
		FarmID: testFarmID, SessionID: "old", State: playableFarm(),
	}, nil).Once()
	h.authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: playableFarm(), Version: 1}, nil).Once()

	require.NoError(t, h.m.Start(context.Background()))
	h.runner.Drain(t)

	assert.Equal(t, "session-1", h.m.SessionID())
}

func TestStart_RestoresPersistedQueue(t *testing.T) {
	h := newHarness(t)
	pending := plant("0", t0)
	h.store.On("Load", mock.Anything, testFarmID).Return(&domain.PersistedSession{
		FarmID:  testFarmID,
		Version: 4,
		State:   playableFarm(),
		Pending: []domain.Action{pending},
	}, nil).Once()
	h.authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: playableFarm(), Version: 4}, nil).Once()

	require.NoError(t, h.m.Start(context.Background()))
	h.runner.Drain(t)

	v := h.m.View()
	assert.Equal(t, StatePlaying, v.State)
	assert.Equal(t, 1, v.Pending)
	assert.True(t, v.HasUnsavedChanges())
	require.NotNil(t, v.Snapshot.FruitPatches[0].Fruit, "pending plant replayed onto the authority state")

	// Earlier than the restored queue
	_, err := h.m.Dispatch(plant("1", t0.Add(-time.Minute)))
	assert.ErrorIs(t, err, domain.ErrOutOfOrder)
}

func TestStart_RebaseConflictKeepsAuthorityStateAndQueue(t *testing.T) {
	h := newHarness(t)
	pending := plant("0", t0)
	// The authority already applied the plant before the crash
	applied := mustApply(t, h.dispatcher, playableFarm(), pending)

	h.store.On("Load", mock.Anything, testFarmID).Return(&domain.PersistedSession{
		FarmID: testFarmID, Version: 1, State: playableFarm(), Pending: []domain.Action{pending},
	}, nil).Once()
	h.authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: applied, Version: 2}, nil).Once()

	require.NoError(t, h.m.Start(context.Background()))
	h.runner.Drain(t)

	v := h.m.View()
	assert.Equal(t, StatePlaying, v.State)
	assert.Equal(t, 1, v.Pending)
	assert.True(t, v.Snapshot.Inventory.Count("Apple Seed").Equal(decimal.NewFromInt(4)))
}

func TestStart_CorruptPersistedSessionIsDeleted(t *testing.T) {
	h := newHarness(t)
	h.store.On("Load", mock.Anything, testFarmID).Return(nil, domain.ErrCorruptSession).Once()
	h.store.On("Delete", mock.Anything, testFarmID).Return(nil).Once()
	h.authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: playableFarm(), Version: 1}, nil).Once()

	require.NoError(t, h.m.Start(context.Background()))
	h.runner.Drain(t)

	assert.Equal(t, StatePlaying, h.m.View().State)
	assert.Zero(t, h.m.View().Pending)
	h.store.AssertExpectations(t)
}

func TestDispatch_AppliesOptimistically(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())
	h.views.Reset()

	state, err := h.m.Dispatch(plant("0", t0))
	require.NoError(t, err)

	require.NotNil(t, state.FruitPatches[0].Fruit)
	assert.Equal(t, "Apple", state.FruitPatches[0].Fruit.Name)

	v := h.m.View()
	assert.Equal(t, 1, v.Pending)
	assert.Equal(t, StatePlaying, v.State)
	assert.Len(t, h.views.States(), 1)
	h.store.AssertCalled(t, "Save", mock.Anything, mock.MatchedBy(func(s domain.PersistedSession) bool {
		return len(s.Pending) == 1
	}))
}

func TestDispatch_FillsIDAndTimestamp(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	_, err := h.m.Play(domain.ActionSeedBought, domain.BuySeedAction{Item: "Apple Seed", Amount: 1})
	require.NoError(t, err)

	_, err = h.m.Dispatch(domain.Action{
		Type:    domain.ActionFruitPlanted,
		Payload: plant("0", t0).Payload,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, h.m.View().Pending)
}

func TestDispatch_RejectedActionChangesNothing(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())
	before := h.m.View()

	state, err := h.m.Dispatch(plant("9", t0))
	assert.ErrorIs(t, err, domain.ErrPlotNotFound)
	assert.Equal(t, before.Snapshot, state)

	after := h.m.View()
	assert.Equal(t, before.Snapshot, after.Snapshot)
	assert.Zero(t, after.Pending)
}

func TestDispatch_NotAcceptedWhileLoading(t *testing.T) {
	h := newHarness(t)
	h.store.On("Load", mock.Anything, testFarmID).Return(nil, domain.ErrNoPersistedSession).Once()
	require.NoError(t, h.m.Start(context.Background()))

	_, err := h.m.Dispatch(plant("0", t0))
	assert.ErrorIs(t, err, domain.ErrSessionBusy)
}

func TestAutosave_EmptyQueueSkipsNetwork(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())
	h.views.Reset()

	require.NoError(t, h.m.Autosave())

	assert.Equal(t, []State{StateAutosaving, StatePlaying}, h.views.States())
	assert.Zero(t, h.runner.Len())
	h.authority.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
}

func TestSave_EmptyQueueShowsSynced(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())
	h.views.Reset()

	require.NoError(t, h.m.Save())
	assert.Equal(t, []State{StateSyncing, StateSynced}, h.views.States())

	require.NoError(t, h.m.Continue())
	assert.Equal(t, StatePlaying, h.m.View().State)
}

func TestSave_AcceptedDropsOnlySubmittedActions(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	first := plant("0", t0)
	_, err := h.m.Dispatch(first)
	require.NoError(t, err)

	require.NoError(t, h.m.Save())
	assert.Equal(t, StateSyncing, h.m.View().State)
	assert.True(t, h.m.View().IsBlocking())

	// Play continues while the flush is in flight
	second := plant("1", t0.Add(time.Second))
	_, err = h.m.Dispatch(second)
	require.NoError(t, err)
	assert.Equal(t, 2, h.m.View().Pending)
	assert.Equal(t, 1, h.m.View().InFlight)

	authorityState := mustApply(t, h.dispatcher, playableFarm(), first)
	h.authority.On("Sync", mock.Anything, isSync(1)).
		Return(&domain.SyncResponse{State: &authorityState, Version: 2, Accepted: 1}, nil).Once()
	h.runner.RunNext(t)

	v := h.m.View()
	assert.Equal(t, StateSynced, v.State)
	assert.Equal(t, int64(2), v.Version)
	assert.Equal(t, 1, v.Pending)
	assert.Zero(t, v.InFlight)
	assert.NotNil(t, v.Snapshot.FruitPatches[0].Fruit)
	assert.NotNil(t, v.Snapshot.FruitPatches[1].Fruit, "later action replayed onto the accepted state")
	assert.True(t, v.Snapshot.Inventory.Count("Apple Seed").Equal(decimal.NewFromInt(3)))
}

func TestAutosave_SuccessReturnsToPlaying(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	a := plant("0", t0)
	_, err := h.m.Dispatch(a)
	require.NoError(t, err)

	authorityState := mustApply(t, h.dispatcher, playableFarm(), a)
	h.authority.On("Sync", mock.Anything, isSync(1)).
		Return(&domain.SyncResponse{State: &authorityState, Version: 2, Accepted: 1}, nil).Once()

	h.views.Reset()
	require.NoError(t, h.m.Blur())
	h.runner.Drain(t)

	assert.Equal(t, []State{StateAutosaving, StatePlaying}, h.views.States())
	assert.False(t, h.m.View().HasUnsavedChanges())
}

func TestSync_FailureKeepsQueue(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	_, err := h.m.Dispatch(plant("0", t0))
	require.NoError(t, err)
	before := h.m.View()

	h.authority.On("Sync", mock.Anything, isSync(1)).Return(nil, errors.New("502 bad gateway")).Once()
	require.NoError(t, h.m.Save())
	h.runner.Drain(t)

	v := h.m.View()
	assert.Equal(t, StateError, v.State)
	assert.Equal(t, ErrorCodeSyncFailed, v.ErrorCode)
	assert.Equal(t, 1, v.Pending)
	assert.Zero(t, v.InFlight)
	assert.Equal(t, before.Snapshot, v.Snapshot, "no rollback on failure")

	// The queue is resubmitted on the next flush
	require.NoError(t, h.m.Acknowledge())
	authorityState := before.Snapshot
	h.authority.On("Sync", mock.Anything, isSync(1)).
		Return(&domain.SyncResponse{State: &authorityState, Version: 2, Accepted: 1}, nil).Once()
	require.NoError(t, h.m.Save())
	h.runner.Drain(t)
	assert.Equal(t, StateSynced, h.m.View().State)
	assert.Zero(t, h.m.View().Pending)
}

func TestSync_Timeout(t *testing.T) {
	h := newHarness(t)
	h.m.syncTimeout = 20 * time.Millisecond
	h.boot(t, playableFarm())

	_, err := h.m.Dispatch(plant("0", t0))
	require.NoError(t, err)

	release := make(chan struct{})
	defer close(release)
	h.authority.On("Sync", mock.Anything, isSync(1)).
		Run(func(mock.Arguments) { <-release }).
		Return(&domain.SyncResponse{Version: 2, Accepted: 1}, nil).Once()

	require.NoError(t, h.m.Save())
	h.runner.Drain(t)

	v := h.m.View()
	assert.Equal(t, StateError, v.State)
	assert.Equal(t, ErrorCodeSyncTimeout, v.ErrorCode)
	assert.Equal(t, 1, v.Pending)
}

func TestSync_RejectionMapping(t *testing.T) {
	tests := []struct {
		reason   domain.RejectionReason
		want     State
		wantCode string
	}{
		{domain.RejectRateLimited, StateCoolingDown, ""},
		{domain.RejectHoarding, StateHoarding, ""},
		{domain.RejectSwarming, StateSwarming, ""},
		{domain.RejectStaleVersion, StateError, ErrorCodeStaleVersion},
		{domain.RejectInvalidAction, StateError, ErrorCodeInvalidAction},
		{domain.RejectUnauthorized, StateError, ErrorCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			h := newHarness(t)
			h.boot(t, playableFarm())
			_, err := h.m.Dispatch(plant("0", t0))
			require.NoError(t, err)

			h.authority.On("Sync", mock.Anything, isSync(1)).
				Return(nil, &domain.Rejection{Reason: tt.reason, Message: "no"}).Once()
			require.NoError(t, h.m.Save())
			h.runner.Drain(t)

			v := h.m.View()
			assert.Equal(t, tt.want, v.State)
			assert.Equal(t, tt.wantCode, v.ErrorCode)
			assert.Equal(t, 1, v.Pending)
			assert.True(t, v.IsBlocking())

			require.NoError(t, h.m.Acknowledge())
			assert.Equal(t, StatePlaying, h.m.View().State)
		})
	}
}

func TestSync_StaleResultIgnored(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())
	_, err := h.m.Dispatch(plant("0", t0))
	require.NoError(t, err)

	h.authority.On("Sync", mock.Anything, isSync(1)).Return(nil, errors.New("down")).Once()
	require.NoError(t, h.m.Save())
	staleAttempt := h.m.attempt
	h.runner.Drain(t)
	require.NoError(t, h.m.Acknowledge())

	before := h.m.View()
	h.m.completeSync(staleAttempt, domain.SyncRequest{Actions: []domain.Action{plant("0", t0)}},
		&domain.SyncResponse{Version: 99, Accepted: 1}, nil, time.Millisecond)

	assert.Equal(t, before, h.m.View())
}

func TestOperation_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		start   func(*Machine) error
		outcome domain.OperationOutcome
		want    State
		op      domain.OperationKind
		during  State
	}{
		{"purchase", func(m *Machine) error { return m.Purchase(domain.OperationParams{Item: "Axe"}) }, domain.OutcomeCompleted, StateSynced, domain.OperationPurchase, StatePurchasing},
		{"mint", func(m *Machine) error { return m.Mint(domain.OperationParams{Item: "Lady Bug"}) }, domain.OutcomeCompleted, StateSynced, domain.OperationMint, StateMinting},
		{"transact", func(m *Machine) error { return m.Transact(domain.OperationParams{Item: "Axe"}) }, domain.OutcomeCompleted, StateSynced, domain.OperationTransact, StateTransacting},
		{"trade filled", func(m *Machine) error { return m.Trade(domain.OperationParams{ListingID: "l-1"}) }, domain.OutcomeTraded, StateTraded, domain.OperationTrade, StateTrading},
		{"trade sniped", func(m *Machine) error { return m.Trade(domain.OperationParams{ListingID: "l-1"}) }, domain.OutcomeSniped, StateSniped, domain.OperationTrade, StateTrading},
		{"deposit", func(m *Machine) error { return m.Deposit(domain.OperationParams{Item: "Wood"}) }, domain.OutcomeDeposited, StateDeposited, domain.OperationDeposit, StateDepositing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.boot(t, playableFarm())
			a := plant("0", t0)
			_, err := h.m.Dispatch(a)
			require.NoError(t, err)

			authorityState := mustApply(t, h.dispatcher, playableFarm(), a)
			h.authority.On("Execute", mock.Anything, mock.MatchedBy(func(req domain.OperationRequest) bool {
				return req.Kind == tt.op && len(req.Actions) == 1
			})).Return(&domain.OperationResponse{Outcome: tt.outcome, State: &authorityState, Version: 5, Accepted: 1}, nil).Once()

			require.NoError(t, tt.start(h.m))
			v := h.m.View()
			assert.Equal(t, tt.during, v.State)
			assert.Equal(t, tt.op, v.Operation)
			_, err = h.m.Dispatch(plant("1", t0.Add(time.Second)))
			assert.ErrorIs(t, err, domain.ErrSessionBusy)

			h.runner.Drain(t)
			v = h.m.View()
			assert.Equal(t, tt.want, v.State)
			assert.Equal(t, tt.outcome, v.Outcome)
			assert.Zero(t, v.Pending)
			assert.Equal(t, int64(5), v.Version)

			require.NoError(t, h.m.Continue())
			assert.Equal(t, StatePlaying, h.m.View().State)
		})
	}
}

func TestOperation_FailureMapsToError(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	h.authority.On("Execute", mock.Anything, mock.Anything).Return(nil, domain.ErrListingNotFound).Once()
	require.NoError(t, h.m.Trade(domain.OperationParams{ListingID: "gone"}))
	h.runner.Drain(t)

	v := h.m.View()
	assert.Equal(t, StateError, v.State)
	assert.Equal(t, ErrorCodeOperationFailed, v.ErrorCode)
}

func TestOperation_Unknown(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	err := h.m.Send(Event{Kind: EventOperation, Operation: "airdrop"})
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)
	assert.Equal(t, StatePlaying, h.m.View().State)
}

func TestSend_InvalidTransitions(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	for _, fn := range []func() error{h.m.Retry, h.m.Continue, h.m.Acknowledge} {
		assert.ErrorIs(t, fn(), domain.ErrInvalidTransition)
	}
	assert.Equal(t, StatePlaying, h.m.View().State)

	_, err := h.m.Dispatch(plant("0", t0))
	require.NoError(t, err)
	require.NoError(t, h.m.Save())
	assert.ErrorIs(t, h.m.Autosave(), domain.ErrInvalidTransition, "no second flush while one is in flight")
	assert.ErrorIs(t, h.m.Purchase(domain.OperationParams{}), domain.ErrInvalidTransition)
}

func TestRefresh_RebasesOntoNewSnapshot(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())
	_, err := h.m.Dispatch(plant("0", t0))
	require.NoError(t, err)

	richer := playableFarm()
	richer.Inventory["Apple Seed"] = decimal.NewFromInt(10)
	h.authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: richer, Version: 7}, nil).Once()

	require.NoError(t, h.m.Refresh())
	assert.Equal(t, StateRefreshing, h.m.View().State)
	h.runner.Drain(t)

	v := h.m.View()
	assert.Equal(t, StatePlaying, v.State)
	assert.Equal(t, int64(7), v.Version)
	assert.Equal(t, 1, v.Pending)
	assert.True(t, v.Snapshot.Inventory.Count("Apple Seed").Equal(decimal.NewFromInt(9)))
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())

	var calls int
	unsubscribe := h.m.Subscribe(func(View) { calls++ })
	require.NoError(t, h.m.Autosave())
	assert.Equal(t, 2, calls)

	unsubscribe()
	require.NoError(t, h.m.Autosave())
	assert.Equal(t, 2, calls)
}

func TestClose_DiscardsLateResults(t *testing.T) {
	h := newHarness(t)
	h.boot(t, playableFarm())
	_, err := h.m.Dispatch(plant("0", t0))
	require.NoError(t, err)

	h.authority.On("Sync", mock.Anything, isSync(1)).
		Return(&domain.SyncResponse{Version: 2, Accepted: 1}, nil).Once()
	require.NoError(t, h.m.Save())

	require.NoError(t, h.m.Close())
	require.NoError(t, h.m.Close())
	h.runner.Drain(t)

	v := h.m.View()
	assert.Equal(t, StateSyncing, v.State)
	assert.Equal(t, 1, v.Pending)

	_, err = h.m.Dispatch(plant("1", t0))
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.ErrorIs(t, h.m.Save(), domain.ErrSessionClosed)
}

func TestPersistFailureDoesNotBlockPlay(t *testing.T) {
	authority := &MockAuthority{}
	store := &MockStore{}
	runner := &manualRunner{}
	store.On("Load", mock.Anything, testFarmID).Return(nil, domain.ErrNoPersistedSession).Once()
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	authority.On("Load", mock.Anything, testFarmID).
		Return(&domain.Snapshot{FarmID: testFarmID, State: playableFarm(), Version: 1}, nil).Once()

	m := New(Config{FarmID: testFarmID}, Deps{Authority: authority, Store: store, Dispatcher: newDispatcher(), Runner: runner})
	require.NoError(t, m.Start(context.Background()))
	runner.Drain(t)

	_, err := m.Dispatch(plant("0", t0))
	require.NoError(t, err)
	assert.Equal(t, 1, m.View().Pending)
	assert.NotEmpty(t, m.SessionID())
}
