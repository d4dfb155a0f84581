// Package ledger is the authoritative side of farm sync. It replays submitted
// action batches against the stored farm state, skips actions it has already
// applied, and performs the blocking operations a session can request.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/dispatcher"
	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/event"
	"github.com/osse101/FarmState_Go/internal/logger"
	"github.com/osse101/FarmState_Go/internal/repository"
)

// Service defines the ledger business logic. It satisfies session.Authority.
type Service interface {
	CreateFarm(ctx context.Context, req domain.CreateFarmRequest) (*domain.Snapshot, error)
	Load(ctx context.Context, farmID string) (*domain.Snapshot, error)
	Sync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResponse, error)
	Execute(ctx context.Context, req domain.OperationRequest) (*domain.OperationResponse, error)
	CreateListing(ctx context.Context, listing domain.Listing) (*domain.Listing, error)
}

// Config tunes the abuse limits of the ledger. Zero values take defaults.
type Config struct {
	RateLimit       int
	RateWindow      time.Duration
	MaxBatchActions int
	SessionWindow   time.Duration
	HoardingLimit   decimal.Decimal
	CacheSize       int
	CacheTTL        time.Duration
}

func (c Config) withDefaults() Config {
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateWindow <= 0 {
		c.RateWindow = DefaultRateWindow
	}
	if c.MaxBatchActions <= 0 {
		c.MaxBatchActions = DefaultMaxBatchActions
	}
	if c.SessionWindow <= 0 {
		c.SessionWindow = DefaultSessionWindow
	}
	if !c.HoardingLimit.IsPositive() {
		c.HoardingLimit = DefaultHoardingLimit
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	return c
}

type service struct {
	repo       repository.Farm
	dispatcher *dispatcher.Dispatcher
	bus        event.Bus
	cfg        Config
	limiter    *rateLimiter
	sessions   *sessionTracker
	cache      *snapshotCache
}

// NewService creates a new ledger service. bus may be nil.
func NewService(repo repository.Farm, d *dispatcher.Dispatcher, bus event.Bus, cfg Config) Service {
	cfg = cfg.withDefaults()
	return &service{
		repo:       repo,
		dispatcher: d,
		bus:        bus,
		cfg:        cfg,
		limiter:    newRateLimiter(cfg.RateLimit, cfg.RateWindow),
		sessions:   newSessionTracker(cfg.SessionWindow),
		cache:      newSnapshotCache(cfg.CacheSize, cfg.CacheTTL),
	}
}

// CreateFarm registers a farm at version 0
func (s *service) CreateFarm(ctx context.Context, req domain.CreateFarmRequest) (*domain.Snapshot, error) {
	rec, err := s.repo.CreateFarm(ctx, req.FarmID, req.State)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgFarmCreated, "farm_id", req.FarmID)

	snap := domain.Snapshot{FarmID: rec.FarmID, State: rec.State, Version: rec.Version}
	s.cache.Set(snap)
	return cloneSnapshot(snap), nil
}

// Load returns the current authoritative snapshot
func (s *service) Load(ctx context.Context, farmID string) (*domain.Snapshot, error) {
	if snap, ok := s.cache.Get(farmID); ok {
		return snap, nil
	}

	rec, err := s.repo.GetFarm(ctx, farmID)
	if err != nil {
		return nil, err
	}
	snap := domain.Snapshot{FarmID: rec.FarmID, State: rec.State, Version: rec.Version}
	s.cache.Set(snap)
	return cloneSnapshot(snap), nil
}

// CreateListing opens a marketplace listing for trade operations
func (s *service) CreateListing(ctx context.Context, listing domain.Listing) (*domain.Listing, error) {
	if listing.Item == "" || !listing.Amount.IsPositive() || listing.Price.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	return s.repo.CreateListing(ctx, listing)
}

// Sync applies the not yet applied actions of req and commits the result
func (s *service) Sync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResponse, error) {
	res, err := s.commit(ctx, req.FarmID, req.SessionID, req.Actions, req.LastKnownVersion, nil)
	if err != nil {
		return nil, err
	}
	return &domain.SyncResponse{State: &res.state, Version: res.version, Accepted: len(req.Actions)}, nil
}

// Execute applies the pending actions of req and then the operation, atomically
func (s *service) Execute(ctx context.Context, req domain.OperationRequest) (*domain.OperationResponse, error) {
	op, err := operationFor(req.Kind)
	if err != nil {
		return nil, err
	}

	res, err := s.commit(ctx, req.FarmID, req.SessionID, req.Actions, req.LastKnownVersion, &pendingOperation{kind: req.Kind, params: req.Params, apply: op})
	if err != nil {
		return nil, err
	}
	return &domain.OperationResponse{
		Outcome:  res.outcome,
		State:    &res.state,
		Version:  res.version,
		Accepted: len(req.Actions),
	}, nil
}

type pendingOperation struct {
	kind   domain.OperationKind
	params domain.OperationParams
	apply  operation
}

type commitResult struct {
	state   domain.GameState
	version int64
	outcome domain.OperationOutcome
}

// commit is the shared sync path: rate limit, batch size, active session,
// lock, dedupe, version check, replay, abuse checks, operation, save.
func (s *service) commit(ctx context.Context, farmID, sessionID string, actions []domain.Action, lastKnown int64, op *pendingOperation) (*commitResult, error) {
	log := logger.FromContext(ctx)

	if !s.limiter.Allow(farmID) {
		return nil, s.reject(ctx, farmID, &domain.Rejection{Reason: domain.RejectRateLimited, Message: MsgRateLimited})
	}
	if len(actions) > s.cfg.MaxBatchActions {
		return nil, fmt.Errorf("%w: %d actions, at most %d", domain.ErrBatchTooLarge, len(actions), s.cfg.MaxBatchActions)
	}
	if !s.sessions.Claim(farmID, sessionID) {
		return nil, s.reject(ctx, farmID, &domain.Rejection{Reason: domain.RejectSwarming, Message: MsgSwarming})
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	rec, err := tx.GetFarmForUpdate(ctx, farmID)
	if err != nil {
		if errors.Is(err, domain.ErrFarmNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLockFarm, err)
	}

	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	applied, err := tx.AppliedActions(ctx, farmID, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToReadApplied, err)
	}

	fresh := make([]domain.Action, 0, len(actions))
	for _, a := range actions {
		if !applied[a.ID] {
			fresh = append(fresh, a)
		}
	}

	// A retry whose earlier attempt committed is recognised by its ids, not by version
	if len(fresh) == len(actions) && lastKnown != rec.Version {
		return nil, s.reject(ctx, farmID, &domain.Rejection{
			Reason:  domain.RejectStaleVersion,
			Message: fmt.Sprintf("%s: have %d, got %d", MsgStaleVersion, rec.Version, lastKnown),
		})
	}

	next, err := s.dispatcher.ApplyBatch(rec.State, fresh)
	if err != nil {
		return nil, s.reject(ctx, farmID, invalidAction(err))
	}

	if item, ok := hoarded(rec.State, next, s.cfg.HoardingLimit); ok {
		return nil, s.reject(ctx, farmID, &domain.Rejection{
			Reason:  domain.RejectHoarding,
			Message: fmt.Sprintf("%s: %s", MsgHoarding, item),
		})
	}

	result := &commitResult{state: next, version: rec.Version}
	opName := ""
	if op != nil {
		opName = string(op.kind)
		state, outcome, err := op.apply(ctx, tx, farmID, next, op.params)
		if err != nil {
			if _, isAction := domain.KindOf(err); isAction {
				return nil, s.reject(ctx, farmID, invalidAction(err))
			}
			return nil, err
		}
		result.state = state
		result.outcome = outcome
		log.Info(LogMsgOperationApply, "farm_id", farmID, "operation", op.kind, "outcome", outcome)
	}

	if len(fresh) > 0 || op != nil {
		result.version = rec.Version + 1
		if err := tx.SaveFarm(ctx, farmID, result.state, result.version); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToSaveFarm, err)
		}
		freshIDs := make([]string, len(fresh))
		for i, a := range fresh {
			freshIDs[i] = a.ID
		}
		if err := tx.RecordActions(ctx, farmID, freshIDs); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToRecord, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.cache.Invalidate(farmID)
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCommit, err)
	}

	s.cache.Set(domain.Snapshot{FarmID: farmID, State: result.state, Version: result.version})
	skipped := len(actions) - len(fresh)
	log.Info(LogMsgBatchApplied, "farm_id", farmID, "applied", len(fresh), "skipped", skipped, "version", result.version)
	s.publish(ctx, event.NewBatchAppliedEvent(farmID, len(fresh), skipped, result.version, opName))

	result.state = result.state.Clone()
	return result, nil
}

func (s *service) reject(ctx context.Context, farmID string, rejection *domain.Rejection) error {
	logger.FromContext(ctx).Warn(LogMsgBatchRejected, "farm_id", farmID, "reason", rejection.Reason, "action_id", rejection.ActionID)
	s.publish(ctx, event.NewBatchRejectedEvent(farmID, rejection))
	return rejection
}

func (s *service) publish(ctx context.Context, e event.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", e.Type, "error", err)
	}
}

// invalidAction turns a reducer failure into a rejection naming the action
func invalidAction(err error) *domain.Rejection {
	r := &domain.Rejection{Reason: domain.RejectInvalidAction, Message: err.Error()}
	var batchErr *dispatcher.BatchError
	if errors.As(err, &batchErr) {
		r.ActionID = batchErr.Action.ID
		r.Message = batchErr.Err.Error()
	}
	if code, ok := domain.CodeOf(err); ok {
		r.Code = code
	}
	return r
}

// hoarded reports the first item whose count grew by more than limit
func hoarded(before, after domain.GameState, limit decimal.Decimal) (string, bool) {
	for name, count := range after.Inventory {
		if count.Sub(before.Inventory.Count(name)).GreaterThan(limit) {
			return name, true
		}
	}
	return "", false
}
