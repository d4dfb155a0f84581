package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/event"
	"github.com/osse101/FarmState_Go/internal/logger"
)

// ErrSyncTimeout is returned when the authority does not answer in time.
// The underlying call is not cancelled; its late result is discarded.
var ErrSyncTimeout = errors.New("authority call timed out")

// Failure reasons reported on sync-failed events
const (
	reasonTimeout = "timeout"
	reasonError   = "error"
)

// startFlush submits every pending action. Actions dispatched while the call
// is in flight stay queued for the next flush.
func (m *Machine) startFlush(ev Event, target State, fx *effects) error {
	if m.state != StatePlaying {
		return m.invalid(ev)
	}

	m.transition(target, fx)
	if len(m.pending) == 0 {
		if target == StateAutosaving {
			m.transition(StatePlaying, fx)
		} else {
			m.transition(StateSynced, fx)
		}
		return nil
	}

	m.attempt++
	m.inFlight = len(m.pending)
	req := domain.SyncRequest{
		SessionID:        m.sessionID,
		FarmID:           m.farmID,
		Actions:          append([]domain.Action(nil), m.pending...),
		LastKnownVersion: m.version,
	}
	fx.jobs = append(fx.jobs, &syncJob{m: m, attempt: m.attempt, req: req})
	return nil
}

func (m *Machine) startOperation(ev Event, fx *effects) error {
	target, ok := operationState(ev.Operation)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownOperation, ev.Operation)
	}
	if m.state != StatePlaying {
		return m.invalid(ev)
	}

	m.operation = ev.Operation
	m.transition(target, fx)

	m.attempt++
	m.inFlight = len(m.pending)
	req := domain.OperationRequest{
		SessionID:        m.sessionID,
		FarmID:           m.farmID,
		Kind:             ev.Operation,
		Params:           ev.Params,
		Actions:          append([]domain.Action(nil), m.pending...),
		LastKnownVersion: m.version,
	}
	fx.jobs = append(fx.jobs, &operationJob{m: m, attempt: m.attempt, req: req})
	return nil
}

func (m *Machine) launchLoad(fx *effects) {
	m.attempt++
	fx.jobs = append(fx.jobs, &loadJob{m: m, attempt: m.attempt})
}

// stale reports whether a completion belongs to a superseded attempt
func (m *Machine) stale(attempt uint64, accept func(State) bool) bool {
	if m.closed || attempt != m.attempt || !accept(m.state) {
		logger.FromContext(m.logCtx).Debug(LogMsgStaleResult, "attempt", attempt, "state", m.state.String())
		return true
	}
	return false
}

// ==================== Jobs ====================

type syncJob struct {
	m       *Machine
	attempt uint64
	req     domain.SyncRequest
}

func (j *syncJob) Process(ctx context.Context) error {
	start := time.Now()
	resp, err := callWithTimeout(ctx, j.m.syncTimeout, func(ctx context.Context) (*domain.SyncResponse, error) {
		return j.m.authority.Sync(ctx, j.req)
	})
	j.m.completeSync(j.attempt, j.req, resp, err, time.Since(start))
	return err
}

type operationJob struct {
	m       *Machine
	attempt uint64
	req     domain.OperationRequest
}

func (j *operationJob) Process(ctx context.Context) error {
	start := time.Now()
	resp, err := callWithTimeout(ctx, j.m.syncTimeout, func(ctx context.Context) (*domain.OperationResponse, error) {
		return j.m.authority.Execute(ctx, j.req)
	})
	j.m.completeOperation(j.attempt, j.req, resp, err, time.Since(start))
	return err
}

type loadJob struct {
	m       *Machine
	attempt uint64
}

func (j *loadJob) Process(ctx context.Context) error {
	snap, err := callWithTimeout(ctx, j.m.syncTimeout, func(ctx context.Context) (*domain.Snapshot, error) {
		return j.m.authority.Load(ctx, j.m.farmID)
	})
	j.m.completeLoad(j.attempt, snap, err)
	return err
}

// ==================== Completions ====================

func (m *Machine) completeSync(attempt uint64, req domain.SyncRequest, resp *domain.SyncResponse, err error, took time.Duration) {
	_ = m.locked(func(fx *effects) error {
		if m.stale(attempt, State.isFlushing) {
			return nil
		}
		submitted := len(req.Actions)
		log := logger.FromContext(m.logCtx)

		if err == nil && resp == nil {
			err = domain.ErrAuthorityUnavailable
		}
		if err != nil {
			m.inFlight = 0
			log.Warn(LogMsgSyncFailed, "submitted", submitted, "error", err)
			fx.events = append(fx.events, event.NewSyncFailedEvent(m.sessionID, m.farmID, submitted, failureReason(err), took))
			m.fail(err, ErrorCodeSyncFailed, fx)
			return nil
		}

		m.accept(submitted, resp.State, resp.Version)
		log.Info(LogMsgSyncSucceeded, "submitted", submitted, "version", resp.Version, "remaining", len(m.pending))
		fx.events = append(fx.events, event.NewSyncCompletedEvent(m.sessionID, m.farmID, submitted, resp.Accepted, resp.Version, took))

		if m.state == StateAutosaving {
			m.transition(StatePlaying, fx)
		} else {
			m.transition(StateSynced, fx)
		}
		return nil
	})
}

func (m *Machine) completeOperation(attempt uint64, req domain.OperationRequest, resp *domain.OperationResponse, err error, took time.Duration) {
	_ = m.locked(func(fx *effects) error {
		if m.stale(attempt, State.isOperation) {
			return nil
		}
		submitted := len(req.Actions)
		log := logger.FromContext(m.logCtx)

		if err == nil && resp == nil {
			err = domain.ErrAuthorityUnavailable
		}
		if err != nil {
			m.inFlight = 0
			log.Warn(LogMsgSyncFailed, "operation", req.Kind, "error", err)
			fx.events = append(fx.events, event.NewSyncFailedEvent(m.sessionID, m.farmID, submitted, failureReason(err), took))
			m.fail(err, ErrorCodeOperationFailed, fx)
			return nil
		}

		m.accept(submitted, resp.State, resp.Version)
		m.outcome = resp.Outcome
		log.Info(LogMsgOperationCompleted, "operation", req.Kind, "outcome", resp.Outcome, "version", resp.Version)
		fx.events = append(fx.events, event.NewSyncCompletedEvent(m.sessionID, m.farmID, submitted, resp.Accepted, resp.Version, took))
		m.transition(outcomeState(resp.Outcome), fx)
		return nil
	})
}

func (m *Machine) completeLoad(attempt uint64, snap *domain.Snapshot, err error) {
	_ = m.locked(func(fx *effects) error {
		if m.stale(attempt, func(s State) bool { return s == StateLoading || s == StateRefreshing }) {
			return nil
		}

		if err == nil && snap == nil {
			err = domain.ErrAuthorityUnavailable
		}
		if err != nil {
			logger.FromContext(m.logCtx).Warn(LogMsgSyncFailed, "phase", "load", "error", err)
			m.fail(err, ErrorCodeLoadFailed, fx)
			return nil
		}

		m.version = snap.Version
		m.snapshot = m.rebase(snap.State)
		_ = m.persist()
		m.transition(entryGate(m.snapshot), fx)
		return nil
	})
}

// accept drops the submitted prefix of the queue and adopts the authority's
// snapshot with the rest of the queue replayed on top
func (m *Machine) accept(submitted int, state *domain.GameState, version int64) {
	if submitted > len(m.pending) {
		submitted = len(m.pending)
	}
	m.pending = append([]domain.Action(nil), m.pending[submitted:]...)
	m.inFlight = 0
	m.version = version
	if state != nil {
		m.snapshot = m.rebase(*state)
	}
	_ = m.persist()
}

// rebase replays the pending queue onto base. When the queue no longer
// applies, the authority's state wins and the queue is kept for the
// authority to judge on the next flush.
func (m *Machine) rebase(base domain.GameState) domain.GameState {
	if len(m.pending) == 0 {
		return base
	}
	next, err := m.dispatcher.ApplyBatch(base, m.pending)
	if err != nil {
		logger.FromContext(m.logCtx).Warn(LogMsgRebaseFailed, "pending", len(m.pending), "error", err)
		return base
	}
	return next
}

// fail moves to the state matching err. The queue is never rolled back.
func (m *Machine) fail(err error, fallback string, fx *effects) {
	code := fallback
	if rejection, ok := domain.AsRejection(err); ok {
		switch rejection.Reason {
		case domain.RejectRateLimited:
			m.transition(StateCoolingDown, fx)
			return
		case domain.RejectHoarding:
			m.transition(StateHoarding, fx)
			return
		case domain.RejectSwarming:
			m.transition(StateSwarming, fx)
			return
		case domain.RejectStaleVersion:
			code = ErrorCodeStaleVersion
		case domain.RejectInvalidAction:
			code = ErrorCodeInvalidAction
		case domain.RejectUnauthorized:
			code = ErrorCodeUnauthorized
		}
	} else if errors.Is(err, ErrSyncTimeout) {
		code = ErrorCodeSyncTimeout
	}

	m.errorCode = code
	m.transition(StateError, fx)
}

// entryGate picks the first state after a successful load
func entryGate(state domain.GameState) State {
	switch {
	case state.Bumpkin == nil:
		return StateNoBumpkinFound
	case !state.HasBuilding(BuildingTownCenter):
		return StateNoTownCenter
	case state.Bumpkin.Experience == 0 && len(state.Bumpkin.Activity) == 0:
		return StateIntroduction
	default:
		return StatePlaying
	}
}

func failureReason(err error) string {
	if rejection, ok := domain.AsRejection(err); ok {
		return string(rejection.Reason)
	}
	if errors.Is(err, ErrSyncTimeout) {
		return reasonTimeout
	}
	return reasonError
}

// callWithTimeout waits at most timeout for call. The call keeps ctx, so a
// timeout abandons the result without cancelling the request.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call(ctx)
		done <- result{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		if errors.Is(r.err, context.DeadlineExceeded) {
			return r.value, fmt.Errorf("%w: %v", ErrSyncTimeout, r.err)
		}
		return r.value, r.err
	case <-timer.C:
		return zero, ErrSyncTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
