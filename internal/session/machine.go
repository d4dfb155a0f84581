// Package session runs the client-side lifecycle of one farm: loading,
// optimistic play, periodic and explicit flushes to the authority, external
// operations and every modal state in between.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FarmState_Go/internal/dispatcher"
	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/event"
	"github.com/osse101/FarmState_Go/internal/logger"
	"github.com/osse101/FarmState_Go/internal/worker"
)

// Config identifies the session
type Config struct {
	FarmID string
	// SessionID is generated when empty
	SessionID   string
	SyncTimeout time.Duration
}

// Deps are the collaborators of a Machine. Store and Bus are optional.
type Deps struct {
	Authority  Authority
	Store      Store
	Dispatcher *dispatcher.Dispatcher
	Runner     Runner
	Bus        event.Bus
	Clock      Clock
}

type listener struct {
	id int
	fn func(View)
}

// Machine owns the game state of one farm session. All methods are safe for
// concurrent use. Listeners and bus events are delivered after the internal
// lock is released, in the order the changes happened on that goroutine.
type Machine struct {
	mu sync.Mutex

	farmID      string
	sessionID   string
	syncTimeout time.Duration
	logCtx      context.Context

	authority  Authority
	store      Store
	dispatcher *dispatcher.Dispatcher
	runner     Runner
	bus        event.Bus
	now        Clock

	state        State
	snapshot     domain.GameState
	version      int64
	pending      []domain.Action
	inFlight     int
	attempt      uint64
	errorCode    string
	operation    domain.OperationKind
	outcome      domain.OperationOutcome
	lastActionAt time.Time
	// resumeID lets a restored session keep the id it synced under
	resumeID bool
	booting  bool
	started  bool
	closed   bool

	listeners    []listener
	nextListener int
}

// effects are collected under the lock and released after it
type effects struct {
	views     []View
	events    []event.Event
	jobs      []worker.Job
	listeners []listener
}

// New creates a machine in the loading state. Call Start to boot it.
func New(cfg Config, deps Deps) *Machine {
	sessionID := cfg.SessionID
	resumeID := sessionID == ""
	if resumeID {
		sessionID = uuid.NewString()
	}
	timeout := cfg.SyncTimeout
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}
	runner := deps.Runner
	if runner == nil {
		runner = goRunner{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Machine{
		farmID:      cfg.FarmID,
		sessionID:   sessionID,
		syncTimeout: timeout,
		logCtx:      logger.WithSession(context.Background(), sessionID, cfg.FarmID),
		authority:   deps.Authority,
		store:       deps.Store,
		dispatcher:  deps.Dispatcher,
		runner:      runner,
		bus:         deps.Bus,
		now:         clock,
		state:       StateLoading,
		resumeID:    resumeID,
	}
}

// SessionID returns the id sent with every sync
func (m *Machine) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Start restores any persisted session and begins loading from the authority.
// Without a configured session id the persisted one is resumed, so the
// authority keeps seeing the same session across restarts.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return domain.ErrSessionClosed
	case m.started || m.booting:
		m.mu.Unlock()
		return fmt.Errorf("%w: session already started", domain.ErrInvalidTransition)
	}
	m.booting = true
	m.mu.Unlock()

	persisted := m.restore(ctx)

	return m.locked(func(fx *effects) error {
		if m.closed {
			return domain.ErrSessionClosed
		}
		m.started = true

		if persisted != nil {
			if m.resumeID && persisted.SessionID != "" {
				m.sessionID = persisted.SessionID
				m.logCtx = logger.WithSession(context.Background(), m.sessionID, m.farmID)
			}
			m.version = persisted.Version
			m.snapshot = persisted.State
			m.pending = append([]domain.Action(nil), persisted.Pending...)
			if n := len(m.pending); n > 0 {
				m.lastActionAt = m.pending[n-1].CreatedAt
			}
		}

		m.changed(fx)
		m.launchLoad(fx)
		return nil
	})
}

// Send delivers an event to the machine. Events the current state does not
// handle return domain.ErrInvalidTransition and change nothing.
func (m *Machine) Send(ev Event) error {
	return m.locked(func(fx *effects) error {
		if m.closed {
			return domain.ErrSessionClosed
		}
		if !m.started {
			return fmt.Errorf("%w: session not started", domain.ErrInvalidTransition)
		}
		return m.handle(ev, fx)
	})
}

func (m *Machine) handle(ev Event, fx *effects) error {
	switch ev.Kind {
	case EventSave:
		return m.startFlush(ev, StateSyncing, fx)
	case EventAutosave, EventBlur:
		return m.startFlush(ev, StateAutosaving, fx)
	case EventRetry:
		if m.state != StateError {
			return m.invalid(ev)
		}
		m.transition(StateLoading, fx)
		m.launchLoad(fx)
		return nil
	case EventRefresh:
		if m.state != StatePlaying && m.state != StateError {
			return m.invalid(ev)
		}
		m.transition(StateRefreshing, fx)
		m.launchLoad(fx)
		return nil
	case EventAcknowledge:
		switch m.state {
		case StateError, StateIntroduction, StateCoolingDown, StateHoarding, StateSwarming:
			m.transition(StatePlaying, fx)
			return nil
		case StateNoBumpkinFound, StateNoTownCenter:
			m.transition(StateLoading, fx)
			m.launchLoad(fx)
			return nil
		default:
			return m.invalid(ev)
		}
	case EventContinue:
		switch m.state {
		case StateSynced, StateTraded, StateSniped, StateDeposited:
			m.transition(StatePlaying, fx)
			return nil
		default:
			return m.invalid(ev)
		}
	case EventOperation:
		return m.startOperation(ev, fx)
	}
	return m.invalid(ev)
}

func (m *Machine) invalid(ev Event) error {
	return fmt.Errorf("%w: %s in %s", domain.ErrInvalidTransition, ev.Kind, m.state)
}

// Dispatch applies action to the current snapshot and queues it for the next
// flush. A rejected action leaves the snapshot and queue untouched. Missing
// ids and timestamps are filled in.
func (m *Machine) Dispatch(action domain.Action) (domain.GameState, error) {
	var result domain.GameState
	err := m.locked(func(fx *effects) error {
		if m.closed {
			return domain.ErrSessionClosed
		}
		result = m.snapshot.Clone()
		if !m.state.AcceptsActions() {
			return fmt.Errorf("%w: %s", domain.ErrSessionBusy, m.state)
		}

		if action.ID == "" {
			action.ID = uuid.NewString()
		}
		if action.CreatedAt.IsZero() {
			action.CreatedAt = m.now()
		}
		if action.CreatedAt.Before(m.lastActionAt) {
			return fmt.Errorf("%w: %s at %s", domain.ErrOutOfOrder, action.Type, action.CreatedAt.Format(time.RFC3339Nano))
		}

		next, err := m.dispatcher.Apply(m.snapshot, action)
		if err != nil {
			fx.events = append(fx.events, event.NewActionRejectedEvent(m.sessionID, m.farmID, action, err))
			return err
		}

		m.snapshot = next
		m.pending = append(m.pending, action)
		m.lastActionAt = action.CreatedAt
		_ = m.persist()

		fx.events = append(fx.events, event.NewActionAppliedEvent(m.sessionID, m.farmID, action))
		m.changed(fx)
		result = next.Clone()
		return nil
	})
	return result, err
}

// Play builds an action stamped with the current time and dispatches it
func (m *Machine) Play(actionType domain.ActionType, payload interface{}) (domain.GameState, error) {
	action, err := domain.NewAction(actionType, m.now(), payload)
	if err != nil {
		return m.View().Snapshot, err
	}
	return m.Dispatch(action)
}

// Close persists the session and stops delivering notifications.
// Results of calls still in flight are discarded. A machine that never
// started leaves the store alone.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.listeners = nil
	if !m.started {
		return nil
	}
	return m.persist()
}

// Subscribe registers fn for every change of the view and returns a function
// that removes it. fn may be called from worker goroutines.
func (m *Machine) Subscribe(fn func(View)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextListener++
	id := m.nextListener
	m.listeners = append(m.listeners, listener{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// View returns a consistent copy of the observable session
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Machine) viewLocked() View {
	v := View{
		SessionID: m.sessionID,
		FarmID:    m.farmID,
		State:     m.state,
		Snapshot:  m.snapshot.Clone(),
		Version:   m.version,
		Pending:   len(m.pending),
		InFlight:  m.inFlight,
		Outcome:   m.outcome,
	}
	if m.state == StateError {
		v.ErrorCode = m.errorCode
	}
	if m.state.isOperation() {
		v.Operation = m.operation
	}
	return v
}

// locked runs fn under the lock, then releases its effects
func (m *Machine) locked(fn func(fx *effects) error) error {
	fx := &effects{}

	m.mu.Lock()
	err := fn(fx)
	fx.listeners = append([]listener(nil), m.listeners...)
	m.mu.Unlock()

	m.release(fx)
	return err
}

func (m *Machine) release(fx *effects) {
	for _, v := range fx.views {
		for _, l := range fx.listeners {
			l.fn(v)
		}
	}

	if m.bus != nil {
		for _, e := range fx.events {
			if err := m.bus.Publish(m.logCtx, e); err != nil {
				logger.FromContext(m.logCtx).Warn(LogMsgPublishFailed, "type", e.Type, "error", err)
			}
		}
	}

	for _, job := range fx.jobs {
		m.runner.Enqueue(job)
	}
}

func (m *Machine) transition(to State, fx *effects) {
	from := m.state
	m.state = to
	if to != StateError {
		m.errorCode = ""
	}

	logger.FromContext(m.logCtx).Debug(LogMsgTransition, "from", from.String(), "to", to.String(), "pending", len(m.pending))
	fx.events = append(fx.events, event.NewStateChangedEvent(m.sessionID, m.farmID, from.String(), to.String(), to.Blocking()))
	m.changed(fx)
}

func (m *Machine) changed(fx *effects) {
	fx.views = append(fx.views, m.viewLocked())
}

// persist writes the session to the store. Failures are logged; play goes on.
func (m *Machine) persist() error {
	if m.store == nil {
		return nil
	}

	record := domain.PersistedSession{
		FarmID:    m.farmID,
		SessionID: m.sessionID,
		Version:   m.version,
		State:     m.snapshot.Clone(),
		Pending:   append([]domain.Action(nil), m.pending...),
		SavedAt:   m.now(),
	}
	if err := m.store.Save(m.logCtx, record); err != nil {
		logger.FromContext(m.logCtx).Warn(LogMsgPersistFailed, "error", err)
		return err
	}
	return nil
}

// restore reads the persisted session. A malformed record is deleted.
func (m *Machine) restore(ctx context.Context) *domain.PersistedSession {
	if m.store == nil {
		return nil
	}
	log := logger.FromContext(logger.WithSession(ctx, m.sessionID, m.farmID))

	persisted, err := m.store.Load(ctx, m.farmID)
	switch {
	case err == nil:
		log.Info(LogMsgRestored, "pending", len(persisted.Pending), "version", persisted.Version)
		return persisted
	case errors.Is(err, domain.ErrNoPersistedSession):
		return nil
	case errors.Is(err, domain.ErrCorruptSession):
		log.Warn(LogMsgCorruptSession, "error", err)
		if delErr := m.store.Delete(ctx, m.farmID); delErr != nil {
			log.Warn(LogMsgPersistFailed, "error", delErr)
		}
		return nil
	default:
		log.Warn(LogMsgRestoreFailed, "error", err)
		return nil
	}
}
