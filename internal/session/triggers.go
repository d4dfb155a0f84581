package session

import (
	"context"
	"errors"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/logger"
)

// Save flushes pending actions and shows the result
func (m *Machine) Save() error { return m.Send(Event{Kind: EventSave}) }

// Flush is Save
func (m *Machine) Flush() error { return m.Save() }

// Autosave flushes pending actions without leaving play
func (m *Machine) Autosave() error { return m.Send(Event{Kind: EventAutosave}) }

// Blur saves when the player leaves the game
func (m *Machine) Blur() error { return m.Send(Event{Kind: EventBlur}) }

// Retry reloads after an error
func (m *Machine) Retry() error { return m.Send(Event{Kind: EventRetry}) }

// Acknowledge dismisses the current notice
func (m *Machine) Acknowledge() error { return m.Send(Event{Kind: EventAcknowledge}) }

// Continue returns to play after a finished save or operation
func (m *Machine) Continue() error { return m.Send(Event{Kind: EventContinue}) }

// Refresh reloads the authority snapshot and replays pending actions on it
func (m *Machine) Refresh() error { return m.Send(Event{Kind: EventRefresh}) }

// Purchase buys an item from the authority
func (m *Machine) Purchase(params domain.OperationParams) error {
	return m.operate(domain.OperationPurchase, params)
}

// Mint mints an item
func (m *Machine) Mint(params domain.OperationParams) error {
	return m.operate(domain.OperationMint, params)
}

// Transact exchanges balance for an item
func (m *Machine) Transact(params domain.OperationParams) error {
	return m.operate(domain.OperationTransact, params)
}

// Trade fills a marketplace listing; someone else may fill it first
func (m *Machine) Trade(params domain.OperationParams) error {
	return m.operate(domain.OperationTrade, params)
}

// Deposit moves items into the farm
func (m *Machine) Deposit(params domain.OperationParams) error {
	return m.operate(domain.OperationDeposit, params)
}

func (m *Machine) operate(kind domain.OperationKind, params domain.OperationParams) error {
	return m.Send(Event{Kind: EventOperation, Operation: kind, Params: params})
}

// AutosaveJob triggers an autosave on every run. States that cannot autosave
// skip the tick.
type AutosaveJob struct {
	m *Machine
}

// NewAutosaveJob creates a job for the scheduler
func NewAutosaveJob(m *Machine) *AutosaveJob {
	return &AutosaveJob{m: m}
}

// Process implements worker.Job
func (j *AutosaveJob) Process(ctx context.Context) error {
	err := j.m.Autosave()
	if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrSessionClosed) {
		logger.FromContext(logger.WithSession(ctx, j.m.SessionID(), j.m.farmID)).Debug(LogMsgAutosaveSkipped, "reason", err)
		return nil
	}
	return err
}
