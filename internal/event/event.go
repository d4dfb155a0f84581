package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Session and ledger event types
const (
	SessionStateChanged   Type = domain.EventTypeStateChanged
	SessionActionApplied  Type = domain.EventTypeActionApplied
	SessionActionRejected Type = domain.EventTypeActionRejected
	SessionSyncCompleted  Type = domain.EventTypeSyncCompleted
	SessionSyncFailed     Type = domain.EventTypeSyncFailed
	LedgerBatchApplied    Type = domain.EventTypeBatchApplied
	LedgerBatchRejected   Type = domain.EventTypeBatchRejected
)

// Typed event payloads for type safety

// StateChangedPayloadV1 is published on every session lifecycle transition
type StateChangedPayloadV1 struct {
	SessionID string `json:"session_id"`
	FarmID    string `json:"farm_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Blocking  bool   `json:"blocking"`
	Timestamp int64  `json:"timestamp"`
}

// ActionPayloadV1 describes one locally dispatched action
type ActionPayloadV1 struct {
	SessionID  string `json:"session_id"`
	FarmID     string `json:"farm_id"`
	ActionID   string `json:"action_id"`
	ActionType string `json:"action_type"`
	Code       string `json:"code,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// SyncPayloadV1 describes the outcome of one flush to the authority
type SyncPayloadV1 struct {
	SessionID  string `json:"session_id"`
	FarmID     string `json:"farm_id"`
	Submitted  int    `json:"submitted"`
	Accepted   int    `json:"accepted"`
	Version    int64  `json:"version"`
	Reason     string `json:"reason,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Timestamp  int64  `json:"timestamp"`
}

// BatchPayloadV1 describes a submission the ledger applied or refused
type BatchPayloadV1 struct {
	FarmID    string `json:"farm_id"`
	Applied   int    `json:"applied"`
	Skipped   int    `json:"skipped"`
	Version   int64  `json:"version"`
	Reason    string `json:"reason,omitempty"`
	ActionID  string `json:"action_id,omitempty"`
	Operation string `json:"operation,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Type-safe event constructors

// NewStateChangedEvent creates a session transition event
func NewStateChangedEvent(sessionID, farmID, from, to string, blocking bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    SessionStateChanged,
		Payload: StateChangedPayloadV1{
			SessionID: sessionID,
			FarmID:    farmID,
			From:      from,
			To:        to,
			Blocking:  blocking,
			Timestamp: time.Now().Unix(),
		},
		Metadata: map[string]interface{}{"session_id": sessionID},
	}
}

// NewActionAppliedEvent creates an event for an optimistically applied action
func NewActionAppliedEvent(sessionID, farmID string, action domain.Action) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    SessionActionApplied,
		Payload: ActionPayloadV1{
			SessionID:  sessionID,
			FarmID:     farmID,
			ActionID:   action.ID,
			ActionType: string(action.Type),
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewActionRejectedEvent creates an event for an action a reducer refused
func NewActionRejectedEvent(sessionID, farmID string, action domain.Action, err error) Event {
	payload := ActionPayloadV1{
		SessionID:  sessionID,
		FarmID:     farmID,
		ActionID:   action.ID,
		ActionType: string(action.Type),
		Timestamp:  time.Now().Unix(),
	}
	if code, ok := domain.CodeOf(err); ok {
		payload.Code = code
	}
	if kind, ok := domain.KindOf(err); ok {
		payload.Kind = string(kind)
	}
	return Event{Version: EventSchemaVersion, Type: SessionActionRejected, Payload: payload}
}

// NewSyncCompletedEvent creates an event for an accepted flush
func NewSyncCompletedEvent(sessionID, farmID string, submitted, accepted int, version int64, took time.Duration) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    SessionSyncCompleted,
		Payload: SyncPayloadV1{
			SessionID:  sessionID,
			FarmID:     farmID,
			Submitted:  submitted,
			Accepted:   accepted,
			Version:    version,
			DurationMs: took.Milliseconds(),
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewSyncFailedEvent creates an event for a failed or rejected flush
func NewSyncFailedEvent(sessionID, farmID string, submitted int, reason string, took time.Duration) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    SessionSyncFailed,
		Payload: SyncPayloadV1{
			SessionID:  sessionID,
			FarmID:     farmID,
			Submitted:  submitted,
			Reason:     reason,
			DurationMs: took.Milliseconds(),
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewBatchAppliedEvent creates a ledger commit event
func NewBatchAppliedEvent(farmID string, applied, skipped int, version int64, operation string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LedgerBatchApplied,
		Payload: BatchPayloadV1{
			FarmID:    farmID,
			Applied:   applied,
			Skipped:   skipped,
			Version:   version,
			Operation: operation,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewBatchRejectedEvent creates a ledger refusal event
func NewBatchRejectedEvent(farmID string, rejection *domain.Rejection) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LedgerBatchRejected,
		Payload: BatchPayloadV1{
			FarmID:    farmID,
			Reason:    string(rejection.Reason),
			ActionID:  rejection.ActionID,
			Timestamp: time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers synchronously
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
