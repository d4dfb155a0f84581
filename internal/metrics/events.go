package metrics

import (
	"context"
	"time"

	"github.com/osse101/FarmState_Go/internal/event"
	"github.com/osse101/FarmState_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all session and ledger events
func (e *EventMetricsCollector) Register(bus event.Bus) {
	eventTypes := []event.Type{
		event.SessionStateChanged,
		event.SessionActionApplied,
		event.SessionActionRejected,
		event.SessionSyncCompleted,
		event.SessionSyncFailed,
		event.LedgerBatchApplied,
		event.LedgerBatchRejected,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch p := evt.Payload.(type) {
	case event.StateChangedPayloadV1:
		StateTransitions.WithLabelValues(p.To).Inc()

	case event.ActionPayloadV1:
		if evt.Type == event.SessionActionRejected {
			ActionsRejected.WithLabelValues(p.ActionType, p.Code).Inc()
		} else {
			ActionsApplied.WithLabelValues(p.ActionType).Inc()
		}

	case event.SyncPayloadV1:
		SyncDuration.Observe((time.Duration(p.DurationMs) * time.Millisecond).Seconds())
		if evt.Type == event.SessionSyncFailed {
			SyncsFailed.WithLabelValues(p.Reason).Inc()
		} else {
			SyncsCompleted.Inc()
			ActionsSynced.Add(float64(p.Accepted))
		}

	case event.BatchPayloadV1:
		if evt.Type == event.LedgerBatchRejected {
			BatchesRejected.WithLabelValues(p.Reason).Inc()
			break
		}
		op := p.Operation
		if op == "" {
			op = LabelValueSync
		}
		BatchesApplied.WithLabelValues(op).Inc()
		ActionsSkipped.Add(float64(p.Skipped))

	default:
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgUnexpectedPayload, "type", evt.Type)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
