package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/FarmState_Go/internal/event"
	"github.com/osse101/FarmState_Go/internal/eventlog"
	"github.com/osse101/FarmState_Go/internal/metrics"
)

// RegisterEventHandlers subscribes the metrics collector and, when given,
// the ledger audit log to bus.
func RegisterEventHandlers(bus event.Bus, eventLog eventlog.Service) error {
	metrics.NewEventMetricsCollector().Register(bus)
	slog.Info(LogMsgMetricsCollectorRegistered)

	if eventLog == nil {
		return nil
	}
	if err := eventLog.Subscribe(bus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSubscribeEventLogger, err)
	}
	slog.Info(LogMsgEventLoggerInitialized)
	return nil
}
