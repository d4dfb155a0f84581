// Package eventlog keeps an audit trail of what the ledger applied and refused.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osse101/FarmState_Go/internal/event"
	"github.com/osse101/FarmState_Go/internal/logger"
)

// Service handles event logging business logic
type Service interface {
	// Subscribe registers the event logger for every ledger event type
	Subscribe(bus event.Bus) error

	// History returns the newest entries of one farm
	History(ctx context.Context, farmID string, limit int) ([]Entry, error)

	// CleanupOldEvents removes entries older than the retention period
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new event logging service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Subscribe(bus event.Bus) error {
	for _, eventType := range LoggedTypes {
		bus.Subscribe(eventType, s.handleEvent)
	}
	return nil
}

func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	batch, err := event.DecodePayload[event.BatchPayloadV1](evt.Payload)
	if err != nil || batch.FarmID == "" {
		log.Debug(LogMsgUnexpectedPayload, LogFieldType, evt.Type)
		return nil
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", evt.Type, err)
	}

	if err := s.repo.LogEvent(ctx, string(evt.Type), batch.FarmID, payload); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldError, err, LogFieldType, evt.Type)
		return err
	}

	log.Debug(LogMsgEventLogged, LogFieldType, evt.Type, "farm_id", batch.FarmID)
	return nil
}

func (s *service) History(ctx context.Context, farmID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.repo.GetEvents(ctx, Filter{FarmID: farmID, Limit: limit})
}

func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}
