package eventlog

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one logged ledger event
type Entry struct {
	ID        int64           `json:"id"`
	EventType string          `json:"eventType"`
	FarmID    string          `json:"farmId"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Filter narrows a history query. Zero fields match everything.
type Filter struct {
	FarmID    string
	EventType string
	Since     *time.Time
	Limit     int
}

// Repository stores the ledger audit log
type Repository interface {
	LogEvent(ctx context.Context, eventType, farmID string, payload json.RawMessage) error

	// GetEvents returns matching entries, newest first
	GetEvents(ctx context.Context, filter Filter) ([]Entry, error)

	// CleanupOldEvents removes entries older than the given number of days
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}
