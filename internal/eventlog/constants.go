package eventlog

import "github.com/osse101/FarmState_Go/internal/event"

// LoggedTypes are the event types written to the audit log
var LoggedTypes = []event.Type{
	event.LedgerBatchApplied,
	event.LedgerBatchRejected,
}

const (
	// DefaultHistoryLimit caps a history query without an explicit limit
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps every history query
	MaxHistoryLimit = 500
	// DefaultRetentionDays is how long entries are kept
	DefaultRetentionDays = 30
)

// Log messages - service events
const (
	LogMsgUnexpectedPayload = "Event payload has no farm, skipping log"
	LogMsgFailedToLogEvent  = "Failed to log event"
	LogMsgEventLogged       = "Event logged"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting event log cleanup job"
	LogMsgCleanupJobFailed    = "Event log cleanup failed"
	LogMsgCleanupJobCompleted = "Event log cleanup completed"
)

// Log field keys
const (
	LogFieldType          = "type"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retentionDays"
	LogFieldDuration      = "duration"
	LogFieldDeletedCount  = "deletedCount"
)
