package session

import "time"

// ==================== Timing ====================

const (
	// DefaultAutosaveInterval is how often the autosave job fires
	DefaultAutosaveInterval = 30 * time.Second

	// DefaultSyncTimeout bounds one authority call
	DefaultSyncTimeout = 15 * time.Second
)

// ==================== Entry Gates ====================

const (
	// BuildingTownCenter must be placed before the farm is playable
	BuildingTownCenter = "Town Center"
)

// ==================== Error Codes ====================

// Codes carried by the error state
const (
	ErrorCodeSyncTimeout     = "SYNC_TIMEOUT"
	ErrorCodeSyncFailed      = "SYNC_FAILED"
	ErrorCodeLoadFailed      = "LOAD_FAILED"
	ErrorCodeStaleVersion    = "STALE_VERSION"
	ErrorCodeInvalidAction   = "INVALID_ACTION"
	ErrorCodeUnauthorized    = "UNAUTHORIZED"
	ErrorCodeOperationFailed = "OPERATION_FAILED"
)

// ==================== Log Messages ====================

const (
	LogMsgTransition         = "Session transition"
	LogMsgPersistFailed      = "Failed to persist session"
	LogMsgCorruptSession     = "Discarding malformed persisted session"
	LogMsgRestoreFailed      = "Persisted session unavailable, starting fresh"
	LogMsgRestored           = "Restored persisted session"
	LogMsgRebaseFailed       = "Pending actions do not apply to authority state, keeping authority state"
	LogMsgSyncSucceeded      = "Sync accepted"
	LogMsgSyncFailed         = "Sync failed"
	LogMsgStaleResult        = "Ignoring result of superseded attempt"
	LogMsgPublishFailed      = "Failed to publish session event"
	LogMsgAutosaveSkipped    = "Autosave skipped"
	LogMsgOperationCompleted = "Operation completed"
)
