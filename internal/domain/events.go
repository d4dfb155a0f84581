package domain

// Event type constants used for event bus subscriptions and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "session.state_changed")
const (
	// EventTypeStateChanged is published on every session lifecycle transition
	EventTypeStateChanged = "session.state_changed"

	// EventTypeActionApplied is published when a dispatched action is applied locally
	EventTypeActionApplied = "session.action_applied"

	// EventTypeActionRejected is published when a reducer rejects a dispatched action
	EventTypeActionRejected = "session.action_rejected"

	// EventTypeSyncCompleted is published when the authority accepts a flush
	EventTypeSyncCompleted = "session.sync_completed"

	// EventTypeSyncFailed is published when a flush fails or is rejected
	EventTypeSyncFailed = "session.sync_failed"

	// EventTypeBatchApplied is published by the ledger after committing a batch
	EventTypeBatchApplied = "ledger.batch_applied"

	// EventTypeBatchRejected is published by the ledger when a submission is refused
	EventTypeBatchRejected = "ledger.batch_rejected"
)
