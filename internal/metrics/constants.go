package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Session metric names
const (
	MetricNameStateTransitions = "session_state_transitions_total"
	MetricNameActionsApplied   = "session_actions_applied_total"
	MetricNameActionsRejected  = "session_actions_rejected_total"
	MetricNameSyncsCompleted   = "session_syncs_completed_total"
	MetricNameSyncsFailed      = "session_syncs_failed_total"
	MetricNameSyncDuration     = "session_sync_duration_seconds"
	MetricNameActionsSynced    = "session_actions_synced_total"
)

// Ledger metric names
const (
	MetricNameBatchesApplied  = "ledger_batches_applied_total"
	MetricNameBatchesRejected = "ledger_batches_rejected_total"
	MetricNameActionsSkipped  = "ledger_actions_skipped_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
	HelpTextEventsPublished      = "Total number of events published"
	HelpTextEventHandlerErrors   = "Total number of event handler errors"
	HelpTextStateTransitions     = "Session lifecycle transitions by target state"
	HelpTextActionsApplied       = "Actions applied locally by type"
	HelpTextActionsRejected      = "Actions rejected locally by type and error code"
	HelpTextSyncsCompleted       = "Flushes accepted by the authority"
	HelpTextSyncsFailed          = "Flushes that failed, by reason"
	HelpTextSyncDuration         = "Authority round-trip time of a flush"
	HelpTextActionsSynced        = "Actions accepted by the authority"
	HelpTextBatchesApplied       = "Batches committed by the ledger, by operation"
	HelpTextBatchesRejected      = "Submissions refused by the ledger, by reason"
	HelpTextActionsSkipped       = "Resubmitted actions the ledger had already applied"
)

// ============================================================================
// Labels
// ============================================================================

const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatus     = "status"
	LabelType       = "type"
	LabelState      = "state"
	LabelActionType = "action_type"
	LabelCode       = "code"
	LabelReason     = "reason"
	LabelOperation  = "operation"
)

// LabelValueSync marks a batch that carried no operation
const LabelValueSync = "sync"

// ============================================================================
// Buckets
// ============================================================================

var (
	HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	SyncLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15}
)

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgUnexpectedPayload = "Unexpected event payload"
	LogMsgMetricsRecorded   = "Metrics recorded for event"
)
