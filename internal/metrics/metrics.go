package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Session Metrics
var (
	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: MetricNameStateTransitions, Help: HelpTextStateTransitions},
		[]string{LabelState},
	)

	ActionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: MetricNameActionsApplied, Help: HelpTextActionsApplied},
		[]string{LabelActionType},
	)

	ActionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: MetricNameActionsRejected, Help: HelpTextActionsRejected},
		[]string{LabelActionType, LabelCode},
	)

	SyncsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{Name: MetricNameSyncsCompleted, Help: HelpTextSyncsCompleted},
	)

	SyncsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: MetricNameSyncsFailed, Help: HelpTextSyncsFailed},
		[]string{LabelReason},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{Name: MetricNameSyncDuration, Help: HelpTextSyncDuration, Buckets: SyncLatencyBuckets},
	)

	ActionsSynced = promauto.NewCounter(
		prometheus.CounterOpts{Name: MetricNameActionsSynced, Help: HelpTextActionsSynced},
	)
)

// Ledger Metrics
var (
	BatchesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: MetricNameBatchesApplied, Help: HelpTextBatchesApplied},
		[]string{LabelOperation},
	)

	BatchesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: MetricNameBatchesRejected, Help: HelpTextBatchesRejected},
		[]string{LabelReason},
	)

	ActionsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{Name: MetricNameActionsSkipped, Help: HelpTextActionsSkipped},
	)
)
