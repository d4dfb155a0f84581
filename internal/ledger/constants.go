package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== Defaults ====================

const (
	// DefaultRateLimit is how many submissions a farm may make per window
	DefaultRateLimit = 60
	// DefaultRateWindow is the fixed rate-limit window
	DefaultRateWindow = time.Minute
	// DefaultMaxBatchActions caps one submission
	DefaultMaxBatchActions = 500
	// DefaultSessionWindow is how long a farm stays bound to the session
	// that last submitted for it
	DefaultSessionWindow = 2 * time.Minute
	// DefaultCacheSize is how many farm snapshots the load cache keeps
	DefaultCacheSize = 1024
	// DefaultCacheTTL bounds how long a cached snapshot is served
	DefaultCacheTTL = 30 * time.Second
	// rateLimiterSize bounds the number of tracked farms
	rateLimiterSize = 10000
	// sessionTrackerSize bounds the number of farms with a tracked session
	sessionTrackerSize = 10000
)

// DefaultHoardingLimit is the largest gain of one item a single batch may produce
var DefaultHoardingLimit = decimal.NewFromInt(1000)

// ==================== Messages ====================

const (
	MsgStaleVersion = "farm changed since last known version"
	MsgRateLimited  = "too many submissions, slow down"
	MsgSwarming     = "another session is playing this farm"
	MsgHoarding     = "batch gains more of an item than allowed"
)

const (
	ErrMsgFailedToBeginTx     = "failed to begin ledger transaction"
	ErrMsgFailedToCommit      = "failed to commit ledger transaction"
	ErrMsgFailedToLockFarm    = "failed to lock farm"
	ErrMsgFailedToSaveFarm    = "failed to save farm"
	ErrMsgFailedToReadApplied = "failed to read applied actions"
	ErrMsgFailedToRecord      = "failed to record applied actions"
)

const (
	LogMsgFarmCreated    = "Farm created"
	LogMsgBatchApplied   = "Batch applied"
	LogMsgBatchRejected  = "Batch rejected"
	LogMsgPublishFailed  = "Failed to publish ledger event"
	LogMsgOperationApply = "Operation applied"
)
