package authority

import "time"

// API paths
const (
	PathFarms      = "/api/v1/farms"
	PathFarm       = "/api/v1/farms/{farmID}"
	PathSync       = "/api/v1/farms/{farmID}/sync"
	PathOperations = "/api/v1/farms/{farmID}/operations"
)

// HeaderAPIKey carries the shared API key
const HeaderAPIKey = "X-API-Key"

// Defaults
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 200 * time.Millisecond
	DefaultMaxBackoff  = 2 * time.Second
)

// Operation names used in errors and logs
const (
	opLoad       = "load farm"
	opCreate     = "create farm"
	opSync       = "sync"
	opOperation  = "operation"
	LogMsgRetry  = "Authority call failed, retrying"
	LogMsgFailed = "Authority call failed"
)
