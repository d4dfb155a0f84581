package config

import "time"

// Storage backends of the authority ledger
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Server defaults
const (
	DefaultPort              = 8080
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultLogDir            = "logs"
	DefaultEnvironment       = "dev"
	DefaultServiceName       = "farmstate"
	DefaultNetwork           = "mainnet"
	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute
	DefaultSyncRateLimit     = 60
	DefaultMaxBatchActions   = 500
	DefaultHoardingLimit     = 1000
	DefaultSessionWindow     = 2 * time.Minute
	DefaultEventRetention    = 30
	DefaultDeadLetterPath    = "logs/event_deadletter.jsonl"
)

// Client defaults
const (
	DefaultAuthorityURL     = "http://localhost:8080"
	DefaultSessionDBPath    = "farm_session.db"
	DefaultAutosaveInterval = 30 * time.Second
	DefaultSyncTimeout      = 15 * time.Second
	DefaultSyncMaxAttempts  = 3
)
