package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
	// PgErrorCodeInvalidTextRepresentation is raised for malformed uuids
	PgErrorCodeInvalidTextRepresentation = "22P02"
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction = "failed to begin transaction"
)

// Error Messages - Farm Operations
const (
	ErrMsgFailedToInsertFarm          = "failed to insert farm"
	ErrMsgFailedToGetFarm             = "failed to get farm"
	ErrMsgFailedToUpdateFarm          = "failed to update farm"
	ErrMsgFailedToMarshalState        = "failed to marshal farm state"
	ErrMsgFailedToUnmarshalState      = "failed to unmarshal farm state"
	ErrMsgFailedToQueryAppliedActions = "failed to query applied actions"
	ErrMsgFailedToRecordActions       = "failed to record applied actions"
)

// Error Messages - Listing Operations
const (
	ErrMsgFailedToInsertListing = "failed to insert listing"
	ErrMsgFailedToGetListing    = "failed to get listing"
	ErrMsgFailedToFillListing   = "failed to fill listing"
)

// Error Messages - Event Log Operations
const (
	ErrMsgFailedToLogEvent      = "failed to log ledger event"
	ErrMsgFailedToQueryEvents   = "failed to query ledger events"
	ErrMsgFailedToCleanupEvents = "failed to clean up ledger events"
)
