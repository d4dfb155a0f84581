package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgFarmIDMismatch        = "farmId in body does not match path"
	ErrMsgGenericServerError    = "Something went wrong"
	ErrMsgFarmNotFound          = "Farm not found"
	ErrMsgFarmExists            = "Farm already exists"
	ErrMsgListingNotFound       = "Listing not found"
	ErrMsgUnknownOperation      = "Unknown operation"
	ErrMsgInvalidAmount         = "Invalid amount"
	ErrMsgBatchTooLarge         = "Too many actions in one submission"
	ErrMsgInvalidLimit          = "limit must be a non-negative integer"
)

// Log messages
const (
	LogMsgDecodeFailed    = "Failed to decode request"
	LogMsgRequestDecoded  = "Request decoded"
	LogMsgServiceFailed   = "Service call failed"
	LogMsgReadinessFailed = "Readiness check failed"
	LogMsgEncodeFailed    = "Failed to encode JSON response"
	LogMsgWriteFailed     = "Failed to write response buffer"
)
