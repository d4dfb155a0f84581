package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of categories every reducer failure maps into
type ErrorKind string

const (
	KindPreconditionMissing  ErrorKind = "precondition_missing"
	KindInvalidTarget        ErrorKind = "invalid_target"
	KindStateConflict        ErrorKind = "state_conflict"
	KindTypeMismatch         ErrorKind = "type_mismatch"
	KindInsufficientResource ErrorKind = "insufficient_resource"
	KindLimitExceeded        ErrorKind = "limit_exceeded"
	KindNotPermitted         ErrorKind = "not_permitted"
)

// ActionError is a typed reducer validation failure.
// Sentinels below are compared by identity; wrap them with fmt.Errorf("%w: ...") for detail.
type ActionError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

func newActionError(kind ErrorKind, code, message string) *ActionError {
	return &ActionError{Kind: kind, Code: code, Message: message}
}

// Reducer errors. Messages are the single source of truth for assert.Contains checks.
var (
	ErrNoBumpkin              = newActionError(KindPreconditionMissing, "NO_PROFILE", "you do not have a bumpkin")
	ErrPlotNotFound           = newActionError(KindInvalidTarget, "PLOT_NOT_FOUND", "fruit patch does not exist")
	ErrAlreadyPlanted         = newActionError(KindStateConflict, "ALREADY_PLANTED", "fruit is already planted")
	ErrWrongSeedType          = newActionError(KindTypeMismatch, "WRONG_SEED_TYPE", "not a fruit seed")
	ErrInsufficientInventory  = newActionError(KindInsufficientResource, "INSUFFICIENT_INVENTORY", "not enough seeds")
	ErrInvalidHarvestCount    = newActionError(KindLimitExceeded, "INVALID_HARVEST_COUNT", "invalid harvests left amount")
	ErrNothingPlanted         = newActionError(KindPreconditionMissing, "NOTHING_PLANTED", "nothing was planted")
	ErrNoHarvestsLeft         = newActionError(KindInsufficientResource, "NO_HARVESTS_LEFT", "no harvest left")
	ErrNotReady               = newActionError(KindStateConflict, "NOT_READY", "fruit is still replenishing")
	ErrFruitStillAvailable    = newActionError(KindStateConflict, "FRUIT_STILL_AVAILABLE", "fruit is still available")
	ErrWrongTool              = newActionError(KindTypeMismatch, "WRONG_TOOL", "not an axe")
	ErrNoAxe                  = newActionError(KindInsufficientResource, "NO_AXE", "no axe")
	ErrUnknownItem            = newActionError(KindTypeMismatch, "UNKNOWN_ITEM", "this item is not a seed")
	ErrInvalidAmount          = newActionError(KindInvalidTarget, "INVALID_AMOUNT", "invalid amount")
	ErrInsufficientFunds      = newActionError(KindInsufficientResource, "INSUFFICIENT_FUNDS", "insufficient tokens")
	ErrNoCollectibleAvailable = newActionError(KindInsufficientResource, "NO_COLLECTIBLE_AVAILABLE", "you can't place an item that is not on the inventory")
	ErrDuplicatePlacementID   = newActionError(KindStateConflict, "DUPLICATE_PLACEMENT_ID", "id already exists")
	ErrBudNotFound            = newActionError(KindPreconditionMissing, "BUD_NOT_FOUND", "bud does not exist")
	ErrBudAlreadyPlaced       = newActionError(KindStateConflict, "BUD_ALREADY_PLACED", "bud is already placed")
	ErrInvalidPayload         = newActionError(KindInvalidTarget, "INVALID_PAYLOAD", "invalid action payload")
	ErrUnknownAction          = newActionError(KindInvalidTarget, "UNKNOWN_ACTION", "unknown action type")
	ErrActionNotPermitted     = newActionError(KindNotPermitted, "ACTION_NOT_PERMITTED", "action not permitted")
)

// KindOf returns the category of a reducer failure anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// CodeOf returns the stable code of a reducer failure anywhere in err's chain
func CodeOf(err error) (string, bool) {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return "", false
}

// ErrMsgTxClosed is the message pgx returns when rolling back a finished transaction
const ErrMsgTxClosed = "tx is closed"

// ErrTxClosed is returned by Commit or Rollback on a finished transaction
var ErrTxClosed = errors.New(ErrMsgTxClosed)

// Session and ledger errors
var (
	ErrSessionBusy          = errors.New("session is not accepting actions")
	ErrSessionClosed        = errors.New("session is closed")
	ErrOutOfOrder           = errors.New("action is older than the last queued action")
	ErrInvalidTransition    = errors.New("event not allowed in current state")
	ErrNoPersistedSession   = errors.New("no persisted session")
	ErrCorruptSession       = errors.New("persisted session is malformed")
	ErrFarmNotFound         = errors.New("farm not found")
	ErrFarmExists           = errors.New("farm already exists")
	ErrListingNotFound      = errors.New("listing not found")
	ErrUnknownOperation     = errors.New("unknown operation")
	ErrBatchTooLarge        = errors.New("too many actions in one submission")
	ErrAuthorityUnavailable = errors.New("authority unavailable")
)

// RejectionReason classifies why the remote authority refused a submission
type RejectionReason string

const (
	RejectStaleVersion  RejectionReason = "stale_version"
	RejectInvalidAction RejectionReason = "invalid_action"
	RejectRateLimited   RejectionReason = "rate_limited"
	RejectHoarding      RejectionReason = "hoarding"
	RejectSwarming      RejectionReason = "swarming"
	RejectUnauthorized  RejectionReason = "unauthorized"
)

// Rejection is a structured refusal from the remote authority
type Rejection struct {
	Reason   RejectionReason `json:"reason"`
	Message  string          `json:"message"`
	ActionID string          `json:"actionId,omitempty"`
	Code     string          `json:"code,omitempty"`
}

func (r *Rejection) Error() string {
	if r.ActionID != "" {
		return fmt.Sprintf("rejected (%s): %s [action %s]", r.Reason, r.Message, r.ActionID)
	}
	return fmt.Sprintf("rejected (%s): %s", r.Reason, r.Message)
}

// AsRejection extracts a Rejection from err's chain
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
