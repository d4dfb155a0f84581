package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a game state together with the authority version it was read at
type Snapshot struct {
	FarmID  string    `json:"farmId"`
	State   GameState `json:"state"`
	Version int64     `json:"version"`
}

// SyncRequest submits pending actions, in creation order, to the remote authority.
// Resubmitting the same action ids is safe: the authority skips ids it already applied.
type SyncRequest struct {
	SessionID        string   `json:"sessionId" validate:"required"`
	FarmID           string   `json:"farmId"`
	Actions          []Action `json:"actions" validate:"dive"`
	LastKnownVersion int64    `json:"lastKnownVersion" validate:"gte=0"`
}

// SyncResponse carries the accepted authoritative snapshot.
// Accepted is how many of the submitted actions the authority now holds.
type SyncResponse struct {
	State    *GameState `json:"state,omitempty"`
	Version  int64      `json:"version"`
	Accepted int        `json:"accepted"`
}

// OperationKind names an in-flight external-authority operation (a blocking sub-flow)
type OperationKind string

const (
	OperationPurchase OperationKind = "purchase"
	OperationMint     OperationKind = "mint"
	OperationTransact OperationKind = "transact"
	OperationTrade    OperationKind = "trade"
	OperationDeposit  OperationKind = "deposit"
)

// OperationOutcome is the terminal result of an operation
type OperationOutcome string

const (
	OutcomeCompleted OperationOutcome = "completed"
	OutcomeTraded    OperationOutcome = "traded"
	OutcomeSniped    OperationOutcome = "sniped"
	OutcomeDeposited OperationOutcome = "deposited"
)

// OperationParams holds the fields an operation needs; unused fields stay empty
type OperationParams struct {
	Item      string          `json:"item,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	ListingID string          `json:"listingId,omitempty"`
}

// OperationRequest flushes the pending queue and performs one external operation atomically
type OperationRequest struct {
	SessionID        string          `json:"sessionId" validate:"required"`
	FarmID           string          `json:"farmId"`
	Kind             OperationKind   `json:"kind" validate:"required,oneof=purchase mint transact trade deposit"`
	Params           OperationParams `json:"params"`
	Actions          []Action        `json:"actions" validate:"dive"`
	LastKnownVersion int64           `json:"lastKnownVersion" validate:"gte=0"`
}

// OperationResponse is the authority's answer to an operation
type OperationResponse struct {
	Outcome  OperationOutcome `json:"outcome"`
	State    *GameState       `json:"state,omitempty"`
	Version  int64            `json:"version"`
	Accepted int              `json:"accepted"`
}

// PersistedSession is the durable form of a client session, enough to resume after a crash
type PersistedSession struct {
	FarmID    string    `json:"farmId"`
	SessionID string    `json:"sessionId"`
	Version   int64     `json:"version"`
	State     GameState `json:"state"`
	Pending   []Action  `json:"pending"`
	SavedAt   time.Time `json:"savedAt"`
}

// CreateFarmRequest registers a farm with its starting state
type CreateFarmRequest struct {
	FarmID string    `json:"farmId" validate:"required,max=64,farmid"`
	State  GameState `json:"state"`
}

// APIError is the error body of the authority HTTP API.
// Rejection is set when the authority refused a submission on purpose.
type APIError struct {
	Error     string     `json:"error"`
	Rejection *Rejection `json:"rejection,omitempty"`
}
