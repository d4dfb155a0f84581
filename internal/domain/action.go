package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionType names a gameplay verb. Types follow the pattern <entity>.<verb>.
type ActionType string

const (
	ActionFruitPlanted      ActionType = "fruit.planted"
	ActionFruitHarvested    ActionType = "fruit.harvested"
	ActionFruitTreeRemoved  ActionType = "fruitTree.removed"
	ActionSeedBought        ActionType = "seed.bought"
	ActionCollectiblePlaced ActionType = "collectible.placed"
	ActionBudPlaced         ActionType = "bud.placed"
)

// Action is an immutable, timestamped gameplay intent. It is the unit of
// local replay and of the sync protocol; ID makes resubmission idempotent.
type Action struct {
	ID        string          `json:"id" validate:"required,max=64"`
	Type      ActionType      `json:"type" validate:"required"`
	CreatedAt time.Time       `json:"createdAt"`
	Payload   json.RawMessage `json:"payload"`
}

// NewAction encodes payload and stamps the action with a fresh id
func NewAction(actionType ActionType, createdAt time.Time, payload interface{}) (Action, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Action{}, fmt.Errorf("failed to encode %s payload: %w", actionType, err)
	}
	return Action{
		ID:        uuid.NewString(),
		Type:      actionType,
		CreatedAt: createdAt,
		Payload:   raw,
	}, nil
}

// MustAction is NewAction for payloads that cannot fail to encode
func MustAction(actionType ActionType, createdAt time.Time, payload interface{}) Action {
	a, err := NewAction(actionType, createdAt, payload)
	if err != nil {
		panic(err)
	}
	return a
}

// Decode unmarshals the payload into v
func (a Action) Decode(v interface{}) error {
	if len(a.Payload) == 0 {
		return fmt.Errorf("%w: %s has no payload", ErrInvalidPayload, a.Type)
	}
	if err := json.Unmarshal(a.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, a.Type, err)
	}
	return nil
}

// PlantFruitAction plants a fruit seed on a patch.
// Index stays a string on the wire; reducers resolve it to a patch key.
type PlantFruitAction struct {
	Index string `json:"index"`
	Seed  string `json:"seed"`
}

// HarvestFruitAction harvests a ready fruit patch
type HarvestFruitAction struct {
	Index string `json:"index"`
}

// RemoveFruitTreeAction chops an exhausted fruit tree
type RemoveFruitTreeAction struct {
	Index string `json:"index"`
	Item  string `json:"item"`
}

// BuySeedAction buys seeds with the in-game balance
type BuySeedAction struct {
	Item   string `json:"item"`
	Amount int    `json:"amount"`
}

// PlaceCollectibleAction places an owned collectible on the farm
type PlaceCollectibleAction struct {
	Name        string      `json:"name"`
	ID          string      `json:"id"`
	Coordinates Coordinates `json:"coordinates"`
}

// PlaceBudAction places an owned bud on the farm
type PlaceBudAction struct {
	ID          int         `json:"id"`
	Coordinates Coordinates `json:"coordinates"`
}
