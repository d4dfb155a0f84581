package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Inventory maps an item name to the quantity the player holds
type Inventory map[string]decimal.Decimal

// Count returns the quantity held for name, zero when absent
func (inv Inventory) Count(name string) decimal.Decimal {
	if qty, ok := inv[name]; ok {
		return qty
	}
	return decimal.Zero
}

// Coordinates is a position on the farm grid
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Placement records one placed copy of a collectible or building
type Placement struct {
	ID          string      `json:"id"`
	Coordinates Coordinates `json:"coordinates"`
	CreatedAt   int64       `json:"createdAt"`
	ReadyAt     int64       `json:"readyAt"`
}

// Bud is a decorative entity whose traits can grant broad bonuses once placed
type Bud struct {
	Type        string       `json:"type"`
	Colour      string       `json:"colour,omitempty"`
	Stem        string       `json:"stem,omitempty"`
	Aura        string       `json:"aura,omitempty"`
	Ears        string       `json:"ears,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// IsPlaced reports whether the bud sits on the farm
func (b Bud) IsPlaced() bool {
	return b.Coordinates != nil
}

// FruitPlanting is the active planting of a fruit patch.
// PlantedAt and HarvestedAt are unix milliseconds; HarvestedAt is 0 until the first harvest.
type FruitPlanting struct {
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	PlantedAt    int64           `json:"plantedAt"`
	HarvestedAt  int64           `json:"harvestedAt"`
	HarvestsLeft int             `json:"harvestsLeft"`
}

// FruitPatch is an indexed plot that holds at most one fruit planting
type FruitPatch struct {
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Fruit  *FruitPlanting `json:"fruit,omitempty"`
}

// Bumpkin is the player profile
type Bumpkin struct {
	ID         int                `json:"id,omitempty"`
	Experience int                `json:"experience"`
	Activity   map[string]float64 `json:"activity,omitempty"`
}

// GameState is the full authoritative snapshot of one farm.
// Chores, Auctioneer and Mailbox belong to subsystems outside the engine and are passed through untouched.
type GameState struct {
	Balance      decimal.Decimal        `json:"balance"`
	Inventory    Inventory              `json:"inventory"`
	Collectibles map[string][]Placement `json:"collectibles"`
	Buildings    map[string][]Placement `json:"buildings"`
	Buds         map[int]Bud            `json:"buds,omitempty"`
	FruitPatches map[int]FruitPatch     `json:"fruitPatches"`
	Bumpkin      *Bumpkin               `json:"bumpkin,omitempty"`

	Chores     json.RawMessage `json:"chores,omitempty"`
	Auctioneer json.RawMessage `json:"auctioneer,omitempty"`
	Mailbox    json.RawMessage `json:"mailbox,omitempty"`
}

// IsCollectiblePlaced reports whether at least one copy of name is placed
func (s GameState) IsCollectiblePlaced(name string) bool {
	return len(s.Collectibles[name]) > 0
}

// HasBuilding reports whether at least one copy of the named building is placed
func (s GameState) HasBuilding(name string) bool {
	return len(s.Buildings[name]) > 0
}

// Clone returns a deep copy so reducers can build the next snapshot without touching the input
func (s GameState) Clone() GameState {
	out := GameState{
		Balance:    s.Balance,
		Chores:     cloneRaw(s.Chores),
		Auctioneer: cloneRaw(s.Auctioneer),
		Mailbox:    cloneRaw(s.Mailbox),
	}

	if s.Inventory != nil {
		out.Inventory = make(Inventory, len(s.Inventory))
		for k, v := range s.Inventory {
			out.Inventory[k] = v
		}
	}

	out.Collectibles = clonePlacements(s.Collectibles)
	out.Buildings = clonePlacements(s.Buildings)

	if s.Buds != nil {
		out.Buds = make(map[int]Bud, len(s.Buds))
		for id, bud := range s.Buds {
			if bud.Coordinates != nil {
				c := *bud.Coordinates
				bud.Coordinates = &c
			}
			out.Buds[id] = bud
		}
	}

	if s.FruitPatches != nil {
		out.FruitPatches = make(map[int]FruitPatch, len(s.FruitPatches))
		for idx, patch := range s.FruitPatches {
			if patch.Fruit != nil {
				f := *patch.Fruit
				patch.Fruit = &f
			}
			out.FruitPatches[idx] = patch
		}
	}

	if s.Bumpkin != nil {
		b := *s.Bumpkin
		if s.Bumpkin.Activity != nil {
			b.Activity = make(map[string]float64, len(s.Bumpkin.Activity))
			for k, v := range s.Bumpkin.Activity {
				b.Activity[k] = v
			}
		}
		out.Bumpkin = &b
	}

	return out
}

func clonePlacements(in map[string][]Placement) map[string][]Placement {
	if in == nil {
		return nil
	}
	out := make(map[string][]Placement, len(in))
	for name, placements := range in {
		out[name] = append([]Placement(nil), placements...)
	}
	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

// TrackActivity increments an activity counter on the bumpkin
func (b *Bumpkin) TrackActivity(name string, amount float64) {
	if b.Activity == nil {
		b.Activity = make(map[string]float64)
	}
	b.Activity[name] += amount
}
