package reducer

import (
	"sort"
	"time"

	"github.com/osse101/FarmState_Go/internal/catalog"
	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/utils"
)

// Func is the contract every action reducer satisfies: a pure function from
// the current snapshot and one action to the next snapshot or a typed error.
// On error the returned snapshot is the input, untouched.
type Func func(state domain.GameState, createdAt time.Time, action domain.Action) (domain.GameState, error)

// Gate names the feature flag an action instance needs, or "" when ungated
type Gate func(action domain.Action) string

// Entry is one registered action type
type Entry struct {
	Reduce  Func
	Feature Gate
}

// HarvestRoller picks the harvest count for a fresh planting
type HarvestRoller func(seed catalog.FruitSeed) int

// Registry maps action types to reducers
type Registry struct {
	entries map[domain.ActionType]Entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ActionType]Entry)}
}

// Register binds a reducer and an optional gate to an action type
func (r *Registry) Register(t domain.ActionType, fn Func, gate Gate) {
	r.entries[t] = Entry{Reduce: fn, Feature: gate}
}

// Lookup returns the entry for an action type
func (r *Registry) Lookup(t domain.ActionType) (Entry, bool) {
	e, ok := r.entries[t]
	return e, ok
}

// Types lists the registered action types in sorted order
func (r *Registry) Types() []domain.ActionType {
	out := make([]domain.ActionType, 0, len(r.entries))
	for t := range r.entries {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Option configures the default registry
type Option func(*options)

type options struct {
	roller HarvestRoller
}

// WithHarvestRoller makes fruit.planted supply a rolled harvest count
func WithHarvestRoller(roller HarvestRoller) Option {
	return func(o *options) {
		o.roller = roller
	}
}

// RandomHarvests rolls uniformly between the species bounds
func RandomHarvests(seed catalog.FruitSeed) int {
	return utils.RandomInt(seed.MinHarvests, seed.MaxHarvests)
}

// NewDefaultRegistry registers every reducer the engine provides
func NewDefaultRegistry(e *Engine, opts ...Option) *Registry {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := NewRegistry()

	r.Register(domain.ActionFruitPlanted, func(state domain.GameState, createdAt time.Time, action domain.Action) (domain.GameState, error) {
		var payload domain.PlantFruitAction
		if err := action.Decode(&payload); err != nil {
			return state, err
		}
		var override *int
		if o.roller != nil {
			if seed, ok := e.catalog.Seed(payload.Seed); ok {
				n := o.roller(seed)
				override = &n
			}
		}
		return e.PlantFruit(state, createdAt, payload, override)
	}, e.seedGate(func(a domain.Action) string {
		var p domain.PlantFruitAction
		if err := a.Decode(&p); err != nil {
			// ungated; the reducer rejects the payload
			return ""
		}
		return p.Seed
	}))

	r.Register(domain.ActionFruitHarvested, decoded(e.HarvestFruit), nil)
	r.Register(domain.ActionFruitTreeRemoved, decoded(e.RemoveFruitTree), nil)
	r.Register(domain.ActionSeedBought, decoded(e.BuySeed), e.seedGate(func(a domain.Action) string {
		var p domain.BuySeedAction
		if err := a.Decode(&p); err != nil {
			return ""
		}
		return p.Item
	}))
	r.Register(domain.ActionCollectiblePlaced, decoded(e.PlaceCollectible), nil)
	r.Register(domain.ActionBudPlaced, decoded(e.PlaceBud), nil)

	return r
}

// seedGate gates an action on the feature of the seed it names
func (e *Engine) seedGate(seedOf func(domain.Action) string) Gate {
	return func(a domain.Action) string {
		if seed, ok := e.catalog.Seed(seedOf(a)); ok {
			return seed.Feature
		}
		return ""
	}
}

// decoded adapts a typed reducer to the Func contract
func decoded[P any](fn func(domain.GameState, time.Time, P) (domain.GameState, error)) Func {
	return func(state domain.GameState, createdAt time.Time, action domain.Action) (domain.GameState, error) {
		var payload P
		if err := action.Decode(&payload); err != nil {
			return state, err
		}
		return fn(state, createdAt, payload)
	}
}
