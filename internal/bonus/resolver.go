// Package bonus computes the combined passive modifier a game state grants to
// one (effect, subject) pair from the catalog's bonus declarations.
package bonus

import (
	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/catalog"
	"github.com/osse101/FarmState_Go/internal/domain"
)

var one = decimal.NewFromInt(1)

// Result is a combined modifier: value * Multiplier + Offset
type Result struct {
	Multiplier decimal.Decimal
	Offset     decimal.Decimal
}

// Neutral is the modifier that changes nothing
func Neutral() Result {
	return Result{Multiplier: one, Offset: decimal.Zero}
}

// IsNeutral reports whether the result leaves every value unchanged
func (r Result) IsNeutral() bool {
	return r.Multiplier.Equal(one) && r.Offset.IsZero()
}

// Apply returns base modified by the result
func (r Result) Apply(base decimal.Decimal) decimal.Decimal {
	return base.Mul(r.Multiplier).Add(r.Offset)
}

// Resolver evaluates bonus declarations against a game state. It is pure and
// safe for concurrent use.
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver creates a resolver over the catalog's declarations
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve combines every active bonus for effect on subject. Multipliers
// compose by product and offsets by sum, so evaluation order does not change
// the result. A source counts once no matter how many copies are owned.
func (r *Resolver) Resolve(state domain.GameState, effect catalog.Effect, subject string) Result {
	result := Neutral()
	category := r.catalog.CategoryOf(subject)
	budTypes := placedBudTypes(state)
	counted := make(map[string]bool)

	for _, b := range r.catalog.Bonuses() {
		if b.Effect != effect || !b.AppliesTo(subject, category) {
			continue
		}
		key := string(b.SourceKind) + ":" + b.Source
		if counted[key] || !isActive(state, b, budTypes) {
			continue
		}
		counted[key] = true
		result.Multiplier = result.Multiplier.Mul(b.Multiplier)
		result.Offset = result.Offset.Add(b.Offset)
	}

	return result
}

// Sources lists the bonus sources currently active for effect on subject, in
// declaration order
func (r *Resolver) Sources(state domain.GameState, effect catalog.Effect, subject string) []string {
	category := r.catalog.CategoryOf(subject)
	budTypes := placedBudTypes(state)
	var sources []string
	seen := make(map[string]bool)
	for _, b := range r.catalog.Bonuses() {
		if b.Effect != effect || !b.AppliesTo(subject, category) || seen[b.Source] {
			continue
		}
		if isActive(state, b, budTypes) {
			seen[b.Source] = true
			sources = append(sources, b.Source)
		}
	}
	return sources
}

func isActive(state domain.GameState, b catalog.Bonus, budTypes map[string]bool) bool {
	switch b.SourceKind {
	case catalog.SourceCollectible:
		return state.IsCollectiblePlaced(b.Source)
	case catalog.SourceBudType:
		return budTypes[b.Source]
	default:
		return false
	}
}

// placedBudTypes collects the types of buds that sit on the farm; buds held
// only in the wallet grant nothing
func placedBudTypes(state domain.GameState) map[string]bool {
	types := make(map[string]bool, len(state.Buds))
	for _, bud := range state.Buds {
		if bud.IsPlaced() {
			types[bud.Type] = true
		}
	}
	return types
}
