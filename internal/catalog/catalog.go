package catalog

import (
	"github.com/shopspring/decimal"
)

// Effect names the game quantity a bonus modifies
type Effect string

const (
	EffectFruitYield      Effect = "fruit_yield"
	EffectFruitGrowthTime Effect = "fruit_growth_time"
	EffectFruitHarvests   Effect = "fruit_harvests"
)

// SourceKind is what a player must own for a bonus to activate
type SourceKind string

const (
	SourceCollectible SourceKind = "collectible"
	SourceBudType     SourceKind = "bud_type"
)

// CategoryFruit is the category every fruit species and fruit seed belongs to
const CategoryFruit = "fruit"

// FruitSeed is the static definition of one fruit species
type FruitSeed struct {
	Name            string
	Yield           string
	PlantSeconds    int
	Price           decimal.Decimal
	MinHarvests     int
	MaxHarvests     int
	DefaultHarvests int
	// Feature gates the seed behind a feature flag; empty means always available
	Feature string
}

// PlantMillis is the base growth duration in milliseconds
func (s FruitSeed) PlantMillis() int64 {
	return int64(s.PlantSeconds) * 1000
}

// Bonus is a declarative passive bonus granted by an owned source.
// Collectible bonuses list the subjects they touch; bud bonuses name a category.
type Bonus struct {
	Source     string
	SourceKind SourceKind
	Effect     Effect
	Subjects   []string
	Category   string
	Multiplier decimal.Decimal
	Offset     decimal.Decimal
}

// AppliesTo reports whether the bonus covers subject
func (b Bonus) AppliesTo(subject, category string) bool {
	if b.Category != "" {
		return b.Category == category
	}
	for _, s := range b.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// Catalog is the immutable set of species and bonus declarations the engine reads
type Catalog struct {
	Version     string
	Description string

	seeds   []FruitSeed
	bonuses []Bonus

	bySeed  map[string]FruitSeed
	byFruit map[string]FruitSeed
}

// Seed looks up a fruit seed by name
func (c *Catalog) Seed(name string) (FruitSeed, bool) {
	s, ok := c.bySeed[name]
	return s, ok
}

// FruitByYield looks up a species by the fruit it yields
func (c *Catalog) FruitByYield(name string) (FruitSeed, bool) {
	s, ok := c.byFruit[name]
	return s, ok
}

// IsFruitSeed reports whether name is a plantable fruit seed
func (c *Catalog) IsFruitSeed(name string) bool {
	_, ok := c.bySeed[name]
	return ok
}

// Seeds returns the species in declaration order
func (c *Catalog) Seeds() []FruitSeed {
	return append([]FruitSeed(nil), c.seeds...)
}

// Bonuses returns the bonus declarations in evaluation order
func (c *Catalog) Bonuses() []Bonus {
	return append([]Bonus(nil), c.bonuses...)
}

// CategoryOf returns the category a subject belongs to, or "" when unknown
func (c *Catalog) CategoryOf(subject string) string {
	if _, ok := c.bySeed[subject]; ok {
		return CategoryFruit
	}
	if _, ok := c.byFruit[subject]; ok {
		return CategoryFruit
	}
	return ""
}
