package features

import (
	"github.com/osse101/FarmState_Go/internal/domain"
)

// Rule decides whether a farm can use a feature
type Rule func(state domain.GameState) bool

// Flags evaluates feature access for farms on one network
type Flags struct {
	network string
	rules   map[string]Rule
}

// New creates the flag set for network
func New(network string) *Flags {
	f := &Flags{network: network}
	f.rules = map[string]Rule{
		Banana:      f.defaultRule,
		Beach:       hasBud(BeachBudType),
		Marketplace: f.testnetRule,
	}
	return f
}

// HasAccess reports whether state may use feature. Unknown features are closed.
func (f *Flags) HasAccess(state domain.GameState, feature string) bool {
	rule, ok := f.rules[feature]
	if !ok {
		return false
	}
	return rule(state)
}

// Enabled lists the features open to state
func (f *Flags) Enabled(state domain.GameState) []string {
	var out []string
	for _, name := range []string{Banana, Beach, Marketplace} {
		if f.HasAccess(state, name) {
			out = append(out, name)
		}
	}
	return out
}

func (f *Flags) testnetRule(domain.GameState) bool {
	return f.network == TestnetNetwork
}

// defaultRule opens a feature on testnet or for beta pass holders
func (f *Flags) defaultRule(state domain.GameState) bool {
	return f.network == TestnetNetwork || state.Inventory.Count(BetaPass).IsPositive()
}

func hasBud(budType string) Rule {
	return func(state domain.GameState) bool {
		for _, bud := range state.Buds {
			if bud.Type == budType {
				return true
			}
		}
		return false
	}
}
