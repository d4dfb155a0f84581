package features

// ==================== Feature Names ====================

// Feature flag names referenced by the catalog and the action registry
const (
	// Banana gates planting Banana Plants
	Banana = "BANANA"

	// Beach unlocks beach-only content for farms holding a Beach bud
	Beach = "BEACH"

	// Marketplace gates the trade operation
	Marketplace = "MARKETPLACE"
)

// ==================== Access Rules ====================

const (
	// TestnetNetwork opens every default-gated feature
	TestnetNetwork = "testnet"

	// BetaPass is the inventory item that opts a farm into default-gated features
	BetaPass = "Beta Pass"

	// BeachBudType is the bud type that unlocks Beach
	BeachBudType = "Beach"
)
