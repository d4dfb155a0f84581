package reducer

// ==================== Fruit ====================

const (
	// BaseFruitAmount is the unmodified yield of one fruit harvest
	BaseFruitAmount = 1

	// AmountPrecision is the number of decimal places inventory amounts keep
	AmountPrecision = 2
)

// ==================== Items ====================

const (
	ItemAxe  = "Axe"
	ItemWood = "Wood"
)

// ==================== Activity Keys ====================

const (
	activityPlantedSuffix   = " Planted"
	activityHarvestedSuffix = " Harvested"
	activityBoughtSuffix    = " Bought"

	ActivityFruitTreeRemoved = "Fruit Tree Removed"
	ActivitySFLSpent         = "SFL Spent"
)
