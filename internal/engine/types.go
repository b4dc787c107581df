package engine

// Inputs bundles everything Compute needs for one component.
type Inputs struct {
	// Demand is the ordered historical demand, one observation per period,
	// oldest first. Units per period.
	Demand []float64

	// Forecast is the projected demand for upcoming periods.
	Forecast Forecast

	LeadTimeDays int
	ServiceLevel float64
	CurrentStock float64
	UnitCost     float64
}

// Savings quantifies the financial effect of moving from the baseline
// position to the optimal one. A negative reduction means the optimal
// position is above the baseline and capital would be invested, not freed.
type Savings struct {
	InventoryReduction float64
	ReductionPct       float64
	CapitalReleased    float64
	AnnualSavings      float64
}

// Metrics is the full calculation result for one component.
type Metrics struct {
	SafetyStock       float64
	OptimalInventory  float64
	OrderQuantity     float64
	BaselineInventory float64
	Savings           Savings

	// DemandObservations is the history length the figures were derived
	// from. EmptyDemandHistory and UsedDemandFallback flag the defined
	// defaults that stood in for missing data, so a conservative zero is
	// distinguishable from a computed one.
	DemandObservations int
	EmptyDemandHistory bool
	UsedDemandFallback bool
}
