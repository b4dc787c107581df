package domain

import "sort"

// CategoryRollup aggregates recommendations for one category.
type CategoryRollup struct {
	Category        string  `json:"category" db:"category"`
	Components      int     `json:"components" db:"components"`
	CurrentUnits    float64 `json:"current_units" db:"current_units"`
	CurrentValue    float64 `json:"current_value" db:"current_value"`
	OptimalValue    float64 `json:"optimal_value" db:"optimal_value"`
	CapitalReleased float64 `json:"capital_released" db:"capital_released"`
	AnnualSavings   float64 `json:"annual_savings" db:"annual_savings"`
}

// PortfolioSummary rolls the whole catalog up: inventory value at the
// current and optimal positions, the capital the move would free, and the
// status mix.
type PortfolioSummary struct {
	Components      int              `json:"components"`
	CurrentValue    float64          `json:"current_value"`
	OptimalValue    float64          `json:"optimal_value"`
	CapitalReleased float64          `json:"capital_released"`
	AnnualSavings   float64          `json:"annual_savings"`
	Understocked    int              `json:"understocked"`
	BelowOptimal    int              `json:"below_optimal"`
	Adequate        int              `json:"adequate"`
	Categories      []CategoryRollup `json:"categories"`
}

// PortfolioOverview pairs the roll-up with the recommendations behind it.
type PortfolioOverview struct {
	Summary         PortfolioSummary `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// BuildPortfolioSummary aggregates recommendations into portfolio totals
// and per-category rollups, categories sorted by name. Components without
// a category land under "uncategorized".
func BuildPortfolioSummary(recs []Recommendation) PortfolioSummary {
	summary := PortfolioSummary{Components: len(recs)}
	byCategory := make(map[string]*CategoryRollup)

	for _, rec := range recs {
		category := rec.Category
		if category == "" {
			category = "uncategorized"
		}

		rollup, ok := byCategory[category]
		if !ok {
			rollup = &CategoryRollup{Category: category}
			byCategory[category] = rollup
		}

		rollup.Components++
		rollup.CurrentUnits += rec.CurrentStock
		rollup.CurrentValue += rec.CurrentStock * rec.UnitCost
		rollup.OptimalValue += rec.OptimalInventory * rec.UnitCost
		rollup.CapitalReleased += rec.CapitalReleased
		rollup.AnnualSavings += rec.AnnualSavings

		summary.CurrentValue += rec.CurrentStock * rec.UnitCost
		summary.OptimalValue += rec.OptimalInventory * rec.UnitCost
		summary.CapitalReleased += rec.CapitalReleased
		summary.AnnualSavings += rec.AnnualSavings

		switch rec.StockStatus {
		case StatusUnderstocked:
			summary.Understocked++
		case StatusBelowOptimal:
			summary.BelowOptimal++
		case StatusAdequate:
			summary.Adequate++
		}
	}

	summary.Categories = make([]CategoryRollup, 0, len(byCategory))
	for _, rollup := range byCategory {
		summary.Categories = append(summary.Categories, *rollup)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Category < summary.Categories[j].Category
	})

	return summary
}
