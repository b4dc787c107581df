package domain

import (
	"fmt"
	"time"
)

// Component represents one replenishable item in the catalog.
type Component struct {
	ID           int64     `json:"id" db:"id"`
	ComponentID  string    `json:"component_id" db:"component_id"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category" db:"category"`
	CurrentStock float64   `json:"current_stock" db:"current_stock"`
	UnitCost     float64   `json:"unit_cost" db:"unit_cost"`
	LeadTimeDays int       `json:"lead_time_days" db:"lead_time_days"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UsagePoint is one demand observation for a component.
type UsagePoint struct {
	ComponentID string    `json:"component_id" db:"component_id"`
	Date        time.Time `json:"date" db:"date"`
	UnitsUsed   float64   `json:"units_used" db:"units_used"`
}

// Planning knob defaults and the bounds enforced at the API edge. The
// calculation engine accepts any mathematically valid value; these bounds
// reflect operating policy, not math.
const (
	DefaultLeadTimeDays = 30
	DefaultServiceLevel = 0.95

	MinLeadTimeDays = 7
	MaxLeadTimeDays = 90
	MinServiceLevel = 0.85
	MaxServiceLevel = 0.99
)

// PlanningParams are the caller-tunable planning knobs.
type PlanningParams struct {
	LeadTimeDays int     `json:"lead_time_days"`
	ServiceLevel float64 `json:"service_level"`
}

// DefaultPlanningParams returns the standard 30-day, 95% parameter set.
func DefaultPlanningParams() PlanningParams {
	return PlanningParams{
		LeadTimeDays: DefaultLeadTimeDays,
		ServiceLevel: DefaultServiceLevel,
	}
}

// Validate checks the params against the operating bounds.
func (p PlanningParams) Validate() error {
	if p.LeadTimeDays < MinLeadTimeDays || p.LeadTimeDays > MaxLeadTimeDays {
		return fmt.Errorf("lead_time_days must be within [%d, %d], got %d", MinLeadTimeDays, MaxLeadTimeDays, p.LeadTimeDays)
	}
	if p.ServiceLevel < MinServiceLevel || p.ServiceLevel > MaxServiceLevel {
		return fmt.Errorf("service_level must be within [%g, %g], got %g", MinServiceLevel, MaxServiceLevel, p.ServiceLevel)
	}

	return nil
}

// Recommendation is the planning result for one component under one
// parameter set.
type Recommendation struct {
	ID                 string      `json:"id" db:"id"`
	RunID              string      `json:"run_id,omitempty" db:"run_id"`
	ComponentID        string      `json:"component_id" db:"component_id"`
	ComponentName      string      `json:"component_name" db:"component_name"`
	Category           string      `json:"category" db:"category"`
	LeadTimeDays       int         `json:"lead_time_days" db:"lead_time_days"`
	ServiceLevel       float64     `json:"service_level" db:"service_level"`
	CurrentStock       float64     `json:"current_stock" db:"current_stock"`
	UnitCost           float64     `json:"unit_cost" db:"unit_cost"`
	SafetyStock        float64     `json:"safety_stock" db:"safety_stock"`
	OptimalInventory   float64     `json:"optimal_inventory" db:"optimal_inventory"`
	OrderQuantity      float64     `json:"order_quantity" db:"order_quantity"`
	BaselineInventory  float64     `json:"baseline_inventory" db:"baseline_inventory"`
	InventoryReduction float64     `json:"inventory_reduction" db:"inventory_reduction"`
	ReductionPct       float64     `json:"reduction_pct" db:"reduction_pct"`
	CapitalReleased    float64     `json:"capital_released" db:"capital_released"`
	AnnualSavings      float64     `json:"annual_savings" db:"annual_savings"`
	StockStatus        StockStatus `json:"stock_status" db:"stock_status"`
	Action             string      `json:"action" db:"action"`
	DemandObservations int         `json:"demand_observations" db:"demand_observations"`
	ForecastSource     string      `json:"forecast_source" db:"forecast_source"`
	GeneratedAt        time.Time   `json:"generated_at" db:"generated_at"`
}

// RecommendationFilter narrows recommendation queries. The zero value
// matches everything.
type RecommendationFilter struct {
	Category string      `json:"category,omitempty"`
	Status   StockStatus `json:"status,omitempty"`
	RunID    string      `json:"run_id,omitempty"`
	Limit    int         `json:"limit,omitempty"`
}
