package engine

import (
	"fmt"
	"math"
	"strings"
)

// Defaults for the tunable policy knobs.
const (
	// DefaultCarryingCostRate is the annual cost of holding one currency
	// unit of inventory, as a fraction of its value.
	DefaultCarryingCostRate = 0.15

	// DefaultBaselineCoverageDays is the demand coverage the
	// pre-optimization baseline position assumes.
	DefaultBaselineCoverageDays = 60
)

// LeadTimeScaling selects how safety stock scales with lead time.
type LeadTimeScaling int

const (
	// ScaleSqrtDays multiplies demand deviation by the square root of the
	// lead time in days.
	ScaleSqrtDays LeadTimeScaling = iota

	// ScaleSqrtMonths multiplies by the square root of the lead time in
	// months (days/30). Kept so plans produced by older planner builds can
	// be reproduced; ScaleSqrtDays is the canonical variant.
	ScaleSqrtMonths
)

func (s LeadTimeScaling) String() string {
	switch s {
	case ScaleSqrtDays:
		return "sqrt-days"
	case ScaleSqrtMonths:
		return "sqrt-months"
	default:
		return fmt.Sprintf("LeadTimeScaling(%d)", int(s))
	}
}

// ParseLeadTimeScaling maps a config label to its scaling variant. The
// empty string selects the canonical ScaleSqrtDays.
func ParseLeadTimeScaling(label string) (LeadTimeScaling, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "sqrt-days":
		return ScaleSqrtDays, nil
	case "sqrt-months":
		return ScaleSqrtMonths, nil
	}

	return 0, fmt.Errorf("%w: unknown lead time scaling %q", ErrInvalidConfiguration, label)
}

func (s LeadTimeScaling) factor(leadTimeDays int) float64 {
	days := float64(leadTimeDays)
	if s == ScaleSqrtMonths {
		return math.Sqrt(days / 30)
	}

	return math.Sqrt(days)
}

// Policy pins the calculation variants that changed across planner
// generations, so one process always produces one consistent plan.
type Policy struct {
	LeadTimeScaling      LeadTimeScaling
	BaselineCoverageDays int
	CarryingCostRate     float64
}

// DefaultPolicy returns the canonical policy: day-basis lead time scaling,
// 60-day baseline coverage, 15% annual carrying cost.
func DefaultPolicy() Policy {
	return Policy{
		LeadTimeScaling:      ScaleSqrtDays,
		BaselineCoverageDays: DefaultBaselineCoverageDays,
		CarryingCostRate:     DefaultCarryingCostRate,
	}
}

// Validate checks the policy fields against their valid domains.
func (p Policy) Validate() error {
	if p.LeadTimeScaling != ScaleSqrtDays && p.LeadTimeScaling != ScaleSqrtMonths {
		return fmt.Errorf("%w: unknown lead time scaling %d", ErrInvalidConfiguration, int(p.LeadTimeScaling))
	}
	if p.BaselineCoverageDays <= 0 {
		return fmt.Errorf("%w: baseline coverage must be positive, got %d days", ErrInvalidConfiguration, p.BaselineCoverageDays)
	}
	if p.CarryingCostRate < 0 || p.CarryingCostRate > 1 {
		return fmt.Errorf("%w: carrying cost rate must be within [0, 1], got %g", ErrInvalidConfiguration, p.CarryingCostRate)
	}

	return nil
}
