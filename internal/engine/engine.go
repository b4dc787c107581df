// Package engine implements the inventory optimization calculations:
// safety stock, optimal and baseline inventory positions, order quantity,
// and the financial effect of moving between positions.
//
// The calculator is pure and stateless. It performs no I/O, holds no
// mutable state and is safe for concurrent use from any number of
// goroutines. Callers own logging and persistence.
package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Calculator evaluates planning metrics under a fixed Policy.
type Calculator struct {
	policy Policy
}

// NewCalculator returns a calculator for the given policy.
func NewCalculator(policy Policy) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &Calculator{policy: policy}, nil
}

// Policy returns the active policy.
func (c *Calculator) Policy() Policy { return c.policy }

// SafetyStock returns the buffer needed to absorb demand variability over
// the lead time at the requested service level:
//
//	z(serviceLevel) × stddev(demand) × scale(leadTimeDays)
//
// The deviation is the population standard deviation over the full history.
// Empty history yields 0: with no observed variability there is nothing to
// buffer against. serviceLevel must lie strictly between 0 and 1 and
// leadTimeDays must be positive, otherwise ErrInvalidConfiguration.
func (c *Calculator) SafetyStock(demand []float64, leadTimeDays int, serviceLevel float64) (float64, error) {
	if err := validateLeadTime(leadTimeDays); err != nil {
		return 0, err
	}
	if serviceLevel <= 0 || serviceLevel >= 1 {
		return 0, fmt.Errorf("%w: service level must be within (0, 1), got %g", ErrInvalidConfiguration, serviceLevel)
	}
	if len(demand) == 0 {
		return 0, nil
	}

	// 1. Service factor: inverse normal CDF of the service level
	z := distuv.UnitNormal.Quantile(serviceLevel)

	// 2. Demand variability across the whole history
	sigma := stat.PopStdDev(demand, nil)

	// 3. Scale to the lead time and clamp
	ss := z * sigma * c.policy.LeadTimeScaling.factor(leadTimeDays)

	return finite(math.Max(0, ss)), nil
}

// OptimalInventory returns the target stock position for the lead time:
// expected demand while waiting for replenishment plus the safety buffer.
// The expected per-period rate is the forecast averaged over the lead-time
// window; a sequence shorter than the lead time is averaged in full and
// extrapolated. An empty sequence forecast returns ErrInsufficientData so
// the caller can choose its own fallback.
func (c *Calculator) OptimalInventory(f Forecast, leadTimeDays int, safetyStock float64) (float64, error) {
	if err := validateLeadTime(leadTimeDays); err != nil {
		return 0, err
	}

	rate, ok := f.ratePerPeriod(leadTimeDays)
	if !ok {
		return 0, fmt.Errorf("%w: forecast holds no periods", ErrInsufficientData)
	}

	opt := rate*float64(leadTimeDays) + safetyStock

	return finite(math.Max(0, opt)), nil
}

// OrderQuantity returns how many units to order now to reach the optimal
// position. Never negative; excess stock is not an order.
func (c *Calculator) OrderQuantity(optimal, currentStock float64) float64 {
	return finite(math.Max(0, optimal-currentStock))
}

// BaselineInventory estimates the position a coverage-driven policy would
// hold: mean historical demand times the policy coverage window. Empty
// history yields 0.
func (c *Calculator) BaselineInventory(demand []float64) float64 {
	if len(demand) == 0 {
		return 0
	}

	return finite(math.Max(0, stat.Mean(demand, nil)*float64(c.policy.BaselineCoverageDays)))
}

// CostSavings quantifies moving from the baseline position to the optimal
// one. A negative reduction (optimal above baseline) is reported as-is.
// Against a zero baseline the reduction percentage is defined as 0.
// unitCost must not be negative.
func (c *Calculator) CostSavings(optimal, baseline, unitCost float64) (Savings, error) {
	if unitCost < 0 {
		return Savings{}, fmt.Errorf("%w: unit cost must not be negative, got %g", ErrInvalidConfiguration, unitCost)
	}

	// 1. Units freed by moving to the optimal position
	reduction := baseline - optimal

	// 2. One-time capital effect and its annual carrying cost
	capital := reduction * unitCost
	annual := capital * c.policy.CarryingCostRate

	// 3. Relative reduction, 0 against an empty baseline
	pct := 0.0
	if baseline > 0 {
		pct = reduction / baseline * 100
	}

	return Savings{
		InventoryReduction: finite(reduction),
		ReductionPct:       finite(pct),
		CapitalReleased:    finite(capital),
		AnnualSavings:      finite(annual),
	}, nil
}

// Compute evaluates the full metric set from one coherent input bundle.
// When the forecast holds no periods it falls back to the flat historical
// mean rate; the fallback and an empty history are both flagged on the
// result rather than silently absorbed.
func (c *Calculator) Compute(in Inputs) (Metrics, error) {
	ss, err := c.SafetyStock(in.Demand, in.LeadTimeDays, in.ServiceLevel)
	if err != nil {
		return Metrics{}, err
	}

	f := in.Forecast
	usedFallback := false
	if !f.IsScalar() && f.Len() == 0 {
		if len(in.Demand) == 0 {
			return Metrics{}, fmt.Errorf("%w: no forecast periods and no demand history", ErrInsufficientData)
		}
		f = ForecastScalar(stat.Mean(in.Demand, nil))
		usedFallback = true
	}

	opt, err := c.OptimalInventory(f, in.LeadTimeDays, ss)
	if err != nil {
		return Metrics{}, err
	}

	baseline := c.BaselineInventory(in.Demand)

	savings, err := c.CostSavings(opt, baseline, in.UnitCost)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		SafetyStock:        ss,
		OptimalInventory:   opt,
		OrderQuantity:      c.OrderQuantity(opt, in.CurrentStock),
		BaselineInventory:  baseline,
		Savings:            savings,
		DemandObservations: len(in.Demand),
		EmptyDemandHistory: len(in.Demand) == 0,
		UsedDemandFallback: usedFallback,
	}, nil
}

func validateLeadTime(days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: lead time must be positive, got %d days", ErrInvalidConfiguration, days)
	}

	return nil
}

// finite maps NaN and infinities to 0. The calculator never surfaces a
// non-finite value; garbage inputs degrade to the documented zero results.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}
