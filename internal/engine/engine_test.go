package engine

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The reference scenario used across these tests: a week of demand around
// 10 units/day, a 7-day lead time and a 95% service level.
var (
	refDemand = []float64{10, 12, 9, 11, 10, 13, 8}

	refLeadTime     = 7
	refServiceLevel = 0.95
	refCurrentStock = 50.0
	refUnitCost     = 5.0

	// Hand-checked figures: population sigma 1.59079, z 1.64485.
	refSafetyStock = 6.9229
	refOptimal     = 76.9229
	refOrderQty    = 26.9229
	refBaseline    = 625.7143
	refReduction   = 548.7914
	refCapital     = 2743.9568
	refAnnual      = 411.5935
	refPct         = 87.7063
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()

	calc, err := NewCalculator(DefaultPolicy())
	require.NoError(t, err)

	return calc
}

func TestSafetyStock_ReferenceScenario(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.SafetyStock(refDemand, refLeadTime, refServiceLevel)
	require.NoError(t, err)
	assert.InDelta(t, refSafetyStock, got, 1e-3)
}

func TestSafetyStock_ConstantDemandIsZero(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.SafetyStock([]float64{25, 25, 25, 25, 25, 25}, 14, 0.99)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestSafetyStock_MonotonicInServiceLevel(t *testing.T) {
	calc := newTestCalculator(t)

	levels := []float64{0.85, 0.90, 0.95, 0.97, 0.99}
	prev := -1.0
	for _, level := range levels {
		got, err := calc.SafetyStock(refDemand, refLeadTime, level)
		require.NoError(t, err)
		assert.Greater(t, got, prev, "service level %g must raise safety stock", level)
		prev = got
	}
}

func TestSafetyStock_InvalidServiceLevel(t *testing.T) {
	calc := newTestCalculator(t)

	for _, level := range []float64{0, 1, -0.5, 1.5} {
		_, err := calc.SafetyStock(refDemand, refLeadTime, level)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "service level %g", level)
	}
}

func TestSafetyStock_InvalidLeadTime(t *testing.T) {
	calc := newTestCalculator(t)

	for _, days := range []int{0, -3} {
		_, err := calc.SafetyStock(refDemand, days, refServiceLevel)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "lead time %d", days)
	}
}

func TestSafetyStock_EmptyDemandIsZeroNotError(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.SafetyStock(nil, refLeadTime, refServiceLevel)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestSafetyStock_LegacyMonthScaling(t *testing.T) {
	calc, err := NewCalculator(Policy{
		LeadTimeScaling:      ScaleSqrtMonths,
		BaselineCoverageDays: DefaultBaselineCoverageDays,
		CarryingCostRate:     DefaultCarryingCostRate,
	})
	require.NoError(t, err)

	// Same deviation and z, scaled by sqrt(7/30) instead of sqrt(7).
	got, err := calc.SafetyStock(refDemand, refLeadTime, refServiceLevel)
	require.NoError(t, err)
	assert.InDelta(t, 1.2640, got, 1e-3)
}

func TestOptimalInventory(t *testing.T) {
	calc := newTestCalculator(t)

	tests := []struct {
		name        string
		forecast    Forecast
		leadTime    int
		safetyStock float64
		want        float64
	}{
		{
			name:        "scalar rate",
			forecast:    ForecastScalar(10),
			leadTime:    7,
			safetyStock: refSafetyStock,
			want:        refOptimal,
		},
		{
			name: "sequence averaged over lead time window only",
			// Periods beyond the lead time must not skew the rate.
			forecast:    ForecastSeries([]float64{10, 12, 9, 11, 10, 13, 8, 99, 99}),
			leadTime:    7,
			safetyStock: 0,
			want:        73.0,
		},
		{
			name:        "short sequence extrapolated",
			forecast:    ForecastSeries([]float64{12, 14}),
			leadTime:    7,
			safetyStock: 2,
			want:        13*7 + 2,
		},
		{
			name:        "safety buffer keeps position positive",
			forecast:    ForecastScalar(0),
			leadTime:    7,
			safetyStock: 4.5,
			want:        4.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.OptimalInventory(tt.forecast, tt.leadTime, tt.safetyStock)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-3)
		})
	}
}

func TestOptimalInventory_EmptySequenceIsInsufficientData(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.OptimalInventory(ForecastSeries(nil), refLeadTime, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestOptimalInventory_InvalidLeadTime(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.OptimalInventory(ForecastScalar(10), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestOrderQuantity(t *testing.T) {
	calc := newTestCalculator(t)

	assert.InDelta(t, refOrderQty, calc.OrderQuantity(refOptimal, refCurrentStock), 1e-3)
	assert.Equal(t, 0.0, calc.OrderQuantity(40, 55), "excess stock is not an order")
	assert.Equal(t, 0.0, calc.OrderQuantity(40, 40))
}

func TestBaselineInventory(t *testing.T) {
	calc := newTestCalculator(t)

	assert.InDelta(t, refBaseline, calc.BaselineInventory(refDemand), 1e-3)
	assert.Equal(t, 0.0, calc.BaselineInventory(nil))
}

func TestBaselineInventory_CoverageVariant(t *testing.T) {
	calc, err := NewCalculator(Policy{
		LeadTimeScaling:      ScaleSqrtDays,
		BaselineCoverageDays: 30,
		CarryingCostRate:     DefaultCarryingCostRate,
	})
	require.NoError(t, err)

	assert.InDelta(t, refBaseline/2, calc.BaselineInventory(refDemand), 1e-3)
}

func TestCostSavings_ReferenceScenario(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.CostSavings(refOptimal, refBaseline, refUnitCost)
	require.NoError(t, err)

	assert.InDelta(t, refReduction, got.InventoryReduction, 1e-3)
	assert.InDelta(t, refCapital, got.CapitalReleased, 1e-2)
	assert.InDelta(t, refAnnual, got.AnnualSavings, 1e-2)
	assert.InDelta(t, refPct, got.ReductionPct, 1e-3)
}

func TestCostSavings_ZeroBaseline(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.CostSavings(80, 0, refUnitCost)
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.ReductionPct, "zero baseline must not divide")
	assert.InDelta(t, -80.0, got.InventoryReduction, 1e-9)
	assert.InDelta(t, -400.0, got.CapitalReleased, 1e-9)
}

func TestCostSavings_NegativeReductionSurfaced(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.CostSavings(200, 100, 2)
	require.NoError(t, err)

	assert.InDelta(t, -100.0, got.InventoryReduction, 1e-9)
	assert.InDelta(t, -100.0, got.ReductionPct, 1e-9)
	assert.InDelta(t, -30.0, got.AnnualSavings, 1e-9)
}

func TestCostSavings_NegativeUnitCost(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.CostSavings(refOptimal, refBaseline, -1)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestCompute_ReferenceScenario(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.Compute(Inputs{
		Demand:       refDemand,
		Forecast:     ForecastScalar(10),
		LeadTimeDays: refLeadTime,
		ServiceLevel: refServiceLevel,
		CurrentStock: refCurrentStock,
		UnitCost:     refUnitCost,
	})
	require.NoError(t, err)

	assert.InDelta(t, refSafetyStock, got.SafetyStock, 1e-3)
	assert.InDelta(t, refOptimal, got.OptimalInventory, 1e-3)
	assert.InDelta(t, refOrderQty, got.OrderQuantity, 1e-3)
	assert.InDelta(t, refBaseline, got.BaselineInventory, 1e-3)
	assert.InDelta(t, refPct, got.Savings.ReductionPct, 1e-3)
	assert.Equal(t, len(refDemand), got.DemandObservations)
	assert.False(t, got.EmptyDemandHistory)
	assert.False(t, got.UsedDemandFallback)
}

func TestCompute_FallsBackToHistoricalMean(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.Compute(Inputs{
		Demand:       refDemand,
		Forecast:     ForecastSeries(nil),
		LeadTimeDays: refLeadTime,
		ServiceLevel: refServiceLevel,
		CurrentStock: refCurrentStock,
		UnitCost:     refUnitCost,
	})
	require.NoError(t, err)

	assert.True(t, got.UsedDemandFallback)
	// Mean rate 10.4286 over 7 days plus the safety buffer.
	assert.InDelta(t, 73.0+refSafetyStock, got.OptimalInventory, 1e-3)
}

func TestCompute_NoForecastNoHistory(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.Compute(Inputs{
		Demand:       nil,
		Forecast:     ForecastSeries(nil),
		LeadTimeDays: refLeadTime,
		ServiceLevel: refServiceLevel,
	})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCompute_EmptyHistoryWithScalarForecast(t *testing.T) {
	calc := newTestCalculator(t)

	got, err := calc.Compute(Inputs{
		Demand:       nil,
		Forecast:     ForecastScalar(10),
		LeadTimeDays: refLeadTime,
		ServiceLevel: refServiceLevel,
		CurrentStock: 20,
		UnitCost:     refUnitCost,
	})
	require.NoError(t, err)

	assert.True(t, got.EmptyDemandHistory)
	assert.Equal(t, 0.0, got.SafetyStock)
	assert.Equal(t, 0.0, got.BaselineInventory)
	assert.InDelta(t, 70.0, got.OptimalInventory, 1e-9)
	assert.InDelta(t, 50.0, got.OrderQuantity, 1e-9)
	assert.Equal(t, 0.0, got.Savings.ReductionPct)
}

func TestCalculator_NaNDemandNeverSurfaces(t *testing.T) {
	calc := newTestCalculator(t)

	demand := []float64{10, math.NaN(), 12}

	ss, err := calc.SafetyStock(demand, refLeadTime, refServiceLevel)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(ss))

	baseline := calc.BaselineInventory(demand)
	assert.False(t, math.IsNaN(baseline))

	got, err := calc.Compute(Inputs{
		Demand:       demand,
		Forecast:     ForecastScalar(10),
		LeadTimeDays: refLeadTime,
		ServiceLevel: refServiceLevel,
		UnitCost:     refUnitCost,
	})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got.SafetyStock))
	assert.False(t, math.IsNaN(got.Savings.ReductionPct))
}

func TestCalculator_ConcurrentUse(t *testing.T) {
	calc := newTestCalculator(t)

	want, err := calc.Compute(Inputs{
		Demand:       refDemand,
		Forecast:     ForecastScalar(10),
		LeadTimeDays: refLeadTime,
		ServiceLevel: refServiceLevel,
		CurrentStock: refCurrentStock,
		UnitCost:     refUnitCost,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := calc.Compute(Inputs{
				Demand:       refDemand,
				Forecast:     ForecastScalar(10),
				LeadTimeDays: refLeadTime,
				ServiceLevel: refServiceLevel,
				CurrentStock: refCurrentStock,
				UnitCost:     refUnitCost,
			})
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
